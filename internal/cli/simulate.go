package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/blt-leagues/internal/dal"
	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/leagues"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
	"github.com/Billy-Davies-2/blt-leagues/internal/players"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

// simulation is the outcome of an auto draft
type simulation struct {
	League   models.League                 `json:"league"`
	Lineups  map[string]leagues.LineupView `json:"lineups"`
	Schedule []engine.Week                 `json:"schedule"`
}

func ownerName(i int) string {
	return fmt.Sprintf("Owner %d", i)
}

// simulate fills a league with owners on auto-pick and runs the whole draft
// through the league service against an in-memory store
func simulate(cmd *cobra.Command, teams, rounds int, seed int64) (simulation, error) {
	ctx := cmd.Context()

	pool := players.NewPool(players.NewStaticSource(), 0)
	if err := pool.Refresh(ctx); err != nil {
		return simulation{}, err
	}
	svc := leagues.New(dal.NewMemoryDALWith(), pool, pubsub.New(),
		leagues.WithRand(rand.New(rand.NewSource(seed))),
		leagues.WithClock(func() time.Time { return time.Unix(0, 0).UTC() }),
		leagues.WithIDs(func() string { return "sim" }),
	)

	l, err := svc.Create(ctx, ownerName(1), leagues.CreateParams{Name: "Simulation", Size: teams})
	if err != nil {
		return simulation{}, err
	}
	for i := 2; i <= l.Size; i++ {
		if l, err = svc.Join(ctx, ownerName(i), l.Code); err != nil {
			return simulation{}, err
		}
	}
	for _, t := range l.Teams {
		if l, err = svc.SetAutoPick(ctx, l.ID, t.Owner, t.ID, true); err != nil {
			return simulation{}, err
		}
	}
	if l, err = svc.StartDraft(ctx, l.ID, ownerName(1), rounds, nil, 0); err != nil {
		return simulation{}, err
	}
	if !l.DraftState.Completed {
		return simulation{}, fmt.Errorf("draft stopped after %d of %d picks", len(l.DraftPicks), engine.TotalPicks(l))
	}

	out := simulation{League: l, Lineups: make(map[string]leagues.LineupView, len(l.Teams))}
	for _, t := range l.Teams {
		view, err := svc.Lineup(ctx, l.ID, t.ID)
		if err != nil {
			return simulation{}, err
		}
		out.Lineups[t.ID] = view
	}
	if out.Schedule, err = svc.Schedule(ctx, l.ID); err != nil {
		return simulation{}, err
	}
	return out, nil
}

func Simulate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a league where every team drafts on auto-pick",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			teams, _ := cmd.Flags().GetInt("teams")
			rounds, _ := cmd.Flags().GetInt("rounds")
			seed, _ := cmd.Flags().GetInt64("seed")

			if size, _ := engine.NormalizeSize(teams); size != teams {
				return fmt.Errorf("--teams must be an even number between %d and %d", engine.MinLeagueSize, engine.MaxLeagueSize)
			}

			sim, err := simulate(cmd, teams, rounds, seed)
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), sim)
			}

			l := sim.League
			names := make(map[string]string, len(l.Teams))
			for _, t := range l.Teams {
				names[t.ID] = t.Name
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d teams, %d rounds, code %s\n", l.Name, len(l.Teams), l.DraftSettings.Rounds, l.Code)
			for _, p := range l.DraftPicks {
				if (p.Pick-1)%len(l.DraftOrder) == 0 {
					fmt.Fprintf(w, "Round %d\n", p.Round)
				}
				fmt.Fprintf(w, "  %3d  %-16s %s (%s, %s)\n", p.Pick, names[p.TeamID], p.Player.Name, p.Player.Position, p.Player.Team)
			}

			fmt.Fprintln(w, "Lineups")
			for _, t := range l.Teams {
				s := sim.Lineups[t.ID].Summary
				fmt.Fprintf(w, "  %-16s %d/%d starters\n", t.Name, s.Filled, s.Total)
			}

			fmt.Fprintln(w, "Schedule")
			writeWeeks(w, sim.Schedule, names)
			return nil
		},
	}

	cmd.Flags().IntP("teams", "n", engine.DefaultLeagueSize, "Number of teams")
	cmd.Flags().IntP("rounds", "r", 0, "Number of rounds (0 keeps the league default)")
	cmd.Flags().Int64P("seed", "s", 1, "Random seed for the draft order and picks")
	return cmd
}
