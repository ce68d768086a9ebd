package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// teamsFromArgs builds one team per name, keyed by its slug
func teamsFromArgs(names []string) ([]models.Team, error) {
	seen := make(map[string]string, len(names))
	teams := make([]models.Team, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("team names cannot be blank")
		}
		id := engine.Slug(name)
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("team names %q and %q collide", prev, name)
		}
		seen[id] = name
		teams = append(teams, models.Team{ID: id, Name: name})
	}
	return teams, nil
}

func teamNames(teams []models.Team) map[string]string {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names
}

func Schedule() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule team...",
		Short: "Print a round-robin schedule for the given teams",
		Args:  cobra.MinimumNArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			teams, err := teamsFromArgs(args)
			if err != nil {
				return err
			}
			weeks := engine.GroupByWeek(teams, engine.GenerateSchedule(teams))

			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), weeks)
			}
			writeWeeks(cmd.OutOrStdout(), weeks, teamNames(teams))
			return nil
		},
	}
}

func writeWeeks(w io.Writer, weeks []engine.Week, names map[string]string) {
	for _, wk := range weeks {
		fmt.Fprintf(w, "Week %d\n", wk.Week)
		for _, m := range wk.Matchups {
			fmt.Fprintf(w, "  %s vs %s\n", names[m.HomeID], names[m.AwayID])
		}
		for _, id := range wk.Bye {
			fmt.Fprintf(w, "  bye: %s\n", names[id])
		}
	}
}
