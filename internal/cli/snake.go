package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
)

type snakePick struct {
	Pick  int    `json:"pick"`
	Round int    `json:"round"`
	Team  string `json:"team"`
}

func Snake() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snake team...",
		Short: "Print the snake draft sequence for a draft order",
		Args:  cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			rounds, _ := cmd.Flags().GetInt("rounds")
			if rounds < 1 || rounds > engine.MaxRounds {
				return fmt.Errorf("--rounds must be between 1 and %d", engine.MaxRounds)
			}

			teams, err := teamsFromArgs(args)
			if err != nil {
				return err
			}
			names := teamNames(teams)
			order := make([]string, len(teams))
			for i, t := range teams {
				order[i] = t.ID
			}

			seq := engine.BuildSnakeOrder(order, rounds)
			picks := make([]snakePick, len(seq))
			for i, id := range seq {
				picks[i] = snakePick{Pick: i + 1, Round: engine.RoundOf(i+1, len(order)), Team: names[id]}
			}

			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), picks)
			}
			w := cmd.OutOrStdout()
			for r := 0; r < rounds; r++ {
				row := make([]string, 0, len(order))
				for _, p := range picks[r*len(order) : (r+1)*len(order)] {
					row = append(row, fmt.Sprintf("%d.%s", p.Pick, p.Team))
				}
				fmt.Fprintf(w, "Round %d: %s\n", r+1, strings.Join(row, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntP("rounds", "r", engine.DefaultRounds, "Number of rounds")
	return cmd
}
