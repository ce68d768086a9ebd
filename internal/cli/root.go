package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
)

// Root returns the leaguectl command tree
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "leaguectl",
		Short: "Inspect draft orders and schedules, or simulate a league draft",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logger.InitWith(cmd.ErrOrStderr(), level, "text")
		},
	}

	// global flags
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("json", false, "Print JSON instead of text")

	root.AddCommand(Schedule())
	root.AddCommand(Snake())
	root.AddCommand(Simulate())
	root.AddCommand(Watch())

	return root
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
