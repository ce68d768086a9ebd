package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	grpcclient "github.com/Billy-Davies-2/blt-leagues/internal/grpc"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
)

func Watch() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream league events from a running server",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			leagueID, _ := cmd.Flags().GetString("league")
			actor, _ := cmd.Flags().GetString("actor")
			token, _ := cmd.Flags().GetString("token")

			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", addr, err)
			}
			defer conn.Close()

			client := grpcclient.NewClient(conn, actor)
			if token != "" {
				client = client.WithToken(token)
			}
			stream, err := client.WatchLeague(cmd.Context(), &grpcclient.WatchLeagueRequest{LeagueID: leagueID})
			if err != nil {
				return err
			}
			logger.Info("Watching league events", "addr", addr, "league", leagueID)
			return streamEvents(cmd.OutOrStdout(), stream, wantJSON(cmd))
		},
	}

	cmd.Flags().String("addr", "localhost:50051", "gRPC server address")
	cmd.Flags().String("league", "", "League id (empty watches every league)")
	cmd.Flags().String("actor", "", "Member handle sent with the call (development servers)")
	cmd.Flags().String("token", "", "Authentik access token sent as a bearer credential")
	return cmd
}

type eventReceiver interface {
	Recv() (*grpcclient.LeagueEvent, error)
}

// streamEvents prints events until the stream ends or is cancelled
func streamEvents(w io.Writer, stream eventReceiver, asJSON bool) error {
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return err
		}
		if asJSON {
			if err := printJSON(w, ev); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(w, "%-20s league=%s version=%d\n", ev.Type, ev.LeagueID, ev.Version)
	}
}
