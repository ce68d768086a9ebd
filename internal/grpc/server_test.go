package grpc

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Billy-Davies-2/blt-leagues/internal/dal"
	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/leagues"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
	"github.com/Billy-Davies-2/blt-leagues/internal/players"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

func init() {
	logger.Init()
}

type harness struct {
	svc  *leagues.Service
	ps   *pubsub.PubSub
	pool *players.Pool
	srv  *grpc.Server
	conn *grpc.ClientConn
}

// newHarness serves a development server that trusts actor metadata
func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil, WithActorMetadata())
}

func newHarnessWith(t *testing.T, serverOpts []grpc.ServerOption, opts ...Option) *harness {
	t.Helper()
	pool := players.NewPool(players.NewStaticSource(), 0)
	if err := pool.Refresh(context.Background()); err != nil {
		t.Fatalf("pool refresh: %v", err)
	}
	ps := pubsub.New()
	svc := leagues.New(dal.NewMemoryDALWith(), pool, ps, leagues.WithRand(rand.New(rand.NewSource(5))))

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(serverOpts...)
	Register(s, NewServer(svc, ps, opts...))
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &harness{svc: svc, ps: ps, pool: pool, srv: s, conn: conn}
}

func (h *harness) client(actor string) *Client {
	return NewClient(h.conn, actor)
}

func codeOf(err error) codes.Code {
	return status.Code(err)
}

func TestGRPCDraftFlow(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := h.svc.Create(ctx, "Morgan", leagues.CreateParams{Name: "Wire", Size: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	joined, err := h.client("Priya").JoinLeague(ctx, &JoinLeagueRequest{Code: l.Code})
	if err != nil {
		t.Fatalf("JoinLeague: %v", err)
	}
	if len(joined.League.Teams) != 2 || len(joined.League.DraftOrder) != 2 {
		t.Fatalf("league should be full with an order: %+v", joined.League)
	}

	if _, err := h.client("Priya").JoinLeague(ctx, &JoinLeagueRequest{Code: l.Code}); codeOf(err) != codes.FailedPrecondition {
		t.Errorf("second join: expected FailedPrecondition, got %v", err)
	}

	started, err := h.client("Morgan").StartDraft(ctx, &StartDraftRequest{
		LeagueID: l.ID,
		Rounds:   1,
		Lineup:   models.Lineup{"qb": 1},
		Version:  joined.League.Version,
	})
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}
	if !started.League.DraftState.Started {
		t.Fatal("draft should be started")
	}

	board, err := h.client("Morgan").GetDraftBoard(ctx, &GetDraftBoardRequest{LeagueID: l.ID, Position: "QB", Limit: 2})
	if err != nil {
		t.Fatalf("GetDraftBoard: %v", err)
	}
	if board.Board.Turn.TeamID == "" || len(board.Board.Available) != 2 {
		t.Fatalf("unexpected board %+v", board.Board.Turn)
	}

	team, _ := started.League.TeamByID(board.Board.Turn.TeamID)
	picked, err := h.client(team.Owner).SubmitPick(ctx, &SubmitPickRequest{
		LeagueID: l.ID,
		PlayerID: board.Board.Available[0].ID,
	})
	if err != nil {
		t.Fatalf("SubmitPick: %v", err)
	}
	if len(picked.League.DraftPicks) != 1 {
		t.Errorf("expected one pick, got %d", len(picked.League.DraftPicks))
	}

	if _, err := h.client(team.Owner).SubmitPick(ctx, &SubmitPickRequest{LeagueID: l.ID, PlayerID: board.Board.Available[1].ID}); codeOf(err) != codes.FailedPrecondition {
		t.Errorf("pick out of turn: expected FailedPrecondition, got %v", err)
	}

	sched, err := h.client("").GetSchedule(ctx, &GetScheduleRequest{LeagueID: l.ID})
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if len(sched.Weeks) != 1 || len(sched.Weeks[0].Matchups) != 1 {
		t.Errorf("two teams play one week: %+v", sched.Weeks)
	}
}

func TestGRPCErrors(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := h.svc.Create(ctx, "Morgan", leagues.CreateParams{Name: "Errors", Size: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"missing league id", func() error {
			_, err := h.client("").GetLeague(ctx, &GetLeagueRequest{})
			return err
		}, codes.InvalidArgument},
		{"unknown league", func() error {
			_, err := h.client("").GetLeague(ctx, &GetLeagueRequest{LeagueID: "lg-missing"})
			return err
		}, codes.NotFound},
		{"no actor", func() error {
			_, err := h.client("").JoinLeague(ctx, &JoinLeagueRequest{Code: l.Code})
			return err
		}, codes.Unauthenticated},
		{"non-member start", func() error {
			_, err := h.client("Stranger").StartDraft(ctx, &StartDraftRequest{LeagueID: l.ID})
			return err
		}, codes.PermissionDenied},
		{"stale version", func() error {
			_, err := h.client("Morgan").StartDraft(ctx, &StartDraftRequest{LeagueID: l.ID, Version: l.Version + 3})
			return err
		}, codes.Aborted},
		{"one team", func() error {
			_, err := h.client("Morgan").StartDraft(ctx, &StartDraftRequest{LeagueID: l.ID})
			return err
		}, codes.FailedPrecondition},
		{"oversized lineup", func() error {
			_, err := h.client("Morgan").StartDraft(ctx, &StartDraftRequest{LeagueID: l.ID, Lineup: models.Lineup{"qb": 31}})
			return err
		}, codes.InvalidArgument},
		{"empty player", func() error {
			_, err := h.client("Morgan").SubmitPick(ctx, &SubmitPickRequest{LeagueID: l.ID})
			return err
		}, codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeOf(tt.call()); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{leagues.ErrUnknownPlayer, codes.NotFound},
		{engine.ErrNotTeamOwner, codes.PermissionDenied},
		{leagues.ErrConflict, codes.Aborted},
		{engine.ErrInvalidLineup, codes.InvalidArgument},
		{engine.ErrDraftComplete, codes.FailedPrecondition},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		if got := status.Code(toStatus(tt.err)); got != tt.want {
			t.Errorf("toStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
	if toStatus(nil) != nil {
		t.Error("nil error should stay nil")
	}
}

func TestGRPCWatchLeague(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := h.svc.Create(ctx, "Morgan", leagues.CreateParams{Name: "Watched", Size: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stream, err := h.client("Morgan").WatchLeague(ctx, &WatchLeagueRequest{LeagueID: l.ID})
	if err != nil {
		t.Fatalf("WatchLeague: %v", err)
	}
	for h.ps.SubscriberCount() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("server never subscribed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// an event for another league must not arrive
	h.ps.Publish(pubsub.Event{Type: pubsub.EventLeagueUpdate, LeagueID: "lg-other"})
	if _, err := h.svc.Join(ctx, "Priya", l.Code); err != nil {
		t.Fatalf("Join: %v", err)
	}

	ev, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if ev.Type != pubsub.EventLeagueJoin || ev.LeagueID != l.ID || ev.Version != 2 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestGRPCHealth(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(h.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.Status)
	}
}
