package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Billy-Davies-2/blt-leagues/internal/auth"
	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/leagues"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/players"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "blt.leagues.v1.LeagueService"

// ActorMetadataKey carries the acting member's handle on every call
const ActorMetadataKey = "x-blt-actor"

const maxLineupKeys = 8

// LeagueServiceServer is the server API for the league service
type LeagueServiceServer interface {
	GetLeague(context.Context, *GetLeagueRequest) (*LeagueResponse, error)
	JoinLeague(context.Context, *JoinLeagueRequest) (*LeagueResponse, error)
	StartDraft(context.Context, *StartDraftRequest) (*LeagueResponse, error)
	SubmitPick(context.Context, *SubmitPickRequest) (*LeagueResponse, error)
	GetDraftBoard(context.Context, *GetDraftBoardRequest) (*DraftBoardResponse, error)
	GetSchedule(context.Context, *GetScheduleRequest) (*ScheduleResponse, error)
	WatchLeague(*WatchLeagueRequest, grpc.ServerStream) error
}

// Server implements the gRPC LeagueService
type Server struct {
	leagues *leagues.Service
	pubsub  *pubsub.PubSub

	trustActorMetadata bool
}

// NewServer creates a new gRPC server. Without WithActorMetadata the acting
// member comes only from a user put on the context by the auth interceptors.
func NewServer(svc *leagues.Service, ps *pubsub.PubSub, opts ...Option) *Server {
	s := &Server{
		leagues: svc,
		pubsub:  ps,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds the league service and the standard health service to s
func Register(s *grpc.Server, srv LeagueServiceServer) *health.Server {
	s.RegisterService(&ServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

// actorFrom reads the acting member from the authenticated user, or from the
// call metadata when the server trusts it
func (s *Server) actorFrom(ctx context.Context) (string, error) {
	if handle := auth.UserFromContext(ctx).Handle(); handle != "" {
		return handle, nil
	}
	if !s.trustActorMetadata {
		return "", status.Error(codes.Unauthenticated, "authentication required")
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(ActorMetadataKey); len(vals) > 0 && strings.TrimSpace(vals[0]) != "" {
			return strings.TrimSpace(vals[0]), nil
		}
	}
	return "", status.Error(codes.Unauthenticated, "missing "+ActorMetadataKey+" metadata")
}

// toStatus maps service and engine errors onto gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, leagues.ErrNotFound),
		errors.Is(err, leagues.ErrTeamNotFound),
		errors.Is(err, leagues.ErrMatchupNotFound),
		errors.Is(err, leagues.ErrUnknownPlayer):
		code = codes.NotFound
	case errors.Is(err, engine.ErrNotMember),
		errors.Is(err, engine.ErrNotTeamOwner):
		code = codes.PermissionDenied
	case errors.Is(err, leagues.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, engine.ErrInvalidPlayer),
		errors.Is(err, engine.ErrInvalidLineup),
		errors.Is(err, engine.ErrInvalidName),
		errors.Is(err, engine.ErrInvalidFormat):
		code = codes.InvalidArgument
	case errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrDraftAlreadyStarted),
		errors.Is(err, engine.ErrDraftNotActive),
		errors.Is(err, engine.ErrDraftComplete),
		errors.Is(err, engine.ErrDuplicatePlayer),
		errors.Is(err, leagues.ErrPlayerUnavailable),
		errors.Is(err, engine.ErrLeagueFull),
		errors.Is(err, engine.ErrAlreadyMember),
		errors.Is(err, engine.ErrNotEnoughTeams),
		errors.Is(err, engine.ErrNoAvailablePlayers):
		code = codes.FailedPrecondition
	default:
		logger.Error("gRPC: Request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func requireLeagueID(id string) error {
	if strings.TrimSpace(id) == "" {
		return status.Error(codes.InvalidArgument, "leagueId is required")
	}
	return nil
}

// GetLeague returns one league
func (s *Server) GetLeague(ctx context.Context, req *GetLeagueRequest) (*LeagueResponse, error) {
	if err := requireLeagueID(req.LeagueID); err != nil {
		return nil, err
	}
	l, err := s.leagues.Get(ctx, req.LeagueID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LeagueResponse{League: l}, nil
}

// JoinLeague adds the caller to a league by invite code
func (s *Server) JoinLeague(ctx context.Context, req *JoinLeagueRequest) (*LeagueResponse, error) {
	who, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}
	logger.Info("gRPC: Joining league", "actor", who)
	l, err := s.leagues.Join(ctx, who, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LeagueResponse{League: l}, nil
}

// StartDraft opens the draft
func (s *Server) StartDraft(ctx context.Context, req *StartDraftRequest) (*LeagueResponse, error) {
	who, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireLeagueID(req.LeagueID); err != nil {
		return nil, err
	}
	if len(req.Lineup) > maxLineupKeys {
		return nil, status.Error(codes.InvalidArgument, "too many lineup positions")
	}
	for _, n := range req.Lineup {
		if n > engine.MaxRounds {
			return nil, status.Errorf(codes.InvalidArgument, "lineup slot counts cannot exceed %d", engine.MaxRounds)
		}
	}
	logger.Info("gRPC: Starting draft", "leagueId", req.LeagueID, "actor", who)
	l, err := s.leagues.StartDraft(ctx, req.LeagueID, who, req.Rounds, req.Lineup, req.Version)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LeagueResponse{League: l}, nil
}

// SubmitPick drafts a player for the caller's team on the clock
func (s *Server) SubmitPick(ctx context.Context, req *SubmitPickRequest) (*LeagueResponse, error) {
	who, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireLeagueID(req.LeagueID); err != nil {
		return nil, err
	}
	logger.Info("gRPC: Drafting player", "leagueId", req.LeagueID, "actor", who, "player_id", req.PlayerID)
	l, err := s.leagues.SubmitPick(ctx, req.LeagueID, who, req.PlayerID, req.Version)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LeagueResponse{League: l}, nil
}

// GetDraftBoard returns the turn state and available players
func (s *Server) GetDraftBoard(ctx context.Context, req *GetDraftBoardRequest) (*DraftBoardResponse, error) {
	if err := requireLeagueID(req.LeagueID); err != nil {
		return nil, err
	}
	board, err := s.leagues.Board(ctx, req.LeagueID, players.Filter{
		Position: req.Position,
		Team:     req.Team,
		Query:    req.Query,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &DraftBoardResponse{Board: board}, nil
}

// GetSchedule returns matchups grouped by week
func (s *Server) GetSchedule(ctx context.Context, req *GetScheduleRequest) (*ScheduleResponse, error) {
	if err := requireLeagueID(req.LeagueID); err != nil {
		return nil, err
	}
	weeks, err := s.leagues.Schedule(ctx, req.LeagueID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ScheduleResponse{Weeks: weeks}, nil
}

// WatchLeague streams league events to the client
func (s *Server) WatchLeague(req *WatchLeagueRequest, stream grpc.ServerStream) error {
	logger.Debug("gRPC: New client connected to event stream", "leagueId", req.LeagueID)
	var events chan pubsub.Event
	if req.LeagueID != "" {
		events = s.pubsub.SubscribeLeague(req.LeagueID)
	} else {
		events = s.pubsub.Subscribe()
	}
	defer s.pubsub.Unsubscribe(events)

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			msg := &LeagueEvent{
				Type:     event.Type,
				LeagueID: event.LeagueID,
				Version:  event.Version,
				Payload:  event.Payload,
			}
			if err := stream.SendMsg(msg); err != nil {
				logger.Error("gRPC: Failed to send event to stream", "error", err)
				return err
			}
		case <-stream.Context().Done():
			logger.Debug("gRPC: Client disconnected from event stream")
			return nil
		}
	}
}

func unary[Req, Resp any](method string, call func(LeagueServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(LeagueServiceServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(impl, ctx, req.(*Req))
			})
		},
	}
}

func watchLeagueHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(WatchLeagueRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LeagueServiceServer).WatchLeague(in, stream)
}

// ServiceDesc describes the league service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LeagueServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetLeague", LeagueServiceServer.GetLeague),
		unary("JoinLeague", LeagueServiceServer.JoinLeague),
		unary("StartDraft", LeagueServiceServer.StartDraft),
		unary("SubmitPick", LeagueServiceServer.SubmitPick),
		unary("GetDraftBoard", LeagueServiceServer.GetDraftBoard),
		unary("GetSchedule", LeagueServiceServer.GetSchedule),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchLeague",
			Handler:       watchLeagueHandler,
			ServerStreams: true,
		},
	},
	Metadata: "blt/leagues/v1/league_service",
}
