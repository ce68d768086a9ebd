package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls the league service with the JSON codec
type Client struct {
	cc    grpc.ClientConnInterface
	actor string
	token string
}

// NewClient wraps a connection. actor is sent as the acting member on every call.
func NewClient(cc grpc.ClientConnInterface, actor string) *Client {
	return &Client{cc: cc, actor: actor}
}

// WithToken returns a copy of c that sends token as a bearer credential
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, authorizationKey, "Bearer "+c.token)
	}
	if c.actor != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, c.actor)
	}
	return ctx
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	return c.cc.Invoke(c.outgoing(ctx), "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) GetLeague(ctx context.Context, in *GetLeagueRequest) (*LeagueResponse, error) {
	out := new(LeagueResponse)
	if err := c.invoke(ctx, "GetLeague", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) JoinLeague(ctx context.Context, in *JoinLeagueRequest) (*LeagueResponse, error) {
	out := new(LeagueResponse)
	if err := c.invoke(ctx, "JoinLeague", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StartDraft(ctx context.Context, in *StartDraftRequest) (*LeagueResponse, error) {
	out := new(LeagueResponse)
	if err := c.invoke(ctx, "StartDraft", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubmitPick(ctx context.Context, in *SubmitPickRequest) (*LeagueResponse, error) {
	out := new(LeagueResponse)
	if err := c.invoke(ctx, "SubmitPick", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDraftBoard(ctx context.Context, in *GetDraftBoardRequest) (*DraftBoardResponse, error) {
	out := new(DraftBoardResponse)
	if err := c.invoke(ctx, "GetDraftBoard", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSchedule(ctx context.Context, in *GetScheduleRequest) (*ScheduleResponse, error) {
	out := new(ScheduleResponse)
	if err := c.invoke(ctx, "GetSchedule", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// EventStream receives league events from WatchLeague
type EventStream struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event
func (s *EventStream) Recv() (*LeagueEvent, error) {
	ev := new(LeagueEvent)
	if err := s.stream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// WatchLeague opens an event stream; cancel ctx to stop it
func (c *Client) WatchLeague(ctx context.Context, in *WatchLeagueRequest) (*EventStream, error) {
	stream, err := c.cc.NewStream(c.outgoing(ctx), &ServiceDesc.Streams[0], "/"+ServiceName+"/WatchLeague", grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventStream{stream: stream}, nil
}
