package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Billy-Davies-2/blt-leagues/internal/auth"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
)

const authorizationKey = "authorization"

// TokenVerifier resolves a bearer access token to the user it was issued to
type TokenVerifier interface {
	VerifyToken(ctx context.Context, accessToken string) (*auth.User, error)
}

// Option configures a Server
type Option func(*Server)

// WithActorMetadata trusts the x-blt-actor metadata as the acting member.
// Only development servers should use it: the value is not signed.
func WithActorMetadata() Option {
	return func(s *Server) {
		s.trustActorMetadata = true
	}
}

// UnaryAuthInterceptor requires a verified bearer token on every league
// service call. Other services, such as health, pass through.
func UnaryAuthInterceptor(v TokenVerifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !leagueMethod(info.FullMethod) {
			return handler(ctx, req)
		}
		ctx, err := authenticate(ctx, v)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamAuthInterceptor is the streaming counterpart of UnaryAuthInterceptor
func StreamAuthInterceptor(v TokenVerifier) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !leagueMethod(info.FullMethod) {
			return handler(srv, ss)
		}
		ctx, err := authenticate(ss.Context(), v)
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

func leagueMethod(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/"+ServiceName+"/")
}

func authenticate(ctx context.Context, v TokenVerifier) (context.Context, error) {
	token := bearerToken(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing bearer token")
	}
	user, err := v.VerifyToken(ctx, token)
	if err != nil || user.Handle() == "" {
		logger.Warn("gRPC: Rejected bearer token", "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid bearer token")
	}
	return auth.WithUser(ctx, user), nil
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(authorizationKey) {
		if scheme, token, found := strings.Cut(strings.TrimSpace(v), " "); found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context {
	return s.ctx
}
