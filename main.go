package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/blt-leagues/internal/auth"
	"github.com/Billy-Davies-2/blt-leagues/internal/clickhouse"
	"github.com/Billy-Davies-2/blt-leagues/internal/config"
	"github.com/Billy-Davies-2/blt-leagues/internal/dal"
	grpcserver "github.com/Billy-Davies-2/blt-leagues/internal/grpc"
	"github.com/Billy-Davies-2/blt-leagues/internal/handlers"
	"github.com/Billy-Davies-2/blt-leagues/internal/leagues"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/mocks"
	"github.com/Billy-Davies-2/blt-leagues/internal/players"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

// analytics records picks and serves average draft position
type analytics interface {
	leagues.PickRecorder
	handlers.ADPSource
	Ping(ctx context.Context) error
	Close() error
}

// eventBus is a NATS backed upstream for the in-process pubsub
type eventBus interface {
	pubsub.Upstream
	Connected() bool
	SubscriberCount() int
	Close()
}

func main() {
	// Initialize logger first
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.Info("Starting BLT leagues service", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := newStore(cfg)
	defer store.Close()

	bus := newEventBus(cfg)
	defer bus.Close()
	ps := pubsub.NewWithUpstream(bus)

	stats := newAnalytics(cfg)
	defer stats.Close()

	pool := newPlayerPool(ctx, cfg)

	svc := leagues.New(store, pool, ps, leagues.WithRecorder(stats))

	authProvider := newAuth(cfg)

	// Start gRPC server in a goroutine
	grpcServer, grpcSvc := newGRPCServer(cfg, authProvider, svc, ps)
	grpcserver.Register(grpcServer, grpcSvc)
	go func() {
		lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
		if err != nil {
			logger.Error("Failed to listen for gRPC", "error", err, "port", cfg.GRPCPort)
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		logger.Info("gRPC server starting", "address", "0.0.0.0:"+cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	health := handlers.NewHealth(
		handlers.Check{Name: "database", Critical: true, Ping: store.Ping},
		handlers.Check{Name: "clickhouse", Ping: stats.Ping},
		handlers.Check{
			Name: "nats",
			Ping: func(context.Context) error {
				if !bus.Connected() {
					return errors.New("not connected")
				}
				return nil
			},
			Detail: func() string {
				return fmt.Sprintf("%d local subscribers", bus.SubscriberCount())
			},
		},
		handlers.PlayerPoolCheck(pool, playerPoolMaxAge(cfg)),
	)
	api := handlers.NewAPIHandlers(svc, leagues.NewWatchlist(store, pool), pool, stats, ps)
	router := handlers.NewRouter(api, authProvider, health)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	grpcserver.Shutdown(grpcServer, 5*time.Second)
}

func newStore(cfg *config.Config) dal.Store {
	switch cfg.DBDriver {
	case "sqlite":
		store, err := dal.NewSQLiteDAL(cfg.SQLiteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
		return store
	case "postgres":
		store, err := dal.NewPostgresDAL(cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
		return store
	default:
		logger.Info("Using in-memory data store with demo leagues")
		return dal.NewMemoryDAL()
	}
}

// newEventBus uses embedded NATS in development and NATS JetStream otherwise
func newEventBus(cfg *config.Config) eventBus {
	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		opts.StreamName = cfg.NATSStream
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
		return embedded
	}

	bus, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject, cfg.NATSStream)
	if err != nil {
		logger.Error("Failed to initialize NATS", "error", err)
		log.Fatalf("Failed to initialize NATS: %v", err)
	}
	logger.Info("Connected to NATS", "url", cfg.NATSURL)
	return bus
}

// newAnalytics uses the in-memory recorder in development and ClickHouse otherwise
func newAnalytics(cfg *config.Config) analytics {
	if cfg.IsDevelopment() {
		logger.Info("Using mock ClickHouse for local development (no ClickHouse server required)")
		return mocks.NewMockClickHouseClient()
	}

	ch := cfg.ClickHouse
	client, err := clickhouse.NewClient(ch.Addr, ch.Database, ch.User, ch.Password)
	if err != nil {
		logger.Error("Failed to initialize ClickHouse", "error", err, "address", ch.Addr)
		log.Fatalf("Failed to initialize ClickHouse: %v", err)
	}
	logger.Info("Connected to ClickHouse", "address", ch.Addr, "database", ch.Database)
	return client
}

func newPlayerPool(ctx context.Context, cfg *config.Config) *players.Pool {
	var source players.Source = players.NewStaticSource()
	if cfg.PlayerSource == "sleeper" {
		source = players.NewSleeperSource()
	}

	pool := players.NewPool(source, cfg.PlayerRefresh)
	if err := pool.Refresh(ctx); err != nil {
		logger.Error("Failed to load players", "error", err, "source", source.Name())
		log.Fatalf("Failed to load players: %v", err)
	}
	pool.Start(ctx)
	return pool
}

// playerPoolMaxAge allows three missed refreshes before the pool counts as stale
func playerPoolMaxAge(cfg *config.Config) time.Duration {
	return 3 * cfg.PlayerRefresh
}

// newGRPCServer trusts actor metadata in development. Otherwise every league
// call needs an Authentik bearer token.
func newGRPCServer(cfg *config.Config, provider auth.AuthProvider, svc *leagues.Service, ps *pubsub.PubSub) (*grpc.Server, *grpcserver.Server) {
	if cfg.IsDevelopment() {
		logger.Info("gRPC trusts actor metadata for local development")
		return grpc.NewServer(), grpcserver.NewServer(svc, ps, grpcserver.WithActorMetadata())
	}

	verifier, ok := provider.(grpcserver.TokenVerifier)
	if !ok {
		log.Fatalf("Auth provider %T cannot verify gRPC bearer tokens", provider)
	}
	s := grpc.NewServer(
		grpc.UnaryInterceptor(grpcserver.UnaryAuthInterceptor(verifier)),
		grpc.StreamInterceptor(grpcserver.StreamAuthInterceptor(verifier)),
	)
	return s, grpcserver.NewServer(svc, ps)
}

// newAuth uses mock authentication in development and Authentik otherwise
func newAuth(cfg *config.Config) auth.AuthProvider {
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		return auth.NewMockAuth()
	}

	a := cfg.Authentik
	logger.Info("Using Authentik authentication", "url", a.BaseURL)
	return auth.NewAuthentikAuth(&auth.AuthentikConfig{
		BaseURL:      a.BaseURL,
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  a.RedirectURL,
		AppSlug:      a.AppSlug,
		Scopes:       []string{"openid", "profile", "email"},
	})
}
