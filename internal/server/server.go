// Package server runs the status responder over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/glowlabs-org/threadgroup"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.encore.dev/statusauth/internal/config"
	"go.encore.dev/statusauth/internal/jsonerr"
	"go.encore.dev/statusauth/internal/keystore"
	"go.encore.dev/statusauth/internal/replay"
	"go.encore.dev/statusauth/pkg/auth"
	"go.encore.dev/statusauth/status"
)

// Deps are the collaborators the responder needs.
type Deps struct {
	Keys          auth.KeyLookup
	Subscriptions status.SubscriptionLookup
	Replay        status.ReplayGuard
	Clock         clock.Clock
	Logger        *zerolog.Logger
}

// Server is the HTTP status responder.
type Server struct {
	cfg        config.ServerConfig
	deps       Deps
	logger     *zerolog.Logger
	httpServer *http.Server
	addr       string
	tg         threadgroup.ThreadGroup
}

// BuildDeps builds the key store, subscription lookup and replay guard
// described by cfg.
func BuildDeps(ctx context.Context, cfg config.ServerConfig, clk clock.Clock, logger *zerolog.Logger) (Deps, error) {
	deps := Deps{Clock: clk, Logger: logger}

	switch {
	case cfg.KeyFile != "":
		store, err := keystore.LoadFile(cfg.KeyFile)
		if err != nil {
			return Deps{}, err
		}
		logger.Info().Int("identities", store.Len()).Str("path", cfg.KeyFile).Msg("loaded key file")
		deps.Keys = store
		deps.Subscriptions = store

	default:
		master, err := cfg.MasterKey()
		if err != nil {
			return Deps{}, err
		}
		derived, err := keystore.NewDerived(master, []byte(cfg.Derive.Salt), cfg.Derive.Identities...)
		if err != nil {
			return Deps{}, err
		}
		logger.Info().Int("identities", len(cfg.Derive.Identities)).Msg("using derived keys")
		deps.Keys = derived
		deps.Subscriptions = &status.FixedTerm{Keys: derived, Start: clk.Now(), Term: cfg.Derive.Term}
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return Deps{}, fmt.Errorf("unable to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		deps.Replay = replay.NewRedis(client, cfg.RedisPrefix)
	} else {
		deps.Replay = replay.NewMemory(clk)
	}

	return deps, nil
}

// New creates the responder and starts serving on cfg.Listen.
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		l := zerolog.Nop()
		deps.Logger = &l
	}
	if deps.Keys == nil || deps.Subscriptions == nil {
		return nil, errors.New("server: key and subscription lookups are required")
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger,
	}
	s.httpServer = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Closers run in reverse order after the HTTP server has drained.
	if closer, ok := deps.Replay.(interface{ Close() error }); ok {
		s.tg.AfterStop(closer.Close)
	}
	s.tg.OnStop(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Err(err).Msg("HTTP server shutdown error")
			return fmt.Errorf("error shutting down the http server: %w", err)
		}
		return nil
	})

	// The listener is created here rather than by ListenAndServe so that
	// tests can listen on ":0" and still learn the port.
	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on %s: %w", cfg.Listen, err)
	}
	s.addr = listener.Addr().String()

	err = s.tg.Launch(func() {
		s.logger.Info().Str("addr", s.addr).Msg("status responder listening")
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Err(err).Msg("HTTP server stopped unexpectedly")
		}
	})
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("unable to launch http server: %w", err)
	}

	return s, nil
}

// Addr returns the address the responder is listening on.
func (s *Server) Addr() string {
	return s.addr
}

// Close shuts the responder down, waiting for in-flight requests.
func (s *Server) Close() error {
	return s.tg.Stop()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		jsonerr.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post(auth.RequestPath, status.NewHandler(status.HandlerConfig{
		Keys:            s.deps.Keys,
		Subscriptions:   s.deps.Subscriptions,
		Clock:           s.deps.Clock,
		Logger:          s.logger,
		FreshnessWindow: s.cfg.FreshnessWindow,
		Replay:          s.deps.Replay,
	}))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonerr.Error(w, errors.New("not found"), http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonerr.Error(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
	})
	return r
}

// accessLog attaches a request ID to the request's logger and logs
// every completed request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Request-Id", reqID)

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
