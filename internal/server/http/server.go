package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/waitline/waitline/internal/auth"
	"github.com/waitline/waitline/internal/coordinator"
	"github.com/waitline/waitline/internal/estimate"
	"github.com/waitline/waitline/internal/loyalty"
	"github.com/waitline/waitline/internal/notify"
	"github.com/waitline/waitline/internal/reliability"
	"github.com/waitline/waitline/internal/runtime"
	"github.com/waitline/waitline/internal/server/http/controllers"
	"github.com/waitline/waitline/pkg/log"
)

// Options configures the HTTP server. Authorizer may be nil, which runs the
// server open (no token checks).
type Options struct {
	Authorizer auth.Authorizer
	Logger     log.Logger
}

// Server is the HTTP front of a waitline instance. It owns the notify hub
// and the coordinator service; everything else comes from the runtime.
type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	hub    *notify.Hub
	svc    *coordinator.Service
	logger log.Logger
}

// New assembles the services over the runtime and registers all routes.
func New(rt *runtime.Runtime, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	cfg := rt.Config()

	hub := notify.NewHub(logger)
	svc := coordinator.New(coordinator.Options{
		Queues:      rt.Queues(),
		Reliability: reliability.NewTracker(rt.Accounts(), cfg.Policy.BanThreshold),
		Loyalty:     loyalty.NewLedger(rt.Accounts(), cfg.Policy.CompletionReward),
		Hub:         hub,
		Journal:     rt.Journal(),
		Logger:      logger,
	})
	est := estimate.NewEstimator(estimate.Options{
		ModelPath: cfg.Estimator.ModelPath,
		Timeout:   time.Duration(cfg.Estimator.TimeoutMs) * time.Millisecond,
		Logger:    logger,
	})

	mux := http.NewServeMux()
	controllers.NewControllerRegistry(rt, svc, hub, est, opts.Authorizer).RegisterAllRoutes(mux)

	s := &Server{
		rt:     rt,
		hub:    hub,
		svc:    svc,
		logger: logger.With(log.Component("http")),
		srv: &http.Server{
			Handler:           cors(mux),
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Slog().Handler(), slog.LevelError),
		},
	}
	return s
}

// ListenAndServe serves until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http listening", log.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close shuts the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Addr returns the bound listener address, empty before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
