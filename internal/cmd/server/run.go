package serverrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/waitline/waitline/internal/auth"
	cfgpkg "github.com/waitline/waitline/internal/config"
	"github.com/waitline/waitline/internal/runtime"
	httpserver "github.com/waitline/waitline/internal/server/http"
	pebblestore "github.com/waitline/waitline/internal/storage/pebble"
	logpkg "github.com/waitline/waitline/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers that
	// pass a plain context still get clean shutdown on SIGINT/SIGTERM.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.HTTPAddr
	}

	// Build process-wide logger; defaults: level=info, format=text
	lcfg := &logpkg.Config{
		Level:  getenvDefault("WAITLINE_LOG_LEVEL", "info"),
		Format: getenvDefault("WAITLINE_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(lcfg)
	if err != nil {
		procLogger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	authz, err := buildAuthorizer(opts.Config.Auth)
	if err != nil {
		return err
	}
	mode := "open"
	if authz != nil {
		mode = "token"
	}

	procLogger.Info("Starting waitline server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("auth", mode),
		logpkg.Str("redis", opts.Config.Redis.Addr),
		logpkg.Str("level", lcfg.Level),
		logpkg.Str("format", lcfg.Format),
	)

	hsrv := httpserver.New(rt, httpserver.Options{Authorizer: authz, Logger: procLogger})
	errCh := make(chan error, 1)
	go func() { errCh <- hsrv.ListenAndServe(sctx, opts.HTTPAddr) }()

	select {
	case <-sctx.Done():
	case err := <-errCh:
		if err != nil && sctx.Err() == nil {
			hsrv.Close()
			return err
		}
	}
	hsrv.Close()
	return nil
}

// buildAuthorizer returns nil when no keys are configured (open mode).
func buildAuthorizer(cfg cfgpkg.AuthConfig) (auth.Authorizer, error) {
	if cfg.HashKey == "" {
		return nil, nil
	}
	hashKey, blockKey, err := auth.ParseKeys(cfg.HashKey, cfg.BlockKey)
	if err != nil {
		return nil, fmt.Errorf("auth keys: %w", err)
	}
	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	codec, err := auth.NewCodec(hashKey, blockKey, ttl)
	if err != nil {
		return nil, fmt.Errorf("auth codec: %w", err)
	}
	return codec, nil
}
