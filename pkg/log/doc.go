// Package log provides Waitline's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by Go's
// standard library slog via a custom handler that routes records through the
// package's formatter/output pipeline, so slog-aware libraries and our own
// code produce consistent output.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"))
//	l.Info("server started", log.Str("http", ":8080"))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level + format),
// which the server populates from WAITLINE_LOG_LEVEL / WAITLINE_LOG_FORMAT.
//
// # Interop
//
// RedirectStdLog routes standard-library log output (used by Pebble and
// net/http) through a Logger. Slog returns a *slog.Logger bound to the same
// pipeline for libraries that accept one.
package log
