package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/waitline/waitline/internal/notify"
)

// sseSink implements notify.Sink over Server-Sent Events.
//
// Each published snapshot becomes one SSE data event so web clients can
// re-render the venue's queue without polling.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send writes the snapshot as an SSE data event and flushes it to the client.
func (s sseSink) Send(snap notify.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}
