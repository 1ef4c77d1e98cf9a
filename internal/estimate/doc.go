// Package estimate predicts expected wait minutes for a venue's queue.
//
// Prediction is two-tier: an optional learned model artifact (JSON linear
// weights over the ordered feature vector) loaded once per process, with an
// exact deterministic fallback of max(0, queue_length) * max(1,
// avg_service_time). Model load failures and per-request timeouts degrade to
// the fallback and are never surfaced to callers.
package estimate
