// Package notify fans queue snapshots out to live subscribers.
//
// Channel identity is the venue id. Delivery is best-effort: each
// subscription has a small buffer and publishes skip subscribers whose
// buffers are full; nothing is persisted or retried. Transports implement
// the Sink interface (SSE today) and membership ends with the sink's
// context.
package notify
