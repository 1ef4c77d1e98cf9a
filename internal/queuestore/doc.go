// Package queuestore holds each venue's ordered waiting list behind a small
// Store interface with two implementations: an embedded in-memory store for
// single-binary deployments and a Redis-list store (queue:{venue} keys) for
// instances that share queue state.
package queuestore
