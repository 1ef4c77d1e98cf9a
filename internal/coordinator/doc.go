// Package coordinator owns the queue mutation protocol. Transports call the
// Service; the Service consults reliability before admission, applies the
// mutation to the queue store, applies loyalty and reliability side effects,
// and finishes every successful mutation with exactly one snapshot broadcast
// through the notify hub.
package coordinator
