// Package accounts persists per-account records (role, no-show count, ban
// flag, loyalty balance) in Pebble under acct/{id} keys with JSON values.
//
// The store distinguishes ErrNotFound from transient storage failures so
// callers can apply different policies to "no such account" versus "the
// account store is unhealthy".
package accounts
