// Package auth verifies bearer credentials for privileged queue operations.
//
// Tokens are securecookie-encoded Identity values signed with a hash key
// and optionally encrypted with a block key, both supplied hex-encoded via
// configuration. Issuance is operator tooling only; the server itself just
// verifies.
package auth
