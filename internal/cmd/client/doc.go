// Package client provides the `waitline` command-line client.
//
// The CLI talks to the waitline HTTP API to perform common queue
// operations from a terminal. It is primarily intended for developers
// and operators.
//
// Installation
//
//	go install github.com/waitline/waitline/cmd/waitline@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080 and can be overridden with the
// WAITLINE_HTTP environment variable. Authenticated calls read the
// bearer token from WAITLINE_TOKEN.
//
// Usage
//
//	waitline queue join --venue salon-1 --account ana
//	waitline queue state --venue salon-1
//	waitline queue watch --venue salon-1
//	waitline queue noshow --venue salon-1 --account ana
//	waitline queue complete --venue salon-1 --account ana
//	waitline queue history --venue salon-1 --limit 20
//
//	waitline account ensure --account ana --display-name "Ana"
//	waitline account get --account ana
//
//	waitline waittime --venue salon-1 --avg-service-time 12
//
//	# Mint a token offline with the server's configured keys
//	waitline token mint --hash-key HEX --block-key HEX --account boss --role owner
//
// Notes
//
//   - watch connects to the SSE endpoint and prints one JSON snapshot
//     per queue mutation until interrupted.
//   - noshow and complete require an owner or admin token when the
//     server runs with auth keys configured.
package client
