// Package orchestrator drives one client call through buffering, the
// upstream attempt chain and result recording.
//
// Every call walks the same state machine:
//
//	Init → (Buffering) → Attempting → {Succeeded, Failed} → Recording → Done
//
// Buffering happens only for upload operations. A buffering failure skips
// Attempting and the gateway is never called. Recording runs on every path
// once the client response is decided, and its outcome never changes that
// response.
//
// By default the attempt chain runs on a context detached from the client
// connection, so a disconnect neither aborts upstream work nor loses the
// record. Config.CancelOnDisconnect propagates client cancellation instead.
package orchestrator
