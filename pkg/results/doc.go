// Package results defines the outcome records the gateway persists after
// every completed request, and the storage contract their backends implement.
//
// Persistence is a secondary concern. A Record is written once per request,
// after the client response has been decided, by the recorder subpackage;
// write failures are logged and counted but never retried and never change
// what the client received.
//
// Subpackages:
//
//   - storage: memory, sqlite, redis and http backends
//   - recorder: asynchronous, non-blocking writer and record construction
//   - retention: scheduled pruning of old records
package results
