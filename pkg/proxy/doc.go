// Package proxy holds the request parsing and response writing shared by the
// gateway's client-facing handlers.
//
// Every response is JSON. A successful analyze, compare or chat call returns
// the Analysis Backend body unmodified; everything else returns a single
// message:
//
//	{"message": "AI service is warming up. Please retry in a moment."}
//
// Status and message come from the failure taxonomy (see pkg/failure), so raw
// upstream bodies and internal errors never reach the client.
//
// # Subpackages
//
//   - handlers: analyze, compare, chat and wake endpoints
//   - middleware: request ID, logging, CORS and panic recovery
//   - types: JSON request and response bodies
package proxy
