// Package handlers provides the HTTP handlers of the gateway's client-facing
// API.
//
// # Endpoints
//
//   - POST /api/analyze: multipart "document" (or "file"), AnalyzeHandler
//   - POST /api/compare: multipart "fileA" and "fileB", CompareHandler
//   - POST /api/chat: JSON question and history, ChatHandler
//   - POST /api/wake: background wake probe, WakeHandler
//
// Analyze, compare and chat delegate to the orchestrator, which buffers the
// upload, drives the retrying gateway client and records the outcome. The
// handler only renders the decision:
//
//	200 application/json   upstream body, unmodified
//	400 {"message": ...}   unreadable upload, malformed JSON, backend rejection
//	413 {"message": ...}   upload over the size limit
//	502 {"message": ...}   backend still cold after every retry
//
// Wake never waits for the backend and always answers 202.
package handlers
