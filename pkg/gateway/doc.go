// Package gateway is the client for the Analysis Backend.
//
// # Overview
//
// A Client owns one keep-alive connection pool shared by every logical call,
// a timeout ceiling per request class, and the retry policy. It exposes one
// method per upstream operation:
//
//   - Analyze: multipart upload of one document to POST /analyze
//   - Chat: JSON question about an analyzed document to POST /chat
//   - Compare: multipart upload of two versions to POST /compare
//   - Wake: zero-payload probe of GET / with a short ceiling
//
// Analyze, Chat and Compare run through retry.Do; each attempt gets its own
// context bounded by the class ceiling and reads the request body through a
// fresh reader, so the body is built once per logical call.
//
// # Cold starts
//
// The backend scales to zero. WakeAsync fires a background probe and returns
// immediately; concurrent calls coalesce into one in-flight probe and its
// failure is only logged. With PrewakeOnUpload set, Analyze and Compare fire
// WakeAsync before their first attempt. KeepWarm probes on a cron schedule.
//
// The client also tracks warmth: consecutive failures, last success and
// last error across all calls, reported by IsWarm and Warmth.
//
// # Basic Usage
//
//	client, err := gateway.New(gateway.Config{BaseURL: "http://analysis:8000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Analyze(ctx, payload)
//	if err != nil {
//		var fe *failure.Error
//		errors.As(err, &fe) // PermanentUpstream or RetriesExhausted
//	}
//	w.Write(resp.Body) // upstream JSON, unmodified
package gateway
