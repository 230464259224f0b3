// Package recorder writes one results.Record per completed gateway request
// without ever blocking or altering the client response.
//
// # Recording Flow
//
//  1. The orchestrator decides the client response
//  2. It calls Record with a Completion describing the request outcome
//  3. Record builds the results.Record and hands it to a worker
//  4. A worker writes it to the store with WriteTimeout
//
// Record never blocks. When the buffer is full the write runs on its own
// goroutine instead of being dropped, so exactly one write is attempted per
// call. A failed write is logged as a failure.RecordingFailure and counted;
// it is never retried and never returned.
//
// # Basic Usage
//
//	rec := recorder.NewRecorder(store, recorder.DefaultConfig())
//	defer rec.Close()
//
//	rec.Record(ctx, recorder.Completion{
//		RequestID: requestID,
//		Operation: "analyze",
//		Files:     []recorder.File{{Name: "lease.pdf", Size: 12288}},
//		Body:      resp.Body,
//	})
//
// Close drains the buffer and waits for every pending write.
package recorder
