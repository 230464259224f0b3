// Package upload buffers inbound file uploads and builds outbound multipart
// bodies with a precomputed Content-Length.
//
// Streaming a spooled temp file straight into a slow upstream aborts
// mid-transfer under latency, so every upload is read fully into memory
// first. The cost is bounded by Config.MaxBytes (25 MiB by default); larger
// uploads fail with a failure.PayloadTooLarge error before any network call.
//
// Ownership is scoped to one request. A Form owns the temporary storage the
// multipart parser created, and every Payload taken from it. Form.Release
// removes that storage and releases each payload exactly once, whichever exit
// path the request takes:
//
//	form, err := upload.ParseForm(r, cfg)
//	if err != nil {
//		return err
//	}
//	defer form.Release()
//
//	doc, err := form.Payload("document", "file")
//	if err != nil {
//		return err // *failure.Error: PayloadTooLarge or UnreadableUpload
//	}
//
//	body, err := upload.NewMultipartBody(upload.Part{
//		Field: "document", Filename: doc.Filename, ContentType: doc.ContentType, Data: doc.Bytes(),
//	})
package upload
