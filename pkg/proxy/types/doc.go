// Package types defines the JSON bodies of the gateway's client-facing API.
//
// Successful analyze, compare and chat calls pass the Analysis Backend body
// through unmodified, so only the request side of chat and the gateway's own
// responses are typed here:
//
//   - ChatRequest: body of POST /api/chat, converted with Gateway()
//   - MessageResponse: {"message": ...} for every failure
//   - WakeResponse: acknowledgement of POST /api/wake
package types
