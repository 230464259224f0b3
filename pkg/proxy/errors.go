package proxy

import (
	"net/http"

	"lexiclaire/gateway/pkg/failure"
)

// WriteError renders err as {"message": ...} with the status its failure
// kind maps to. Errors that are not *failure.Error become 500.
//
// Raw upstream bodies and internal causes never reach the client; only the
// failure's client message does.
func WriteError(w http.ResponseWriter, err error) {
	fe := failure.As(err)
	WriteMessage(w, fe.ClientStatus(), fe.ClientMessage())
}

// WriteMethodNotAllowed answers a request with the wrong method.
func WriteMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
