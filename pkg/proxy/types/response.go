package types

// MessageResponse is the body of every non-passthrough response: failures,
// panics and acknowledgements all carry a single human readable message.
//
//	{"message": "AI service is warming up. Please retry in a moment."}
type MessageResponse struct {
	Message string `json:"message"`
}

// WakeResponse is the body of POST /api/wake.
type WakeResponse struct {
	Message string `json:"message"`

	// Started is false when a probe was already in flight.
	Started bool `json:"started"`

	// Warm reports the backend's last observed state, before this probe.
	Warm bool `json:"warm"`
}
