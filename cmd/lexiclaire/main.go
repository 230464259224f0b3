// Lexiclaire is a resilient gateway in front of the contract Analysis
// Backend.
//
// It accepts document uploads and chat questions from clients, forwards
// them to a backend that may be cold or briefly unavailable, retries
// transient failures on a fixed schedule, and records the outcome of every
// completed request.
//
// Usage:
//
//	# Start the gateway
//	lexiclaire run --config config.yaml
//
//	# Check a configuration file
//	lexiclaire validate --config config.yaml
//
//	# Wake the backend before a demo
//	lexiclaire wake --attempts 5
//
//	# Show recent failed requests
//	lexiclaire records list --status failed --limit 20
package main

func main() {
	Execute()
}
