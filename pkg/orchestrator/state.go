package orchestrator

import (
	"fmt"
	"slices"
)

// State is a step of the per-request state machine.
type State int

const (
	StateInit State = iota
	StateBuffering
	StateAttempting
	StateSucceeded
	StateFailed
	StateRecording
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateBuffering:
		return "buffering"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateRecording:
		return "recording"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateInit:       {StateBuffering},
	StateBuffering:  {StateAttempting, StateFailed},
	StateAttempting: {StateSucceeded, StateFailed},
	StateSucceeded:  {StateRecording},
	StateFailed:     {StateRecording},
	StateRecording:  {StateDone},
}

// machine tracks the states one request has passed through.
type machine struct {
	state   State
	history []State
}

func newMachine() *machine {
	return &machine{state: StateInit, history: []State{StateInit}}
}

// to moves to next. An illegal transition is a programming error and panics.
func (m *machine) to(next State) {
	if !slices.Contains(transitions[m.state], next) {
		panic(fmt.Sprintf("orchestrator: illegal transition %s -> %s", m.state, next))
	}
	m.state = next
	m.history = append(m.history, next)
}
