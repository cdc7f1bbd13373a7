package record

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of one record assembly.
type State int

const (
	// StateLoadingMetadata - reading the metadata artifact.
	StateLoadingMetadata State = iota
	// StateLocatingSiblings - listing recording, call-metadata and transcript siblings.
	StateLocatingSiblings
	// StateBuildingTranscript - loading and flattening the transcript sibling.
	StateBuildingTranscript
	// StateEnriching - running the prompt set.
	StateEnriching
	// StateWriting - persisting the output record.
	StateWriting
	// StateDone - record written. Terminal.
	StateDone
	// StateFailed - assembly aborted before the write completed. Terminal.
	// Nothing is written once a record fails.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoadingMetadata:
		return "LOADING_METADATA"
	case StateLocatingSiblings:
		return "LOCATING_SIBLINGS"
	case StateBuildingTranscript:
		return "BUILDING_TRANSCRIPT"
	case StateEnriching:
		return "ENRICHING"
	case StateWriting:
		return "WRITING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (DONE or FAILED).
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// ErrIllegalTransition is returned when a transition skips or reverses a step.
var ErrIllegalTransition = errors.New("illegal record state transition")

// Lifecycle manages the state machine for one record.
//
// State transitions:
//
//	LOADING_METADATA → LOCATING_SIBLINGS ─┬─→ BUILDING_TRANSCRIPT → ENRICHING ─┬─→ WRITING → DONE
//	                                      └────────────────────────────────────┘
//
// Any non-terminal state may move to FAILED.
type Lifecycle struct {
	mu    sync.RWMutex
	key   string
	state State
}

var transitions = map[State][]State{
	StateLoadingMetadata:    {StateLocatingSiblings},
	StateLocatingSiblings:   {StateBuildingTranscript, StateWriting},
	StateBuildingTranscript: {StateEnriching},
	StateEnriching:          {StateWriting},
	StateWriting:            {StateDone},
}

// NewLifecycle creates a lifecycle in LOADING_METADATA for the metadata key.
func NewLifecycle(key string) *Lifecycle {
	return &Lifecycle{
		key:   key,
		state: StateLoadingMetadata,
	}
}

// Key returns the metadata object key.
func (l *Lifecycle) Key() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.key
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Advance moves to the next state if the transition is allowed.
func (l *Lifecycle) Advance(to State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, next := range transitions[l.state] {
		if next == to {
			l.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s", ErrIllegalTransition, l.state, to)
}

// Fail moves to FAILED and returns the state the failure happened in.
// It returns false if the lifecycle was already terminal.
func (l *Lifecycle) Fail() (State, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	at := l.state
	if at.IsTerminal() {
		return at, false
	}
	l.state = StateFailed
	return at, true
}
