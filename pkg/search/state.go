// Package search drives one lookup from user input to rendered output:
// it validates the input, resolves the endpoint, fetches, expands reference
// lists and hands every display value to a single Renderer. Each search
// runs under a fresh generation so late results of an abandoned search are
// never rendered.
package search

// State is the lifecycle state of a Session.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateSuccess    State = "success"
	StateRendered   State = "rendered"
	StateFailure    State = "failure"
	StateErrorShown State = "error_shown"
)

// transitions lists the allowed moves. Clear may move any state to Idle.
var transitions = map[State][]State{
	StateIdle:       {StateLoading, StateFailure},
	StateLoading:    {StateSuccess, StateFailure},
	StateSuccess:    {StateRendered},
	StateFailure:    {StateErrorShown},
	StateRendered:   {StateIdle},
	StateErrorShown: {StateIdle},
}

// CanTransition reports whether from -> to is a valid move.
func CanTransition(from, to State) bool {
	if to == StateIdle {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
