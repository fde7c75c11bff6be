package automaton

// State represents a state in a deterministic finite automaton.
type State uint32

// DeadState is the sink state from which no accepting state is reachable.
const DeadState State = 0

// MaxDFAStates bounds the number of states a compiled DFA may have.
const MaxDFAStates = 10000

// Automaton is the capability contract every term acceptor satisfies.
// Term matching walks the term dictionary and drives the automaton one
// byte at a time; it never needs to know what pattern the automaton encodes.
//
// Properties:
//   - Deterministic: single transition per (state, input)
//   - Total: every (state, byte) pair has a transition, possibly to DeadState
//   - Immutable: the traversal holds the current State, the automaton holds none,
//     so one instance may be shared by any number of concurrent traversals
type Automaton interface {
	// Start returns the initial state.
	Start() State

	// Step returns the next state for the given input byte.
	// Returns DeadState if no transition exists.
	Step(state State, b byte) State

	// IsAccept returns true if the state is an accepting state.
	IsAccept(state State) bool

	// CanMatch returns true if any accepting state is reachable from this state.
	// A false result lets the dictionary walk skip every term under the
	// current prefix.
	CanMatch(state State) bool
}

// Matches runs term through a and reports whether it is accepted.
func Matches(a Automaton, term []byte) bool {
	state := a.Start()
	for _, b := range term {
		if !a.CanMatch(state) {
			return false
		}
		state = a.Step(state, b)
	}
	return a.IsAccept(state)
}
