package automaton

// PrefixAutomaton accepts all strings starting with a given prefix.
//
// States: 1..len(prefix)+1. State i+1 has matched prefix[:i]; the last state
// accepts and loops on any byte.
type PrefixAutomaton struct {
	prefix []byte
}

// NewPrefixAutomaton creates an automaton that accepts strings with the given prefix.
func NewPrefixAutomaton(prefix []byte) *PrefixAutomaton {
	return &PrefixAutomaton{prefix: prefix}
}

func (a *PrefixAutomaton) Start() State {
	return 1
}

func (a *PrefixAutomaton) Step(state State, b byte) State {
	if state == DeadState {
		return DeadState
	}
	pos := int(state) - 1
	if pos < len(a.prefix) {
		if b == a.prefix[pos] {
			return state + 1
		}
		return DeadState
	}
	return state
}

func (a *PrefixAutomaton) IsAccept(state State) bool {
	return state != DeadState && int(state)-1 >= len(a.prefix)
}

func (a *PrefixAutomaton) CanMatch(state State) bool {
	return state != DeadState
}
