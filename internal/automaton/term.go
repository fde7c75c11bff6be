package automaton

// TermAutomaton accepts exactly one term. Term queries run through the same
// matching path as pattern queries by using it.
type TermAutomaton struct {
	term []byte
}

// NewTermAutomaton creates an automaton that accepts only term.
func NewTermAutomaton(term []byte) *TermAutomaton {
	return &TermAutomaton{term: term}
}

func (a *TermAutomaton) Start() State {
	return 1
}

func (a *TermAutomaton) Step(state State, b byte) State {
	if state == DeadState {
		return DeadState
	}
	pos := int(state) - 1
	if pos < len(a.term) && a.term[pos] == b {
		return state + 1
	}
	return DeadState
}

func (a *TermAutomaton) IsAccept(state State) bool {
	return int(state)-1 == len(a.term)
}

func (a *TermAutomaton) CanMatch(state State) bool {
	return state != DeadState
}
