package automaton

// tableDFA is a compiled transition table shared by the wildcard and
// Levenshtein automata. State 0 is dead and state 1 is the start state.
type tableDFA struct {
	// transitions[state][byte] = next state
	transitions [][256]State
	accepting   []bool
	live        []bool
}

func newTableDFA() *tableDFA {
	return &tableDFA{
		transitions: make([][256]State, 1), // dead state loops to itself
		accepting:   []bool{false},
	}
}

// addState appends a state and returns its ID.
func (d *tableDFA) addState(accepting bool) (State, error) {
	id := State(len(d.transitions))
	if int(id) >= MaxDFAStates {
		return DeadState, ErrDFAStateLimitExceeded
	}
	d.transitions = append(d.transitions, [256]State{})
	d.accepting = append(d.accepting, accepting)
	return id, nil
}

func (d *tableDFA) Start() State {
	return 1
}

func (d *tableDFA) Step(state State, b byte) State {
	if int(state) >= len(d.transitions) {
		return DeadState
	}
	return d.transitions[state][b]
}

func (d *tableDFA) IsAccept(state State) bool {
	if int(state) >= len(d.accepting) {
		return false
	}
	return d.accepting[state]
}

func (d *tableDFA) CanMatch(state State) bool {
	if int(state) >= len(d.live) {
		return false
	}
	return d.live[state]
}

// prune redirects every transition into a state that cannot reach an
// accepting state to DeadState and records liveness, which makes CanMatch
// exact. It must run once after construction.
func (d *tableDFA) prune() {
	n := len(d.transitions)
	live := make([]bool, n)
	for s := 1; s < n; s++ {
		live[s] = d.accepting[s]
	}

	// Fixed point over reverse reachability.
	for changed := true; changed; {
		changed = false
		for s := 1; s < n; s++ {
			if live[s] {
				continue
			}
			for b := 0; b < 256; b++ {
				if live[d.transitions[s][b]] {
					live[s] = true
					changed = true
					break
				}
			}
		}
	}

	for s := 1; s < n; s++ {
		for b := 0; b < 256; b++ {
			if !live[d.transitions[s][b]] {
				d.transitions[s][b] = DeadState
			}
		}
	}
	d.live = live
}
