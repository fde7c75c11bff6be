package automaton

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Wildcard pattern limits.
const MaxWildcardPatternLength = 256

var (
	ErrWildcardPatternTooLong = errors.New("wildcard pattern exceeds maximum length")
	ErrDFAStateLimitExceeded  = errors.New("DFA state limit exceeded during construction")
)

// WildcardAutomaton accepts strings matching a wildcard pattern.
// Supports '*' (zero or more bytes) and '?' (exactly one byte).
//
// Construction converts the pattern to a DFA via NFA subset construction.
type WildcardAutomaton struct {
	*tableDFA
}

// NewWildcardAutomaton compiles a wildcard pattern into a DFA.
func NewWildcardAutomaton(pattern []byte) (*WildcardAutomaton, error) {
	if len(pattern) > MaxWildcardPatternLength {
		return nil, ErrWildcardPatternTooLong
	}

	dfa, err := subsetConstruct(buildWildcardNFA(pattern))
	if err != nil {
		return nil, err
	}
	return &WildcardAutomaton{tableDFA: dfa}, nil
}

// --- NFA representation for wildcard patterns ---

// The wildcard NFA is linear: state i has consumed pattern[:i]. A '*' at
// pattern[i] makes state i loop on every byte and adds ε from i to i+1.
type wildcardNFA struct {
	pattern []byte
}

func buildWildcardNFA(pattern []byte) *wildcardNFA {
	return &wildcardNFA{pattern: pattern}
}

func (n *wildcardNFA) accepting(s int) bool {
	return s == len(n.pattern)
}

// closure adds the ε-successors of every state in set.
func (n *wildcardNFA) closure(set map[int]struct{}) {
	stack := make([]int, 0, len(set))
	for s := range set {
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s < len(n.pattern) && n.pattern[s] == '*' {
			if _, ok := set[s+1]; !ok {
				set[s+1] = struct{}{}
				stack = append(stack, s+1)
			}
		}
	}
}

// step returns the ε-closed successor set of set on input b.
func (n *wildcardNFA) step(set map[int]struct{}, b byte) map[int]struct{} {
	next := make(map[int]struct{})
	for s := range set {
		if s >= len(n.pattern) {
			continue
		}
		switch n.pattern[s] {
		case '*':
			next[s] = struct{}{}
		case '?':
			next[s+1] = struct{}{}
		default:
			if n.pattern[s] == b {
				next[s+1] = struct{}{}
			}
		}
	}
	n.closure(next)
	return next
}

// setKey returns a canonical identity for a state set.
func setKey(set map[int]struct{}) string {
	ids := make([]int, 0, len(set))
	for s := range set {
		ids = append(ids, s)
	}
	sort.Ints(ids)
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(strconv.Itoa(id))
		sb.WriteByte(',')
	}
	return sb.String()
}

// subsetConstruct converts the NFA to a DFA using the subset construction algorithm.
// Returns an error if the DFA exceeds MaxDFAStates.
func subsetConstruct(n *wildcardNFA) (*tableDFA, error) {
	isAccepting := func(set map[int]struct{}) bool {
		for s := range set {
			if n.accepting(s) {
				return true
			}
		}
		return false
	}

	dfa := newTableDFA()

	startSet := map[int]struct{}{0: {}}
	n.closure(startSet)
	startID, err := dfa.addState(isAccepting(startSet))
	if err != nil {
		return nil, err
	}

	setToID := map[string]State{setKey(startSet): startID}
	queue := []map[int]struct{}{startSet}
	queueIDs := []State{startID}

	for len(queue) > 0 {
		currentSet := queue[0]
		currentID := queueIDs[0]
		queue = queue[1:]
		queueIDs = queueIDs[1:]

		for b := 0; b < 256; b++ {
			nextSet := n.step(currentSet, byte(b))
			if len(nextSet) == 0 {
				continue // DeadState
			}

			key := setKey(nextSet)
			id, exists := setToID[key]
			if !exists {
				id, err = dfa.addState(isAccepting(nextSet))
				if err != nil {
					return nil, err
				}
				setToID[key] = id
				queue = append(queue, nextSet)
				queueIDs = append(queueIDs, id)
			}
			dfa.transitions[currentID][b] = id
		}
	}

	dfa.prune()
	return dfa, nil
}
