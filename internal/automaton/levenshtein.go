package automaton

import "errors"

// Levenshtein automaton limits.
const MaxEditDistance = 2

var ErrEditDistanceTooLarge = errors.New("edit distance must be between 0 and 2")

// LevenshteinAutomaton accepts byte strings within edit distance ≤ maxDist of
// the target (insertions, deletions and substitutions each cost one).
//
// The DFA is compiled eagerly. Each DFA state is a row of the classic
// dynamic-programming table, with entries capped at maxDist+1, so two inputs
// reaching the same row are indistinguishable from then on.
type LevenshteinAutomaton struct {
	*tableDFA
	target  []byte
	maxDist int
}

// NewLevenshteinAutomaton creates an automaton accepting strings within
// the given edit distance of the target.
func NewLevenshteinAutomaton(target []byte, maxDist int) (*LevenshteinAutomaton, error) {
	if maxDist < 0 || maxDist > MaxEditDistance {
		return nil, ErrEditDistanceTooLarge
	}

	dfa, err := compileLevenshtein(target, maxDist)
	if err != nil {
		return nil, err
	}
	return &LevenshteinAutomaton{
		tableDFA: dfa,
		target:   target,
		maxDist:  maxDist,
	}, nil
}

// MaxDistance returns the configured edit budget.
func (a *LevenshteinAutomaton) MaxDistance() int {
	return a.maxDist
}

func compileLevenshtein(target []byte, maxDist int) (*tableDFA, error) {
	n := len(target)
	limit := byte(maxDist + 1)

	// Bytes that do not occur in the target all behave the same, so one
	// representative is enough.
	var inTarget [256]bool
	classes := make([]int, 0, n+1)
	for _, b := range target {
		if !inTarget[b] {
			inTarget[b] = true
			classes = append(classes, int(b))
		}
	}
	other := -1
	for b := 0; b < 256; b++ {
		if !inTarget[b] {
			other = b
			break
		}
	}
	if other >= 0 {
		classes = append(classes, other)
	}

	dfa := newTableDFA()
	rowToID := make(map[string]State)
	var queue [][]byte
	var queueIDs []State

	intern := func(row []byte) (State, error) {
		lowest := limit
		for _, v := range row {
			if v < lowest {
				lowest = v
			}
		}
		if lowest > byte(maxDist) {
			return DeadState, nil
		}
		key := string(row)
		if id, ok := rowToID[key]; ok {
			return id, nil
		}
		id, err := dfa.addState(row[n] <= byte(maxDist))
		if err != nil {
			return DeadState, err
		}
		rowToID[key] = id
		queue = append(queue, row)
		queueIDs = append(queueIDs, id)
		return id, nil
	}

	start := make([]byte, n+1)
	for j := range start {
		start[j] = byte(min(j, int(limit)))
	}
	if _, err := intern(start); err != nil {
		return nil, err
	}

	for len(queue) > 0 {
		row := queue[0]
		id := queueIDs[0]
		queue = queue[1:]
		queueIDs = queueIDs[1:]

		for _, c := range classes {
			next := make([]byte, n+1)
			next[0] = minByte(row[0]+1, limit)
			for j := 1; j <= n; j++ {
				cost := byte(1)
				if target[j-1] == byte(c) {
					cost = 0
				}
				// Substitution (or match), insertion, deletion.
				v := row[j-1] + cost
				v = minByte(v, row[j]+1)
				v = minByte(v, next[j-1]+1)
				next[j] = minByte(v, limit)
			}

			nextID, err := intern(next)
			if err != nil {
				return nil, err
			}
			if c == other {
				for b := 0; b < 256; b++ {
					if !inTarget[b] {
						dfa.transitions[id][b] = nextID
					}
				}
			} else {
				dfa.transitions[id][c] = nextID
			}
		}
	}

	dfa.prune()
	return dfa, nil
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}
