package termdict

import (
	"AutomatonSearch/internal/automaton"
)

// Stream enumerates, in ascending order, the dictionary terms accepted by an
// automaton. It is an Automaton ∩ Dictionary intersection: the automaton is
// driven alongside the walk, and as soon as a prefix reaches a state that
// cannot match, every term under that prefix is skipped with a single Seek.
//
// A Stream is single-use and not safe for concurrent use; the automaton it
// drives may be shared.
type Stream[A automaton.Automaton] struct {
	automaton A
	cursor    Cursor

	// states[i] is the automaton state after consuming key[:i].
	states []automaton.State
	key    []byte
	info   TermInfo

	started bool
	done    bool
	err     error

	visited int
	matched int
}

// Search opens a Stream over dict filtered by a.
func Search[A automaton.Automaton](dict Dictionary, a A) (*Stream[A], error) {
	cursor, err := dict.Cursor()
	if err != nil {
		return nil, err
	}
	start := a.Start()
	return &Stream[A]{
		automaton: a,
		cursor:    cursor,
		states:    []automaton.State{start},
		done:      !a.CanMatch(start),
	}, nil
}

// Advance moves to the next accepted term. It returns false when the
// dictionary is exhausted or the cursor failed; check Err afterwards.
func (s *Stream[A]) Advance() bool {
	if s.done {
		return false
	}

	var (
		term []byte
		info TermInfo
		ok   bool
	)
	if !s.started {
		s.started = true
		term, info, ok = s.cursor.Seek(nil)
	} else {
		term, info, ok = s.cursor.Next()
	}

walk:
	for ok {
		s.visited++

		// Reuse the states of the prefix shared with the previous term.
		depth := min(commonPrefixLen(s.key, term), len(s.states)-1)
		s.states = s.states[:depth+1]

		for i := depth; i < len(term); i++ {
			next := s.automaton.Step(s.states[i], term[i])
			if !s.automaton.CanMatch(next) {
				s.key = append(s.key[:0], term[:i]...)
				succ := prefixSuccessor(term[:i+1])
				if succ == nil {
					break walk
				}
				term, info, ok = s.cursor.Seek(succ)
				continue walk
			}
			s.states = append(s.states, next)
		}

		s.key = append(s.key[:0], term...)
		if s.automaton.IsAccept(s.states[len(term)]) {
			s.info = info
			s.matched++
			return true
		}
		term, info, ok = s.cursor.Next()
	}

	s.done = true
	s.err = s.cursor.Err()
	return false
}

// Key returns the current accepted term. Valid until the next Advance.
func (s *Stream[A]) Key() []byte {
	return s.key
}

// Value returns the TermInfo of the current accepted term.
func (s *Stream[A]) Value() TermInfo {
	return s.info
}

// Err returns the error that ended the stream, if any.
func (s *Stream[A]) Err() error {
	return s.err
}

// Close releases the underlying cursor.
func (s *Stream[A]) Close() error {
	s.done = true
	return s.cursor.Close()
}

// Visited returns the number of dictionary entries the cursor landed on.
func (s *Stream[A]) Visited() int {
	return s.visited
}

// Matched returns the number of accepted terms produced so far.
func (s *Stream[A]) Matched() int {
	return s.matched
}

func commonPrefixLen(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// prefixSuccessor returns the smallest key greater than every key that
// starts with prefix, or nil if no such key exists (prefix is all 0xFF).
func prefixSuccessor(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xFF {
			succ := make([]byte, i+1)
			copy(succ, prefix[:i+1])
			succ[i]++
			return succ
		}
	}
	return nil
}
