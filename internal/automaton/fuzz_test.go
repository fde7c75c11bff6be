package automaton

import (
	"testing"
)

// runToEnd drives an automaton over input and must not panic.
func runToEnd(a Automaton, input string) {
	state := a.Start()
	for i := 0; i < len(input); i++ {
		state = a.Step(state, input[i])
		if !a.CanMatch(state) {
			break
		}
	}
	_ = a.IsAccept(state)
}

func FuzzWildcardAutomaton(f *testing.F) {
	f.Add("hel*", "hello")
	f.Add("*orld", "world")
	f.Add("h?llo", "hello")
	f.Add("*", "anything")
	f.Add("", "")
	f.Add("a*b*c", "abc")

	f.Fuzz(func(t *testing.T, pattern, input string) {
		if len(pattern) > 32 {
			return
		}
		auto, err := NewWildcardAutomaton([]byte(pattern))
		if err != nil {
			return
		}
		runToEnd(auto, input)
	})
}

func FuzzLevenshteinAutomaton(f *testing.F) {
	f.Add("hello", 1, "hallo")
	f.Add("cat", 0, "cat")
	f.Add("test", 2, "tset")
	f.Add("", 1, "a")

	f.Fuzz(func(t *testing.T, target string, maxDist int, input string) {
		if maxDist < 0 || maxDist > MaxEditDistance || len(target) > 24 {
			return
		}
		auto, err := NewLevenshteinAutomaton([]byte(target), maxDist)
		if err != nil {
			return
		}
		got := Matches(auto, []byte(input))
		want := editDistance(target, input) <= maxDist
		if got != want {
			t.Errorf("target=%q input=%q dist=%d: got %v, want %v", target, input, maxDist, got, want)
		}
	})
}

func FuzzPrefixAutomaton(f *testing.F) {
	f.Add("hel", "hello")
	f.Add("", "anything")
	f.Add("abc", "ab")

	f.Fuzz(func(t *testing.T, prefix, input string) {
		if len(prefix) > 1000 {
			return
		}
		runToEnd(NewPrefixAutomaton([]byte(prefix)), input)
	})
}
