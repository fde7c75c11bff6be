package integration

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"AutomatonSearch/internal/engine"
	"AutomatonSearch/internal/query"
	"AutomatonSearch/internal/testutil"
)

func TestConcurrentScorers_SharedWeight(t *testing.T) {
	s := testutil.NewStore(t)
	seg := testutil.StoredSegment(t, s, testutil.BuildSegment(t, testutil.Corpus(500, 7)))

	w, err := query.NewWeight(&query.FuzzyQuery{Field: "body", Term: "kalomi", MaxDistance: 2}, testutil.BasicSchema(), nil)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := w.Scorer(seg)
	if err != nil {
		t.Fatal(err)
	}
	want := engine.Collect(sc)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc, err := w.Scorer(seg)
			if err != nil {
				errs <- err
				return
			}
			if got := engine.Collect(sc); !slices.Equal(got, want) {
				errs <- fmt.Errorf("got %d docs, want %d", len(got), len(want))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("reader error: %v", err)
	}
}

func TestConcurrentReadersWithWriter(t *testing.T) {
	s := testutil.NewStore(t)
	mem := testutil.BuildSegment(t, testutil.Corpus(200, 3))
	seg := testutil.StoredSegment(t, s, mem)

	w, err := query.NewWeight(&query.PrefixQuery{Field: "title", Prefix: "ra"}, testutil.BasicSchema(), nil)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := w.Scorer(mem)
	if err != nil {
		t.Fatal(err)
	}
	want := engine.Collect(sc)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	// Writer keeps adding segments while readers query the first one.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			if _, err := s.CreateSegment(mem); err != nil {
				errs <- err
				return
			}
		}
	}()

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc, err := w.Scorer(seg)
			if err != nil {
				errs <- err
				return
			}
			if got := engine.Collect(sc); !slices.Equal(got, want) {
				errs <- fmt.Errorf("got %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("error: %v", err)
	}

	infos, err := s.Segments()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 11 {
		t.Errorf("segments = %d, want 11", len(infos))
	}
}
