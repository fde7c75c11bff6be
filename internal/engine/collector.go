package engine

import "container/heap"

// ScoredDoc represents a document with its score.
type ScoredDoc struct {
	DocID uint32  `json:"doc"`
	Score float32 `json:"score"`
}

// TopKCollector collects the top-K scoring documents using a min-heap.
// Equal scores are ranked by ascending doc id, so results are deterministic.
type TopKCollector struct {
	k     int
	h     scoreHeap
	total int
}

// NewTopKCollector creates a collector for the top K documents.
func NewTopKCollector(k int) *TopKCollector {
	if k <= 0 {
		k = 10
	}
	return &TopKCollector{
		k: k,
		h: make(scoreHeap, 0, k),
	}
}

// Collect adds a document to the collector if it qualifies for top-K.
func (c *TopKCollector) Collect(docID uint32, score float32) {
	c.total++
	d := ScoredDoc{DocID: docID, Score: score}
	if c.h.Len() < c.k {
		heap.Push(&c.h, d)
	} else if worse(c.h[0], d) {
		c.h[0] = d
		heap.Fix(&c.h, 0)
	}
}

// CollectScorer drains s into the collector and returns the number of docs seen.
func (c *TopKCollector) CollectScorer(s Scorer) int {
	n := 0
	for s.Advance() {
		c.Collect(s.Doc(), s.Score())
		n++
	}
	return n
}

// MinScore returns the current minimum score in the collector.
// Returns 0 if fewer than K documents have been collected.
func (c *TopKCollector) MinScore() float32 {
	if c.h.Len() < c.k {
		return 0
	}
	return c.h[0].Score
}

// Len returns the number of documents held.
func (c *TopKCollector) Len() int {
	return c.h.Len()
}

// Total returns the number of documents offered, kept or not.
func (c *TopKCollector) Total() int {
	return c.total
}

// Results returns the collected documents sorted descending by score.
// The collector is empty afterwards.
func (c *TopKCollector) Results() []ScoredDoc {
	result := make([]ScoredDoc, c.h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&c.h).(ScoredDoc)
	}
	return result
}

// worse reports whether a ranks below b.
func worse(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.DocID > b.DocID
}

// scoreHeap is a min-heap of ScoredDoc with the lowest-ranked doc on top.
type scoreHeap []ScoredDoc

func (h scoreHeap) Len() int           { return len(h) }
func (h scoreHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h scoreHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x any)        { *h = append(*h, x.(ScoredDoc)) }
func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
