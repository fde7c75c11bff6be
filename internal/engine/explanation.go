package engine

import (
	"fmt"
	"strings"
)

// Explanation describes how a score was computed.
type Explanation struct {
	Value       float32        `json:"value"`
	Description string         `json:"description"`
	Details     []*Explanation `json:"details,omitempty"`
}

// NewExplanation creates a leaf explanation.
func NewExplanation(description string, value float32) *Explanation {
	return &Explanation{Value: value, Description: description}
}

// AddDetail appends a sub-explanation.
func (e *Explanation) AddDetail(d *Explanation) {
	e.Details = append(e.Details, d)
}

// String renders the explanation tree, one node per line.
func (e *Explanation) String() string {
	var sb strings.Builder
	e.write(&sb, 0)
	return sb.String()
}

func (e *Explanation) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "%g = %s\n", e.Value, e.Description)
	for _, d := range e.Details {
		d.write(sb, depth+1)
	}
}
