package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"AutomatonSearch/internal/analysis"
	"AutomatonSearch/internal/engine"
	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/query"
	"AutomatonSearch/internal/store"
)

var ErrQueryFlags = errors.New("exactly one of --term, --prefix, --wildcard or --fuzzy is required")

// queryFlags are shared by search and explain.
type queryFlags struct {
	field    string
	term     string
	prefix   string
	wildcard string
	fuzzy    string
	distance int
}

func (f *queryFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.field, "field", "", "field to match against")
	c.Flags().StringVar(&f.term, "term", "", "exact term")
	c.Flags().StringVar(&f.prefix, "prefix", "", "term prefix")
	c.Flags().StringVar(&f.wildcard, "wildcard", "", "pattern with * and ?")
	c.Flags().StringVar(&f.fuzzy, "fuzzy", "", "term matched within --distance edits")
	c.Flags().IntVar(&f.distance, "distance", 1, "maximum edit distance for --fuzzy")
	_ = c.MarkFlagRequired("field")
}

// build turns the flags into a query. The query text goes through the
// field analyzer's Normalize so it meets indexed terms in the same form.
func (f *queryFlags) build(schema *index.Schema) (query.Query, error) {
	set := 0
	for _, v := range []string{f.term, f.prefix, f.wildcard, f.fuzzy} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, ErrQueryFlags
	}

	field, err := schema.Field(f.field)
	if err != nil {
		return nil, err
	}
	an, err := analysis.NewRegistry().Get(schema.AnalyzerFor(field))
	if err != nil {
		return nil, err
	}

	switch {
	case f.term != "":
		return &query.TermQuery{Field: f.field, Term: an.Normalize(f.term)}, nil
	case f.prefix != "":
		return &query.PrefixQuery{Field: f.field, Prefix: an.Normalize(f.prefix)}, nil
	case f.wildcard != "":
		return &query.WildcardQuery{Field: f.field, Pattern: an.Normalize(f.wildcard)}, nil
	default:
		return &query.FuzzyQuery{Field: f.field, Term: an.Normalize(f.fuzzy), MaxDistance: f.distance}, nil
	}
}

func (a *app) weight(s *store.Store, qf *queryFlags) (engine.Weight, error) {
	schema, err := s.LoadSchema()
	if err != nil {
		return nil, err
	}
	q, err := qf.build(schema)
	if err != nil {
		return nil, err
	}
	return query.NewWeight(q, schema, a.logger)
}

func newSearchCmd(a *app) *cobra.Command {
	var qf queryFlags
	var segment string
	var topK int

	c := &cobra.Command{
		Use:   "search",
		Short: "List the documents matching a term-level query",
		Long: "Runs the query against each segment (or only --segment) and prints up to " +
			"--top-k hits per segment. Every hit scores 1.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := a.weight(s, &qf)
			if err != nil {
				return err
			}
			ids, err := segmentIDs(s, segment)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-k") {
				topK = a.cfg.TopK
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SEGMENT\tDOC\tID\tSCORE")
			total := 0
			for _, id := range ids {
				seg, err := s.OpenSegment(id)
				if err != nil {
					return err
				}
				sc, err := w.Scorer(seg)
				if err != nil {
					return fmt.Errorf("segment %s: %w", id, err)
				}
				collector := engine.NewTopKCollector(topK)
				total += collector.CollectScorer(sc)
				for _, hit := range collector.Results() {
					ext, _ := seg.ExternalID(hit.DocID)
					fmt.Fprintf(tw, "%s\t%d\t%s\t%g\n", id, hit.DocID, ext, hit.Score)
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d matching documents\n", total)
			return nil
		},
	}
	qf.register(c)
	c.Flags().StringVar(&segment, "segment", "", "search only this segment")
	c.Flags().IntVar(&topK, "top-k", 0, "hits printed per segment (env GOSEARCH_TOP_K)")
	return c
}

func newExplainCmd(a *app) *cobra.Command {
	var qf queryFlags
	var segment string
	var doc uint32

	c := &cobra.Command{
		Use:   "explain",
		Short: "Explain why a document matches a query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := a.weight(s, &qf)
			if err != nil {
				return err
			}
			seg, err := s.OpenSegment(segment)
			if err != nil {
				return err
			}
			expl, err := w.Explain(seg, doc)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), expl.String())
			return nil
		},
	}
	qf.register(c)
	c.Flags().StringVar(&segment, "segment", "", "segment holding the document")
	c.Flags().Uint32Var(&doc, "doc", 0, "segment-local doc id")
	_ = c.MarkFlagRequired("segment")
	_ = c.MarkFlagRequired("doc")
	return c
}

// segmentIDs returns only if set, otherwise every stored segment.
func segmentIDs(s *store.Store, only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	infos, err := s.Segments()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.SegmentID
	}
	return ids, nil
}
