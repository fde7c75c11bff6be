package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"AutomatonSearch/internal/analysis"
	"AutomatonSearch/internal/index"
	"AutomatonSearch/internal/indexing"
	"AutomatonSearch/internal/store"
)

var ErrSchemaConflict = errors.New("schema differs from the stored schema")

func newIndexCmd(a *app) *cobra.Command {
	var schemaPath string
	var maxDocs int

	c := &cobra.Command{
		Use:   "index <documents.json>",
		Short: "Index a JSON array of documents into new segments",
		Long: "Reads a JSON array of objects, analyzes every field declared in the schema " +
			"and stores the result as one or more segments. The schema is taken from --schema " +
			"on first use and read back from the store afterwards.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(args[0])
			if err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			schema, err := resolveSchema(s, schemaPath)
			if err != nil {
				return err
			}

			w := indexing.NewWriter(schema, analysis.NewRegistry(), a.logger)
			if maxDocs > 0 {
				w.Buffer().MaxDocs = maxDocs
			}

			var ids []string
			flush := func() error {
				if w.DocCount() == 0 {
					return nil
				}
				seg, err := w.Flush()
				if err != nil {
					return err
				}
				id, err := s.CreateSegment(seg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			}

			for i, doc := range docs {
				err := w.AddDocument(doc)
				if errors.Is(err, indexing.ErrBufferFull) {
					if err = flush(); err == nil {
						err = w.AddDocument(doc)
					}
				}
				if err != nil {
					return fmt.Errorf("document %d: %w", i, err)
				}
			}
			if err := flush(); err != nil {
				return err
			}

			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			a.logger.Info("indexing complete", "documents", len(docs), "segments", len(ids))
			return nil
		},
	}
	c.Flags().StringVar(&schemaPath, "schema", "", "JSON schema file, required when the store has no schema yet")
	c.Flags().IntVar(&maxDocs, "max-docs", 0, "maximum documents per segment (default "+fmt.Sprint(indexing.DefaultMaxDocsPerSegment)+")")
	return c
}

func readDocuments(path string) ([]indexing.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var docs []indexing.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse documents %s: %w", path, err)
	}
	return docs, nil
}

// resolveSchema returns the stored schema, saving the one at path first
// when the store has none. A schema given for a store that already has a
// different one is rejected, since field ids of existing segments would no
// longer line up.
func resolveSchema(s *store.Store, path string) (*index.Schema, error) {
	stored, err := s.LoadSchema()
	if err != nil && !errors.Is(err, store.ErrNoSchema) {
		return nil, err
	}
	if path == "" {
		if stored == nil {
			return nil, fmt.Errorf("%w: pass --schema", store.ErrNoSchema)
		}
		return stored, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var schema index.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}

	if stored != nil {
		if !slices.Equal(stored.Fields, schema.Fields) {
			return nil, ErrSchemaConflict
		}
		return stored, nil
	}
	if err := s.SaveSchema(&schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
