package indexing

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"AutomatonSearch/internal/analysis"
	"AutomatonSearch/internal/index"
)

// IDField is the document key holding the external document id.
const IDField = "id"

// Document is a decoded JSON document.
type Document map[string]any

type fieldPosting struct {
	field index.Field
	term  string
	freq  uint32
}

// Writer analyzes documents into a WriteBuffer and flushes them as segments.
type Writer struct {
	schema   *index.Schema
	registry *analysis.Registry
	buffer   *WriteBuffer
	logger   *slog.Logger

	mu     sync.Mutex
	active bool
}

// NewWriter creates a new Writer for the given schema and analyzer registry.
// A nil logger falls back to slog.Default().
func NewWriter(schema *index.Schema, registry *analysis.Registry, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		schema:   schema,
		registry: registry,
		buffer:   NewWriteBuffer(),
		logger:   logger.With("component", "writer"),
		active:   true,
	}
}

// AddDocument analyzes a single document into the write buffer. A document
// that fails analysis leaves the buffer unchanged.
func (w *Writer) AddDocument(doc Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return ErrWriterNotActive
	}
	if w.buffer.IsFull() {
		return ErrBufferFull
	}

	externalID, err := extractExternalID(doc)
	if err != nil {
		return err
	}

	var pending []fieldPosting
	for i, fieldDef := range w.schema.Fields {
		val, exists := doc[fieldDef.Name]
		if !exists {
			continue
		}
		ps, err := w.analyzeField(index.Field(i), fieldDef, val)
		if err != nil {
			return fmt.Errorf("field %q: %w", fieldDef.Name, err)
		}
		pending = append(pending, ps...)
	}

	docID, err := w.buffer.AllocateDocID(externalID)
	if err != nil {
		return err
	}
	for _, p := range pending {
		w.buffer.AddPosting(p.field, p.term, docID, p.freq)
	}
	return nil
}

// AddDocuments indexes multiple documents, stopping at the first failure.
func (w *Writer) AddDocuments(docs []Document) error {
	for i, doc := range docs {
		if err := w.AddDocument(doc); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

// Flush turns the buffered documents into a segment and empties the buffer.
func (w *Writer) Flush() (*index.MemSegment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return nil, ErrWriterNotActive
	}

	seg, err := w.buffer.Build()
	if err != nil {
		return nil, fmt.Errorf("build segment: %w", err)
	}
	w.logger.Info("segment flushed",
		"docs", seg.MaxDoc(),
		"terms", w.buffer.TermCount(),
		"memory_bytes", w.buffer.MemoryUsed(),
	)
	w.buffer.Reset()
	return seg, nil
}

// DocCount returns the number of documents currently in the write buffer.
func (w *Writer) DocCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.DocCount()
}

// Buffer returns the current write buffer.
func (w *Writer) Buffer() *WriteBuffer {
	return w.buffer
}

// Abort discards all buffered changes.
func (w *Writer) Abort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffer.Reset()
}

// Release deactivates the writer.
func (w *Writer) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = false
}

func (w *Writer) analyzeField(field index.Field, def index.FieldDef, val any) ([]fieldPosting, error) {
	switch def.Type {
	case index.FieldTypeText:
		text, ok := val.(string)
		if !ok {
			return nil, errors.New("text field value must be a string")
		}
		analyzer, err := w.registry.Get(w.schema.AnalyzerFor(field))
		if err != nil {
			return nil, err
		}
		var out []fieldPosting
		for term, freq := range analysis.TermFreqs(analyzer, text) {
			out = append(out, fieldPosting{field: field, term: term, freq: freq})
		}
		return out, nil

	case index.FieldTypeKeyword:
		values, err := keywordValues(val)
		if err != nil {
			return nil, err
		}
		out := make([]fieldPosting, 0, len(values))
		for _, v := range values {
			if v == "" || len(v) > analysis.MaxTermLength {
				continue
			}
			out = append(out, fieldPosting{field: field, term: v, freq: 1})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %q", index.ErrSchemaInvalidType, def.Type)
	}
}

func keywordValues(val any) ([]string, error) {
	switch v := val.(type) {
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("keyword array values must be strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.New("keyword field value must be a string or string array")
	}
}

func extractExternalID(doc Document) (string, error) {
	idVal, ok := doc[IDField]
	if !ok {
		return "", errors.New("document missing 'id' field")
	}
	id, ok := idVal.(string)
	if !ok || id == "" {
		return "", errors.New("document 'id' must be a non-empty string")
	}
	return id, nil
}
