package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AutomatonSearch/internal/storage"
)

// Field type constants.
const (
	FieldTypeText    = "text"
	FieldTypeKeyword = "keyword"
)

// Analyzer constants.
const (
	AnalyzerStandard   = "standard"
	AnalyzerWhitespace = "whitespace"
	AnalyzerKeyword    = "keyword"
)

// Schema limits.
const (
	MaxFieldsPerSchema = 256
	MaxFieldNameLength = 255
)

// Reserved field names that cannot be used in user schemas.
var reservedFieldNames = map[string]bool{
	"_id":    true,
	"_score": true,
}

var (
	ErrSchemaCorrupt          = errors.New("schema checksum verification failed")
	ErrSchemaFieldLimit       = errors.New("schema exceeds maximum field count")
	ErrSchemaReservedField    = errors.New("field name is reserved")
	ErrSchemaDuplicateField   = errors.New("duplicate field name")
	ErrSchemaInvalidType      = errors.New("invalid field type")
	ErrSchemaInvalidAnalyzer  = errors.New("invalid analyzer")
	ErrSchemaFieldNameTooLong = errors.New("field name exceeds maximum length")
	ErrSchemaMissingAnalyzer  = errors.New("text field requires an analyzer")
	ErrUnknownField           = errors.New("unknown field")
)

// Field identifies one indexed column. It is the position of the field in
// the schema and never changes once the schema is written.
type Field uint32

// Schema represents the immutable schema definition for an index.
type Schema struct {
	Version   uint32           `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	Fields    []FieldDef       `json:"fields"`
	Checksum  storage.Checksum `json:"checksum"`
}

// FieldDef defines a single field in the schema.
type FieldDef struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Analyzer string `json:"analyzer,omitempty"`
}

// Field returns the Field for the given name.
func (s *Schema) Field(name string) (Field, error) {
	for i, f := range s.Fields {
		if f.Name == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// FieldName returns the name of f, or a placeholder when f is not in the schema.
func (s *Schema) FieldName(f Field) string {
	if int(f) < len(s.Fields) {
		return s.Fields[f].Name
	}
	return fmt.Sprintf("field#%d", f)
}

// AnalyzerFor returns the analyzer name used to tokenize f.
// Keyword fields are never split.
func (s *Schema) AnalyzerFor(f Field) string {
	if int(f) >= len(s.Fields) {
		return AnalyzerKeyword
	}
	def := s.Fields[f]
	if def.Type == FieldTypeKeyword || def.Analyzer == "" {
		return AnalyzerKeyword
	}
	return def.Analyzer
}

// Validate checks the schema for correctness.
func (s *Schema) Validate() error {
	if len(s.Fields) > MaxFieldsPerSchema {
		return fmt.Errorf("%w: %d fields (max %d)", ErrSchemaFieldLimit, len(s.Fields), MaxFieldsPerSchema)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if reservedFieldNames[f.Name] {
			return fmt.Errorf("%w: %q", ErrSchemaReservedField, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %q", ErrSchemaDuplicateField, f.Name)
		}
		seen[f.Name] = true

		if len(f.Name) > MaxFieldNameLength {
			return fmt.Errorf("%w: %q (%d bytes, max %d)", ErrSchemaFieldNameTooLong, f.Name, len(f.Name), MaxFieldNameLength)
		}
		if err := validateFieldType(f.Type); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if f.Analyzer != "" {
			if err := validateAnalyzer(f.Analyzer); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		if f.Type == FieldTypeText && f.Analyzer == "" {
			return fmt.Errorf("field %q: %w", f.Name, ErrSchemaMissingAnalyzer)
		}
	}
	return nil
}

// MarshalSchema serializes a schema to JSON and computes its checksum.
func MarshalSchema(s *Schema) ([]byte, error) {
	checksum, err := computeSchemaChecksum(s)
	if err != nil {
		return nil, fmt.Errorf("compute schema checksum: %w", err)
	}
	s.Checksum = checksum

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// UnmarshalSchema deserializes a schema from JSON and verifies its checksum.
func UnmarshalSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	saved := s.Checksum
	computed, err := computeSchemaChecksum(&s)
	if err != nil {
		return nil, fmt.Errorf("compute schema checksum for verification: %w", err)
	}
	if computed != saved {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrSchemaCorrupt, saved, computed)
	}
	return &s, nil
}

func computeSchemaChecksum(s *Schema) (storage.Checksum, error) {
	saved := s.Checksum
	s.Checksum = ""
	defer func() { s.Checksum = saved }()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal for checksum: %w", err)
	}
	return storage.ComputeChecksum(data), nil
}

func validateFieldType(t string) error {
	switch t {
	case FieldTypeText, FieldTypeKeyword:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrSchemaInvalidType, t)
	}
}

func validateAnalyzer(a string) error {
	switch a {
	case AnalyzerStandard, AnalyzerWhitespace, AnalyzerKeyword:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrSchemaInvalidAnalyzer, a)
	}
}
