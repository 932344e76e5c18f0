package models

import (
	"time"

	"github.com/google/uuid"
)

// Extraction method constants.
const (
	ExtractionMethodLLM    = "llm"
	ExtractionMethodManual = "manual"
)

// ExtractedField is one raw field extraction from a document, persisted
// before it competes for a canonical fact. This is the first data layer;
// the fact store consumes these as candidates.
type ExtractedField struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`

	FieldName string `json:"field_name"`
	FieldType string `json:"field_type,omitempty"`

	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`

	ExtractionMethod string    `json:"extraction_method,omitempty"`
	ExtractionDate   time.Time `json:"extraction_date"`

	PageNumber *int   `json:"page_number,omitempty"`
	Context    string `json:"context,omitempty"`
}

// CandidateField is a proposed value for a fact arriving from an
// extraction pass. The fact store only reads candidates; it does not
// persist them itself.
type CandidateField struct {
	FieldName        string
	Value            string
	Confidence       float64
	ExtractionMethod string
	ExtractionDate   time.Time

	// SourceFieldID points at the persisted ExtractedField row, when the
	// candidate came through the extraction pipeline.
	SourceFieldID *uuid.UUID
}
