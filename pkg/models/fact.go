// Package models contains domain types for fact-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// FactStatus represents the lifecycle state of a canonical fact.
type FactStatus string

// Fact status constants. Exactly one active fact may exist per fact key;
// deprecated and merged are reserved for future lifecycle policy.
const (
	FactStatusActive     FactStatus = "active"
	FactStatusDeprecated FactStatus = "deprecated"
	FactStatusMerged     FactStatus = "merged"
)

// String returns the string representation of a FactStatus.
func (s FactStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known fact status.
func (s FactStatus) IsValid() bool {
	switch s {
	case FactStatusActive, FactStatusDeprecated, FactStatusMerged:
		return true
	default:
		return false
	}
}

// FactCategory classifies a fact for filtering and display grouping.
type FactCategory string

// Fact category constants.
const (
	CategoryCompanyInfo FactCategory = "company_info"
	CategoryLegal       FactCategory = "legal"
	CategoryLocation    FactCategory = "location"
	CategoryContact     FactCategory = "contact"
)

// String returns the string representation of a FactCategory.
func (c FactCategory) String() string {
	return string(c)
}

// IsValid returns true if the category is a known fact category.
func (c FactCategory) IsValid() bool {
	switch c {
	case CategoryCompanyInfo, CategoryLegal, CategoryLocation, CategoryContact:
		return true
	default:
		return false
	}
}

// SystemActor is the identity recorded for automated writes.
const SystemActor = "system"

// Fact is the single authoritative value for one fact key.
// Facts are derived from extracted fields but represent the canonical value;
// once a user has edited a fact (EditCount > 0) automated extraction may
// never overwrite it.
type Fact struct {
	ID       uuid.UUID    `json:"id"`
	FactKey  string       `json:"fact_key"`
	Category FactCategory `json:"fact_category,omitempty"`

	Value      string  `json:"fact_value"`
	Confidence float64 `json:"confidence"`

	// Weak back-references to the extraction that produced the current value.
	// The referenced document may be deleted independently, which nulls these.
	SourceDocumentID *uuid.UUID `json:"source_document_id,omitempty"`
	SourceFieldID    *uuid.UUID `json:"source_field_id,omitempty"`

	LastEditedBy string     `json:"last_edited_by"`
	EditCount    int        `json:"edit_count"`
	Status       FactStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserEdited reports whether a human has edited this fact. User-edited
// facts are immutable to automated writes.
func (f *Fact) UserEdited() bool {
	return f.EditCount > 0
}
