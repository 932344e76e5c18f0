package models

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType classifies a fact history entry.
type ChangeType string

// Change type constants.
const (
	ChangeTypeExtraction   ChangeType = "extraction"    // Extraction attempt (creation or rejected candidate)
	ChangeTypeUserEdit     ChangeType = "user_edit"     // Manual user edit
	ChangeTypeSystemUpdate ChangeType = "system_update" // Resolver applied a candidate over an existing value
	ChangeTypeMerge        ChangeType = "merge"         // Merged from multiple sources
	ChangeTypeDeprecate    ChangeType = "deprecate"     // Fact was deprecated
)

// String returns the string representation of a ChangeType.
func (t ChangeType) String() string {
	return string(t)
}

// IsValid returns true if the change type is a known value.
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeExtraction, ChangeTypeUserEdit, ChangeTypeSystemUpdate, ChangeTypeMerge, ChangeTypeDeprecate:
		return true
	default:
		return false
	}
}

// FactHistory is one immutable record of an attempted or applied fact
// transition. The ledger is append-only and records every resolution
// outcome, including extraction attempts that were not applied.
type FactHistory struct {
	ID     uuid.UUID `json:"id"`
	FactID uuid.UUID `json:"fact_id"`

	// Seq breaks ordering ties when two entries share a changed_at
	// timestamp; it increases monotonically with insertion.
	Seq int64 `json:"-"`

	ChangeType ChangeType `json:"change_type"`
	ChangedBy  string     `json:"changed_by"`
	ChangedAt  time.Time  `json:"changed_at"`

	// OldValue is nil only for the entry that creates the fact.
	OldValue *string `json:"old_value"`
	NewValue string  `json:"new_value"`

	OldConfidence *string `json:"old_confidence,omitempty"`
	NewConfidence *string `json:"new_confidence,omitempty"`

	Reason           string     `json:"reason,omitempty"`
	SourceDocumentID *uuid.UUID `json:"source_document_id,omitempty"`
}
