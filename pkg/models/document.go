package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks where a document is in the extraction pipeline.
type DocumentStatus string

// Document status constants.
const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// String returns the string representation of a DocumentStatus.
func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known document status.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	default:
		return false
	}
}

// Document holds metadata for an uploaded source document. The binary
// content lives in file storage; only the path is recorded here. Facts
// reference documents weakly, so deleting a document never deletes facts.
type Document struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	FilePath string    `json:"-"`
	FileType string    `json:"file_type"`
	FileSize int64     `json:"file_size"`
	MimeType string    `json:"mime_type,omitempty"`

	Status      DocumentStatus `json:"status"`
	Description string         `json:"description,omitempty"`
	Tags        string         `json:"tags,omitempty"`

	UploadDate time.Time `json:"upload_date"`
}
