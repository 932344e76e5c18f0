package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonry/fact-engine/pkg/apperrors"
	"github.com/canonry/fact-engine/pkg/database"
	"github.com/canonry/fact-engine/pkg/models"
)

// DocumentRepository provides data access for uploaded document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, documentID uuid.UUID) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	UpdateStatus(ctx context.Context, documentID uuid.UUID, status models.DocumentStatus) error
	// Delete removes the document row. Facts referencing it keep their
	// values; the foreign keys null out via ON DELETE SET NULL.
	Delete(ctx context.Context, documentID uuid.UUID) error
}

type documentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *database.DB) DocumentRepository {
	return &documentRepository{db: db}
}

var _ DocumentRepository = (*documentRepository)(nil)

const documentColumns = `id, filename, file_path, file_type, file_size,
       mime_type, status, description, tags, upload_date`

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		INSERT INTO documents (
			filename, file_path, file_type, file_size, mime_type,
			status, description, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, upload_date`

	err := q.QueryRow(ctx, query,
		doc.Filename,
		doc.FilePath,
		doc.FileType,
		doc.FileSize,
		nullString(doc.MimeType),
		string(doc.Status),
		nullString(doc.Description),
		nullString(doc.Tags),
	).Scan(&doc.ID, &doc.UploadDate)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1`

	doc, err := scanDocument(q.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]*models.Document, error) {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY upload_date DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

func (r *documentRepository) UpdateStatus(ctx context.Context, documentID uuid.UUID, status models.DocumentStatus) error {
	q := database.QuerierFor(ctx, r.db.Pool)

	result, err := q.Exec(ctx,
		`UPDATE documents SET status = $2 WHERE id = $1`,
		documentID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *documentRepository) Delete(ctx context.Context, documentID uuid.UUID) error {
	q := database.QuerierFor(ctx, r.db.Pool)

	result, err := q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	var mimeType, description, tags *string

	err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.FilePath,
		&d.FileType,
		&d.FileSize,
		&mimeType,
		&d.Status,
		&description,
		&tags,
		&d.UploadDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	if mimeType != nil {
		d.MimeType = *mimeType
	}
	if description != nil {
		d.Description = *description
	}
	if tags != nil {
		d.Tags = *tags
	}

	return &d, nil
}
