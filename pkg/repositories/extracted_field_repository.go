package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonry/fact-engine/pkg/database"
	"github.com/canonry/fact-engine/pkg/models"
)

// ExtractedFieldRepository stores raw extraction results per document.
type ExtractedFieldRepository interface {
	Create(ctx context.Context, field *models.ExtractedField) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ExtractedField, error)
}

type extractedFieldRepository struct {
	db *database.DB
}

// NewExtractedFieldRepository creates a new ExtractedFieldRepository.
func NewExtractedFieldRepository(db *database.DB) ExtractedFieldRepository {
	return &extractedFieldRepository{db: db}
}

var _ ExtractedFieldRepository = (*extractedFieldRepository)(nil)

func (r *extractedFieldRepository) Create(ctx context.Context, field *models.ExtractedField) error {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		INSERT INTO extracted_fields (
			document_id, field_name, field_type, value, confidence,
			extraction_method, extraction_date, page_number, context
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, extraction_date`

	err := q.QueryRow(ctx, query,
		field.DocumentID,
		field.FieldName,
		nullString(field.FieldType),
		field.Value,
		field.Confidence,
		nullString(field.ExtractionMethod),
		field.ExtractionDate,
		field.PageNumber,
		nullString(field.Context),
	).Scan(&field.ID, &field.ExtractionDate)
	if err != nil {
		return fmt.Errorf("failed to create extracted field: %w", err)
	}

	return nil
}

func (r *extractedFieldRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ExtractedField, error) {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		SELECT id, document_id, field_name, field_type, value, confidence,
		       extraction_method, extraction_date, page_number, context
		FROM extracted_fields
		WHERE document_id = $1
		ORDER BY extraction_date, field_name`

	rows, err := q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query extracted fields: %w", err)
	}
	defer rows.Close()

	var fields []*models.ExtractedField
	for rows.Next() {
		field, err := scanExtractedField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extracted fields: %w", err)
	}

	return fields, nil
}

func scanExtractedField(row pgx.Row) (*models.ExtractedField, error) {
	var f models.ExtractedField
	var fieldType, method, context *string

	err := row.Scan(
		&f.ID,
		&f.DocumentID,
		&f.FieldName,
		&fieldType,
		&f.Value,
		&f.Confidence,
		&method,
		&f.ExtractionDate,
		&f.PageNumber,
		&context,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan extracted field: %w", err)
	}

	if fieldType != nil {
		f.FieldType = *fieldType
	}
	if method != nil {
		f.ExtractionMethod = *method
	}
	if context != nil {
		f.Context = *context
	}

	return &f, nil
}
