// Package repositories provides PostgreSQL data access for fact-engine.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonry/fact-engine/pkg/apperrors"
	"github.com/canonry/fact-engine/pkg/database"
	"github.com/canonry/fact-engine/pkg/models"
)

// FactRepository provides data access for canonical facts.
//
// GetByKey and GetByKeyForUpdate only see active facts; deprecated and
// merged rows are invisible to the store's read paths.
type FactRepository interface {
	Create(ctx context.Context, fact *models.Fact) error
	Update(ctx context.Context, fact *models.Fact) error
	GetByKey(ctx context.Context, factKey string) (*models.Fact, error)
	// GetByKeyForUpdate locks the fact row for the duration of the
	// surrounding transaction. Call only inside TxManager.WithinTx.
	GetByKeyForUpdate(ctx context.Context, factKey string) (*models.Fact, error)
	GetByID(ctx context.Context, factID uuid.UUID) (*models.Fact, error)
	List(ctx context.Context, category string) ([]*models.Fact, error)
}

type factRepository struct {
	db *database.DB
}

// NewFactRepository creates a new FactRepository.
func NewFactRepository(db *database.DB) FactRepository {
	return &factRepository{db: db}
}

var _ FactRepository = (*factRepository)(nil)

const factColumns = `id, fact_key, fact_category, fact_value, confidence,
       source_document_id, source_field_id, last_edited_by, edit_count,
       status, created_at, updated_at`

func (r *factRepository) Create(ctx context.Context, fact *models.Fact) error {
	q := database.QuerierFor(ctx, r.db.Pool)

	now := time.Now()

	query := `
		INSERT INTO facts (
			fact_key, fact_category, fact_value, confidence,
			source_document_id, source_field_id, last_edited_by,
			edit_count, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		fact.FactKey,
		nullString(string(fact.Category)),
		fact.Value,
		fact.Confidence,
		fact.SourceDocumentID,
		fact.SourceFieldID,
		fact.LastEditedBy,
		fact.EditCount,
		string(fact.Status),
		now,
		now,
	).Scan(&fact.ID, &fact.CreatedAt, &fact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fact: %w", err)
	}

	return nil
}

func (r *factRepository) Update(ctx context.Context, fact *models.Fact) error {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		UPDATE facts
		SET fact_value = $2, confidence = $3, fact_category = $4,
		    source_document_id = $5, source_field_id = $6,
		    last_edited_by = $7, edit_count = $8, status = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := q.QueryRow(ctx, query,
		fact.ID,
		fact.Value,
		fact.Confidence,
		nullString(string(fact.Category)),
		fact.SourceDocumentID,
		fact.SourceFieldID,
		fact.LastEditedBy,
		fact.EditCount,
		string(fact.Status),
	).Scan(&fact.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update fact: %w", err)
	}

	return nil
}

func (r *factRepository) GetByKey(ctx context.Context, factKey string) (*models.Fact, error) {
	return r.getByKey(ctx, factKey, false)
}

func (r *factRepository) GetByKeyForUpdate(ctx context.Context, factKey string) (*models.Fact, error) {
	return r.getByKey(ctx, factKey, true)
}

func (r *factRepository) getByKey(ctx context.Context, factKey string, forUpdate bool) (*models.Fact, error) {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		SELECT ` + factColumns + `
		FROM facts
		WHERE fact_key = $1 AND status = 'active'`
	if forUpdate {
		query += `
		FOR UPDATE`
	}

	fact, err := scanFact(q.QueryRow(ctx, query, factKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No active fact for this key
		}
		return nil, err
	}

	return fact, nil
}

func (r *factRepository) GetByID(ctx context.Context, factID uuid.UUID) (*models.Fact, error) {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		SELECT ` + factColumns + `
		FROM facts
		WHERE id = $1`

	fact, err := scanFact(q.QueryRow(ctx, query, factID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fact, nil
}

func (r *factRepository) List(ctx context.Context, category string) ([]*models.Fact, error) {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		SELECT ` + factColumns + `
		FROM facts
		WHERE status = 'active'`
	args := []any{}
	if category != "" {
		query += ` AND fact_category = $1`
		args = append(args, category)
	}
	query += `
		ORDER BY fact_key`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts []*models.Fact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating facts: %w", err)
	}

	return facts, nil
}

func scanFact(row pgx.Row) (*models.Fact, error) {
	var f models.Fact
	var category *string

	err := row.Scan(
		&f.ID,
		&f.FactKey,
		&category,
		&f.Value,
		&f.Confidence,
		&f.SourceDocumentID,
		&f.SourceFieldID,
		&f.LastEditedBy,
		&f.EditCount,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan fact: %w", err)
	}

	if category != nil {
		f.Category = models.FactCategory(*category)
	}

	return &f, nil
}

// nullString returns nil if the string is empty, otherwise the string
// pointer, so empty values are stored as NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
