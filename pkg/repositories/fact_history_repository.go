package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonry/fact-engine/pkg/database"
	"github.com/canonry/fact-engine/pkg/models"
)

// FactHistoryRepository provides access to the append-only fact history
// ledger. Entries are never updated or deleted individually; the only
// removal path is the CASCADE when the owning fact is destroyed.
type FactHistoryRepository interface {
	// Append writes one history entry and fills in its generated fields.
	Append(ctx context.Context, entry *models.FactHistory) error
	// ListByFact returns a fact's history newest first; ties in changed_at
	// break by insertion order.
	ListByFact(ctx context.Context, factID uuid.UUID) ([]*models.FactHistory, error)
}

type factHistoryRepository struct {
	db *database.DB
}

// NewFactHistoryRepository creates a new FactHistoryRepository.
func NewFactHistoryRepository(db *database.DB) FactHistoryRepository {
	return &factHistoryRepository{db: db}
}

var _ FactHistoryRepository = (*factHistoryRepository)(nil)

func (r *factHistoryRepository) Append(ctx context.Context, entry *models.FactHistory) error {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		INSERT INTO fact_history (
			fact_id, change_type, changed_by, old_value, new_value,
			old_confidence, new_confidence, reason, source_document_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, seq, changed_at`

	err := q.QueryRow(ctx, query,
		entry.FactID,
		string(entry.ChangeType),
		entry.ChangedBy,
		entry.OldValue,
		entry.NewValue,
		entry.OldConfidence,
		entry.NewConfidence,
		nullString(entry.Reason),
		entry.SourceDocumentID,
	).Scan(&entry.ID, &entry.Seq, &entry.ChangedAt)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

func (r *factHistoryRepository) ListByFact(ctx context.Context, factID uuid.UUID) ([]*models.FactHistory, error) {
	q := database.QuerierFor(ctx, r.db.Pool)

	query := `
		SELECT id, fact_id, seq, change_type, changed_by, changed_at,
		       old_value, new_value, old_confidence, new_confidence,
		       reason, source_document_id
		FROM fact_history
		WHERE fact_id = $1
		ORDER BY changed_at DESC, seq DESC`

	rows, err := q.Query(ctx, query, factID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fact history: %w", err)
	}
	defer rows.Close()

	var entries []*models.FactHistory
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fact history: %w", err)
	}

	return entries, nil
}

func scanHistoryEntry(row pgx.Row) (*models.FactHistory, error) {
	var e models.FactHistory
	var reason *string

	err := row.Scan(
		&e.ID,
		&e.FactID,
		&e.Seq,
		&e.ChangeType,
		&e.ChangedBy,
		&e.ChangedAt,
		&e.OldValue,
		&e.NewValue,
		&e.OldConfidence,
		&e.NewConfidence,
		&reason,
		&e.SourceDocumentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	if reason != nil {
		e.Reason = *reason
	}

	return &e, nil
}
