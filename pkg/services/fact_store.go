package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/apperrors"
	"github.com/canonry/fact-engine/pkg/database"
	"github.com/canonry/fact-engine/pkg/fields"
	"github.com/canonry/fact-engine/pkg/models"
	"github.com/canonry/fact-engine/pkg/repositories"
)

// FactStore owns the canonical facts and their history ledger. All fact and
// history mutations in the system go through this service; nothing else may
// write either table.
type FactStore interface {
	// GetFact returns the active fact for a key, or ErrNotFound.
	GetFact(ctx context.Context, factKey string) (*models.Fact, error)

	// ListFacts returns all active facts, optionally filtered by category.
	ListFacts(ctx context.Context, category string) ([]*models.Fact, error)

	// GetHistory returns a fact's ledger entries, newest first.
	GetHistory(ctx context.Context, factID uuid.UUID) ([]*models.FactHistory, error)

	// ApplyExtractionBatch runs the ingestion algorithm for one document's
	// candidates and returns the facts that were created or updated.
	// Rejected attempts are absent from the return value but present in
	// history.
	ApplyExtractionBatch(ctx context.Context, documentID uuid.UUID, candidates []models.CandidateField) ([]*models.Fact, error)

	// ApplyUserEdit applies a user's value to an existing fact,
	// unconditionally. User edits bypass conflict resolution entirely.
	ApplyUserEdit(ctx context.Context, factKey, newValue, userID, reason string) (*models.Fact, error)

	// CreateFact records a manually entered fact for a key that has no
	// active fact yet. Returns ErrConflict if one exists.
	CreateFact(ctx context.Context, factKey, value, category, userID string) (*models.Fact, error)

	// MissingFacts returns the canonical field definitions that have no
	// active fact yet, in definition order.
	MissingFacts(ctx context.Context) ([]fields.Definition, error)
}

type factStore struct {
	factRepo    repositories.FactRepository
	historyRepo repositories.FactHistoryRepository
	txm         database.TxManager
	locks       keyLocks
	logger      *zap.Logger
}

// NewFactStore creates the canonical fact store.
func NewFactStore(
	factRepo repositories.FactRepository,
	historyRepo repositories.FactHistoryRepository,
	txm database.TxManager,
	logger *zap.Logger,
) FactStore {
	return &factStore{
		factRepo:    factRepo,
		historyRepo: historyRepo,
		txm:         txm,
		logger:      logger.Named("fact-store"),
	}
}

var _ FactStore = (*factStore)(nil)

// keyLocks serializes mutations per fact key. Operations on disjoint keys
// proceed in parallel; the row lock taken inside each transaction guards
// against writers outside this process.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *factStore) GetFact(ctx context.Context, factKey string) (*models.Fact, error) {
	fact, err := s.factRepo.GetByKey(ctx, factKey)
	if err != nil {
		return nil, fmt.Errorf("get fact %q: %w", factKey, err)
	}
	if fact == nil {
		return nil, fmt.Errorf("fact %q: %w", factKey, apperrors.ErrNotFound)
	}
	return fact, nil
}

func (s *factStore) ListFacts(ctx context.Context, category string) ([]*models.Fact, error) {
	facts, err := s.factRepo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return facts, nil
}

func (s *factStore) GetHistory(ctx context.Context, factID uuid.UUID) ([]*models.FactHistory, error) {
	fact, err := s.factRepo.GetByID(ctx, factID)
	if err != nil {
		return nil, fmt.Errorf("get fact %s: %w", factID, err)
	}
	if fact == nil {
		return nil, fmt.Errorf("fact %s: %w", factID, apperrors.ErrNotFound)
	}

	entries, err := s.historyRepo.ListByFact(ctx, factID)
	if err != nil {
		return nil, fmt.Errorf("list history for fact %s: %w", factID, err)
	}
	return entries, nil
}

func (s *factStore) ApplyExtractionBatch(ctx context.Context, documentID uuid.UUID, candidates []models.CandidateField) ([]*models.Fact, error) {
	s.logger.Info("Processing extraction batch",
		zap.String("document_id", documentID.String()),
		zap.Int("candidates", len(candidates)))

	// Group candidates by field name, preserving first-seen key order so
	// the outcome doesn't depend on map iteration.
	groups := make(map[string][]models.CandidateField)
	var keyOrder []string
	for _, c := range candidates {
		if err := validateCandidate(c); err != nil {
			s.logger.Warn("Rejecting malformed candidate",
				zap.String("document_id", documentID.String()),
				zap.String("field_name", c.FieldName),
				zap.Error(err))
			continue
		}
		if _, seen := groups[c.FieldName]; !seen {
			keyOrder = append(keyOrder, c.FieldName)
		}
		groups[c.FieldName] = append(groups[c.FieldName], c)
	}

	var processed []*models.Fact
	for _, key := range keyOrder {
		// Best-per-key representative: highest confidence, first
		// encountered on ties. Lower-confidence siblings are discarded
		// without individual history entries.
		best := groups[key][0]
		for _, c := range groups[key][1:] {
			if c.Confidence > best.Confidence {
				best = c
			}
		}

		fact, err := s.applyCandidate(ctx, documentID, key, best)
		if err != nil {
			return nil, fmt.Errorf("apply candidate for key %q: %w", key, err)
		}
		if fact != nil {
			processed = append(processed, fact)
		}
	}

	s.logger.Info("Processed extraction batch",
		zap.String("document_id", documentID.String()),
		zap.Int("facts_changed", len(processed)))

	return processed, nil
}

// applyCandidate runs one key's read-modify-append under the key lock and a
// single transaction, so the fact mutation and its history entry commit
// atomically. Returns the fact when it was created or updated, nil when the
// candidate was rejected.
func (s *factStore) applyCandidate(ctx context.Context, documentID uuid.UUID, factKey string, candidate models.CandidateField) (*models.Fact, error) {
	unlock := s.locks.lock(factKey)
	defer unlock()

	var result *models.Fact
	err := s.txm.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.factRepo.GetByKeyForUpdate(txCtx, factKey)
		if err != nil {
			return err
		}

		if existing == nil {
			fact := &models.Fact{
				FactKey:          factKey,
				Category:         models.FactCategory(fields.CategoryFor(factKey)),
				Value:            candidate.Value,
				Confidence:       candidate.Confidence,
				SourceDocumentID: &documentID,
				SourceFieldID:    candidate.SourceFieldID,
				LastEditedBy:     models.SystemActor,
				Status:           models.FactStatusActive,
			}
			if err := s.factRepo.Create(txCtx, fact); err != nil {
				return err
			}

			entry := &models.FactHistory{
				FactID:           fact.ID,
				ChangeType:       models.ChangeTypeExtraction,
				ChangedBy:        models.SystemActor,
				OldValue:         nil,
				NewValue:         candidate.Value,
				NewConfidence:    confString(candidate.Confidence),
				Reason:           "Initial extraction from document",
				SourceDocumentID: &documentID,
			}
			if err := s.historyRepo.Append(txCtx, entry); err != nil {
				return err
			}

			s.logger.Info("Created fact",
				zap.String("fact_key", factKey),
				zap.Float64("confidence", candidate.Confidence))
			result = fact
			return nil
		}

		apply, reason := ShouldUpdate(existing, candidate.Value, candidate.Confidence, candidate.ExtractionDate)

		if apply {
			oldValue := existing.Value
			oldConfidence := existing.Confidence

			existing.Value = candidate.Value
			existing.Confidence = candidate.Confidence
			existing.Category = models.FactCategory(fields.CategoryFor(factKey))
			existing.SourceDocumentID = &documentID
			existing.SourceFieldID = candidate.SourceFieldID
			if err := s.factRepo.Update(txCtx, existing); err != nil {
				return err
			}

			entry := &models.FactHistory{
				FactID:           existing.ID,
				ChangeType:       models.ChangeTypeSystemUpdate,
				ChangedBy:        models.SystemActor,
				OldValue:         &oldValue,
				NewValue:         candidate.Value,
				OldConfidence:    confString(oldConfidence),
				NewConfidence:    confString(candidate.Confidence),
				Reason:           reason,
				SourceDocumentID: &documentID,
			}
			if err := s.historyRepo.Append(txCtx, entry); err != nil {
				return err
			}

			s.logger.Info("Updated fact",
				zap.String("fact_key", factKey),
				zap.String("reason", reason))
			result = existing
			return nil
		}

		// Rejected candidates still get a ledger entry; the history is a
		// record of decisions, not just of successful writes.
		oldValue := existing.Value
		entry := &models.FactHistory{
			FactID:           existing.ID,
			ChangeType:       models.ChangeTypeExtraction,
			ChangedBy:        models.SystemActor,
			OldValue:         &oldValue,
			NewValue:         candidate.Value,
			OldConfidence:    confString(existing.Confidence),
			NewConfidence:    confString(candidate.Confidence),
			Reason:           "Extraction attempted but not applied: " + reason,
			SourceDocumentID: &documentID,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return err
		}

		s.logger.Debug("Skipped fact update",
			zap.String("fact_key", factKey),
			zap.String("reason", reason))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *factStore) ApplyUserEdit(ctx context.Context, factKey, newValue, userID, reason string) (*models.Fact, error) {
	if newValue == "" {
		return nil, fmt.Errorf("new value is required: %w", apperrors.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", apperrors.ErrValidation)
	}

	unlock := s.locks.lock(factKey)
	defer unlock()

	var result *models.Fact
	err := s.txm.WithinTx(ctx, func(txCtx context.Context) error {
		fact, err := s.factRepo.GetByKeyForUpdate(txCtx, factKey)
		if err != nil {
			return err
		}
		if fact == nil {
			return fmt.Errorf("fact %q: %w", factKey, apperrors.ErrNotFound)
		}

		// Unchanged value: no-op, no history entry.
		if fields.NormalizeValue(fact.Value) == fields.NormalizeValue(newValue) {
			s.logger.Info("User edit skipped, value unchanged",
				zap.String("fact_key", factKey),
				zap.String("user_id", userID))
			result = fact
			return nil
		}

		oldValue := fact.Value
		oldConfidence := fact.Confidence

		fact.Value = newValue
		fact.Confidence = 1.0 // User edits carry maximum trust
		fact.LastEditedBy = userID
		fact.EditCount++
		if err := s.factRepo.Update(txCtx, fact); err != nil {
			return err
		}

		if reason == "" {
			reason = "User edit"
		}
		entry := &models.FactHistory{
			FactID:        fact.ID,
			ChangeType:    models.ChangeTypeUserEdit,
			ChangedBy:     userID,
			OldValue:      &oldValue,
			NewValue:      newValue,
			OldConfidence: confString(oldConfidence),
			NewConfidence: confString(1.0),
			Reason:        reason,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return err
		}

		s.logger.Info("Applied user edit",
			zap.String("fact_key", factKey),
			zap.String("user_id", userID))
		result = fact
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *factStore) CreateFact(ctx context.Context, factKey, value, category, userID string) (*models.Fact, error) {
	if factKey == "" {
		return nil, fmt.Errorf("fact key is required: %w", apperrors.ErrValidation)
	}
	if value == "" {
		return nil, fmt.Errorf("value is required: %w", apperrors.ErrValidation)
	}
	if category == "" {
		category = fields.CategoryFor(factKey)
	}

	unlock := s.locks.lock(factKey)
	defer unlock()

	var result *models.Fact
	err := s.txm.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.factRepo.GetByKeyForUpdate(txCtx, factKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("fact %q already exists: %w", factKey, apperrors.ErrConflict)
		}

		fact := &models.Fact{
			FactKey:      factKey,
			Category:     models.FactCategory(category),
			Value:        value,
			Confidence:   1.0,
			LastEditedBy: userID,
			EditCount:    1,
			Status:       models.FactStatusActive,
		}
		if err := s.factRepo.Create(txCtx, fact); err != nil {
			return err
		}

		entry := &models.FactHistory{
			FactID:        fact.ID,
			ChangeType:    models.ChangeTypeUserEdit,
			ChangedBy:     userID,
			OldValue:      nil,
			NewValue:      value,
			NewConfidence: confString(1.0),
			Reason:        "Manually entered by user",
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return err
		}

		s.logger.Info("Created fact from manual entry",
			zap.String("fact_key", factKey),
			zap.String("user_id", userID))
		result = fact
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *factStore) MissingFacts(ctx context.Context) ([]fields.Definition, error) {
	facts, err := s.factRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}

	existing := make(map[string]bool, len(facts))
	for _, f := range facts {
		existing[f.FactKey] = true
	}

	var missing []fields.Definition
	for _, def := range fields.Definitions() {
		if !existing[def.Name] {
			missing = append(missing, def)
		}
	}
	return missing, nil
}

// validateCandidate rejects malformed extraction candidates. A bad
// candidate skips only itself; the rest of the batch proceeds.
func validateCandidate(c models.CandidateField) error {
	if c.FieldName == "" {
		return fmt.Errorf("empty field name: %w", apperrors.ErrValidation)
	}
	if c.Value == "" {
		return fmt.Errorf("empty value: %w", apperrors.ErrValidation)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]: %w", c.Confidence, apperrors.ErrValidation)
	}
	return nil
}

// confString encodes a confidence for the string-typed history columns.
func confString(v float64) *string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return &s
}
