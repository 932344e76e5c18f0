package services

import (
	"strings"
	"testing"
	"time"

	"github.com/canonry/fact-engine/pkg/models"
)

func existingFact(value string, confidence float64, editCount int, updatedAt time.Time) *models.Fact {
	return &models.Fact{
		FactKey:    "company_name",
		Value:      value,
		Confidence: confidence,
		EditCount:  editCount,
		Status:     models.FactStatusActive,
		UpdatedAt:  updatedAt,
	}
}

func TestShouldUpdate_UserEditedFactIsPreserved(t *testing.T) {
	existing := existingFact("Acme Corp", 0.5, 1, time.Now())

	// Even a maximally confident candidate loses to a user edit.
	apply, reason := ShouldUpdate(existing, "Acme Corporation", 1.0, time.Now())
	if apply {
		t.Error("expected user-edited fact to be preserved")
	}
	if reason != "Fact has been user-edited, preserving user value" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestShouldUpdate_IdenticalNormalizedValues(t *testing.T) {
	existing := existingFact("Acme Corporation", 0.8, 0, time.Now())

	apply, reason := ShouldUpdate(existing, "  ACME CORPORATION  ", 0.99, time.Now())
	if apply {
		t.Error("expected no update for identical normalized values")
	}
	if reason != "Values are identical (normalized)" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestShouldUpdate_HigherConfidenceWins(t *testing.T) {
	existing := existingFact("Acme Corp", 0.6, 0, time.Now())

	apply, reason := ShouldUpdate(existing, "Acme Corporation", 0.9, time.Now())
	if !apply {
		t.Error("expected significantly higher confidence to win")
	}
	if reason != "New value has significantly higher confidence (0.90 vs 0.60)" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestShouldUpdate_LowerConfidenceLoses(t *testing.T) {
	existing := existingFact("Acme Corporation", 0.9, 0, time.Now())

	apply, reason := ShouldUpdate(existing, "Acme Corp", 0.5, time.Now())
	if apply {
		t.Error("expected significantly lower confidence to lose")
	}
	if reason != "Existing value has significantly higher confidence (0.90 vs 0.50)" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestShouldUpdate_SimilarConfidenceNewerWins(t *testing.T) {
	updatedAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	existing := existingFact("Acme Corp", 0.8, 0, updatedAt)

	apply, reason := ShouldUpdate(existing, "Acme Corporation", 0.85, updatedAt.Add(24*time.Hour))
	if !apply {
		t.Error("expected newer extraction to win on similar confidence")
	}
	if !strings.HasPrefix(reason, "Confidence similar, newer extraction wins") {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestShouldUpdate_SimilarConfidenceOlderLoses(t *testing.T) {
	updatedAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	existing := existingFact("Acme Corp", 0.8, 0, updatedAt)

	apply, reason := ShouldUpdate(existing, "Acme Corporation", 0.85, updatedAt.Add(-24*time.Hour))
	if apply {
		t.Error("expected older extraction to lose on similar confidence")
	}
	if !strings.HasPrefix(reason, "Confidence similar, existing value is newer") {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestShouldUpdate_ExactThresholdFallsToRecency(t *testing.T) {
	// A difference of exactly 0.1 is not "significant"; recency decides.
	updatedAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	existing := existingFact("Acme Corp", 0.8, 0, updatedAt)

	apply, reason := ShouldUpdate(existing, "Acme Corporation", 0.9, updatedAt.Add(time.Hour))
	if !apply {
		t.Errorf("expected recency to decide at exact threshold, got reason %q", reason)
	}
	if !strings.HasPrefix(reason, "Confidence similar") {
		t.Errorf("expected recency reason at exact threshold, got %q", reason)
	}

	apply, reason = ShouldUpdate(existing, "Acme Corporation", 0.9, updatedAt.Add(-time.Hour))
	if apply {
		t.Errorf("expected older extraction to lose at exact threshold, got reason %q", reason)
	}
}

func TestShouldUpdate_Deterministic(t *testing.T) {
	updatedAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	existing := existingFact("Acme Corp", 0.8, 0, updatedAt)
	extractionDate := updatedAt.Add(time.Hour)

	firstApply, firstReason := ShouldUpdate(existing, "Acme Corporation", 0.85, extractionDate)
	for i := 0; i < 100; i++ {
		apply, reason := ShouldUpdate(existing, "Acme Corporation", 0.85, extractionDate)
		if apply != firstApply || reason != firstReason {
			t.Fatal("ShouldUpdate is not deterministic for identical inputs")
		}
	}
}

func TestShouldUpdate_RulePriorityOrder(t *testing.T) {
	// Identical values short-circuit before confidence comparison.
	existing := existingFact("Acme Corp", 0.2, 0, time.Now())
	apply, reason := ShouldUpdate(existing, "acme corp", 0.99, time.Now())
	if apply {
		t.Error("identical values must short-circuit the confidence rule")
	}
	if reason != "Values are identical (normalized)" {
		t.Errorf("unexpected reason: %q", reason)
	}

	// User edits short-circuit everything, including identical values.
	edited := existingFact("Acme Corp", 0.2, 2, time.Now())
	_, reason = ShouldUpdate(edited, "acme corp", 0.99, time.Now())
	if reason != "Fact has been user-edited, preserving user value" {
		t.Errorf("unexpected reason: %q", reason)
	}
}
