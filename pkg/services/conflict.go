// Package services holds fact-engine's business logic.
package services

import (
	"fmt"
	"time"

	"github.com/canonry/fact-engine/pkg/fields"
	"github.com/canonry/fact-engine/pkg/models"
)

// confidenceThreshold is the minimum confidence difference required for a
// candidate to win (or lose) on confidence alone. Differences within the
// threshold fall through to recency.
const confidenceThreshold = 0.1

// ShouldUpdate decides whether a candidate value replaces the current
// canonical fact. Pure and deterministic: identical inputs always produce
// the identical (apply, reason) pair, and every input pair lands in exactly
// one outcome.
//
// Rules, in priority order:
//  1. User-edited facts are never overwritten by automated writes.
//  2. Values that are identical after normalization need no update.
//  3. A candidate significantly more confident than the existing value wins;
//     significantly less confident loses.
//  4. Within the confidence threshold, the newer extraction wins.
func ShouldUpdate(existing *models.Fact, newValue string, newConfidence float64, extractionDate time.Time) (bool, string) {
	if existing.UserEdited() {
		return false, "Fact has been user-edited, preserving user value"
	}

	if fields.NormalizeValue(existing.Value) == fields.NormalizeValue(newValue) {
		return false, "Values are identical (normalized)"
	}

	diff := newConfidence - existing.Confidence

	if diff > confidenceThreshold {
		return true, fmt.Sprintf("New value has significantly higher confidence (%.2f vs %.2f)", newConfidence, existing.Confidence)
	}

	if diff < -confidenceThreshold {
		return false, fmt.Sprintf("Existing value has significantly higher confidence (%.2f vs %.2f)", existing.Confidence, newConfidence)
	}

	if extractionDate.After(existing.UpdatedAt) {
		return true, fmt.Sprintf("Confidence similar, newer extraction wins (%.2f vs %.2f)", newConfidence, existing.Confidence)
	}

	return false, fmt.Sprintf("Confidence similar, existing value is newer (%.2f vs %.2f)", existing.Confidence, newConfidence)
}
