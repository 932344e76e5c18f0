package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/fields"
	"github.com/canonry/fact-engine/pkg/repositories"
)

// FieldMatch is the autofill answer for one form field name.
type FieldMatch struct {
	FieldName  string   `json:"field_name"`
	FactKey    string   `json:"fact_key,omitempty"`
	Matched    bool     `json:"matched"`
	Value      string   `json:"value,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// AutofillService maps external form field names onto stored facts.
type AutofillService interface {
	// MatchFields resolves each form field name to a canonical fact key
	// and, where an active fact exists, its current value. The result
	// keeps the input order, one entry per requested name.
	MatchFields(ctx context.Context, fieldNames []string) ([]FieldMatch, error)
}

type autofillService struct {
	factRepo repositories.FactRepository
	logger   *zap.Logger
}

// NewAutofillService creates a new AutofillService.
func NewAutofillService(factRepo repositories.FactRepository, logger *zap.Logger) AutofillService {
	return &autofillService{
		factRepo: factRepo,
		logger:   logger.Named("autofill"),
	}
}

var _ AutofillService = (*autofillService)(nil)

func (s *autofillService) MatchFields(ctx context.Context, fieldNames []string) ([]FieldMatch, error) {
	facts, err := s.factRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}

	byKey := make(map[string]int, len(facts))
	for i, f := range facts {
		byKey[f.FactKey] = i
	}

	matches := make([]FieldMatch, 0, len(fieldNames))
	matched := 0
	for _, name := range fieldNames {
		m := FieldMatch{FieldName: name}
		if key, ok := fields.Match(name); ok {
			m.FactKey = key
			m.Matched = true
			matched++
			if i, found := byKey[key]; found {
				conf := facts[i].Confidence
				m.Value = facts[i].Value
				m.Confidence = &conf
			}
		}
		matches = append(matches, m)
	}

	s.logger.Info("Matched form fields",
		zap.Int("requested", len(fieldNames)),
		zap.Int("matched", matched))

	return matches, nil
}
