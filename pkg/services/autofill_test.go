package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/models"
)

func TestMatchFields(t *testing.T) {
	factRepo := newMockFactRepo()
	factRepo.facts["company_name"] = &models.Fact{
		FactKey:    "company_name",
		Value:      "Acme Corporation",
		Confidence: 0.95,
		Status:     models.FactStatusActive,
	}

	svc := NewAutofillService(factRepo, zap.NewNop())

	matches, err := svc.MatchFields(context.Background(), []string{
		"Business Name", // matches company_name, has a fact
		"Employer ID",   // matches ein, no fact yet
		"zebra_field",   // no match
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 results, got %d", len(matches))
	}

	if !matches[0].Matched || matches[0].FactKey != "company_name" {
		t.Errorf("expected company_name match, got %+v", matches[0])
	}
	if matches[0].Value != "Acme Corporation" {
		t.Errorf("expected fact value, got %q", matches[0].Value)
	}
	if matches[0].Confidence == nil || *matches[0].Confidence != 0.95 {
		t.Error("expected fact confidence on the match")
	}

	if !matches[1].Matched || matches[1].FactKey != "ein" {
		t.Errorf("expected ein match, got %+v", matches[1])
	}
	if matches[1].Value != "" || matches[1].Confidence != nil {
		t.Error("matched key without a fact must have no value")
	}

	if matches[2].Matched {
		t.Errorf("expected no match, got %+v", matches[2])
	}
	if matches[2].FieldName != "zebra_field" {
		t.Error("result order must follow input order")
	}
}
