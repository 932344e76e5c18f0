package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/auth"
	"github.com/canonry/fact-engine/pkg/services"
)

// mockAutofillService implements services.AutofillService for handler tests.
type mockAutofillService struct {
	matches []services.FieldMatch
	err     error
}

func (m *mockAutofillService) MatchFields(_ context.Context, fieldNames []string) ([]services.FieldMatch, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

func newAutofillMux(svc services.AutofillService) *http.ServeMux {
	mux := http.NewServeMux()
	validator, _ := auth.NewJWKSValidator(&auth.JWKSConfig{EnableVerification: false})
	authMiddleware := auth.NewMiddleware(validator, false, zap.NewNop())
	NewAutofillHandler(svc, zap.NewNop()).RegisterRoutes(mux, authMiddleware)
	return mux
}

func TestAutofillHandler_Match(t *testing.T) {
	svc := &mockAutofillService{
		matches: []services.FieldMatch{
			{FieldName: "Business Name", FactKey: "company_name", Matched: true, Value: "Acme Corporation"},
			{FieldName: "zebra_field", Matched: false},
		},
	}
	mux := newAutofillMux(svc)

	body := `{"field_names": ["Business Name", "zebra_field"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/autofill/match", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Success bool                  `json:"success"`
		Data    []services.FieldMatch `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(resp.Data))
	}
	if resp.Data[0].FactKey != "company_name" {
		t.Errorf("unexpected fact key %q", resp.Data[0].FactKey)
	}
}

func TestAutofillHandler_Match_EmptyFieldNames(t *testing.T) {
	mux := newAutofillMux(&mockAutofillService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/autofill/match", strings.NewReader(`{"field_names": []}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAutofillHandler_Match_InvalidBody(t *testing.T) {
	mux := newAutofillMux(&mockAutofillService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/autofill/match", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
