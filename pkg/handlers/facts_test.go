package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/apperrors"
	"github.com/canonry/fact-engine/pkg/auth"
	"github.com/canonry/fact-engine/pkg/fields"
	"github.com/canonry/fact-engine/pkg/models"
)

// mockFactStore implements services.FactStore for handler tests.
type mockFactStore struct {
	facts   map[string]*models.Fact
	history map[uuid.UUID][]*models.FactHistory

	lastEditUserID string
}

func newMockFactStore() *mockFactStore {
	return &mockFactStore{
		facts:   make(map[string]*models.Fact),
		history: make(map[uuid.UUID][]*models.FactHistory),
	}
}

func (m *mockFactStore) GetFact(_ context.Context, factKey string) (*models.Fact, error) {
	f, ok := m.facts[factKey]
	if !ok {
		return nil, fmt.Errorf("fact %q: %w", factKey, apperrors.ErrNotFound)
	}
	return f, nil
}

func (m *mockFactStore) ListFacts(_ context.Context, category string) ([]*models.Fact, error) {
	var facts []*models.Fact
	for _, f := range m.facts {
		if category != "" && string(f.Category) != category {
			continue
		}
		facts = append(facts, f)
	}
	return facts, nil
}

func (m *mockFactStore) GetHistory(_ context.Context, factID uuid.UUID) ([]*models.FactHistory, error) {
	return m.history[factID], nil
}

func (m *mockFactStore) ApplyExtractionBatch(_ context.Context, _ uuid.UUID, _ []models.CandidateField) ([]*models.Fact, error) {
	return nil, nil
}

func (m *mockFactStore) ApplyUserEdit(_ context.Context, factKey, newValue, userID, _ string) (*models.Fact, error) {
	if newValue == "" {
		return nil, fmt.Errorf("new value is required: %w", apperrors.ErrValidation)
	}
	f, ok := m.facts[factKey]
	if !ok {
		return nil, fmt.Errorf("fact %q: %w", factKey, apperrors.ErrNotFound)
	}
	m.lastEditUserID = userID
	f.Value = newValue
	f.Confidence = 1.0
	f.EditCount++
	return f, nil
}

func (m *mockFactStore) CreateFact(_ context.Context, factKey, value, category, userID string) (*models.Fact, error) {
	if _, exists := m.facts[factKey]; exists {
		return nil, fmt.Errorf("fact %q already exists: %w", factKey, apperrors.ErrConflict)
	}
	f := &models.Fact{
		ID:         uuid.New(),
		FactKey:    factKey,
		Category:   models.FactCategory(category),
		Value:      value,
		Confidence: 1.0,
		EditCount:  1,
		Status:     models.FactStatusActive,
	}
	m.facts[factKey] = f
	m.lastEditUserID = userID
	return f, nil
}

func (m *mockFactStore) MissingFacts(_ context.Context) ([]fields.Definition, error) {
	var missing []fields.Definition
	for _, def := range fields.Definitions() {
		if _, ok := m.facts[def.Name]; !ok {
			missing = append(missing, def)
		}
	}
	return missing, nil
}

func newFactsMux(store *mockFactStore) *http.ServeMux {
	mux := http.NewServeMux()
	validator, _ := auth.NewJWKSValidator(&auth.JWKSConfig{EnableVerification: false})
	authMiddleware := auth.NewMiddleware(validator, false, zap.NewNop())
	NewFactsHandler(store, zap.NewNop()).RegisterRoutes(mux, authMiddleware)
	return mux
}

func TestFactsHandler_Get(t *testing.T) {
	store := newMockFactStore()
	store.facts["company_name"] = &models.Fact{
		ID:         uuid.New(),
		FactKey:    "company_name",
		Value:      "Acme Corporation",
		Confidence: 0.95,
		Status:     models.FactStatusActive,
		UpdatedAt:  time.Now(),
	}
	mux := newFactsMux(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/facts/company_name", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp ApiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
}

func TestFactsHandler_Get_NotFound(t *testing.T) {
	mux := newFactsMux(newMockFactStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/facts/company_name", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestFactsHandler_List_InvalidCategory(t *testing.T) {
	mux := newFactsMux(newMockFactStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/facts?category=bogus", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestFactsHandler_Create(t *testing.T) {
	store := newMockFactStore()
	mux := newFactsMux(store)

	body := `{"fact_key": "website", "value": "https://acme.example"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/facts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if store.facts["website"] == nil {
		t.Error("fact was not created")
	}
	if store.lastEditUserID != auth.AnonymousUser {
		t.Errorf("expected anonymous attribution without a token, got %q", store.lastEditUserID)
	}
}

func TestFactsHandler_Create_Conflict(t *testing.T) {
	store := newMockFactStore()
	store.facts["website"] = &models.Fact{FactKey: "website", Value: "https://acme.example"}
	mux := newFactsMux(store)

	body := `{"fact_key": "website", "value": "https://other.example"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/facts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestFactsHandler_Create_InvalidBody(t *testing.T) {
	mux := newFactsMux(newMockFactStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/facts", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestFactsHandler_Update(t *testing.T) {
	store := newMockFactStore()
	store.facts["ein"] = &models.Fact{
		ID:      uuid.New(),
		FactKey: "ein",
		Value:   "12-3456789",
		Status:  models.FactStatusActive,
	}
	mux := newFactsMux(store)

	body := `{"value": "98-7654321", "reason": "Corrected"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/facts/ein", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if store.facts["ein"].Value != "98-7654321" {
		t.Error("fact value not updated")
	}
}

func TestFactsHandler_Update_NotFound(t *testing.T) {
	mux := newFactsMux(newMockFactStore())

	body := `{"value": "98-7654321"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/facts/ein", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestFactsHandler_Update_EmptyValue(t *testing.T) {
	store := newMockFactStore()
	store.facts["ein"] = &models.Fact{FactKey: "ein", Value: "12-3456789"}
	mux := newFactsMux(store)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/facts/ein", strings.NewReader(`{"value": ""}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestFactsHandler_Missing(t *testing.T) {
	store := newMockFactStore()
	store.facts["company_name"] = &models.Fact{FactKey: "company_name", Value: "Acme"}
	mux := newFactsMux(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/facts/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Success bool                `json:"success"`
		Data    []fields.Definition `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 11 {
		t.Errorf("expected 11 missing fields, got %d", len(resp.Data))
	}
}
