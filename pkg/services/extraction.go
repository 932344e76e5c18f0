package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/apperrors"
	"github.com/canonry/fact-engine/pkg/fields"
	"github.com/canonry/fact-engine/pkg/llm"
	"github.com/canonry/fact-engine/pkg/models"
	"github.com/canonry/fact-engine/pkg/repositories"
	"github.com/canonry/fact-engine/pkg/storage"
)

// ExtractionResult summarizes one extraction run over a document.
type ExtractionResult struct {
	DocumentID      uuid.UUID                `json:"document_id"`
	ExtractedFields []*models.ExtractedField `json:"extracted_fields"`
	FactsChanged    []*models.Fact           `json:"facts_changed"`
}

// ExtractionService runs the LLM extraction pipeline for a document and
// feeds the results into the fact store.
type ExtractionService interface {
	// ExtractDocument reads the stored document text, extracts fields via
	// the LLM, persists them, and applies them as fact candidates.
	ExtractDocument(ctx context.Context, documentID uuid.UUID) (*ExtractionResult, error)
}

type extractionService struct {
	docRepo     repositories.DocumentRepository
	fieldRepo   repositories.ExtractedFieldRepository
	factStore   FactStore
	store       storage.Store
	llmClient   llm.Client
	temperature float64
	logger      *zap.Logger
}

// NewExtractionService creates the extraction pipeline service.
func NewExtractionService(
	docRepo repositories.DocumentRepository,
	fieldRepo repositories.ExtractedFieldRepository,
	factStore FactStore,
	store storage.Store,
	llmClient llm.Client,
	temperature float64,
	logger *zap.Logger,
) ExtractionService {
	return &extractionService{
		docRepo:     docRepo,
		fieldRepo:   fieldRepo,
		factStore:   factStore,
		store:       store,
		llmClient:   llmClient,
		temperature: temperature,
		logger:      logger.Named("extraction"),
	}
}

var _ ExtractionService = (*extractionService)(nil)

func (s *extractionService) ExtractDocument(ctx context.Context, documentID uuid.UUID) (*ExtractionResult, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", documentID, apperrors.ErrNotFound)
	}

	if !isTextDocument(doc) {
		return nil, fmt.Errorf("unsupported file type %q: %w", doc.FileType, apperrors.ErrValidation)
	}

	if err := s.docRepo.UpdateStatus(ctx, documentID, models.DocumentStatusProcessing); err != nil {
		return nil, fmt.Errorf("mark document processing: %w", err)
	}

	result, err := s.extract(ctx, doc)
	if err != nil {
		if statusErr := s.docRepo.UpdateStatus(ctx, documentID, models.DocumentStatusFailed); statusErr != nil {
			s.logger.Error("Failed to mark document failed",
				zap.String("document_id", documentID.String()),
				zap.Error(statusErr))
		}
		return nil, err
	}

	if err := s.docRepo.UpdateStatus(ctx, documentID, models.DocumentStatusCompleted); err != nil {
		return nil, fmt.Errorf("mark document completed: %w", err)
	}

	return result, nil
}

func (s *extractionService) extract(ctx context.Context, doc *models.Document) (*ExtractionResult, error) {
	f, err := s.store.Open(doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open document file: %w", err)
	}
	defer f.Close()

	text, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read document file: %w", err)
	}

	prompt := buildExtractionPrompt(string(text))

	s.logger.Info("Extracting fields from document",
		zap.String("document_id", doc.ID.String()),
		zap.String("model", s.llmClient.GetModel()),
		zap.Int("text_len", len(text)))

	response, err := s.llmClient.GenerateResponse(ctx, prompt, extractionSystemMessage, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("generate extraction response: %w", err)
	}

	parsed, err := llm.ParseJSONResponse[extractedFieldsResponse](response)
	if err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	now := time.Now().UTC()
	var persisted []*models.ExtractedField
	var candidates []models.CandidateField

	for _, ef := range parsed.Fields {
		factKey, ok := fields.Match(ef.FieldName)
		if !ok {
			s.logger.Warn("Skipping unrecognized field",
				zap.String("document_id", doc.ID.String()),
				zap.String("field_name", ef.FieldName))
			continue
		}

		field := &models.ExtractedField{
			DocumentID:       doc.ID,
			FieldName:        factKey,
			FieldType:        ef.FieldType,
			Value:            ef.Value,
			Confidence:       ef.Confidence,
			ExtractionMethod: models.ExtractionMethodLLM,
			ExtractionDate:   now,
			Context:          ef.Notes,
		}
		if err := s.fieldRepo.Create(ctx, field); err != nil {
			return nil, fmt.Errorf("persist extracted field %q: %w", factKey, err)
		}
		persisted = append(persisted, field)

		fieldID := field.ID
		candidates = append(candidates, models.CandidateField{
			FieldName:        factKey,
			Value:            ef.Value,
			Confidence:       ef.Confidence,
			ExtractionMethod: models.ExtractionMethodLLM,
			ExtractionDate:   now,
			SourceFieldID:    &fieldID,
		})
	}

	changed, err := s.factStore.ApplyExtractionBatch(ctx, doc.ID, candidates)
	if err != nil {
		return nil, fmt.Errorf("apply extraction batch: %w", err)
	}

	return &ExtractionResult{
		DocumentID:      doc.ID,
		ExtractedFields: persisted,
		FactsChanged:    changed,
	}, nil
}

// isTextDocument reports whether the stored file can be read as plain text.
// Binary formats need a parsing stage this pipeline does not have.
func isTextDocument(doc *models.Document) bool {
	switch strings.ToLower(doc.FileType) {
	case "txt", "text", "md", "csv":
		return true
	}
	return strings.HasPrefix(doc.MimeType, "text/")
}
