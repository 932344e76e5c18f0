package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/apperrors"
	"github.com/canonry/fact-engine/pkg/models"
	"github.com/canonry/fact-engine/pkg/repositories"
	"github.com/canonry/fact-engine/pkg/storage"
)

// DocumentService manages uploaded documents and their stored files.
type DocumentService interface {
	Upload(ctx context.Context, filename, mimeType, description, tags string, size int64, r io.Reader) (*models.Document, error)
	Get(ctx context.Context, documentID uuid.UUID) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	ListFields(ctx context.Context, documentID uuid.UUID) ([]*models.ExtractedField, error)
	// Delete removes the document row and its stored file. Facts sourced
	// from the document survive with their source reference nulled.
	Delete(ctx context.Context, documentID uuid.UUID) error
}

type documentService struct {
	docRepo   repositories.DocumentRepository
	fieldRepo repositories.ExtractedFieldRepository
	store     storage.Store
	logger    *zap.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	fieldRepo repositories.ExtractedFieldRepository,
	store storage.Store,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		fieldRepo: fieldRepo,
		store:     store,
		logger:    logger.Named("documents"),
	}
}

var _ DocumentService = (*documentService)(nil)

func (s *documentService) Upload(ctx context.Context, filename, mimeType, description, tags string, size int64, r io.Reader) (*models.Document, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required: %w", apperrors.ErrValidation)
	}

	path, err := s.store.Save(filename, r)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &models.Document{
		Filename:    filename,
		FilePath:    path,
		FileType:    strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		FileSize:    size,
		MimeType:    mimeType,
		Status:      models.DocumentStatusPending,
		Description: description,
		Tags:        tags,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// Keep storage consistent with the database on failure.
		if rmErr := s.store.Delete(path); rmErr != nil {
			s.logger.Error("Failed to remove orphaned upload",
				zap.String("path", path),
				zap.Error(rmErr))
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.logger.Info("Uploaded document",
		zap.String("document_id", doc.ID.String()),
		zap.String("filename", filename),
		zap.Int64("size", size))

	return doc, nil
}

func (s *documentService) Get(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", documentID, apperrors.ErrNotFound)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context) ([]*models.Document, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *documentService) ListFields(ctx context.Context, documentID uuid.UUID) ([]*models.ExtractedField, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", documentID, apperrors.ErrNotFound)
	}

	fields, err := s.fieldRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list extracted fields: %w", err)
	}
	return fields, nil
}

func (s *documentService) Delete(ctx context.Context, documentID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", documentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", documentID, apperrors.ErrNotFound)
	}

	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}

	if err := s.store.Delete(doc.FilePath); err != nil {
		s.logger.Error("Failed to remove stored file",
			zap.String("document_id", documentID.String()),
			zap.String("path", doc.FilePath),
			zap.Error(err))
	}

	s.logger.Info("Deleted document", zap.String("document_id", documentID.String()))
	return nil
}
