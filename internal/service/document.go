package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dms/internal/model"
	"dms/internal/policy"
	"dms/internal/repository"
	"dms/internal/storage"
)

// documentContentType is the media type of stored document bodies.
const documentContentType = "text/plain; charset=utf-8"

// NewDocument is the input of DocumentService.Create. Access defaults to public.
type NewDocument struct {
	Title   string
	Content string
	Access  string
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Create uploads the content to object storage, saves metadata to DB, and rolls back storage if DB save fails.
	Create(ctx context.Context, requester policy.Principal, in NewDocument) (*model.Document, error)

	// Get returns a single document with its content.
	Get(ctx context.Context, requester policy.Principal, id int64) (*model.Document, error)

	// ListByOwner returns the documents of ownerID the requester may see.
	ListByOwner(ctx context.Context, requester policy.Principal, ownerID int64) ([]model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, requester policy.Principal, id int64) error
}

type documentService struct {
	store  storage.Storage
	repo   repository.DocumentRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, logger *zap.Logger) DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{store: store, repo: repo, logger: logger, now: time.Now}
}

func (s *documentService) Create(ctx context.Context, requester policy.Principal, in NewDocument) (*model.Document, error) {
	title := strings.TrimSpace(in.Title)
	if err := required("title", title); err != nil {
		return nil, err
	}
	access, err := model.ParseAccess(in.Access)
	if err != nil {
		return nil, &ValidationError{Field: "access", Reason: err.Error()}
	}

	key := path.Join("documents", strconv.FormatInt(requester.ID, 10), uuid.NewString()+".txt")
	objInfo, err := s.store.Put(ctx, key, strings.NewReader(in.Content), storage.PutObjectOptions{
		Size:        int64(len(in.Content)),
		ContentType: documentContentType,
		Metadata:    map[string]string{"owner": strconv.FormatInt(requester.ID, 10)},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := s.now().UTC()
	stored, err := s.repo.Create(ctx, &model.Document{
		Title:       title,
		Owner:       requester.ID,
		Access:      access,
		ContentType: documentContentType,
		Size:        objInfo.Size,
		StoragePath: objInfo.Key,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			s.logger.Error("storage rollback failed", zap.String("key", objInfo.Key), zap.Error(delErr))
		}
		return nil, storeError("create document", err)
	}
	stored.Content = in.Content
	return stored, nil
}

func (s *documentService) Get(ctx context.Context, requester policy.Principal, id int64) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find document", err)
	}
	if !policy.CanViewDocument(requester, *doc) {
		return nil, ErrUnauthorized
	}

	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("document body missing", zap.Int64("document_id", doc.ID), zap.String("key", doc.StoragePath))
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load document body: %w", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	doc.Content = string(body)
	return doc, nil
}

func (s *documentService) ListByOwner(ctx context.Context, requester policy.Principal, ownerID int64) ([]model.Document, error) {
	filter := repository.DocumentFilter{Owner: ownerID}
	full := policy.HasPermission(requester, ownerID)
	if !full {
		public := model.AccessPublic
		filter.Access = &public
	}

	docs, err := s.repo.FindByOwner(ctx, filter)
	if err != nil {
		return nil, storeError("list documents", err)
	}
	if len(docs) == 0 && !full {
		return nil, ErrNotFound
	}
	return docs, nil
}

func (s *documentService) Delete(ctx context.Context, requester policy.Principal, id int64) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError("find document", err)
	}
	if !policy.HasPermission(requester, doc.Owner) {
		return ErrUnauthorized
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete document", err)
	}
	return nil
}
