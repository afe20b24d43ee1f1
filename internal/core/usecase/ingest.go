package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
	"github.com/sjlee-dev/ragdocs/internal/core/ports"
)

type IngestConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

// IngestDocumentUseCase orchestrates one document upload end to end:
// validation, ownership, dedup, byte persistence, metadata persistence,
// and delegation to the AI service. The metadata row is the durable record
// of intent and is never deleted on delegation failure.
type IngestDocumentUseCase struct {
	documents   ports.DocumentRepository
	collections ports.CollectionRepository
	users       ports.UserRepository
	store       ports.FileStore
	hasher      ports.ContentHasher
	prober      ports.MetadataProber
	ai          ports.AiProcessor
	events      ports.StatusEventBus
	cfg         IngestConfig
}

func NewIngestDocumentUseCase(
	documents ports.DocumentRepository,
	collections ports.CollectionRepository,
	users ports.UserRepository,
	store ports.FileStore,
	hasher ports.ContentHasher,
	prober ports.MetadataProber,
	ai ports.AiProcessor,
	events ports.StatusEventBus,
	cfg IngestConfig,
) *IngestDocumentUseCase {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 << 20
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{"pdf"}
	}
	return &IngestDocumentUseCase{
		documents:   documents,
		collections: collections,
		users:       users,
		store:       store,
		hasher:      hasher,
		prober:      prober,
		ai:          ai,
		events:      events,
		cfg:         cfg,
	}
}

func (uc *IngestDocumentUseCase) Upload(ctx context.Context, in ports.UploadInput) (*domain.Document, error) {
	if err := uc.validate(in); err != nil {
		return nil, err
	}

	collection, err := uc.resolveOwnership(ctx, in.UserID, in.CollectionID)
	if err != nil {
		return nil, err
	}

	fileHash, err := uc.hasher.Sum(in.Content)
	if err != nil {
		return nil, fmt.Errorf("compute fingerprint: %w", err)
	}

	duplicate, err := uc.documents.ExistsByHashAndCollection(ctx, fileHash, collection.ID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if duplicate {
		return nil, domain.WrapError(domain.ErrDuplicateDocument, "dedup check",
			errors.New("identical content already uploaded to this collection"))
	}

	filePath, err := uc.store.Save(ctx, in.UserID, collection.ID, in.Filename, in.Content)
	if err != nil {
		return nil, fmt.Errorf("persist bytes: %w", err)
	}

	doc, err := uc.createRecord(ctx, in, collection, fileHash, filePath)
	if err != nil {
		return nil, err
	}

	if err := uc.delegate(ctx, doc, collection); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListByCollection returns the documents of one collection, newest first.
// Ownership rules match Upload: the collection must belong to the caller.
func (uc *IngestDocumentUseCase) ListByCollection(ctx context.Context, userID, collectionID int64) ([]domain.Document, error) {
	collection, err := uc.resolveOwnership(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	docs, err := uc.documents.ListByUserAndCollection(ctx, userID, collection.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (uc *IngestDocumentUseCase) validate(in ports.UploadInput) error {
	if len(in.Content) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("file is empty"))
	}
	if int64(len(in.Content)) > uc.cfg.MaxFileSize {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("file size %d exceeds limit %d", len(in.Content), uc.cfg.MaxFileSize))
	}
	ext := fileExtension(in.Filename)
	for _, allowed := range uc.cfg.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return domain.WrapError(domain.ErrInvalidInput, "validate upload",
		fmt.Errorf("unsupported file type %q", ext))
}

func (uc *IngestDocumentUseCase) resolveOwnership(ctx context.Context, userID, collectionID int64) (*domain.Collection, error) {
	exists, err := uc.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, domain.WrapError(domain.ErrUserNotFound, "resolve ownership",
			fmt.Errorf("user %d", userID))
	}

	collection, err := uc.collections.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if collection.UserID != userID {
		return nil, domain.WrapError(domain.ErrForbidden, "resolve ownership",
			fmt.Errorf("collection %d is not owned by user %d", collectionID, userID))
	}
	return collection, nil
}

func (uc *IngestDocumentUseCase) createRecord(
	ctx context.Context,
	in ports.UploadInput,
	collection *domain.Collection,
	fileHash, filePath string,
) (*domain.Document, error) {
	now := time.Now().UTC()
	doc := &domain.Document{
		CollectionID: collection.ID,
		UserID:       in.UserID,
		Filename:     in.Filename,
		FilePath:     filePath,
		FileType:     fileExtension(in.Filename),
		FileSize:     int64(len(in.Content)),
		FileHash:     fileHash,
		Status:       domain.StatusQueued,
		Metadata:     uc.probeMetadata(in),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A unique-index violation here is the losing side of two concurrent
	// uploads of the same content; surface it as a duplicate.
	if err := uc.documents.Create(ctx, doc); err != nil {
		if domain.IsKind(err, domain.ErrDuplicateDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("create document record: %w", err)
	}

	uc.publishStatus(ctx, doc.ID, domain.StatusQueued, "")
	return doc, nil
}

func (uc *IngestDocumentUseCase) delegate(ctx context.Context, doc *domain.Document, collection *domain.Collection) error {
	if err := uc.markStatus(ctx, doc, domain.StatusParsing, ""); err != nil {
		return fmt.Errorf("mark delegation started: %w", err)
	}

	ack, err := uc.ai.IndexDocument(ctx, doc.ID, collection.RemoteName, doc.FilePath, doc.Filename)
	if err != nil {
		message := "ai processing failed: " + err.Error()
		if markErr := uc.markStatus(ctx, doc, domain.StatusError, message); markErr != nil {
			slog.Error("mark_document_error_failed", "document_id", doc.ID, "error", markErr)
		}
		return domain.WrapError(domain.ErrUploadFailed, "delegate to ai service", err)
	}

	if indexCompleted(ack.Status) {
		if err := uc.markStatus(ctx, doc, domain.StatusDone, ""); err != nil {
			return fmt.Errorf("mark document done: %w", err)
		}
	}

	slog.Info("document_delegated",
		"document_id", doc.ID,
		"collection", collection.RemoteName,
		"ai_status", ack.Status,
		"chunk_count", ack.ChunkCount,
	)
	return nil
}

func (uc *IngestDocumentUseCase) markStatus(ctx context.Context, doc *domain.Document, status domain.DocumentStatus, errMessage string) error {
	if err := uc.documents.UpdateStatus(ctx, doc.ID, status, errMessage); err != nil {
		return err
	}
	doc.Status = status
	doc.ErrorMessage = errMessage
	doc.UpdatedAt = time.Now().UTC()
	uc.publishStatus(ctx, doc.ID, status, errMessage)
	return nil
}

// publishStatus is best-effort: event delivery never gates ingestion.
func (uc *IngestDocumentUseCase) publishStatus(ctx context.Context, documentID int64, status domain.DocumentStatus, message string) {
	if uc.events == nil {
		return
	}
	event := domain.StatusEvent{
		EventID:    uuid.NewString(),
		DocumentID: documentID,
		Status:     status,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.events.PublishStatusChanged(ctx, event); err != nil {
		slog.Warn("status_event_publish_failed", "document_id", documentID, "status", status, "error", err)
	}
}

func (uc *IngestDocumentUseCase) probeMetadata(in ports.UploadInput) map[string]any {
	if uc.prober == nil {
		return nil
	}
	metadata, err := uc.prober.Probe(in.Content)
	if err != nil {
		slog.Debug("metadata_probe_failed", "filename", in.Filename, "error", err)
		return nil
	}
	return metadata
}

func indexCompleted(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "completed", "done":
		return true
	default:
		return false
	}
}

func fileExtension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.ToLower(ext)
}
