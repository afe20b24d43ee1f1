package ports

import (
	"context"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
)

// UploadInput carries one document upload request.
type UploadInput struct {
	UserID       int64
	CollectionID int64
	Filename     string
	Content      []byte
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, in UploadInput) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	ListByCollection(ctx context.Context, userID, collectionID int64) ([]domain.Document, error)
}

// CollectionManager is the inbound contract for collection lifecycle.
type CollectionManager interface {
	Create(ctx context.Context, userID int64, name, description string) (*domain.Collection, error)
	Delete(ctx context.Context, userID, collectionID int64) error
	List(ctx context.Context, userID int64) ([]domain.CollectionWithCount, error)
}

// StatusProgressor applies out-of-band processing stage updates.
type StatusProgressor interface {
	Apply(ctx context.Context, event domain.StatusEvent) error
}
