package ports

import (
	"context"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	ListByUserAndCollection(ctx context.Context, userID, collectionID int64) ([]domain.Document, error)
	ExistsByHashAndCollection(ctx context.Context, fileHash string, collectionID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.DocumentStatus, errMessage string) error
}

// CollectionRepository persists collections and their ownership.
type CollectionRepository interface {
	Create(ctx context.Context, col *domain.Collection) error
	GetByID(ctx context.Context, id int64) (*domain.Collection, error)
	ExistsByUserAndName(ctx context.Context, userID int64, name string) (bool, error)
	ListByUserWithCounts(ctx context.Context, userID int64) ([]domain.CollectionWithCount, error)
	DeleteCascade(ctx context.Context, id int64) error
}

// UserRepository answers ownership lookups.
type UserRepository interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

// FileStore persists uploaded bytes and returns a durable reference.
type FileStore interface {
	Save(ctx context.Context, userID, collectionID int64, filename string, content []byte) (string, error)
}

// ContentHasher computes the content fingerprint used for deduplication.
type ContentHasher interface {
	Sum(content []byte) (string, error)
}

// MetadataProber extracts optional metadata from uploaded bytes.
type MetadataProber interface {
	Probe(content []byte) (map[string]any, error)
}

// AiCollectionAck is the AI service's response to a collection create call.
type AiCollectionAck struct {
	Status         string
	CollectionName string
	Message        string
}

// AiIndexAck is the AI service's response to a document index call.
type AiIndexAck struct {
	Status     string
	DocumentID int64
	Message    string
	ChunkCount int
}

// AiProcessor wraps all outbound calls to the external AI service.
type AiProcessor interface {
	HealthCheck(ctx context.Context) bool
	CreateCollection(ctx context.Context, name string) (AiCollectionAck, error)
	DeleteCollection(ctx context.Context, name string) error
	IndexDocument(ctx context.Context, documentID int64, collection, filePath, filename string) (AiIndexAck, error)
}

// StatusEventBus publishes lifecycle transitions and delivers AI-service
// progress events.
type StatusEventBus interface {
	PublishStatusChanged(ctx context.Context, event domain.StatusEvent) error
	SubscribeProgress(ctx context.Context, handler func(context.Context, domain.StatusEvent) error) error
}
