package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
	"github.com/sjlee-dev/ragdocs/internal/core/ports"
)

// CollectionUseCase manages the collection lifecycle on both sides: the
// local record and its remote twin inside the AI service.
type CollectionUseCase struct {
	collections ports.CollectionRepository
	users       ports.UserRepository
	ai          ports.AiProcessor
}

func NewCollectionUseCase(
	collections ports.CollectionRepository,
	users ports.UserRepository,
	ai ports.AiProcessor,
) *CollectionUseCase {
	return &CollectionUseCase{
		collections: collections,
		users:       users,
		ai:          ai,
	}
}

// Create provisions the remote collection first: if the AI service call
// fails, no local row exists and nothing points at a missing remote
// collection. If the local insert fails afterwards, the remote collection
// is removed again, best-effort.
func (uc *CollectionUseCase) Create(ctx context.Context, userID int64, name, description string) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create collection", errors.New("name is empty"))
	}

	exists, err := uc.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, domain.WrapError(domain.ErrUserNotFound, "create collection", fmt.Errorf("user %d", userID))
	}

	taken, err := uc.collections.ExistsByUserAndName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("check collection name: %w", err)
	}
	if taken {
		return nil, domain.WrapError(domain.ErrCollectionExists, "create collection",
			fmt.Errorf("user %d already has collection %q", userID, name))
	}

	remoteName := domain.RemoteCollectionName(userID, name)
	ack, err := uc.ai.CreateCollection(ctx, remoteName)
	if err != nil {
		return nil, fmt.Errorf("create remote collection: %w", err)
	}
	slog.Info("remote_collection_created", "remote_name", remoteName, "ai_status", ack.Status)

	now := time.Now().UTC()
	collection := &domain.Collection{
		UserID:      userID,
		Name:        name,
		Description: description,
		RemoteName:  remoteName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.collections.Create(ctx, collection); err != nil {
		uc.compensateRemote(ctx, remoteName)
		if domain.IsKind(err, domain.ErrCollectionExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create collection record: %w", err)
	}
	return collection, nil
}

// Delete removes the collection and its documents. Remote deletion is
// best-effort: local cleanup must never be blocked by a dead AI service.
func (uc *CollectionUseCase) Delete(ctx context.Context, userID, collectionID int64) error {
	collection, err := uc.collections.GetByID(ctx, collectionID)
	if err != nil {
		return err
	}
	if collection.UserID != userID {
		return domain.WrapError(domain.ErrForbidden, "delete collection",
			fmt.Errorf("collection %d is not owned by user %d", collectionID, userID))
	}

	if err := uc.ai.DeleteCollection(ctx, collection.RemoteName); err != nil {
		slog.Warn("remote_collection_delete_failed",
			"remote_name", collection.RemoteName,
			"error", err,
		)
	}

	if err := uc.collections.DeleteCascade(ctx, collection.ID); err != nil {
		return fmt.Errorf("delete collection record: %w", err)
	}
	slog.Info("collection_deleted", "collection_id", collection.ID, "name", collection.Name)
	return nil
}

func (uc *CollectionUseCase) List(ctx context.Context, userID int64) ([]domain.CollectionWithCount, error) {
	exists, err := uc.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, domain.WrapError(domain.ErrUserNotFound, "list collections", fmt.Errorf("user %d", userID))
	}
	return uc.collections.ListByUserWithCounts(ctx, userID)
}

func (uc *CollectionUseCase) compensateRemote(ctx context.Context, remoteName string) {
	if err := uc.ai.DeleteCollection(ctx, remoteName); err != nil {
		slog.Warn("remote_collection_compensation_failed", "remote_name", remoteName, "error", err)
	}
}
