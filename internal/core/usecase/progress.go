package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
	"github.com/sjlee-dev/ragdocs/internal/core/ports"
)

// ProgressUseCase applies processing stage updates the AI service reports
// out of band. Stages only move forward: duplicates and late-arriving
// events are dropped rather than rewinding the document.
type ProgressUseCase struct {
	documents ports.DocumentRepository
}

func NewProgressUseCase(documents ports.DocumentRepository) *ProgressUseCase {
	return &ProgressUseCase{documents: documents}
}

func (uc *ProgressUseCase) Apply(ctx context.Context, event domain.StatusEvent) error {
	if !event.Status.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "apply progress",
			fmt.Errorf("unknown status %q", event.Status))
	}
	if event.DocumentID <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "apply progress", errors.New("missing document id"))
	}

	doc, err := uc.documents.GetByID(ctx, event.DocumentID)
	if err != nil {
		return err
	}

	if !domain.CanTransition(doc.Status, event.Status) {
		slog.Debug("progress_event_skipped",
			"document_id", event.DocumentID,
			"from", doc.Status,
			"to", event.Status,
		)
		return nil
	}

	message := ""
	if event.Status == domain.StatusError {
		message = event.Message
		if message == "" {
			message = "ai processing failed"
		}
	}
	if err := uc.documents.UpdateStatus(ctx, doc.ID, event.Status, message); err != nil {
		return fmt.Errorf("apply progress update: %w", err)
	}

	slog.Info("document_progress_applied",
		"document_id", doc.ID,
		"from", doc.Status,
		"to", event.Status,
	)
	return nil
}
