package domain

import "time"

type DocumentStatus string

const (
	StatusQueued    DocumentStatus = "queued"
	StatusParsing   DocumentStatus = "parsing"
	StatusChunking  DocumentStatus = "chunking"
	StatusEmbedding DocumentStatus = "embedding"
	StatusIndexing  DocumentStatus = "indexing"
	StatusDone      DocumentStatus = "done"
	StatusError     DocumentStatus = "error"
)

// statusRank orders the pipeline stages. Done is the last rank; Error sits
// outside the order and is reachable from any non-terminal stage.
var statusRank = map[DocumentStatus]int{
	StatusQueued:    0,
	StatusParsing:   1,
	StatusChunking:  2,
	StatusEmbedding: 3,
	StatusIndexing:  4,
	StatusDone:      5,
}

func (s DocumentStatus) Valid() bool {
	if s == StatusError {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

func (s DocumentStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// CanTransition reports whether a document may move between two statuses.
// Stages only move forward and terminal statuses are never left.
func CanTransition(from, to DocumentStatus) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == StatusError {
		return true
	}
	return statusRank[to] > statusRank[from]
}

type Document struct {
	ID           int64          `json:"id"`
	CollectionID int64          `json:"collection_id"`
	UserID       int64          `json:"user_id"`
	Filename     string         `json:"filename"`
	FilePath     string         `json:"file_path"`
	FileType     string         `json:"file_type"`
	FileSize     int64          `json:"file_size"`
	FileHash     string         `json:"file_hash"`
	Status       DocumentStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// StatusEvent is one document lifecycle transition, published by the
// orchestrator on its own updates and by the AI service as processing
// advances out of band.
type StatusEvent struct {
	EventID    string         `json:"event_id"`
	DocumentID int64          `json:"document_id"`
	Status     DocumentStatus `json:"status"`
	Message    string         `json:"message,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
