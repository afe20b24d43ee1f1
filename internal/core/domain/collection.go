package domain

import (
	"fmt"
	"time"
)

// Collection is a named group of documents owned by one user, mirrored by a
// remote collection in the AI service's vector store.
type Collection struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RemoteName  string    `json:"remote_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CollectionWithCount struct {
	Collection
	DocumentCount int64 `json:"document_count"`
}

// RemoteCollectionName derives the AI-side collection identifier. Combining
// the owner id with the per-user-unique name avoids remote collisions
// without a coordination service.
func RemoteCollectionName(userID int64, name string) string {
	return fmt.Sprintf("%d__%s", userID, name)
}
