package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
)

type CollectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(ctx context.Context, col *domain.Collection) error {
	err := r.db.QueryRowContext(ctx, `
INSERT INTO collections (user_id, name, description, remote_name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`,
		col.UserID, col.Name, col.Description, col.RemoteName, col.CreatedAt, col.UpdatedAt,
	).Scan(&col.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrCollectionExists, "insert collection", err)
		}
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

func (r *CollectionRepository) GetByID(ctx context.Context, id int64) (*domain.Collection, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, description, remote_name, created_at, updated_at
FROM collections
WHERE id = $1
`, id)

	var col domain.Collection
	var description sql.NullString
	err := row.Scan(&col.ID, &col.UserID, &col.Name, &description, &col.RemoteName, &col.CreatedAt, &col.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCollectionNotFound, "get collection", err)
		}
		return nil, fmt.Errorf("scan collection: %w", err)
	}
	col.Description = description.String
	return &col, nil
}

func (r *CollectionRepository) ExistsByUserAndName(ctx context.Context, userID int64, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM collections WHERE user_id = $1 AND name = $2)
`, userID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check collection name: %w", err)
	}
	return exists, nil
}

func (r *CollectionRepository) ListByUserWithCounts(ctx context.Context, userID int64) ([]domain.CollectionWithCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.user_id, c.name, c.description, c.remote_name, c.created_at, c.updated_at, COUNT(d.id)
FROM collections c
LEFT JOIN documents d ON d.collection_id = c.id
WHERE c.user_id = $1
GROUP BY c.id
ORDER BY c.created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CollectionWithCount, 0)
	for rows.Next() {
		var item domain.CollectionWithCount
		var description sql.NullString
		err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &description, &item.RemoteName,
			&item.CreatedAt, &item.UpdatedAt, &item.DocumentCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan collection row: %w", err)
		}
		item.Description = description.String
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return out, nil
}

// DeleteCascade removes the collection's documents and then the collection
// itself in one transaction, mirroring what an ON DELETE CASCADE does but
// keeping the ordering explicit.
func (r *CollectionRepository) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection_id = $1`, id); err != nil {
		return fmt.Errorf("delete collection documents: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete collection rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrCollectionNotFound, "delete collection", sql.ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}
