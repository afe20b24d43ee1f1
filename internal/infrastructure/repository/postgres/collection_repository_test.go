package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
)

func newCollectionRepoWithMock(t *testing.T) (*CollectionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CollectionRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCollectionCreateTranslatesUniqueViolation(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	mock.ExpectQuery("INSERT INTO collections").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "collections_user_name_key"})

	err := repo.Create(context.Background(), &domain.Collection{UserID: 7, Name: "papers"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCollectionExists) {
		t.Fatalf("expected ErrCollectionExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCollectionGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, name").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByUserWithCountsOrdersAndScans(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "description", "remote_name", "created_at", "updated_at", "count"}).
		AddRow(int64(2), int64(7), "newer", nil, "7__newer", now, now, int64(3)).
		AddRow(int64(1), int64(7), "older", "desc", "7__older", now.Add(-time.Hour), now.Add(-time.Hour), int64(0))
	mock.ExpectQuery("SELECT c.id, c.user_id, c.name").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	items, err := repo.ListByUserWithCounts(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByUserWithCounts() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(items))
	}
	if items[0].Name != "newer" || items[0].DocumentCount != 3 {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].Description != "desc" {
		t.Fatalf("expected description scanned, got %q", items[1].Description)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteCascadeDeletesDocumentsThenCollection(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM documents").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM collections").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteCascade(context.Background(), 42); err != nil {
		t.Fatalf("DeleteCascade() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteCascadeReturnsNotFoundForMissingCollection(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM documents").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM collections").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), 404)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
