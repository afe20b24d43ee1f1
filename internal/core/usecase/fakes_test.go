package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
	"github.com/sjlee-dev/ragdocs/internal/core/ports"
)

type statusUpdate struct {
	id      int64
	status  domain.DocumentStatus
	message string
}

type docRepoFake struct {
	mu      sync.Mutex
	nextID  int64
	byHash  map[string]bool
	docs    map[int64]*domain.Document
	updates []statusUpdate

	createErr error
	existsErr error
	updateErr error
}

func newDocRepoFake() *docRepoFake {
	return &docRepoFake{
		byHash: map[string]bool{},
		docs:   map[int64]*domain.Document{},
	}
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	key := doc.FileHash + "/" + fmt.Sprint(doc.CollectionID)
	if f.byHash[key] {
		return domain.WrapError(domain.ErrDuplicateDocument, "insert document", errors.New("unique violation"))
	}
	f.byHash[key] = true
	f.nextID++
	doc.ID = f.nextID
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("missing"))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *docRepoFake) ListByUserAndCollection(_ context.Context, userID, collectionID int64) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Document, 0)
	for _, doc := range f.docs {
		if doc.UserID == userID && doc.CollectionID == collectionID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *docRepoFake) ExistsByHashAndCollection(_ context.Context, fileHash string, collectionID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.byHash[fileHash+"/"+fmt.Sprint(collectionID)], nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id int64, status domain.DocumentStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", errors.New("missing"))
	}
	doc.Status = status
	doc.ErrorMessage = errMessage
	f.updates = append(f.updates, statusUpdate{id: id, status: status, message: errMessage})
	return nil
}

type collectionRepoFake struct {
	collections map[int64]*domain.Collection
	names       map[string]bool
	created     []*domain.Collection
	deleted     []int64

	createErr error
	deleteErr error
}

func newCollectionRepoFake() *collectionRepoFake {
	return &collectionRepoFake{
		collections: map[int64]*domain.Collection{},
		names:       map[string]bool{},
	}
}

func (f *collectionRepoFake) add(col *domain.Collection) {
	f.collections[col.ID] = col
	f.names[fmt.Sprint(col.UserID)+"/"+col.Name] = true
}

func (f *collectionRepoFake) Create(_ context.Context, col *domain.Collection) error {
	if f.createErr != nil {
		return f.createErr
	}
	col.ID = int64(len(f.collections) + 1)
	f.add(col)
	f.created = append(f.created, col)
	return nil
}

func (f *collectionRepoFake) GetByID(_ context.Context, id int64) (*domain.Collection, error) {
	col, ok := f.collections[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrCollectionNotFound, "get collection", errors.New("missing"))
	}
	return col, nil
}

func (f *collectionRepoFake) ExistsByUserAndName(_ context.Context, userID int64, name string) (bool, error) {
	return f.names[fmt.Sprint(userID)+"/"+name], nil
}

func (f *collectionRepoFake) ListByUserWithCounts(_ context.Context, userID int64) ([]domain.CollectionWithCount, error) {
	out := make([]domain.CollectionWithCount, 0)
	for _, col := range f.collections {
		if col.UserID == userID {
			out = append(out, domain.CollectionWithCount{Collection: *col})
		}
	}
	return out, nil
}

func (f *collectionRepoFake) DeleteCascade(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.collections[id]; !ok {
		return domain.WrapError(domain.ErrCollectionNotFound, "delete collection", errors.New("missing"))
	}
	delete(f.collections, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type userRepoFake struct {
	users map[int64]bool
	err   error
}

func (f *userRepoFake) Exists(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.users[userID], nil
}

type fileStoreFake struct {
	saved map[string][]byte
	err   error
}

func newFileStoreFake() *fileStoreFake {
	return &fileStoreFake{saved: map[string][]byte{}}
}

func (f *fileStoreFake) Save(_ context.Context, userID, collectionID int64, filename string, content []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := fmt.Sprintf("/uploads/user_%d/namespace_%d/%s", userID, collectionID, filename)
	f.saved[path] = append([]byte(nil), content...)
	return path, nil
}

type hasherFake struct {
	err error
}

func (f *hasherFake) Sum(content []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%x", content), nil
}

type proberFake struct {
	metadata map[string]any
	err      error
}

func (f *proberFake) Probe([]byte) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.metadata, nil
}

type aiCall struct {
	operation  string
	documentID int64
	collection string
}

type aiProcessorFake struct {
	mu    sync.Mutex
	calls []aiCall

	indexAck  ports.AiIndexAck
	indexErr  error
	createAck ports.AiCollectionAck
	createErr error
	deleteErr error
}

func (f *aiProcessorFake) HealthCheck(context.Context) bool { return true }

func (f *aiProcessorFake) CreateCollection(_ context.Context, name string) (ports.AiCollectionAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, aiCall{operation: "create", collection: name})
	if f.createErr != nil {
		return ports.AiCollectionAck{}, f.createErr
	}
	return f.createAck, nil
}

func (f *aiProcessorFake) DeleteCollection(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, aiCall{operation: "delete", collection: name})
	return f.deleteErr
}

func (f *aiProcessorFake) IndexDocument(_ context.Context, documentID int64, collection, _, _ string) (ports.AiIndexAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, aiCall{operation: "index", documentID: documentID, collection: collection})
	if f.indexErr != nil {
		return ports.AiIndexAck{}, f.indexErr
	}
	return f.indexAck, nil
}

func (f *aiProcessorFake) callsFor(operation string) []aiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]aiCall, 0)
	for _, call := range f.calls {
		if call.operation == operation {
			out = append(out, call)
		}
	}
	return out
}

type eventBusFake struct {
	mu     sync.Mutex
	events []domain.StatusEvent
	err    error
}

func (f *eventBusFake) PublishStatusChanged(_ context.Context, event domain.StatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *eventBusFake) SubscribeProgress(context.Context, func(context.Context, domain.StatusEvent) error) error {
	return errors.New("not implemented")
}
