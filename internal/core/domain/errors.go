package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrForbidden          = errors.New("forbidden")
	ErrCollectionExists   = errors.New("collection already exists")
	ErrDuplicateDocument  = errors.New("duplicate document")
	ErrStorageWrite       = errors.New("storage write failed")
	ErrHashFailure        = errors.New("hash computation failed")
	ErrAiService          = errors.New("ai service error")
	ErrTemporary          = errors.New("temporary failure")
	ErrUploadFailed       = errors.New("document upload failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ErrorCode maps an error to its stable API code. Unclassified errors
// collapse to the generic internal code so internals never leak to callers.
func ErrorCode(err error) string {
	switch {
	case IsKind(err, ErrInvalidInput):
		return "COMM_02"
	case IsKind(err, ErrForbidden):
		return "AUTH_004"
	case IsKind(err, ErrUserNotFound):
		return "USER_001"
	case IsKind(err, ErrCollectionNotFound):
		return "NS_001"
	case IsKind(err, ErrCollectionExists):
		return "NS_002"
	case IsKind(err, ErrDocumentNotFound):
		return "DOC_001"
	case IsKind(err, ErrDuplicateDocument):
		return "DOC_004"
	case IsKind(err, ErrUploadFailed), IsKind(err, ErrStorageWrite), IsKind(err, ErrHashFailure):
		return "DOC_002"
	case IsKind(err, ErrTemporary):
		return "AI_002"
	case IsKind(err, ErrAiService):
		return "AI_001"
	default:
		return "SERVER_001"
	}
}
