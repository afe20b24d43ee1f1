package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
)

// SHA256Hasher computes the content fingerprint used for dedup checks.
type SHA256Hasher struct{}

func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

func (h *SHA256Hasher) Sum(content []byte) (string, error) {
	if content == nil {
		return "", domain.WrapError(domain.ErrHashFailure, "hash content", errors.New("nil content"))
	}
	digest := sha256.Sum256(content)
	return hex.EncodeToString(digest[:]), nil
}
