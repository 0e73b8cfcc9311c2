// Package storage publishes exported artifacts (calendar feeds, backups) to
// object storage and hands out temporary download links.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultLinkExpiry is used when a caller passes a non-positive expiry.
const DefaultLinkExpiry = 15 * time.Minute

var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore is the subset of object storage the exports need.
type ObjectStore interface {
	// PutObject uploads body under key.
	PutObject(ctx context.Context, key, contentType string, body io.Reader) error

	// GeneratePresignedDownloadURL creates a temporary GET link for key.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, key string) error
}

// ExportKey builds the object key of an owner's exported file.
func ExportKey(owner, fileName string) (string, error) {
	owner = strings.TrimSpace(owner)
	fileName = strings.TrimSpace(fileName)
	if owner == "" || fileName == "" || strings.ContainsAny(owner+fileName, "/\\") {
		return "", fmt.Errorf("%w: owner %q file %q", ErrInvalidKey, owner, fileName)
	}
	return "exports/" + owner + "/" + fileName, nil
}
