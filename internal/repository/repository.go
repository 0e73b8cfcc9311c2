package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"alcyxob/routine-builder/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrInvalidOwner = RepositoryError("invalid owner id")
	ErrInvalidRow   = RepositoryError("invalid row")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// BlobStore persists each collection of an owner's workspace as one JSON
// array. Load returns ErrNotFound when the collection was never saved.
type BlobStore interface {
	Load(ctx context.Context, owner string, c domain.Collection) ([]byte, error)
	Save(ctx context.Context, owner string, c domain.Collection, blob []byte) error
}

// Row is one element of a collection as stored by the row oriented backends.
// Key is the element's natural key and Position its index in the array.
type Row struct {
	Key      string
	Position int
	Body     json.RawMessage
}

// SplitRows breaks a collection blob into keyed rows.
func SplitRows(c domain.Collection, blob []byte) ([]Row, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON array: %v", ErrInvalidRow, c, err)
	}

	rows := make([]Row, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		key, err := RowKey(c, item)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate key %q in %s", ErrInvalidRow, key, c)
		}
		seen[key] = true
		rows = append(rows, Row{Key: key, Position: i, Body: item})
	}
	return rows, nil
}

// JoinRows rebuilds a collection blob from rows already sorted by position.
func JoinRows(rows []Row) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(r.Body)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// RowKey extracts the natural key of a collection element: the lower-cased
// name of a tag, the id of anything else.
func RowKey(c domain.Collection, item json.RawMessage) (string, error) {
	var head struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRow, c, err)
	}

	var key string
	if c == domain.CollectionTags {
		key = strings.ToLower(strings.TrimSpace(head.Name))
	} else {
		key = strings.Trim(string(bytes.TrimSpace(head.ID)), `"`)
		if key == "null" {
			key = ""
		}
	}
	if key == "" {
		return "", fmt.Errorf("%w: %s element without a key", ErrInvalidRow, c)
	}
	return key, nil
}

// ValidOwner reports whether owner is safe to use in file names and keys.
func ValidOwner(owner string) bool {
	if owner == "" || len(owner) > 128 {
		return false
	}
	for _, r := range owner {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == '@':
		default:
			return false
		}
	}
	return owner != "." && owner != ".."
}
