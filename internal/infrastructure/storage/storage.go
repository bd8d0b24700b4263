// Package storage provides invoice image storage backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage errors
var (
	ErrEmptyKey           = errors.New("storage key is required")
	ErrObjectNotFound     = errors.New("object not found")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// InvoiceStorage stores and retrieves invoice image files
type InvoiceStorage interface {
	// Save writes the object under the given key, overwriting any previous content
	Save(ctx context.Context, key string, contentType string, r io.Reader) error

	// Open returns a reader for the object and its content type.
	// The caller must close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the object is present
	Exists(ctx context.Context, key string) (bool, error)
}

// allowedContentTypes maps accepted invoice upload types to file extensions
var allowedContentTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ValidateContentType checks that the uploaded file type is accepted
func ValidateContentType(contentType string) error {
	if _, ok := allowedContentTypes[normalizeContentType(contentType)]; !ok {
		return ErrUnsupportedContent
	}
	return nil
}

// NewInvoiceKey builds a collision-free storage key for an invoice image,
// partitioned by upload date for easy inspection of the backing store.
func NewInvoiceKey(expenseID uuid.UUID, contentType string) (string, error) {
	normalized := normalizeContentType(contentType)
	ext, ok := allowedContentTypes[normalized]
	if !ok {
		return "", ErrUnsupportedContent
	}
	now := time.Now().UTC()
	return fmt.Sprintf("invoices/%04d/%02d/%s-%s%s",
		now.Year(), now.Month(), expenseID, uuid.New(), ext), nil
}

// ContentTypeForKey derives the content type from a storage key's extension
func ContentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for contentType, e := range allowedContentTypes {
		if e == ext {
			return contentType
		}
	}
	if ext == ".jpeg" {
		return "image/jpeg"
	}
	return "application/octet-stream"
}

func normalizeContentType(contentType string) string {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	return normalized
}
