package object

import (
	"context"
	"io"
)

// ObjectStore stages uploaded documents for the lifetime of one request.
type ObjectStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// SniffLen is how many leading bytes stores read to detect content type.
const SniffLen = 3072
