package storage

import (
	"context"
	"io"

	"github.com/duelsim/duelsim/internal/registry"
)

// Store is a file storage backend. Match transcripts land here.
type Store interface {
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// StoreKey locates the file store in the service registry.
var StoreKey = registry.Key[Store]("storage.store")
