package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// Backend is an in-memory implementation of the simpleassets.BlobStore interface
type Backend struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	mimeTypes map[string]string
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:   make(map[string][]byte),
		mimeTypes: make(map[string]string),
	}
}

var _ simpleassets.BlobStore = (*Backend)(nil)

// Upload stores a copy of the reader's content under objectKey
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, params simpleassets.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	b.mimeTypes[objectKey] = mimeType
	return nil
}

// Download returns the content stored under objectKey
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, simpleassets.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// MimeType reports the type recorded at upload
func (b *Backend) MimeType(objectKey string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	mimeType, exists := b.mimeTypes[objectKey]
	return mimeType, exists
}

// Keys lists every stored object key
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		keys = append(keys, key)
	}
	return keys
}
