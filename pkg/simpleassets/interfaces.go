package simpleassets

import (
	"context"
	"io"
)

// Repository defines the interface for asset persistence.
//
// UpdateStatus and UpdateStorageURL are silent no-ops when the id does not
// exist; they return nil rather than ErrAssetNotFound.
type Repository interface {
	// Save inserts the asset and returns the stored record with its assigned ID.
	Save(ctx context.Context, asset *Asset) (*Asset, error)

	// FindByID returns ErrAssetNotFound when the id does not exist.
	FindByID(ctx context.Context, id int64) (*Asset, error)

	// Search returns all assets matching the filter in filter.Sort order.
	Search(ctx context.Context, filter Filter) ([]*Asset, error)

	UpdateStatus(ctx context.Context, id int64, status AssetStatus) error
	UpdateStorageURL(ctx context.Context, id int64, url string) error
}

// BlobStore is the storage target the publisher writes asset bytes to.
type BlobStore interface {
	// Upload stores the content under objectKey
	Upload(ctx context.Context, objectKey string, reader io.Reader, params UploadParams) error

	// Download opens the content stored under objectKey
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// UploadParams contains optional parameters for uploading an object
type UploadParams struct {
	MimeType string
	Size     int64
}

// Dispatcher hands an accepted asset to the publisher without waiting for the
// outcome. A non-nil error means the dispatch itself was refused.
type Dispatcher interface {
	Dispatch(asset *Asset) error
}
