package simpleassets

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrValidation indicates malformed or missing input
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a search produced no usable result container
	ErrNotFound = errors.New("no assets found with the provided criteria")

	// ErrAssetNotFound indicates an asset id does not exist
	ErrAssetNotFound = errors.New("asset not found")

	// ErrPublishRejected indicates the publish dispatch was refused
	ErrPublishRejected = errors.New("upload publisher rejected the asset")

	// ErrUnsupportedMedia indicates an asset is neither an image nor a video
	ErrUnsupportedMedia = errors.New("only images and videos are allowed")

	// ErrInvalidStatus indicates an unknown status or a forbidden transition
	ErrInvalidStatus = errors.New("invalid asset status")

	// ErrObjectNotFound indicates a blob store has nothing under a key
	ErrObjectNotFound = errors.New("object not found")
)

// ValidationError describes rejected input. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PublishRejectedError is returned by Accept when the dispatcher refuses an
// asset after it has already been persisted.
type PublishRejectedError struct {
	AssetID int64
	Err     error
}

func (e *PublishRejectedError) Error() string {
	if e.Err == nil {
		return ErrPublishRejected.Error()
	}
	return fmt.Sprintf("%s %s", ErrPublishRejected.Error(), e.Err.Error())
}

func (e *PublishRejectedError) Is(target error) bool {
	return target == ErrPublishRejected
}

func (e *PublishRejectedError) Unwrap() error {
	return e.Err
}

// AssetError represents a storage failure during an asset operation
type AssetError struct {
	AssetID int64
	Op      string
	Err     error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset operation %s failed for asset %d: %v", e.Op, e.AssetID, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
