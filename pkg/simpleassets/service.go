package simpleassets

import "context"

// Service defines the main interface for the simple-assets library
type Service interface {
	// Accept validates and persists a new asset in PENDING state, then hands it
	// to the dispatcher. It returns the assigned id before publishing finishes.
	Accept(ctx context.Context, asset *Asset) (int64, error)

	// Search validates criteria and returns matching assets. An empty result
	// is not an error.
	Search(ctx context.Context, criteria *SearchCriteria) ([]*Asset, error)

	// GetAsset returns a single asset including its current status.
	GetAsset(ctx context.Context, id int64) (*Asset, error)
}
