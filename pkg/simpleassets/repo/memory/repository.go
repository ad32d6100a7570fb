package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// Repository implements simpleassets.Repository using in-memory storage
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	assets map[int64]*simpleassets.Asset
	order  []int64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		assets: make(map[int64]*simpleassets.Asset),
	}
}

var _ simpleassets.Repository = (*Repository)(nil)

func (r *Repository) Save(ctx context.Context, asset *simpleassets.Asset) (*simpleassets.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *asset
	stored.ID = r.nextID
	stored.Content = nil
	if stored.Status == "" {
		stored.Status = simpleassets.AssetStatusPending
	}
	stored.UploadDate = stored.UploadDate.UTC()

	r.assets[stored.ID] = &stored
	r.order = append(r.order, stored.ID)

	result := stored
	return &result, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*simpleassets.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, simpleassets.ErrAssetNotFound
	}

	// Return a copy to prevent external modifications
	assetCopy := *asset
	return &assetCopy, nil
}

func (r *Repository) Search(ctx context.Context, filter simpleassets.Filter) ([]*simpleassets.Asset, error) {
	r.mu.RLock()
	all := make([]*simpleassets.Asset, 0, len(r.order))
	for _, id := range r.order {
		assetCopy := *r.assets[id]
		all = append(all, &assetCopy)
	}
	r.mu.RUnlock()

	return filter.Apply(all), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status simpleassets.AssetStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if asset, exists := r.assets[id]; exists {
		asset.Status = status
	}
	return nil
}

func (r *Repository) UpdateStorageURL(ctx context.Context, id int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if asset, exists := r.assets[id]; exists {
		asset.URL = url
	}
	return nil
}
