package simpleassets_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-assets/pkg/simpleassets"
	"github.com/tendant/simple-assets/pkg/simpleassets/repo/memory"
)

// recordingRepo wraps the memory repository, records every status write and
// can be told to fail or panic on storage URL updates.
type recordingRepo struct {
	*memory.Repository

	mu         sync.Mutex
	saves      int
	statuses   map[int64][]simpleassets.AssetStatus
	urlErr     error
	panicOnURL bool
	nilSearch  bool
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{
		Repository: memory.New(),
		statuses:   make(map[int64][]simpleassets.AssetStatus),
	}
}

func (r *recordingRepo) Save(ctx context.Context, asset *simpleassets.Asset) (*simpleassets.Asset, error) {
	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
	return r.Repository.Save(ctx, asset)
}

func (r *recordingRepo) Search(ctx context.Context, filter simpleassets.Filter) ([]*simpleassets.Asset, error) {
	if r.nilSearch {
		return nil, nil
	}
	return r.Repository.Search(ctx, filter)
}

func (r *recordingRepo) UpdateStatus(ctx context.Context, id int64, status simpleassets.AssetStatus) error {
	r.mu.Lock()
	r.statuses[id] = append(r.statuses[id], status)
	r.mu.Unlock()
	return r.Repository.UpdateStatus(ctx, id, status)
}

func (r *recordingRepo) UpdateStorageURL(ctx context.Context, id int64, url string) error {
	if r.panicOnURL {
		panic("storage exploded")
	}
	if r.urlErr != nil {
		return r.urlErr
	}
	return r.Repository.UpdateStorageURL(ctx, id, url)
}

func (r *recordingRepo) history(id int64) []simpleassets.AssetStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]simpleassets.AssetStatus(nil), r.statuses[id]...)
}

func (r *recordingRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// recordingDispatcher captures dispatched assets and optionally refuses them.
type recordingDispatcher struct {
	mu         sync.Mutex
	dispatched []simpleassets.Asset
	err        error
}

func (d *recordingDispatcher) Dispatch(asset *simpleassets.Asset) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatched = append(d.dispatched, *asset)
	return d.err
}

var errBlobDown = errors.New("blob store unavailable")

type failingBlobStore struct{}

func (failingBlobStore) Upload(context.Context, string, io.Reader, simpleassets.UploadParams) error {
	return errBlobDown
}

func (failingBlobStore) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, simpleassets.ErrObjectNotFound
}

func fixedToken() string { return "tok" }

// savePending stores an asset the way Accept would and returns it with its
// payload still attached.
func savePending(t *testing.T, repo simpleassets.Repository, asset simpleassets.Asset) *simpleassets.Asset {
	t.Helper()
	asset.Status = simpleassets.AssetStatusPending
	if asset.UploadDate.IsZero() {
		asset.UploadDate = time.Now().UTC()
	}
	saved, err := repo.Save(context.Background(), &asset)
	require.NoError(t, err)
	asset.ID = saved.ID
	return &asset
}
