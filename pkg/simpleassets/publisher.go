package simpleassets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

// StatusChangeHook is called after each persisted status transition.
type StatusChangeHook func(ctx context.Context, assetID int64, oldStatus, newStatus AssetStatus)

// Publisher runs the asynchronous publish state machine for a single asset:
//
//	PENDING -> FAILED                    (empty payload)
//	PENDING -> UPLOADING -> COMPLETED
//	PENDING -> UPLOADING -> FAILED       (unsupported media or any error)
//
// Publish never returns an error; the outcome is only visible through the
// persisted status.
type Publisher struct {
	repository Repository
	blobStore  BlobStore
	keyGen     KeyGenerator
	hooks      []StatusChangeHook
	logger     *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherBlobStore sets the storage target for asset bytes. Without one
// the upload step is only simulated.
func WithPublisherBlobStore(store BlobStore) PublisherOption {
	return func(p *Publisher) {
		p.blobStore = store
	}
}

// WithKeyGenerator replaces the random token used in storage keys.
func WithKeyGenerator(gen KeyGenerator) PublisherOption {
	return func(p *Publisher) {
		p.keyGen = gen
	}
}

// WithStatusChangeHook registers a hook fired after every transition.
func WithStatusChangeHook(hook StatusChangeHook) PublisherOption {
	return func(p *Publisher) {
		if hook != nil {
			p.hooks = append(p.hooks, hook)
		}
	}
}

// WithPublisherLogger sets the logger; slog.Default() otherwise.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher writing through repo.
func NewPublisher(repo Repository, opts ...PublisherOption) (*Publisher, error) {
	p := &Publisher{
		repository: repo,
		keyGen:     UUIDKeyGenerator,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// Publish moves asset to a terminal state. It is safe to call from any
// goroutine; concurrent publishes of the same id are not excluded.
func (p *Publisher) Publish(ctx context.Context, asset *Asset) {
	if asset == nil {
		p.logger.Error("publish called without asset")
		return
	}

	current := AssetStatusPending
	log := p.logger.With("asset_id", asset.ID, "filename", asset.Filename)

	if len(asset.Content) == 0 {
		log.Error("asset content cannot be empty")
		p.fail(ctx, asset.ID, current, log)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("publish panicked", "panic", r)
			p.fail(ctx, asset.ID, current, log)
		}
	}()

	if err := p.run(ctx, asset, &current, log); err != nil {
		log.Error("error simulating file upload", "error", err)
		p.fail(ctx, asset.ID, current, log)
	}
}

func (p *Publisher) run(ctx context.Context, asset *Asset, current *AssetStatus, log *slog.Logger) error {
	if err := p.transition(ctx, asset.ID, current, AssetStatusUploading); err != nil {
		return err
	}
	log.Info("simulating upload", "bytes", len(asset.Content))

	url, err := BuildStorageURL(asset.ContentType, asset.Filename, p.keyGen)
	if err != nil {
		return err
	}

	if p.blobStore != nil {
		params := UploadParams{MimeType: asset.ContentType, Size: int64(len(asset.Content))}
		if err := p.blobStore.Upload(ctx, url, bytes.NewReader(asset.Content), params); err != nil {
			return fmt.Errorf("upload %s: %w", url, err)
		}
	}

	if err := p.repository.UpdateStorageURL(ctx, asset.ID, url); err != nil {
		return fmt.Errorf("update storage url: %w", err)
	}
	if err := p.transition(ctx, asset.ID, current, AssetStatusCompleted); err != nil {
		return err
	}

	log.Info("simulation of upload completed", "url", url)
	return nil
}

func (p *Publisher) transition(ctx context.Context, id int64, current *AssetStatus, next AssetStatus) error {
	if _, err := canTransition(*current, next); err != nil {
		return err
	}
	if err := p.repository.UpdateStatus(ctx, id, next); err != nil {
		return fmt.Errorf("update status to %s: %w", next, err)
	}

	prev := *current
	*current = next
	for _, hook := range p.hooks {
		hook(ctx, id, prev, next)
	}
	return nil
}

func (p *Publisher) fail(ctx context.Context, id int64, current AssetStatus, log *slog.Logger) {
	if current.IsTerminal() {
		return
	}
	if err := p.transition(ctx, id, &current, AssetStatusFailed); err != nil {
		log.Error("failed to mark asset as failed", "error", err)
	}
}
