package simpleassets

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// service implements the Service interface
type service struct {
	repository Repository
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithDispatcher sets how accepted assets reach the publisher
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(s *service) {
		s.dispatcher = dispatcher
	}
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the upload timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now: time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

func (s *service) Accept(ctx context.Context, asset *Asset) (int64, error) {
	if err := validateAsset(asset); err != nil {
		return 0, err
	}

	asset.ID = 0
	asset.URL = ""
	asset.Status = AssetStatusPending
	if asset.UploadDate.IsZero() {
		asset.UploadDate = s.now().UTC()
	}
	if asset.Size == 0 {
		asset.Size = int64(len(asset.Content))
	}

	s.logger.Info("saving data from file", "filename", asset.Filename)
	saved, err := s.repository.Save(ctx, asset)
	if err != nil {
		return 0, &AssetError{Op: "save", Err: err}
	}
	asset.ID = saved.ID

	if err := s.dispatcher.Dispatch(asset); err != nil {
		// The record stays PENDING; there is no retry path.
		s.logger.Error("publish dispatch rejected", "asset_id", saved.ID, "filename", asset.Filename, "error", err)
		return 0, &PublishRejectedError{AssetID: saved.ID, Err: err}
	}

	s.logger.Info("the data has been saved successfully", "asset_id", saved.ID, "filename", asset.Filename)
	return saved.ID, nil
}

func (s *service) Search(ctx context.Context, criteria *SearchCriteria) ([]*Asset, error) {
	if err := ValidateSearchCriteria(criteria); err != nil {
		return nil, err
	}

	result, err := s.repository.Search(ctx, BuildFilter(criteria))
	if err != nil {
		return nil, &AssetError{Op: "search", Err: err}
	}
	if result == nil {
		return nil, ErrNotFound
	}

	s.logger.Info("items found", "count", len(result))
	return result, nil
}

func (s *service) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	asset, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, &AssetError{AssetID: id, Op: "get", Err: err}
	}
	return asset, nil
}
