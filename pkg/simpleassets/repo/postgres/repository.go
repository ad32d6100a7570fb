package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simpleassets.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

var _ simpleassets.Repository = (*Repository)(nil)

const assetColumns = `id, filename, content_type, size, url, upload_date, status`

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%w: rejected by constraint %s", simpleassets.ErrInvalidStatus, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) Save(ctx context.Context, asset *simpleassets.Asset) (*simpleassets.Asset, error) {
	saved := *asset
	saved.Content = nil
	if saved.Status == "" {
		saved.Status = simpleassets.AssetStatusPending
	}
	saved.UploadDate = saved.UploadDate.UTC()

	query := `
		INSERT INTO assets (filename, content_type, size, url, upload_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		saved.Filename, saved.ContentType, saved.Size, saved.URL,
		saved.UploadDate, string(saved.Status)).Scan(&saved.ID)
	if err != nil {
		return nil, r.handlePostgresError("save asset", err)
	}

	return &saved, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*simpleassets.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpleassets.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("find asset", err)
	}
	return asset, nil
}

func (r *Repository) Search(ctx context.Context, filter simpleassets.Filter) ([]*simpleassets.Asset, error) {
	var args []interface{}
	bind := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	where, orderBy := filter.SQL(bind)
	query := `SELECT ` + assetColumns + ` FROM assets`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY ` + orderBy

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("search assets", err)
	}
	defer rows.Close()

	assets := make([]*simpleassets.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan asset", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate asset rows", err)
	}

	return assets, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status simpleassets.AssetStatus) error {
	_, err := r.db.Exec(ctx, `UPDATE assets SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return r.handlePostgresError("update asset status", err)
	}
	return nil
}

func (r *Repository) UpdateStorageURL(ctx context.Context, id int64, url string) error {
	_, err := r.db.Exec(ctx, `UPDATE assets SET url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return r.handlePostgresError("update asset url", err)
	}
	return nil
}

func scanAsset(row pgx.Row) (*simpleassets.Asset, error) {
	var (
		asset  simpleassets.Asset
		status string
	)
	err := row.Scan(&asset.ID, &asset.Filename, &asset.ContentType, &asset.Size,
		&asset.URL, &asset.UploadDate, &status)
	if err != nil {
		return nil, err
	}

	asset.Status, err = simpleassets.ParseAssetStatus(status)
	if err != nil {
		return nil, err
	}
	asset.UploadDate = asset.UploadDate.UTC()
	return &asset, nil
}
