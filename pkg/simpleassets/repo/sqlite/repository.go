package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	moderncsqlite "modernc.org/sqlite"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// SQLite's built-in lower() only folds ASCII. Replacing it on every
// connection keeps filename matching in line with strings.ToLower.
func init() {
	if err := moderncsqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("sqlite: register lower: %v", err))
	}
}

func unicodeLower(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Open connects to the SQLite database at path, creating its directory when
// needed. Writes are serialised on a single connection.
func Open(path string) (*sqlx.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	return db, nil
}

// Repository implements simpleassets.Repository on SQLite. Upload dates are
// stored as Unix nanoseconds so range filters compare numerically.
type Repository struct {
	db *sqlx.DB
}

// New creates a new SQLite repository
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

var _ simpleassets.Repository = (*Repository)(nil)

type assetRow struct {
	ID          int64  `db:"id"`
	Filename    string `db:"filename"`
	ContentType string `db:"content_type"`
	Size        int64  `db:"size"`
	URL         string `db:"url"`
	UploadDate  int64  `db:"upload_date"`
	Status      string `db:"status"`
}

func (row assetRow) toAsset() (*simpleassets.Asset, error) {
	status, err := simpleassets.ParseAssetStatus(row.Status)
	if err != nil {
		return nil, err
	}
	return &simpleassets.Asset{
		ID:          row.ID,
		Filename:    row.Filename,
		ContentType: row.ContentType,
		Size:        row.Size,
		URL:         row.URL,
		UploadDate:  time.Unix(0, row.UploadDate).UTC(),
		Status:      status,
	}, nil
}

const selectAssets = `SELECT id, filename, content_type, size, url, upload_date, status FROM assets`

func (r *Repository) Save(ctx context.Context, asset *simpleassets.Asset) (*simpleassets.Asset, error) {
	saved := *asset
	saved.Content = nil
	if saved.Status == "" {
		saved.Status = simpleassets.AssetStatusPending
	}
	saved.UploadDate = saved.UploadDate.UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO assets (filename, content_type, size, url, upload_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		saved.Filename, saved.ContentType, saved.Size, saved.URL,
		saved.UploadDate.UnixNano(), string(saved.Status))
	if err != nil {
		return nil, fmt.Errorf("database error in save asset: %w", err)
	}

	saved.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("database error in save asset: %w", err)
	}
	return &saved, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*simpleassets.Asset, error) {
	var row assetRow
	err := r.db.GetContext(ctx, &row, selectAssets+` WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, simpleassets.ErrAssetNotFound
		}
		return nil, fmt.Errorf("database error in find asset: %w", err)
	}
	return row.toAsset()
}

func (r *Repository) Search(ctx context.Context, filter simpleassets.Filter) ([]*simpleassets.Asset, error) {
	var args []interface{}
	bind := func(arg any) string {
		if t, ok := arg.(time.Time); ok {
			arg = t.UnixNano()
		}
		args = append(args, arg)
		return "?"
	}

	where, orderBy := filter.SQL(bind)
	query := selectAssets
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY ` + orderBy

	var rows []assetRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("database error in search assets: %w", err)
	}

	assets := make([]*simpleassets.Asset, 0, len(rows))
	for _, row := range rows {
		asset, err := row.toAsset()
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status simpleassets.AssetStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE assets SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return fmt.Errorf("database error in update asset status: %w", err)
	}
	return nil
}

func (r *Repository) UpdateStorageURL(ctx context.Context, id int64, url string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE assets SET url = ? WHERE id = ?`, url, id); err != nil {
		return fmt.Errorf("database error in update asset url: %w", err)
	}
	return nil
}
