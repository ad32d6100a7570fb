package simpleassets

import (
	"strings"
	"time"
)

// AssetStatus is the domain type for asset lifecycle states.
type AssetStatus string

// Asset status constants (typed).
const (
	AssetStatusPending   AssetStatus = "PENDING"
	AssetStatusUploading AssetStatus = "UPLOADING"
	AssetStatusCompleted AssetStatus = "COMPLETED"
	AssetStatusFailed    AssetStatus = "FAILED"
)

// SortDirection orders search results by upload date.
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// ParseSortDirection is case-insensitive; anything other than "ASC" is DESC.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAscending)) {
		return SortAscending
	}
	return SortDescending
}

// Storage folders resolved from content type or filename extension.
const (
	FolderImages = "images"
	FolderVideos = "videos"
)

// Asset represents a single uploaded file and its publish state.
//
// Content is the raw payload. It is only needed while publishing and is never
// persisted by a Repository.
type Asset struct {
	ID          int64       `json:"id"`
	Filename    string      `json:"filename"`
	ContentType string      `json:"content_type,omitempty"`
	Content     []byte      `json:"-"`
	Size        int64       `json:"size"`
	URL         string      `json:"url,omitempty"`
	UploadDate  time.Time   `json:"upload_date"`
	Status      AssetStatus `json:"status"`
}

// SearchCriteria holds the optional filters and sort order for listing assets.
// A nil pointer means the filter is absent.
type SearchCriteria struct {
	UploadDateStart *time.Time
	UploadDateEnd   *time.Time
	FilenamePattern *string
	ContentType     *string
	SortDirection   SortDirection
}
