package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// AssetsHandler serves the asset management endpoints
type AssetsHandler struct {
	service simpleassets.Service
	logger  *slog.Logger
}

// NewAssetsHandler creates a handler backed by service. A nil logger uses slog.Default().
func NewAssetsHandler(service simpleassets.Service, logger *slog.Logger) *AssetsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetsHandler{service: service, logger: logger}
}

// Routes returns the router for asset endpoints, mounted under /api/mgmt/1/assets
func (h *AssetsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.SearchAssets)
	r.Post("/actions/upload", h.UploadAsset)
	r.Get("/{id}", h.GetAsset)
	return r
}

// AssetResponse is a single search result
type AssetResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	URL         *string   `json:"url"`
	Size        int64     `json:"size"`
	UploadDate  time.Time `json:"uploadDate"`
}

// AssetDetailResponse adds the publish status to AssetResponse
type AssetDetailResponse struct {
	AssetResponse
	Status string `json:"status"`
}

// UploadRequest is the body of an upload action
type UploadRequest struct {
	Filename    string `json:"filename"`
	EncodedFile string `json:"encodedFile"`
	ContentType string `json:"contentType"`
}

// UploadResponse carries the id assigned to an accepted upload
type UploadResponse struct {
	ID string `json:"id"`
}

func toAssetResponse(asset *simpleassets.Asset) AssetResponse {
	resp := AssetResponse{
		ID:          strconv.FormatInt(asset.ID, 10),
		Filename:    asset.Filename,
		ContentType: asset.ContentType,
		Size:        asset.Size,
		UploadDate:  asset.UploadDate,
	}
	if asset.URL != "" {
		url := asset.URL
		resp.URL = &url
	}
	return resp
}

// SearchAssets lists assets matching the query filters
func (h *AssetsHandler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseSearchCriteria(r)
	if err != nil {
		h.logger.Warn("invalid search query", "query", r.URL.RawQuery, "error", err)
		badRequest(w, r, err.Error())
		return
	}

	h.logger.Info("search assets", "query", r.URL.RawQuery)
	assets, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp := make([]AssetResponse, 0, len(assets))
	for _, asset := range assets {
		resp = append(resp, toAssetResponse(asset))
	}
	render.JSON(w, r, resp)
}

// UploadAsset accepts a base64 payload and schedules it for publishing
func (h *AssetsHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, r, http.StatusRequestEntityTooLarge, ProblemBusinessError, "Business error",
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		h.logger.Error("Failed to decode request", "error", err)
		badRequest(w, r, "request body is not valid JSON")
		return
	}

	if err := req.validate(); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.EncodedFile)
	if err != nil {
		badRequest(w, r, "encodedFile base64 is not valid")
		return
	}

	id, err := h.service.Accept(r.Context(), &simpleassets.Asset{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Content:     content,
		Size:        int64(len(content)),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, UploadResponse{ID: strconv.FormatInt(id, 10)})
}

// GetAsset returns one asset including its publish status
func (h *AssetsHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, r, "asset id must be a positive integer")
		return
	}

	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, AssetDetailResponse{
		AssetResponse: toAssetResponse(asset),
		Status:        string(asset.Status),
	})
}

func (req UploadRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Filename) == "":
		return fieldError("filename")
	case strings.TrimSpace(req.EncodedFile) == "":
		return fieldError("encodedFile")
	case strings.TrimSpace(req.ContentType) == "":
		return fieldError("contentType")
	}
	return nil
}

func fieldError(field string) error {
	return &simpleassets.ValidationError{Field: field, Message: field + " must not be blank"}
}

// parseSearchCriteria maps query parameters onto SearchCriteria. A parameter
// that is present but empty is passed through so validation can reject it.
func parseSearchCriteria(r *http.Request) (*simpleassets.SearchCriteria, error) {
	q := r.URL.Query()
	criteria := &simpleassets.SearchCriteria{
		SortDirection: simpleassets.ParseSortDirection(q.Get("sortDirection")),
	}

	var err error
	if criteria.UploadDateStart, err = parseDateParam(q, "uploadDateStart"); err != nil {
		return nil, err
	}
	if criteria.UploadDateEnd, err = parseDateParam(q, "uploadDateEnd"); err != nil {
		return nil, err
	}
	if q.Has("filename") {
		v := q.Get("filename")
		criteria.FilenamePattern = &v
	}
	if q.Has("filetype") {
		v := q.Get("filetype")
		criteria.ContentType = &v
	}
	return criteria, nil
}

func parseDateParam(q map[string][]string, name string) (*time.Time, error) {
	values, ok := q[name]
	if !ok || len(values) == 0 {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, values[0])
	if err != nil {
		return nil, &simpleassets.ValidationError{
			Field:   name,
			Message: name + " must be an ISO-8601 date-time with offset",
		}
	}
	return &t, nil
}
