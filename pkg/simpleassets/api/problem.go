package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// Problem type URNs.
const (
	ProblemAssetNotFound = "urn:problem-type:asset-not-found"
	ProblemBusinessError = "urn:problem-type:business-error"
	ProblemInternalError = "urn:problem-type:internal-error"
)

// ProblemContentType is the media type of every error response.
const ProblemContentType = "application/problem+json"

// Problem is the structured error payload returned by the asset endpoints.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance"`
	Method   string `json:"method"`
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, typeURN, title, detail string) {
	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Problem{
		Type:     typeURN,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
		Method:   r.Method,
	})
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, r, http.StatusBadRequest, ProblemBusinessError, "Business error", detail)
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, simpleassets.ErrValidation), errors.Is(err, simpleassets.ErrPublishRejected):
		badRequest(w, r, err.Error())
	case errors.Is(err, simpleassets.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, ProblemAssetNotFound, "Asset not found", simpleassets.ErrNotFound.Error())
	case errors.Is(err, simpleassets.ErrAssetNotFound):
		writeProblem(w, r, http.StatusNotFound, ProblemAssetNotFound, "Asset not found", simpleassets.ErrAssetNotFound.Error())
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeProblem(w, r, http.StatusInternalServerError, ProblemInternalError,
			"Internal error", "An internal server error occurred")
	}
}
