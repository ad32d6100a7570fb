package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-assets/pkg/simpleassets"
	"github.com/tendant/simple-assets/pkg/simpleassets/api"
)

// panicService blows up on every call.
type panicService struct{}

func (panicService) Accept(context.Context, *simpleassets.Asset) (int64, error) {
	panic("accept exploded")
}

func (panicService) Search(context.Context, *simpleassets.SearchCriteria) ([]*simpleassets.Asset, error) {
	panic("search exploded")
}

func (panicService) GetAsset(context.Context, int64) (*simpleassets.Asset, error) {
	panic("get exploded")
}

func TestRecoveryMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(api.RecoveryMiddleware(nil))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, api.ProblemInternalError, p.Type)
	assert.Equal(t, "/boom", p.Instance)
}

func TestRecoveryMiddleware_RepanicsAbort(t *testing.T) {
	handler := api.RecoveryMiddleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	var readErr error
	handler := api.RequestSizeLimitMiddleware(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		_, readErr = r.Body.Read(buf)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))

	var tooLarge *http.MaxBytesError
	assert.True(t, errors.As(readErr, &tooLarge))
}

func TestRouter_PanickingServiceIsCountedAs500(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := api.NewHTTPMetrics(reg)
	require.NoError(t, err)

	handler := api.NewRouter(panicService{}, api.RouterOptions{Metrics: metrics, Gatherer: reg})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, assetsPath+"/7", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	expected := `
# HELP simpleassets_http_requests_total HTTP requests by method, route and status code
# TYPE simpleassets_http_requests_total counter
simpleassets_http_requests_total{code="500",method="GET",route="/api/mgmt/1/assets/{id}"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "simpleassets_http_requests_total"))
}

func TestNewHTTPMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := api.NewHTTPMetrics(reg)
	require.NoError(t, err)

	_, err = api.NewHTTPMetrics(reg)
	assert.Error(t, err)
}

func TestRouter_Health(t *testing.T) {
	ready := errors.New("database unreachable")
	handler := api.NewRouter(panicService{}, api.RouterOptions{
		Ready: func(context.Context) error { return ready },
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = nil
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := api.NewHTTPMetrics(reg)
	require.NoError(t, err)
	handler := api.NewRouter(panicService{}, api.RouterOptions{Metrics: metrics, Gatherer: reg})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `simpleassets_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}

func TestRouter_NoMetricsEndpointWithoutGatherer(t *testing.T) {
	handler := api.NewRouter(panicService{}, api.RouterOptions{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
