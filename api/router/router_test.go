package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacy-migrator/api/router"
	"legacy-migrator/config"
	"legacy-migrator/dto"
	"legacy-migrator/models"
	"legacy-migrator/parser"
	"legacy-migrator/repositories"
	"legacy-migrator/services"
)

type memRecords map[int64]*models.Video

func (m memRecords) GetVideo(_ context.Context, id int64) (*models.Video, error) {
	if v, ok := m[id]; ok {
		return v, nil
	}
	return nil, repositories.ErrNotFound
}

func (m memRecords) ListVideos(_ context.Context) ([]*models.Video, error) {
	out := []*models.Video{}
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memRecords) GetField(_ context.Context, id int64, f models.Field) (models.Value, bool, error) {
	val, ok := m[id].Field(f)
	return val, ok, nil
}

func (m memRecords) SetField(_ context.Context, id int64, f models.Field, val models.Value) error {
	v, ok := m[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if v.Meta == nil {
		v.Meta = map[string]any{}
	}
	v.Meta[f.MetaKey()] = val.Interface()
	return nil
}

const content = `<!-- wp:paragraph --><p>Directed by Jane Doe</p><!-- /wp:paragraph -->
<!-- wp:paragraph --><p>A lighthouse keeper waits.</p><!-- /wp:paragraph -->`

func newEngine(t *testing.T, token string, health router.HealthCheck) (*gin.Engine, memRecords) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	records := memRecords{
		1: {ID: 1, PostType: models.PostTypeVideo, Title: "Lighthouse", Content: content},
		2: {ID: 2, PostType: models.PostTypeVideo, Title: "Harbour", Content: content},
	}
	status := services.NewStatusStore(repositories.NewMemoryOptionStore())
	svc := services.NewMigrationService(records, parser.New(parser.GutenbergProvider{}, nil), nil, status, nil, services.MigrationOptions{SingleWriter: true})

	return router.New(svc, router.Options{
		Server:            config.ServerConfig{AdminToken: token},
		DefaultChunkLimit: 20,
		Health:            health,
	}), records
}

func do(r http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDashboardEndpoint(t *testing.T) {
	r, _ := newEngine(t, "", nil)

	w := do(r, http.MethodGet, "/api/v1/migration/dashboard?per_page=1&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload dto.DashboardDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.Stats.TotalOld)
	assert.Equal(t, 2, payload.Pagination.TotalPages)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, int64(2), payload.Rows[0].PostID)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRunSingleEndpoint(t *testing.T) {
	r, records := newEngine(t, "", nil)

	bad := do(r, http.MethodPost, "/api/v1/migration/runs/single", `{"post_id":0}`, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.JSONEq(t, `{"error":"Invalid post ID."}`, bad.Body.String())

	w := do(r, http.MethodPost, "/api/v1/migration/runs/single", `{"post_id":1}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res dto.RunResultDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Summary.Result)
	assert.Equal(t, "migrated", res.Summary.Result.Status)
	assert.Equal(t, "single", res.Mode)
	assert.Equal(t, "Jane Doe", records[1].Meta["_enhanced_directors"])
	assert.Equal(t, "A lighthouse keeper waits.", records[1].Meta["_enhanced_synopsis"])
}

func TestRunChunkAndBulkEndpoints(t *testing.T) {
	r, records := newEngine(t, "", nil)

	w := do(r, http.MethodPost, "/api/v1/migration/runs/chunk", `{"limit":1,"dry_run":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chunk dto.RunResultDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chunk))
	assert.Equal(t, 1, chunk.Summary.DryRun)
	assert.Empty(t, records[1].Meta)

	w = do(r, http.MethodPost, "/api/v1/migration/runs/bulk", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bulk dto.RunResultDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bulk))
	assert.Equal(t, 2, bulk.Summary.Migrated)
	assert.Equal(t, 2, bulk.Payload.Stats.Migrated)
}

func TestRunEndpointsAcceptEmptyChunkedBody(t *testing.T) {
	r, _ := newEngine(t, "", nil)

	send := func(target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, io.NopCloser(strings.NewReader(body)))
		req.ContentLength = -1
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send("/api/v1/migration/runs/chunk", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var chunk dto.RunResultDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chunk))
	assert.Equal(t, 2, chunk.Summary.Processed)

	assert.Equal(t, http.StatusOK, send("/api/v1/migration/runs/bulk", "").Code)
	assert.Equal(t, http.StatusBadRequest, send("/api/v1/migration/runs/bulk", "{not json").Code)
}

func TestPreviewAndFieldsEndpoints(t *testing.T) {
	r, _ := newEngine(t, "", nil)

	bad := do(r, http.MethodGet, "/api/v1/migration/posts/abc/preview", "", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	w := do(r, http.MethodGet, "/api/v1/migration/posts/1/preview", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var preview map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Equal(t, true, preview["is_legacy"])
	assert.Equal(t, "Preview generated successfully.", preview["message"])
	fields := preview["fields"].(map[string]any)
	assert.Equal(t, "Jane Doe", fields["enhanced_directors"])

	w = do(r, http.MethodGet, "/api/v1/migration/posts/1/fields", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "No migrated/saved enhanced fields found.", saved["message"])
	assert.Equal(t, float64(0), saved["field_count"])
}

func TestAdminToken(t *testing.T) {
	r, _ := newEngine(t, "s3cret", nil)

	denied := do(r, http.MethodGet, "/api/v1/migration/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, denied.Code)

	wrong := do(r, http.MethodGet, "/api/v1/migration/dashboard", "", map[string]string{"X-Admin-Token": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	ok := do(r, http.MethodGet, "/api/v1/migration/dashboard", "", map[string]string{"X-Admin-Token": "s3cret"})
	assert.Equal(t, http.StatusOK, ok.Code)

	health := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestHealthDegraded(t *testing.T) {
	r, _ := newEngine(t, "", func(context.Context) error { return errors.New("no reachable servers") })

	w := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newEngine(t, "s3cret", nil)

	w := do(r, http.MethodOptions, "/api/v1/migration/dashboard", "", map[string]string{
		"Origin":                         "https://admin.example.com",
		"Access-Control-Request-Method":  "GET",
		"Access-Control-Request-Headers": "X-Admin-Token",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
