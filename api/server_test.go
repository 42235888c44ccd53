package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyops/core/audit"
	"github.com/kilianp07/skyops/core/engine"
	"github.com/kilianp07/skyops/core/provider"
	"github.com/kilianp07/skyops/infra/provider/yamlfile"
)

func newTestRouter(t *testing.T, token string) (http.Handler, *engine.Engine) {
	t.Helper()
	snap, err := yamlfile.ReadFile(filepath.Join("..", "testdata", "snapshot.yaml"))
	require.NoError(t, err)
	store, err := audit.NewJSONLStore(filepath.Join(t.TempDir(), "audit.jsonl"))
	require.NoError(t, err)
	eng, err := engine.New(provider.NewMemory(snap), engine.Config{}, engine.WithAuditStore(store))
	require.NoError(t, err)
	_, err = eng.Refresh(context.Background())
	require.NoError(t, err)
	return NewRouter(Config{Engine: eng, Audit: store, Token: token, Metrics: http.NotFoundHandler()}), eng
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestQueryCalculateCosts(t *testing.T) {
	h, _ := newTestRouter(t, "")
	rr := do(t, h, http.MethodPost, "/api/query", queryBody{
		QueryType:  "calculate_costs",
		Parameters: map[string]string{"mission_id": "PRJ001"},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp engine.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Cost)
	assert.InDelta(t, 3600.0, resp.Cost.Total, 1e-9)
}

func TestQueryErrors(t *testing.T) {
	h, _ := newTestRouter(t, "")
	cases := []struct {
		body queryBody
		code int
	}{
		{queryBody{QueryType: "calculate_costs"}, http.StatusBadRequest},
		{queryBody{QueryType: "calculate_costs", Parameters: map[string]string{"mission_id": "PRJ404"}}, http.StatusNotFound},
		{queryBody{QueryType: "assign_drone", Parameters: map[string]string{"drone_id": "D002", "mission_id": "PRJ002"}}, http.StatusConflict},
		{queryBody{QueryType: "tell_a_joke"}, http.StatusBadRequest},
	}
	for _, c := range cases {
		rr := do(t, h, http.MethodPost, "/api/query", c.body, "")
		assert.Equal(t, c.code, rr.Code, "%s: %s", c.body.QueryType, rr.Body.String())
	}
}

func TestAssignThroughQueryAndAudit(t *testing.T) {
	h, eng := newTestRouter(t, "")
	rr := do(t, h, http.MethodPost, "/api/query", queryBody{
		QueryType:  "assign_pilot",
		Parameters: map[string]string{"pilot_name": "Neha", "mission_id": "PRJ002"},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cur, ok := eng.Snapshot().PilotAssignment("Neha")
	require.True(t, ok)
	assert.Equal(t, "PRJ002", cur)

	rr = do(t, h, http.MethodGet, "/api/audit?kind=mutation&mission_id=PRJ002", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []audit.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Neha", recs[0].Entity)
}

func TestMissionRoutes(t *testing.T) {
	h, _ := newTestRouter(t, "")
	rr := do(t, h, http.MethodGet, "/api/missions/PRJ001/pilots", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp engine.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.PilotMatches)
	assert.Equal(t, "Arjun", resp.PilotMatches[0].Pilot.Name)

	rr = do(t, h, http.MethodGet, "/api/missions/PRJ002/cost?pilot=Neha", nil, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp = engine.Response{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Projection)
	assert.InDelta(t, 4800.0, resp.Projection.ProjectedTotal, 1e-9)

	rr = do(t, h, http.MethodGet, "/api/missions/PRJ404/drones", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConflictExportCSV(t *testing.T) {
	h, _ := newTestRouter(t, "")
	rr := do(t, h, http.MethodGet, "/api/conflicts/export?format=csv", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	recs, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(recs), 1)
	assert.Equal(t, "severity", recs[0][2])

	rr = do(t, h, http.MethodGet, "/api/conflicts/export?format=html", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	rr = do(t, h, http.MethodGet, "/api/conflicts/export?format=xlsx", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func detectionRecords(t *testing.T, h http.Handler) int {
	t.Helper()
	rr := do(t, h, http.MethodGet, "/api/audit?kind=detection", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []audit.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	return len(recs)
}

func TestConflictExportBadFormatSkipsDetection(t *testing.T) {
	h, _ := newTestRouter(t, "")
	before := detectionRecords(t, h)

	rr := do(t, h, http.MethodGet, "/api/conflicts/export?format=xlsx", nil, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, before, detectionRecords(t, h))

	rr = do(t, h, http.MethodGet, "/api/conflicts/export?format=json", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, before+1, detectionRecords(t, h))
}

func TestAuditRejectsMalformedParams(t *testing.T) {
	h, _ := newTestRouter(t, "")
	for _, q := range []string{"start=yesterday", "end=2026-13-45", "limit=ten", "limit=-1"} {
		rr := do(t, h, http.MethodGet, "/api/audit?"+q, nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		var body errorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "bad_request", body.Code, q)
	}
	rr := do(t, h, http.MethodGet, "/api/audit?start=2026-01-01T00:00:00Z&limit=5", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthAndHealth(t *testing.T) {
	h, _ := newTestRouter(t, "s3cret")
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/summary", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/summary", nil, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/summary", nil, "s3cret2").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/summary", nil, "s3cre").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/summary", nil, "s3cret").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/refresh", nil, "s3cret").Code)
}
