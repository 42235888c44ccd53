package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyops/config"
	"github.com/kilianp07/skyops/core/audit"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/provider"
	"github.com/kilianp07/skyops/core/request"
	"github.com/kilianp07/skyops/infra/provider/yamlfile"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "testdata", "snapshot.yaml"))
	require.NoError(t, err)
	roster := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(roster, data, 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`provider:
  type: yaml
  conf:
    path: `+roster+`
audit:
  backend: jsonl
  path: `+filepath.Join(dir, "audit.jsonl")+`
metrics:
  sinks:
    - type: prometheus
logging:
  level: error
`), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, roster
}

func TestServiceRefreshAndAssign(t *testing.T) {
	svc, roster := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	pilots, drones, missions := svc.Engine.Snapshot().Counts()
	assert.Equal(t, 3, pilots)
	assert.Equal(t, 3, drones)
	assert.Equal(t, 2, missions)

	resp, err := svc.Engine.Handle(ctx, request.AssignPilot{PilotName: "Neha", MissionID: "PRJ002"})
	require.NoError(t, err)
	require.NotNil(t, resp.Mutation)
	assert.Equal(t, []string{"assignment", "status"}, resp.Mutation.Committed)

	// The roster file is the system of record.
	snap, err := yamlfile.ReadFile(roster)
	require.NoError(t, err)
	var status string
	for _, row := range snap.Pilots {
		if row[provider.ColName] == "Neha" {
			status = row[provider.ColStatus]
		}
	}
	assert.Equal(t, string(model.PilotOnMission), status)

	_, err = svc.Engine.Refresh(ctx)
	require.NoError(t, err)
	pilot, ok := svc.Engine.Snapshot().Pilot("Neha")
	require.True(t, ok)
	assert.Equal(t, model.PilotOnMission, pilot.Status)
	got, ok := svc.Engine.Snapshot().PilotAssignment("Neha")
	require.True(t, ok)
	assert.Equal(t, "PRJ002", got)

	recs, err := svc.Audit.Query(ctx, audit.Query{Kind: audit.KindMutation})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Success)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Audit.Backend = "nop"
	cfg.Provider.Type = "carrier-pigeon"
	_, err := New(cfg)
	require.Error(t, err)
}
