// Package yamlfile serves a snapshot from a YAML fixture file and writes
// mutations back to it.
package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/skyops/core/provider"
)

// document is the on-disk layout. Cells may be scalars or lists; lists are
// joined with ", " so they ingest like spreadsheet cells.
type document struct {
	Pilots   []map[string]any `yaml:"pilots"`
	Drones   []map[string]any `yaml:"drones"`
	Missions []map[string]any `yaml:"missions"`
}

// Provider reads the file on every Load, so external edits are picked up,
// and rewrites it after each mutation.
type Provider struct {
	path     string
	readOnly bool
	mem      *provider.Memory
	mu       sync.Mutex
}

// New returns a provider for path. The file must exist.
func New(path string, readOnly bool) (*Provider, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("yamlfile: %w", err)
	}
	p := &Provider{path: path, readOnly: readOnly, mem: provider.NewMemory(provider.Snapshot{})}
	p.mem.OnChange = p.persist
	return p, nil
}

// Load parses the file.
func (p *Provider) Load(ctx context.Context) (provider.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, err := ReadFile(p.path)
	if err != nil {
		return provider.Snapshot{}, err
	}
	p.mem.Reset(snap)
	return p.mem.Load(ctx)
}

func (p *Provider) UpdatePilotStatus(ctx context.Context, name, status string) error {
	return p.mutate(func() error { return p.mem.UpdatePilotStatus(ctx, name, status) })
}

func (p *Provider) UpdateDroneStatus(ctx context.Context, id, status string) error {
	return p.mutate(func() error { return p.mem.UpdateDroneStatus(ctx, id, status) })
}

func (p *Provider) UpdatePilotAssignment(ctx context.Context, name, missionID string) error {
	return p.mutate(func() error { return p.mem.UpdatePilotAssignment(ctx, name, missionID) })
}

func (p *Provider) UpdateDroneAssignment(ctx context.Context, id, missionID string) error {
	return p.mutate(func() error { return p.mem.UpdateDroneAssignment(ctx, id, missionID) })
}

func (p *Provider) mutate(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, err := ReadFile(p.path)
	if err != nil {
		return err
	}
	p.mem.Reset(snap)
	return fn()
}

func (p *Provider) persist(s provider.Snapshot) error {
	if p.readOnly {
		return nil
	}
	return WriteFile(p.path, s)
}

// ReadFile parses a snapshot fixture.
func ReadFile(path string) (provider.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return provider.Snapshot{}, err
	}
	return Parse(data)
}

// Parse decodes a snapshot document.
func Parse(data []byte) (provider.Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return provider.Snapshot{}, fmt.Errorf("yamlfile: %w", err)
	}
	return provider.Snapshot{
		Pilots:   toRows(doc.Pilots),
		Drones:   toRows(doc.Drones),
		Missions: toRows(doc.Missions),
	}, nil
}

// WriteFile stores s at path, replacing the file atomically.
func WriteFile(path string, s provider.Snapshot) error {
	doc := struct {
		Pilots   []provider.Row `yaml:"pilots"`
		Drones   []provider.Row `yaml:"drones"`
		Missions []provider.Row `yaml:"missions"`
	}{s.Pilots, s.Drones, s.Missions}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func toRows(in []map[string]any) []provider.Row {
	out := make([]provider.Row, 0, len(in))
	for _, m := range in {
		row := make(provider.Row, len(m))
		for k, v := range m {
			row[k] = cell(v)
		}
		out = append(out, row)
	}
	return out
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, cell(item))
		}
		return provider.JoinList(parts)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
