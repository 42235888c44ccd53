// Package sqlite is a durable Provider storing snapshot rows in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/skyops/core/provider"
)

const (
	kindPilot   = "pilot"
	kindDrone   = "drone"
	kindMission = "mission"
)

// Provider persists rows as JSON documents keyed by kind and position.
type Provider struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures schema.
func Open(path string) (*Provider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Writers rewrite whole snapshots; one connection serializes them.
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS snapshot_rows (
        kind TEXT NOT NULL,
        pos INTEGER NOT NULL,
        data TEXT NOT NULL,
        PRIMARY KEY(kind, pos)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Provider{db: db}, nil
}

// Import replaces the stored rows with s.
func (p *Provider) Import(ctx context.Context, s provider.Snapshot) error {
	return p.tx(ctx, func(tx *sql.Tx) error { return write(ctx, tx, s) })
}

// Load reads every row.
func (p *Provider) Load(ctx context.Context) (provider.Snapshot, error) {
	var snap provider.Snapshot
	err := p.tx(ctx, func(tx *sql.Tx) error {
		var err error
		snap, err = read(ctx, tx)
		return err
	})
	return snap, err
}

func (p *Provider) UpdatePilotStatus(ctx context.Context, name, status string) error {
	return p.mutate(ctx, func(s *provider.Snapshot) error { return s.SetPilotStatus(name, status) })
}

func (p *Provider) UpdateDroneStatus(ctx context.Context, id, status string) error {
	return p.mutate(ctx, func(s *provider.Snapshot) error { return s.SetDroneStatus(id, status) })
}

func (p *Provider) UpdatePilotAssignment(ctx context.Context, name, missionID string) error {
	return p.mutate(ctx, func(s *provider.Snapshot) error { return s.SetPilotAssignment(name, missionID) })
}

func (p *Provider) UpdateDroneAssignment(ctx context.Context, id, missionID string) error {
	return p.mutate(ctx, func(s *provider.Snapshot) error { return s.SetDroneAssignment(id, missionID) })
}

// Close closes the underlying database.
func (p *Provider) Close() error { return p.db.Close() }

func (p *Provider) mutate(ctx context.Context, fn func(*provider.Snapshot) error) error {
	return p.tx(ctx, func(tx *sql.Tx) error {
		snap, err := read(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(&snap); err != nil {
			return err
		}
		return write(ctx, tx, snap)
	})
}

func (p *Provider) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback: %v (cause: %w)", rerr, err)
		}
		return err
	}
	return tx.Commit()
}

func read(ctx context.Context, tx *sql.Tx) (provider.Snapshot, error) {
	rows, err := tx.QueryContext(ctx, `SELECT kind, data FROM snapshot_rows ORDER BY kind, pos`)
	if err != nil {
		return provider.Snapshot{}, err
	}
	defer func() { _ = rows.Close() }()
	var snap provider.Snapshot
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return provider.Snapshot{}, err
		}
		var r provider.Row
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return provider.Snapshot{}, fmt.Errorf("decode %s row: %w", kind, err)
		}
		switch kind {
		case kindPilot:
			snap.Pilots = append(snap.Pilots, r)
		case kindDrone:
			snap.Drones = append(snap.Drones, r)
		case kindMission:
			snap.Missions = append(snap.Missions, r)
		}
	}
	return snap, rows.Err()
}

func write(ctx context.Context, tx *sql.Tx, s provider.Snapshot) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_rows`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_rows (kind, pos, data) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for kind, rows := range map[string][]provider.Row{kindPilot: s.Pilots, kindDrone: s.Drones, kindMission: s.Missions} {
		for i, r := range rows {
			b, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, kind, i, string(b)); err != nil {
				return err
			}
		}
	}
	return nil
}
