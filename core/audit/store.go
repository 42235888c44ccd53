// Package audit persists a trail of detection passes, refreshes and
// mutations handled by the engine.
package audit

import (
	"context"
	"time"
)

// Kind classifies audit records.
type Kind string

const (
	KindDetection Kind = "detection"
	KindMutation  Kind = "mutation"
	KindRefresh   Kind = "refresh"
)

// Record captures one engine action and its outcome.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Kind       Kind      `json:"kind"`
	Operation  string    `json:"operation,omitempty"`
	Entity     string    `json:"entity,omitempty"`
	MissionIDs []string  `json:"mission_ids,omitempty"`
	Status     string    `json:"status,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Conflicts  int       `json:"conflicts,omitempty"`
	Critical   bool      `json:"critical,omitempty"`
	Summary    string    `json:"summary,omitempty"`
}

// Query defines filters for retrieving records. Zero fields match all.
type Query struct {
	Start     time.Time
	End       time.Time
	Kind      Kind
	MissionID string
	Limit     int
}

// Match reports whether r satisfies every set filter of q except Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.MissionID != "" {
		for _, id := range r.MissionIDs {
			if id == q.MissionID {
				return true
			}
		}
		return false
	}
	return true
}

func (q Query) limit(res []Record) []Record {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
