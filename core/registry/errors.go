package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names the entity collections held by a registry.
type Kind string

const (
	KindPilot   Kind = "pilot"
	KindDrone   Kind = "drone"
	KindMission Kind = "mission"
)

// ErrDuplicateKey is matched by LoadError through errors.Is.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKey identifies a key that appeared more than once in the input.
type DuplicateKey struct {
	Kind Kind
	Key  string
}

// LoadError reports every duplicate key found while building a registry. The
// registry returned alongside it holds the last occurrence of each key, so
// the caller decides whether to reject the snapshot or accept the dedupe.
type LoadError struct {
	Duplicates []DuplicateKey
}

func (e *LoadError) Error() string {
	parts := make([]string, 0, len(e.Duplicates))
	for _, d := range e.Duplicates {
		parts = append(parts, fmt.Sprintf("%s %q", d.Kind, d.Key))
	}
	return fmt.Sprintf("registry: %d duplicate key(s): %s", len(e.Duplicates), strings.Join(parts, ", "))
}

func (e *LoadError) Unwrap() error { return ErrDuplicateKey }
