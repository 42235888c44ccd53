package provider

import (
	"fmt"
	"strings"
)

// SplitList splits a comma separated cell, trimming blanks. "-" is empty.
func SplitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Pilots:   cloneRows(s.Pilots),
		Drones:   cloneRows(s.Drones),
		Missions: cloneRows(s.Missions),
	}
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		c := make(Row, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

func find(rows []Row, col, key string) Row {
	for _, r := range rows {
		if strings.TrimSpace(r[col]) == key {
			return r
		}
	}
	return nil
}

// SetPilotStatus writes the status cell of the pilot row.
func (s *Snapshot) SetPilotStatus(name, status string) error {
	r := find(s.Pilots, ColName, name)
	if r == nil {
		return fmt.Errorf("pilot %q: %w", name, ErrUnknownKey)
	}
	r[ColStatus] = status
	return nil
}

// SetDroneStatus writes the status cell of the drone row.
func (s *Snapshot) SetDroneStatus(id, status string) error {
	r := find(s.Drones, ColDroneID, id)
	if r == nil {
		return fmt.Errorf("drone %q: %w", id, ErrUnknownKey)
	}
	r[ColStatus] = status
	return nil
}

// SetPilotAssignment points the pilot at missionID and keeps every mission's
// assigned_pilots cell consistent with it. An empty missionID removes the
// pilot from all missions.
func (s *Snapshot) SetPilotAssignment(name, missionID string) error {
	return s.setAssignment(s.Pilots, ColName, ColAssignedPilots, "pilot", name, missionID)
}

// SetDroneAssignment is SetPilotAssignment for drones.
func (s *Snapshot) SetDroneAssignment(id, missionID string) error {
	return s.setAssignment(s.Drones, ColDroneID, ColAssignedDrones, "drone", id, missionID)
}

func (s *Snapshot) setAssignment(rows []Row, keyCol, listCol, kind, key, missionID string) error {
	r := find(rows, keyCol, key)
	if r == nil {
		return fmt.Errorf("%s %q: %w", kind, key, ErrUnknownKey)
	}
	var target Row
	if missionID != "" {
		if target = find(s.Missions, ColProjectID, missionID); target == nil {
			return fmt.Errorf("mission %q: %w", missionID, ErrUnknownKey)
		}
	}
	if missionID == "" {
		for _, m := range s.Missions {
			m[listCol] = JoinList(without(SplitList(m[listCol]), key))
		}
		r[ColCurrentAssignment] = ""
		return nil
	}
	list := SplitList(target[listCol])
	if !containsKey(list, key) {
		target[listCol] = JoinList(append(list, key))
	}
	r[ColCurrentAssignment] = missionID
	return nil
}

func containsKey(list []string, key string) bool {
	for _, v := range list {
		if v == key {
			return true
		}
	}
	return false
}

func without(list []string, key string) []string {
	out := list[:0]
	for _, v := range list {
		if v != key {
			out = append(out, v)
		}
	}
	return out
}
