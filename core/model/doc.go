// Package model defines the pilots, drones and missions handled by the
// allocation engine together with the conflicts it reports.
//
// Entities are plain values. They are validated once when a snapshot is
// ingested and are never mutated in place afterwards: the registry publishes
// a new snapshot instead.
package model
