// Package analytics compares datasets built from two different snapshots.
//
// Pickup is the change between two snapshots of the same future period. Only dates present
// in both snapshots take part (inner join), so days added or removed between the snapshots
// do not show up as pickup.
//
// Pace compares the newest snapshot with the snapshot captured closest to 364 days earlier,
// which keeps weekdays aligned. When nothing lies within PaceTolerance of that target the
// oldest available snapshot is used and the result is marked as approximate.
package analytics
