// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
retention.go - Retention Policy

A snapshot is expired when the number of calendar days between its creation
date and today exceeds the retention window:

	daysBetween(created.date, now.date) > retentionDays

Dates are compared in now's location, so a snapshot taken at 23:59 and one
taken at 00:01 the next morning are one day apart, and two snapshots from the
same day always share a verdict no matter when during the day cleanup runs.

Safety floor:
The single newest snapshot is never expired. Retention alone can therefore
never leave the snapshot directory without a recovery point, even if the
process sat idle past the whole window.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"sort"
	"time"
)

// Expired returns the snapshots eligible for deletion, oldest first.
// The input order does not matter and the input slice is not modified.
func Expired(snapshots []Snapshot, now time.Time, retentionDays int) []Snapshot {
	expired, _ := PlanRetention(snapshots, now, retentionDays)
	return expired
}

// PlanRetention splits snapshots into expired (oldest first) and kept
// (newest first).
func PlanRetention(snapshots []Snapshot, now time.Time, retentionDays int) (expired, kept []Snapshot) {
	if len(snapshots) == 0 {
		return nil, nil
	}
	if retentionDays < 0 {
		retentionDays = 0
	}

	sorted := make([]Snapshot, len(snapshots))
	copy(sorted, snapshots)
	sortNewestFirst(sorted)

	// The newest snapshot is the floor and is always kept.
	kept = append(kept, sorted[0])
	for _, s := range sorted[1:] {
		if daysBetween(s.CreatedAt, now) > retentionDays {
			expired = append(expired, s)
		} else {
			kept = append(kept, s)
		}
	}

	// Reverse to oldest first so deletions walk forward in time.
	for i, j := 0, len(expired)-1; i < j; i, j = i+1, j-1 {
		expired[i], expired[j] = expired[j], expired[i]
	}
	return expired, kept
}

// daysBetween counts calendar days from created to now in now's location.
// Negative results (clock skew, future-dated names) count as zero days.
func daysBetween(created, now time.Time) int {
	loc := now.Location()
	c := created.In(loc)
	cy, cm, cd := c.Date()
	ny, nm, nd := now.Date()

	// Noon-to-noon in UTC keeps DST shifts from changing the day count.
	from := time.Date(cy, cm, cd, 12, 0, 0, 0, time.UTC)
	to := time.Date(ny, nm, nd, 12, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// sortNewestFirst orders by CreatedAt descending, then filename descending
// for equal timestamps.
func sortNewestFirst(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if !snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
		}
		return snaps[i].Filename > snaps[j].Filename
	})
}
