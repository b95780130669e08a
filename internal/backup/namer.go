// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package backup

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// timestampLayout is fixed width and ordered year to second so that
	// lexicographic filename order equals creation order.
	timestampLayout = "20060102_150405"

	snapshotExt = ".db"

	safetyCopyMarker = "_before_restore_"
)

var timestampPattern = regexp.MustCompile(`^[0-9]{8}_[0-9]{6}$`)

// Namer derives snapshot filenames from timestamps and back.
type Namer struct {
	prefix string
	loc    *time.Location
}

// NewNamer creates a namer for the given prefix. A nil location means time.Local.
func NewNamer(prefix string, loc *time.Location) Namer {
	if loc == nil {
		loc = time.Local
	}
	return Namer{prefix: prefix, loc: loc}
}

// Prefix returns the fixed filename prefix.
func (n Namer) Prefix() string {
	return n.prefix
}

// Format returns <prefix>_<YYYYMMDD>_<HHMMSS>.db for t. Sub-second precision is dropped.
func (n Namer) Format(t time.Time) string {
	return n.prefix + "_" + t.In(n.loc).Format(timestampLayout) + snapshotExt
}

// Parse extracts the timestamp from a snapshot filename. It reports false for
// anything that Format could not have produced: other prefixes, other
// extensions, partial files, wrong digit counts and impossible dates.
func (n Namer) Parse(filename string) (time.Time, bool) {
	if filename != filepath.Base(filename) {
		return time.Time{}, false
	}
	rest, ok := strings.CutPrefix(filename, n.prefix+"_")
	if !ok {
		return time.Time{}, false
	}
	stamp, ok := strings.CutSuffix(rest, snapshotExt)
	if !ok || !timestampPattern.MatchString(stamp) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(timestampLayout, stamp, n.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SafetyCopyPath returns <dir>/<stem>_before_restore_<YYYYMMDD>_<HHMMSS>.db
// beside livePath.
func (n Namer) SafetyCopyPath(livePath string, t time.Time) string {
	base := filepath.Base(livePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + safetyCopyMarker + t.In(n.loc).Format(timestampLayout) + snapshotExt
	return filepath.Join(filepath.Dir(livePath), name)
}
