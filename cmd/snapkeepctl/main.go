// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

// Command snapkeepctl runs one-off backup operations against the same
// configuration as snapkeep-server, without going through the HTTP API.
//
//	snapkeepctl backup
//	snapkeepctl list [--json]
//	snapkeepctl prune [--dry-run]
//	snapkeepctl restore <filename> --yes
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
