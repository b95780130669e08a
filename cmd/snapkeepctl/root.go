// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/snapkeep/internal/backup"
	"github.com/tomtom215/snapkeep/internal/config"
	"github.com/tomtom215/snapkeep/internal/logging"
)

// managerFactory builds the backup manager for a command. Tests replace it.
type managerFactory func() (*backup.Manager, error)

func loadManager() (*backup.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    "console",
		Timestamp: true,
	})

	bc, err := cfg.ToBackupConfig()
	if err != nil {
		return nil, err
	}
	return backup.NewManager(bc)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(loadManager)
}

func newRootCmdWith(load managerFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "snapkeepctl",
		Short: "Back up, list, prune and restore SQLite snapshots",
		Long: `snapkeepctl operates directly on DATABASE_PATH and BACKUP_DIR using the
configuration snapkeep-server reads (config.yaml, CONFIG_PATH or environment).`,
		SilenceUsage: true,
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (overrides "+config.ConfigPathEnvVar+")")
	root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if configPath == "" {
			return nil
		}
		return os.Setenv(config.ConfigPathEnvVar, configPath)
	}

	root.AddCommand(
		newBackupCmd(load),
		newListCmd(load),
		newPruneCmd(load),
		newRestoreCmd(load),
	)
	return root
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}
