// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/snapkeep/internal/backup"
)

func newBackupCmd(load managerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Take a manual snapshot now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := load()
			if err != nil {
				return err
			}
			snap, err := m.CreateBackup(cmd.Context(), true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", snap.Filename, formatMB(snap.SizeBytes))
			return nil
		},
	}
}

func newListCmd(load managerFactory) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := load()
			if err != nil {
				return err
			}
			snaps, err := m.ListBackups()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snaps)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILENAME\tCREATED\tSIZE")
			for _, s := range snaps {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Filename, s.CreatedAt.Format("2006-01-02 15:04:05"), formatMB(s.SizeBytes))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print snapshots as JSON")
	return cmd
}

func newPruneCmd(load managerFactory) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete snapshots older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if dryRun {
				preview, err := m.PreviewRetention()
				if err != nil {
					return err
				}
				for _, s := range preview.WouldDelete {
					fmt.Fprintf(out, "would delete %s\n", s.Filename)
				}
				fmt.Fprintf(out, "%d to delete, %d kept, %s reclaimable\n",
					len(preview.WouldDelete), len(preview.WouldKeep), formatMB(preview.ReclaimBytes))
				return nil
			}

			result, err := m.ApplyRetention(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range result.Deleted {
				fmt.Fprintf(out, "deleted %s\n", s.Filename)
			}
			for _, name := range result.Failed {
				fmt.Fprintf(out, "failed to delete %s\n", name)
			}
			fmt.Fprintf(out, "%d deleted, %d kept, %s reclaimed\n",
				len(result.Deleted), result.Kept, formatMB(result.DeletedBytes))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d snapshot(s) could not be deleted", len(result.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without deleting")
	return cmd
}

func newRestoreCmd(load managerFactory) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <filename>",
		Short: "Replace the live database with a snapshot",
		Long: `Restore copies the live database to <name>_before_restore_<timestamp>.db,
then atomically replaces it with the snapshot. Stop the application that owns
the database first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("restore replaces the live database; pass --yes to confirm")
			}
			m, err := load()
			if err != nil {
				return err
			}

			result, err := m.RestoreBackup(cmd.Context(), args[0])
			var rerr *backup.RestoreError
			if errors.As(err, &rerr) && rerr.SafetyCopyPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "safety copy: %s\n", rerr.SafetyCopyPath)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "restored %s into %s\n", result.Snapshot.Filename, result.LivePath)
			if result.SafetyCopyPath != "" {
				fmt.Fprintf(out, "previous database saved as %s\n", result.SafetyCopyPath)
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm replacing the live database")
	return cmd
}
