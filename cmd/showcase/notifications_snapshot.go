package main

import (
	"context"
	"fmt"

	"github.com/hyperengineering/showcase/internal/config"
	"github.com/hyperengineering/showcase/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	snapshotOut    string
	snapshotUpload bool
)

var notificationsSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write a snapshot of the notification log",
	Long: "Copy the notification log into a standalone SQLite file, and optionally " +
		"upload it to the configured S3-compatible bucket.",
	Args: cobra.NoArgs,
	RunE: runNotificationsSnapshot,
}

func init() {
	notificationsSnapshotCmd.Flags().StringVar(&snapshotOut, "out", "",
		"Snapshot file path (default: snapshot.path from config)")
	notificationsSnapshotCmd.Flags().BoolVar(&snapshotUpload, "upload", false,
		"Upload the snapshot to S3-compatible storage")

	notificationsCmd.AddCommand(notificationsSnapshotCmd)
}

func runNotificationsSnapshot(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	out := snapshotOut
	var storage config.SnapshotStorageConfig
	if out == "" || snapshotUpload {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if out == "" {
			out = cfg.Snapshot.Path
		}
		storage = cfg.Snapshot.Storage
	}

	db, err := openNotificationStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.GenerateSnapshot(ctx, out); err != nil {
		return fmt.Errorf("generate snapshot: %w", err)
	}

	uploaded := false
	if snapshotUpload {
		if storage.Bucket == "" {
			return fmt.Errorf("upload: %w", snapshot.ErrNotConfigured)
		}
		uploader, err := snapshot.NewUploader(storage)
		if err != nil {
			return err
		}
		if err := uploader.Upload(ctx, out); err != nil {
			return err
		}
		uploaded = true
	}

	if notificationsJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"path":     out,
			"uploaded": uploaded,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", out)
	if uploaded {
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded to bucket %s\n", storage.Bucket)
	}
	return nil
}
