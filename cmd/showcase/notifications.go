package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/showcase/internal/config"
	"github.com/hyperengineering/showcase/internal/store"
	"github.com/hyperengineering/showcase/internal/types"
	"github.com/spf13/cobra"
)

var (
	notificationsDBOverride string
	notificationsJSONOutput bool
	notificationsLimit      int
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect the notification log",
	Long:  "Read delivered contact form notifications without running the server.",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsList,
}

func init() {
	notificationsCmd.PersistentFlags().StringVar(&notificationsDBOverride, "db", "",
		"Database path (overrides config and SHOWCASE_DB_PATH)")
	notificationsCmd.PersistentFlags().BoolVar(&notificationsJSONOutput, "json", false,
		"Output in JSON format")

	notificationsListCmd.Flags().IntVar(&notificationsLimit, "limit", 20,
		"Maximum number of notifications (0 for all)")

	notificationsCmd.AddCommand(notificationsListCmd)
}

// openNotificationStore opens the database from config with optional --db override.
func openNotificationStore() (*store.SQLiteStore, error) {
	path := notificationsDBOverride
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		path = cfg.Database.Path
	}
	return store.NewSQLiteStore(path)
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if notificationsLimit < 0 {
		return errors.New("--limit must not be negative")
	}

	db, err := openNotificationStore()
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := db.ListNotifications(ctx, notificationsLimit)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if notificationsJSONOutput {
		resp := types.NotificationsResponse{
			Notifications: make([]types.NotificationView, len(notes)),
			Total:         len(notes),
		}
		for i, n := range notes {
			resp.Notifications[i] = types.NewNotificationView(n)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	}

	if len(notes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No notifications found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tFORM\tKIND\tAT\tMESSAGE")
	for _, n := range notes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.ID, n.FormID, n.Kind, n.At.UTC().Format(time.RFC3339), n.Message)
	}
	return w.Flush()
}
