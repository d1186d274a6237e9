package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
	"github.com/Ashfaaq98/signalroot-console/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <incident-id>",
	Short: "Print one incident with its timeline and suggested checks",
	Long: `Print the incident detail page as plain text: description, impact,
metrics, timeline, related deployment, similar past incident and suggested
checks.

Examples:
  signalroot show 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := GetConfig()

		st, err := store.NewStore(resolvePath(config.Database.Path))
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()

		inc, err := st.GetIncident(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("incident %s not found (run 'signalroot seed' to load the sample incidents)", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load incident: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, line := range ui.IncidentDetail(inc, time.Now()) {
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var deleteIncidentCmd = &cobra.Command{
	Use:   "delete-incident <incident-id>",
	Short: "Remove an incident from the local database",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, c *cobra.Command, st *store.Store, b bus.Bus, args []string) error {
		if err := st.DeleteIncident(ctx, args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("incident %s not found", args[0])
			}
			return fmt.Errorf("failed to delete incident: %w", err)
		}
		if err := st.RecordActivity(ctx, store.Activity{Kind: store.ActivityIncidentDeleted, Subject: args[0], Actor: "cli"}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record activity: %v\n", err)
		}
		_ = b.PublishActivity(ctx, bus.ActivityMessage{Kind: store.ActivityIncidentDeleted, Subject: args[0], Actor: "cli"})
		fmt.Fprintf(c.OutOrStdout(), "Deleted incident %s\n", args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(showCmd, deleteIncidentCmd)
}
