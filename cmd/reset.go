package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

var (
	confirmReset bool
	resetRedis   bool
	resetDB      bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the activity stream and/or the database",
	Long: `Reset clears the Redis activity stream and/or every row of the SQLite database
(incidents, services and activity).

By default both are reset. Use --redis-only or --db-only to pick one.

WARNING: This operation is irreversible and will permanently delete all data.

Examples:
  # Reset both (asks for confirmation)
  signalroot reset

  # Reset without asking
  signalroot reset --yes

  # Only the activity stream
  signalroot reset --redis-only`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Automatically confirm reset operation")
	resetCmd.Flags().BoolVar(&resetRedis, "redis-only", false, "Reset only the Redis activity stream")
	resetCmd.Flags().BoolVar(&resetDB, "db-only", false, "Reset only the database")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()
	out := cmd.OutOrStdout()

	if !resetRedis && !resetDB {
		resetRedis, resetDB = true, true
	}

	var targets []string
	if resetRedis {
		targets = append(targets, "the Redis activity stream")
	}
	if resetDB {
		targets = append(targets, "all database rows")
	}
	fmt.Fprintf(out, "This will permanently delete: %s\n", strings.Join(targets, " and "))

	if !confirmReset {
		fmt.Fprint(out, "Are you sure you want to continue? (y/N): ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if r := strings.ToLower(response); r != "y" && r != "yes" {
			fmt.Fprintln(out, "Reset operation cancelled.")
			return nil
		}
	}

	if resetRedis {
		if err := resetActivityStream(ctx, config); err != nil {
			if !resetDB {
				return err
			}
			fmt.Fprintf(out, "Warning: %v\n", err)
		} else {
			fmt.Fprintln(out, "✓ Activity stream cleared")
		}
	}

	if resetDB {
		st, err := store.NewStore(resolvePath(config.Database.Path))
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()
		if err := st.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		fmt.Fprintln(out, "✓ Database cleared")
	}

	fmt.Fprintln(out, "Reset operation completed successfully!")
	return nil
}

func resetActivityStream(ctx context.Context, config Config) error {
	if config.Redis.URL == "" {
		return fmt.Errorf("no Redis URL configured (set --redis or redis.url)")
	}
	rb, err := bus.NewRedisBus(config.Redis.URL, newLogger("bus", config.Log, true))
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer rb.Close()
	return rb.DeleteStream(ctx)
}
