package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/signalroot-console/internal/seed"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed sample incidents and services into the database",
	Long: `Seed the sample incidents and default services into the SQLite database.
Existing incidents with the same id are overwritten; services that already
exist by name are left alone.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[seed] ", log.LstdFlags)
	logger.Println("Seeding sample data...")

	st, err := store.NewStore(resolvePath(config.Database.Path))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	for _, inc := range seed.Incidents() {
		if err := st.UpsertIncident(ctx, inc); err != nil {
			return fmt.Errorf("failed to seed incident %s: %w", inc.ID, err)
		}
	}
	logger.Printf("Seeded %d incidents", len(seed.Incidents()))

	added := 0
	for _, svc := range seed.Services() {
		_, err := st.FindServiceByName(ctx, svc.Name)
		if err == nil {
			logger.Printf("Service %s already exists, skipping", svc.Name)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := st.CreateService(ctx, svc); err != nil {
			return fmt.Errorf("failed to seed service %s: %w", svc.Name, err)
		}
		added++
	}
	logger.Printf("Seeded %d services", added)

	logger.Println("Seeding completed")
	return nil
}
