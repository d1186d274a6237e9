package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

var servicesCmd = &cobra.Command{
	Use:     "services",
	Aliases: []string{"service"},
	Short:   "Manage the service registry",
	Long: `Add, edit, delete, import and export the services incidents are attributed to.

Examples:
  signalroot services add payment-service --description "Card payments"
  signalroot services edit payment-service --description "Payments and refunds"
  signalroot services delete payment-service
  signalroot services export services.yaml
  signalroot services import services.yaml`,
}

var serviceDescription string

// serviceFile is the YAML import/export layout.
type serviceFile struct {
	Services []model.Service `yaml:"services"`
}

func init() {
	rootCmd.AddCommand(servicesCmd)

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a service",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, c *cobra.Command, st *store.Store, b bus.Bus, args []string) error {
			svc, err := st.CreateService(ctx, model.Service{Name: args[0], Description: serviceDescription})
			if err != nil {
				return fmt.Errorf("failed to add service: %w", err)
			}
			recordServiceActivity(ctx, st, b, store.ActivityServiceCreated, svc)
			fmt.Fprintf(c.OutOrStdout(), "Added service %s (%s)\n", svc.Name, svc.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&serviceDescription, "description", "", "Service description")

	editCmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change a service's description",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, c *cobra.Command, st *store.Store, b bus.Bus, args []string) error {
			svc, err := st.FindServiceByName(ctx, args[0])
			if err != nil {
				return err
			}
			if !c.Flags().Changed("description") {
				return errors.New("nothing to change: pass --description")
			}
			svc.Description = serviceDescription
			if svc, err = st.UpdateService(ctx, svc); err != nil {
				return fmt.Errorf("failed to update service: %w", err)
			}
			recordServiceActivity(ctx, st, b, store.ActivityServiceUpdated, svc)
			fmt.Fprintf(c.OutOrStdout(), "Updated service %s\n", svc.Name)
			return nil
		}),
	}
	editCmd.Flags().StringVar(&serviceDescription, "description", "", "New service description")

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a service",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, c *cobra.Command, st *store.Store, b bus.Bus, args []string) error {
			svc, err := st.FindServiceByName(ctx, args[0])
			if err != nil {
				return err
			}
			if err := st.DeleteService(ctx, svc.ID); err != nil {
				return fmt.Errorf("failed to delete service: %w", err)
			}
			recordServiceActivity(ctx, st, b, store.ActivityServiceDeleted, svc)
			fmt.Fprintf(c.OutOrStdout(), "Deleted service %s\n", svc.Name)
			return nil
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export <file.yaml>",
		Short: "Write all services to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, c *cobra.Command, st *store.Store, _ bus.Bus, args []string) error {
			services, err := st.ListServices(ctx)
			if err != nil {
				return fmt.Errorf("failed to list services: %w", err)
			}
			data, err := yaml.Marshal(serviceFile{Services: services})
			if err != nil {
				return fmt.Errorf("failed to encode services: %w", err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			fmt.Fprintf(c.OutOrStdout(), "Exported %d services to %s\n", len(services), args[0])
			return nil
		}),
	}

	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update services from a YAML file (matched by name)",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, c *cobra.Command, st *store.Store, b bus.Bus, args []string) error {
			created, updated, err := importServices(ctx, st, b, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Imported %s: %d created, %d updated\n", args[0], created, updated)
			return nil
		}),
	}

	servicesCmd.AddCommand(addCmd, editCmd, deleteCmd, exportCmd, importCmd)
}

// withStore opens the store and bus for a services subcommand.
func withStore(fn func(ctx context.Context, c *cobra.Command, st *store.Store, b bus.Bus, args []string) error) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		config := GetConfig()
		st, err := store.NewStore(resolvePath(config.Database.Path))
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()

		b := bus.NewBus(config.Redis.URL, newLogger("bus", config.Log, true))
		defer b.Close()
		return fn(c.Context(), c, st, b, args)
	}
}

func importServices(ctx context.Context, st *store.Store, b bus.Bus, path string) (created, updated int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var file serviceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, in := range file.Services {
		if err := in.Validate(); err != nil {
			return created, updated, fmt.Errorf("service #%d: %w", i+1, err)
		}
		existing, err := st.FindServiceByName(ctx, in.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			svc, err := st.CreateService(ctx, model.Service{Name: in.Name, Description: in.Description})
			if err != nil {
				return created, updated, fmt.Errorf("failed to create %s: %w", in.Name, err)
			}
			recordServiceActivity(ctx, st, b, store.ActivityServiceCreated, svc)
			created++
		case err != nil:
			return created, updated, err
		default:
			existing.Description = in.Description
			svc, err := st.UpdateService(ctx, existing)
			if err != nil {
				return created, updated, fmt.Errorf("failed to update %s: %w", in.Name, err)
			}
			recordServiceActivity(ctx, st, b, store.ActivityServiceUpdated, svc)
			updated++
		}
	}
	return created, updated, nil
}

// recordServiceActivity is best effort: failures are printed, not returned.
func recordServiceActivity(ctx context.Context, st *store.Store, b bus.Bus, kind string, svc model.Service) {
	err := st.RecordActivity(ctx, store.Activity{
		Kind:    kind,
		Subject: svc.ID,
		Actor:   "cli",
		Details: map[string]interface{}{"name": svc.Name},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record activity: %v\n", err)
	}
	if err := b.PublishActivity(ctx, bus.ActivityMessage{
		Kind:    kind,
		Subject: svc.ID,
		Actor:   "cli",
		Details: map[string]string{"name": svc.Name},
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to publish activity: %v\n", err)
	}
}
