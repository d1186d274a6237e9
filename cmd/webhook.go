package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
	"github.com/Ashfaaq98/signalroot-console/internal/seed"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
	"github.com/Ashfaaq98/signalroot-console/internal/ui"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Show integration guides and send test webhooks",
	Long: `Show how to connect PagerDuty, AWS CloudWatch, GitHub and Jenkins to the
backend, and send each integration's sample payload to check the endpoint.

Examples:
  signalroot webhook list
  signalroot webhook guide github
  signalroot webhook test jenkins --backend http://localhost:8080`,
}

func init() {
	rootCmd.AddCommand(webhookCmd)

	listGuides := &cobra.Command{
		Use:   "list",
		Short: "List integration guides",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tCATEGORY\tWEBHOOK URL")
			for _, g := range seed.WebhookGuides(GetConfig().Backend.URL) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.Key, g.Name, g.Category, g.Configuration.WebhookURL)
			}
			return tw.Flush()
		},
	}

	guide := &cobra.Command{
		Use:   "guide <key>",
		Short: "Print an integration guide with every section expanded",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			g, ok := seed.WebhookGuide(GetConfig().Backend.URL, args[0])
			if !ok {
				return fmt.Errorf("unknown integration %q (see 'signalroot webhook list')", args[0])
			}
			all := query.NewIDSet(ui.SectionOverview, ui.SectionSetup, ui.SectionConfig, ui.SectionTesting)
			fmt.Fprintln(c.OutOrStdout(), strings.Join(ui.WebhookGuideLines(g, all, false, nil), "\n"))
			return nil
		},
	}

	test := &cobra.Command{
		Use:   "test <key>",
		Short: "POST an integration's sample payload to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			config := GetConfig()
			client := newBackendClient(config)

			g, ok := seed.WebhookGuide(client.BaseURL(), args[0])
			if !ok {
				return fmt.Errorf("unknown integration %q (see 'signalroot webhook list')", args[0])
			}

			fmt.Fprintf(c.OutOrStdout(), "Testing %s -> %s%s\n", g.Name, client.BaseURL(), g.Testing.Path)
			result := client.TestWebhook(ctx, g.Testing.Path, g.Testing.SamplePayload)
			fmt.Fprintln(c.OutOrStdout(), ui.WebhookResultLine(result))

			// Best effort: the test itself already succeeded or failed.
			if st, err := store.NewStore(resolvePath(config.Database.Path)); err == nil {
				_ = st.RecordActivity(ctx, store.Activity{
					Kind:    store.ActivityWebhookTested,
					Subject: g.Key,
					Actor:   "cli",
					Details: map[string]interface{}{"success": result.Success, "message": result.Message},
				})
				st.Close()
			}
			b := bus.NewBus(config.Redis.URL, newLogger("bus", config.Log, true))
			_ = b.PublishActivity(ctx, bus.ActivityMessage{
				Kind:    store.ActivityWebhookTested,
				Subject: g.Key,
				Actor:   "cli",
				Details: map[string]string{"success": strconv.FormatBool(result.Success), "message": result.Message},
			})
			b.Close()

			if !result.Success {
				return fmt.Errorf("webhook test failed: %s", result.Message)
			}
			return nil
		},
	}

	webhookCmd.AddCommand(listGuides, guide, test)
}
