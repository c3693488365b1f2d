package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threshgen/threshgen/internal/alerting"
)

const (
	previewEvents        = "events"
	previewNotifications = "notifications"
)

func previewCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the generated events or notifications without writing files",
		Long: `Synthesize events or notifications from etc/thresholds.xml and print them.

Examples:
  # Show the events as a table
  threshgen preview -d /opt/opennms

  # Show the notifications as YAML, with custom routing
  threshgen preview -d /opt/opennms -c routing.properties --kind notifications -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if kind != previewEvents && kind != previewNotifications {
				return fmt.Errorf("--kind must be %s or %s, got %q", previewEvents, previewNotifications, kind)
			}
			home, err := a.validatePaths()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			in, err := a.loadInputs(home, false)
			if err != nil {
				return err
			}
			p := alerting.NewProcessor(in.routing, a.log)

			var result any
			if kind == previewNotifications {
				notifications, err := p.BuildNotifications(in.groups)
				if err != nil {
					return err
				}
				result = NotificationsResult{Notifications: notifications, Total: len(notifications)}
			} else {
				events, err := p.BuildEvents(in.groups, in.templates)
				if err != nil {
					return err
				}
				result = EventsResult{Events: events, Total: len(events)}
			}
			return outputResult(a.out, result, a.settings.Output)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", previewEvents, "What to preview: events or notifications")
	return cmd
}
