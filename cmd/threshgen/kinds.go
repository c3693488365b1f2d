package main

import (
	"github.com/spf13/cobra"

	"github.com/threshgen/threshgen/internal/alerting"
)

func kindsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported threshold kinds",
		Long: `List the threshold types accepted in thresholds.xml, with the event
parameter holding their value and the alarm types of the generated events.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return outputResult(a.out, alerting.GetSchema(), a.settings.Output)
		},
	}
}
