// threshgen generates OpenNMS threshold events and notifications from the
// thresholds defined in thresholds.xml.
//
// Usage:
//
//	threshgen generate -d /opt/opennms -c routing.properties -n notifications-template.xml
//	threshgen preview -d /opt/opennms --kind notifications -o yaml
//	threshgen history --history-db /var/lib/threshgen/history.db
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/threshgen/threshgen/internal/conf"
	"github.com/threshgen/threshgen/internal/logger"
)

var version = "dev"

const rootLong = `threshgen generates etc/events/Thresholds-Categorized.events.xml and
etc/notifications.xml based on the thresholds defined in etc/thresholds.xml.

Settings are read from flags, THRESHGEN_* environment variables and an
optional YAML settings file (--settings).

Warnings:
  - This tool requires at least OpenNMS 1.12.2
  - Do not add custom events to Thresholds-Categorized.events.xml, they will be overwritten`

// app carries the state shared by all commands.
type app struct {
	v            *viper.Viper
	settingsFile string
	settings     *conf.Settings
	log          logger.Logger
	out          io.Writer
	errOut       io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: conf.NewViper(), out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:               "threshgen",
		Short:             "Generate OpenNMS threshold events and notifications",
		Long:              rootLong,
		Version:           version,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.settingsFile, "settings", "", "YAML settings file")
	pf.StringP("opennms-home", "d", "", "OpenNMS home directory (example: /opt/opennms or /usr/share/opennms)")
	pf.StringP("config", "c", "", "Routing configuration properties file (defaults are used when omitted)")
	pf.StringP("notifications", "n", "", "Template for notifications.xml (notifications are not generated when omitted)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (default info)")
	pf.StringP("output", "o", "", "Output format: table, json, yaml (default table)")
	pf.String("history-db", "", "Generation history sqlite database (history is disabled when empty)")
	pf.String("retention", "", "Prune history runs older than this, e.g. 90d (0 keeps everything)")
	pf.String("metrics-textfile", "", "Write run metrics to this node_exporter textfile")

	bindings := map[string]string{
		conf.KeyOpennmsHome:      "opennms-home",
		conf.KeyConfig:           "config",
		conf.KeyNotifications:    "notifications",
		conf.KeyLogLevel:         "log-level",
		conf.KeyOutput:           "output",
		conf.KeyHistoryDatabase:  "history-db",
		conf.KeyHistoryRetention: "retention",
		conf.KeyMetricsTextfile:  "metrics-textfile",
	}
	for key, flag := range bindings {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	// Add subcommands
	rootCmd.AddCommand(generateCmd(a))
	rootCmd.AddCommand(previewCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(kindsCmd(a))

	return rootCmd
}

// setup loads settings and creates the logger before any command runs.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	s, err := conf.LoadSettings(a.v, a.settingsFile)
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	a.settings = s
	a.log = logger.NewZapLogger(a.errOut, level)
	return nil
}
