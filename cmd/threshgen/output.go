package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/k3a/html2text"
	"gopkg.in/yaml.v3"

	"github.com/threshgen/threshgen/internal/alerting"
	"github.com/threshgen/threshgen/internal/conf"
	"github.com/threshgen/threshgen/internal/eventconf"
	"github.com/threshgen/threshgen/internal/notifconf"
)

// EventsResult is the result of previewing events.
type EventsResult struct {
	Events []eventconf.Event `json:"events" yaml:"events"`
	Total  int               `json:"total" yaml:"total"`
}

// NotificationsResult is the result of previewing notifications.
type NotificationsResult struct {
	Notifications []notifconf.Notification `json:"notifications" yaml:"notifications"`
	Total         int                      `json:"total" yaml:"total"`
}

// RunInfo describes a recorded generation run.
type RunInfo struct {
	RunID         string    `json:"runId" yaml:"runId"`
	OpennmsHome   string    `json:"opennmsHome" yaml:"opennmsHome"`
	StartedAt     time.Time `json:"startedAt" yaml:"startedAt"`
	Duration      string    `json:"duration" yaml:"duration"`
	Events        int       `json:"events" yaml:"events"`
	Notifications int       `json:"notifications" yaml:"notifications"`
}

// HistoryResult is the result of the history command.
type HistoryResult struct {
	Runs   []RunInfo `json:"runs" yaml:"runs"`
	Total  int64     `json:"total" yaml:"total"`
	Pruned int64     `json:"pruned,omitempty" yaml:"pruned,omitempty"`
}

// outputResult writes the result in the specified format.
func outputResult(w io.Writer, result any, format string) error {
	switch format {
	case conf.OutputJSON:
		return outputJSON(w, result)
	case conf.OutputYAML:
		return outputYAML(w, result)
	default:
		return outputTable(w, result)
	}
}

func outputJSON(w io.Writer, result any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputYAML(w io.Writer, result any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(result); err != nil {
		return err
	}
	return encoder.Close()
}

func outputTable(out io.Writer, result any) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch r := result.(type) {
	case EventsResult:
		outputEventsTable(w, r)
	case NotificationsResult:
		outputNotificationsTable(w, r)
	case HistoryResult:
		outputHistoryTable(w, r)
	case alerting.Schema:
		outputSchemaTable(w, r)
	default:
		// Fall back to JSON for unknown types
		return outputJSON(out, result)
	}
	return nil
}

func outputEventsTable(w *tabwriter.Writer, r EventsResult) {
	fmt.Fprintf(w, "TOTAL\t%d\n\n", r.Total)
	fmt.Fprintln(w, "UEI\tSEVERITY\tALARM TYPE\tLOG MESSAGE")
	for _, e := range r.Events {
		alarmType := "-"
		if e.AlarmData != nil {
			alarmType = fmt.Sprint(e.AlarmData.AlarmType)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.UEI, e.Severity, alarmType, plainText(e.Logmsg.Content))
	}
}

func outputNotificationsTable(w *tabwriter.Writer, r NotificationsResult) {
	fmt.Fprintf(w, "TOTAL\t%d\n\n", r.Total)
	fmt.Fprintln(w, "NAME\tUEI\tDESTINATION\tSUBJECT")
	for _, n := range r.Notifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Name, n.UEI, n.DestinationPath, n.Subject)
	}
}

func outputHistoryTable(w *tabwriter.Writer, r HistoryResult) {
	fmt.Fprintf(w, "TOTAL\t%d\n", r.Total)
	if r.Pruned > 0 {
		fmt.Fprintf(w, "PRUNED\t%d\n", r.Pruned)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "RUN\tSTARTED\tDURATION\tEVENTS\tNOTIFICATIONS\tOPENNMS HOME")
	for _, run := range r.Runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.RunID, run.StartedAt.Format(time.RFC3339), run.Duration, run.Events, run.Notifications, run.OpennmsHome)
	}
}

func outputSchemaTable(w *tabwriter.Writer, r alerting.Schema) {
	fmt.Fprintln(w, "KIND\tLABEL\tPARAMETER\tONE SHOT\tEXCEEDED ALARM\tREARMED ALARM")
	for _, k := range r.Kinds {
		rearmed := "-"
		if k.RearmedAlarmType != 0 {
			rearmed = fmt.Sprint(k.RearmedAlarmType)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%s\n", k.Name, k.Label, k.Parameter, k.OneShot, k.ExceededAlarmType, rearmed)
	}
}

// plainText renders an HTML log message as a single line of text.
func plainText(html string) string {
	text := html2text.HTML2TextWithOptions(html, html2text.WithLinksInnerText(), html2text.WithUnixLineBreaks())
	return strings.Join(strings.Fields(text), " ")
}
