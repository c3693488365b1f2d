package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/threshgen/threshgen/internal/alerting"
	"github.com/threshgen/threshgen/internal/datastore"
	"github.com/threshgen/threshgen/internal/datastore/entities"
	"github.com/threshgen/threshgen/internal/datastore/repository"
	"github.com/threshgen/threshgen/internal/eventconf"
	"github.com/threshgen/threshgen/internal/logger"
	"github.com/threshgen/threshgen/internal/notifconf"
	"github.com/threshgen/threshgen/internal/observability/metrics"
)

func generateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate the threshold events and notifications files",
		Long: `Generate etc/events/Thresholds-Categorized.events.xml and, when a template
is given, etc/notifications.xml from etc/thresholds.xml.

Examples:
  # Generate events only, with default routing
  threshgen generate -d /opt/opennms

  # Generate events and notifications
  threshgen generate -d /opt/opennms -c routing.properties -n notifications-template.xml`,
		Args: cobra.NoArgs,
		RunE: a.runGenerate,
	}
}

// runSummary is what a finished generation run wrote.
type runSummary struct {
	events        []eventconf.Event
	notifications []notifconf.Notification
}

func (a *app) runGenerate(cmd *cobra.Command, _ []string) (err error) {
	home, err := a.validatePaths()
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	started := time.Now().UTC()
	m := metrics.NewGeneratorMetrics()
	defer func() {
		m.ObserveRun(started, time.Now().UTC(), err == nil)
		a.writeMetrics(m)
	}()

	in, err := a.loadInputs(home, true)
	if err != nil {
		return err
	}

	summary, err := a.generate(in, m, time.Now())
	if err != nil {
		return err
	}

	if err := a.recordHistory(cmd.Context(), home, started, time.Now().UTC(), summary); err != nil {
		a.log.Warn("failed to record generation history", logger.Error(err))
	}
	return nil
}

// generate synthesizes and writes the output files.
func (a *app) generate(in *inputs, m *metrics.GeneratorMetrics, now time.Time) (*runSummary, error) {
	p := alerting.NewProcessor(in.routing, a.log, alerting.WithRecorder(m))
	tes, err := p.ThresholdEvents(in.groups, in.templates)
	if err != nil {
		return nil, err
	}

	summary := &runSummary{events: make([]eventconf.Event, len(tes))}
	for i, te := range tes {
		summary.events[i] = te.Event
	}

	eventsPath := etcPath(in.home, "events", eventconf.FileName)
	fmt.Fprintf(a.out, "Generating %s\n", eventsPath)
	if err := eventconf.WriteFile(eventsPath, summary.events); err != nil {
		return nil, err
	}
	m.ObserveEvents(summary.events)
	a.log.Info("events generated", logger.String("path", eventsPath), logger.Int("events", len(summary.events)))

	if in.notifTemplate == nil {
		return summary, nil
	}

	summary.notifications = p.Notifications(tes)
	doc := notifconf.Merge(in.notifTemplate, summary.notifications, now)
	notifPath := etcPath(in.home, notifconf.FileName)
	fmt.Fprintf(a.out, "Generating %s\n", notifPath)
	if err := notifconf.WriteFile(notifPath, doc); err != nil {
		return nil, err
	}
	m.ObserveNotifications(summary.notifications)
	a.log.Info("notifications generated",
		logger.String("path", notifPath),
		logger.Int("generated", len(summary.notifications)),
		logger.Int("total", len(doc.Notifications)))
	return summary, nil
}

// recordHistory saves the run, reports the UEIs changed since the previous
// run and prunes runs older than the retention.
func (a *app) recordHistory(ctx context.Context, home string, started, finished time.Time, summary *runSummary) error {
	dbPath := a.settings.History.Database
	if dbPath == "" {
		return nil
	}

	db, err := datastore.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = datastore.Close(db) }()
	repo := repository.NewGenerationRunRepository(db)

	prev, err := repo.LatestRun(ctx, home)
	if err != nil && !errors.Is(err, repository.ErrRunNotFound) {
		return err
	}

	run := &entities.GenerationRun{
		RunID:             uuid.NewString(),
		OpennmsHome:       home,
		RoutingFile:       a.settings.Config,
		StartedAt:         started,
		FinishedAt:        finished,
		EventCount:        len(summary.events),
		NotificationCount: len(summary.notifications),
	}
	for i := range summary.events {
		run.UEIs = append(run.UEIs, entities.GeneratedUEI{
			UEI:      summary.events[i].UEI,
			Severity: summary.events[i].Severity,
		})
	}
	if err := repo.SaveRun(ctx, run); err != nil {
		return err
	}

	if prev != nil {
		added, removed := datastore.DiffUEIs(prev, run)
		if len(added) > 0 || len(removed) > 0 {
			a.log.Info("event UEIs changed since previous run",
				logger.String("previous_run", prev.RunID),
				logger.Strings("added", added),
				logger.Strings("removed", removed))
		} else {
			a.log.Debug("event UEIs unchanged since previous run", logger.String("previous_run", prev.RunID))
		}
	}

	cutoff := a.settings.RetentionCutoff(finished)
	if cutoff.IsZero() {
		return nil
	}
	pruned, err := repo.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if pruned > 0 {
		a.log.Info("pruned generation history", logger.Int64("runs", pruned))
	}
	return nil
}

func (a *app) writeMetrics(m *metrics.GeneratorMetrics) {
	path := a.settings.Metrics.Textfile
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		a.log.Warn("failed to write metrics", logger.String("path", path), logger.Error(err))
	}
}
