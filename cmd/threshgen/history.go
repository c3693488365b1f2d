package main

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/threshgen/threshgen/internal/datastore"
	"github.com/threshgen/threshgen/internal/datastore/repository"
	"github.com/threshgen/threshgen/internal/logger"
)

var errHistoryDisabled = errors.New("no history database configured, use --history-db")

func historyCmd(a *app) *cobra.Command {
	var (
		limit int
		prune bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generation runs",
		Long: `List the generation runs recorded in the history database, newest first.

Examples:
  # Show the last 10 runs
  threshgen history --history-db /var/lib/threshgen/history.db

  # Only runs for one OpenNMS home, pruning runs older than 30 days first
  threshgen history --history-db history.db -d /opt/opennms --prune --retention 30d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath := a.settings.History.Database
			if dbPath == "" {
				return errHistoryDisabled
			}
			cmd.SilenceUsage = true

			db, err := datastore.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = datastore.Close(db) }()
			repo := repository.NewGenerationRunRepository(db)
			ctx := cmd.Context()

			var result HistoryResult
			if prune {
				if cutoff := a.settings.RetentionCutoff(time.Now().UTC()); !cutoff.IsZero() {
					result.Pruned, err = repo.DeleteRunsBefore(ctx, cutoff)
					if err != nil {
						return err
					}
					a.log.Info("pruned generation history", logger.Int64("runs", result.Pruned))
				}
			}

			filter := repository.RunFilter{Limit: limit}
			if a.settings.OpennmsHome != "" {
				if filter.OpennmsHome, err = filepath.Abs(a.settings.OpennmsHome); err != nil {
					return err
				}
			}
			runs, total, err := repo.ListRuns(ctx, filter)
			if err != nil {
				return err
			}
			result.Total = total
			for i := range runs {
				r := &runs[i]
				result.Runs = append(result.Runs, RunInfo{
					RunID:         r.RunID,
					OpennmsHome:   r.OpennmsHome,
					StartedAt:     r.StartedAt,
					Duration:      r.Duration().String(),
					Events:        r.EventCount,
					Notifications: r.NotificationCount,
				})
			}
			return outputResult(a.out, result, a.settings.Output)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete runs older than the history retention first")
	return cmd
}
