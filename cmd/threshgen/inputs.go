package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/threshgen/threshgen/internal/alerting"
	"github.com/threshgen/threshgen/internal/conf"
	"github.com/threshgen/threshgen/internal/graphs"
	"github.com/threshgen/threshgen/internal/logger"
	"github.com/threshgen/threshgen/internal/notifconf"
	"github.com/threshgen/threshgen/internal/threshd"
)

var (
	errMissingOpennmsHome = errors.New("you must specify an OpenNMS home directory")
	errOpennmsHomeMissing = errors.New("OpenNMS home directory does not exist")
	errConfigMissing      = errors.New("configuration properties file does not exist")
	errTemplateMissing    = errors.New("template for notifications.xml does not exist")
)

// inputs is everything a generation run reads.
type inputs struct {
	home      string
	groups    []threshd.Group
	templates []graphs.Template
	routing   *alerting.RoutingConfig

	// nil when no notifications template was given
	notifTemplate *notifconf.Notifications
}

func etcPath(home string, elem ...string) string {
	return filepath.Join(append([]string{home, "etc"}, elem...)...)
}

// validatePaths checks the command line paths before anything is loaded and
// returns the absolute OpenNMS home directory.
func (a *app) validatePaths() (string, error) {
	s := a.settings
	if s.OpennmsHome == "" {
		return "", errMissingOpennmsHome
	}
	info, err := os.Stat(s.OpennmsHome)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", errOpennmsHomeMissing, s.OpennmsHome)
	}
	if s.Config != "" {
		if _, err := os.Stat(s.Config); err != nil {
			return "", fmt.Errorf("%w: %s", errConfigMissing, s.Config)
		}
	}
	if s.Notifications != "" {
		if _, err := os.Stat(s.Notifications); err != nil {
			return "", fmt.Errorf("%w: %s", errTemplateMissing, s.Notifications)
		}
	}
	home, err := filepath.Abs(s.OpennmsHome)
	if err != nil {
		return "", fmt.Errorf("failed to resolve OpenNMS home: %w", err)
	}
	return home, nil
}

// loadInputs reads the thresholds, graph templates, routing configuration and
// notifications template concurrently.
func (a *app) loadInputs(home string, withNotifTemplate bool) (*inputs, error) {
	in := &inputs{home: home}
	var g errgroup.Group

	g.Go(func() error {
		path := etcPath(home, threshd.FileName)
		cfg, err := threshd.LoadFile(path)
		if err != nil {
			return err
		}
		in.groups = cfg.Groups
		a.log.Debug("loaded thresholds", logger.String("path", path), logger.Int("groups", len(cfg.Groups)))
		return nil
	})

	g.Go(func() error {
		path := etcPath(home, graphs.FileName)
		templates, err := graphs.LoadFile(path, a.log)
		if err != nil {
			return err
		}
		in.templates = templates
		a.log.Debug("loaded graph templates", logger.String("path", path), logger.Int("templates", len(templates)))
		return nil
	})

	g.Go(func() error {
		if a.settings.Config == "" {
			in.routing = alerting.DefaultRoutingConfig()
			return nil
		}
		routing, err := conf.LoadRouting(a.settings.Config, a.log)
		if err != nil {
			return fmt.Errorf("can't parse configuration file: %w", err)
		}
		in.routing = routing
		return nil
	})

	if withNotifTemplate && a.settings.Notifications != "" {
		g.Go(func() error {
			tpl, err := notifconf.LoadTemplate(a.settings.Notifications)
			if err != nil {
				return err
			}
			in.notifTemplate = tpl
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}
