// Package graphs loads prefabricated graph templates from snmp-graph.properties.
package graphs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/magiconair/properties"

	"github.com/threshgen/threshgen/internal/logger"
)

// FileName is the graph template catalog under $OPENNMS_HOME/etc.
const FileName = "snmp-graph.properties"

const (
	keyReports          = "reports"
	keyIncludeDirectory = "include.directory"
	reportKeyPrefix     = "report."
)

// ErrNoReports is returned when a catalog declares no reports at all.
var ErrNoReports = errors.New("no reports declared")

// Template is a prefabricated graph and the data source columns it plots.
type Template struct {
	Name    string
	Title   string
	Type    string
	Columns []string
}

// HasAnyColumn reports whether the template plots any of the given metrics.
func (t Template) HasAnyColumn(metrics []string) bool {
	for _, c := range t.Columns {
		if slices.Contains(metrics, c) {
			return true
		}
	}
	return false
}

func newLoader() *properties.Loader {
	return &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
}

// LoadFile reads the catalog at path plus any fragments in its include directory.
// Templates are returned in declaration order.
func LoadFile(path string, log logger.Logger) ([]Template, error) {
	p, err := newLoader().LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph templates: %w", err)
	}

	templates := parse(p, log)

	if dir, ok := p.Get(keyIncludeDirectory); ok && dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(path), dir)
		}
		included, err := loadIncludeDirectory(dir, log)
		if err != nil {
			return nil, err
		}
		templates = append(templates, included...)
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoReports)
	}
	return templates, nil
}

func loadIncludeDirectory(dir string, log logger.Logger) ([]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph include directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".properties") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var templates []Template
	for _, name := range names {
		p, err := newLoader().LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load graph templates from %s: %w", name, err)
		}
		templates = append(templates, parse(p, log)...)
	}
	return templates, nil
}

// Parse extracts templates from already loaded properties.
func Parse(p *properties.Properties, log logger.Logger) []Template {
	return parse(p, log)
}

func parse(p *properties.Properties, log logger.Logger) []Template {
	var templates []Template
	for _, name := range splitList(p.GetString(keyReports, "")) {
		prefix := reportKeyPrefix + name + "."
		columns := splitList(p.GetString(prefix+"columns", ""))
		if len(columns) == 0 {
			log.Warn("skipping graph report without columns", logger.String("report", name))
			continue
		}
		templates = append(templates, Template{
			Name:    name,
			Title:   p.GetString(prefix+"name", name),
			Type:    p.GetString(prefix+"type", ""),
			Columns: columns,
		})
	}
	return templates
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
