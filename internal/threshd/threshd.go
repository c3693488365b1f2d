// Package threshd models and loads the OpenNMS thresholding configuration
// (thresholds.xml).
package threshd

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// FileName is the thresholding configuration file under $OPENNMS_HOME/etc.
const FileName = "thresholds.xml"

// Config is the root thresholding-config document.
type Config struct {
	XMLName xml.Name `xml:"thresholding-config"`
	Groups  []Group  `xml:"group"`
}

// Group is a named set of thresholds and expressions sharing an RRD repository.
type Group struct {
	Name          string       `xml:"name,attr"`
	RRDRepository string       `xml:"rrdRepository,attr"`
	Thresholds    []Threshold  `xml:"threshold"`
	Expressions   []Expression `xml:"expression"`
}

// Definition holds the attributes shared by thresholds and expressions.
type Definition struct {
	Type         string  `xml:"type,attr"`
	DsType       string  `xml:"ds-type,attr"`
	Value        float64 `xml:"value,attr"`
	Rearm        float64 `xml:"rearm,attr"`
	Trigger      int     `xml:"trigger,attr"`
	DsLabel      string  `xml:"ds-label,attr,omitempty"`
	Description  string  `xml:"description,attr,omitempty"`
	TriggeredUEI string  `xml:"triggeredUEI,attr,omitempty"`
	RearmedUEI   string  `xml:"rearmedUEI,attr,omitempty"`
}

// Threshold is a definition over a single data source.
type Threshold struct {
	Definition
	DsName string `xml:"ds-name,attr"`
}

// Expression is a definition over an arithmetic expression of data sources.
type Expression struct {
	Definition
	Expression string `xml:"expression,attr"`
}

// Variant tells which kind of subject a Rule carries.
type Variant int

const (
	// SingleMetric rules watch one named data source.
	SingleMetric Variant = iota
	// ComputedMetric rules watch an expression over data sources.
	ComputedMetric
)

func (v Variant) String() string {
	switch v {
	case SingleMetric:
		return "threshold"
	case ComputedMetric:
		return "expression"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Rule is a read-only view of one threshold or expression. Metric is set for
// SingleMetric rules and Expression for ComputedMetric rules.
type Rule struct {
	Variant Variant
	Definition
	Metric     string
	Expression string
}

// Subject returns the metric name or the expression text.
func (r Rule) Subject() string {
	if r.Variant == ComputedMetric {
		return r.Expression
	}
	return r.Metric
}

// Rules returns the group's thresholds followed by its expressions.
func (g Group) Rules() []Rule {
	rules := make([]Rule, 0, len(g.Thresholds)+len(g.Expressions))
	for i := range g.Thresholds {
		t := &g.Thresholds[i]
		rules = append(rules, Rule{Variant: SingleMetric, Definition: t.Definition, Metric: t.DsName})
	}
	for i := range g.Expressions {
		e := &g.Expressions[i]
		rules = append(rules, Rule{Variant: ComputedMetric, Definition: e.Definition, Expression: e.Expression})
	}
	return rules
}

// Load decodes a thresholding configuration document.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	if err := xml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode thresholding config: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads and decodes the thresholding configuration at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thresholding config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
