package alerting

import (
	"fmt"
	"regexp"
	"strings"
)

// InstanceRule maps UEIs containing Substring to the instance text shown in
// log messages.
type InstanceRule struct {
	Substring string
	Text      string
}

// DestinationRule routes UEIs fully matching Pattern to a destination path.
type DestinationRule struct {
	Pattern string
	Path    string
	re      *regexp.Regexp
}

// RoutingConfig controls identifier prefixes, display text and notification
// routing. Rules are evaluated in insertion order and the first match wins.
type RoutingConfig struct {
	BaseUEI               string
	UseComputedExpression bool
	InstanceRules         []InstanceRule
	DestinationRules      []DestinationRule
}

// DefaultRoutingConfig returns the configuration used when no routing file is given.
func DefaultRoutingConfig() *RoutingConfig {
	return &RoutingConfig{
		BaseUEI:               DefaultBaseUEI,
		UseComputedExpression: true,
	}
}

// AddInstanceRule appends an instance-info override.
func (c *RoutingConfig) AddInstanceRule(substring, text string) {
	c.InstanceRules = append(c.InstanceRules, InstanceRule{Substring: substring, Text: text})
}

// AddDestinationRule appends a destination rule. The pattern must match the
// whole UEI.
func (c *RoutingConfig) AddDestinationRule(pattern, path string) error {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidDestinationPattern, pattern, err)
	}
	c.DestinationRules = append(c.DestinationRules, DestinationRule{Pattern: pattern, Path: path, re: re})
	return nil
}

// InstanceInfo returns the instance text for uei.
func (c *RoutingConfig) InstanceInfo(uei string) string {
	for _, r := range c.InstanceRules {
		if strings.Contains(uei, r.Substring) {
			return r.Text
		}
	}
	return DefaultInstanceInfo
}

// DestinationPath returns the notification destination path for uei.
func (c *RoutingConfig) DestinationPath(uei string) string {
	for _, r := range c.DestinationRules {
		if r.re != nil && r.re.MatchString(uei) {
			return r.Path
		}
	}
	return DefaultDestinationPath
}

func (c *RoutingConfig) baseUEI() string {
	if c.BaseUEI == "" {
		return DefaultBaseUEI
	}
	return c.BaseUEI
}
