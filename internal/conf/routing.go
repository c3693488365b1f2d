package conf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/magiconair/properties"

	"github.com/threshgen/threshgen/internal/alerting"
	"github.com/threshgen/threshgen/internal/logger"
)

// Routing property keys.
const (
	keyUseComputedExpression = "useComputedExpression"
	keyBaseUEI               = "baseUei"
	prefixInstance           = "instance["
	prefixDestinationPath    = "destinationPath["
)

// ErrInvalidRouting is returned for a routing file that cannot be applied.
var ErrInvalidRouting = errors.New("invalid routing configuration")

// LoadRouting reads a routing properties file. Instance and destination rules
// keep the order in which they appear in the file.
func LoadRouting(path string, log logger.Logger) (*alerting.RoutingConfig, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing configuration: %w", err)
	}
	cfg, err := ParseRouting(p, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseRouting builds a routing configuration from loaded properties.
func ParseRouting(p *properties.Properties, log logger.Logger) (*alerting.RoutingConfig, error) {
	cfg := alerting.DefaultRoutingConfig()

	for _, key := range p.Keys() {
		value, _ := p.Get(key)

		switch {
		case key == keyUseComputedExpression:
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidRouting, key, value)
			}
			cfg.UseComputedExpression = b
		case key == keyBaseUEI:
			base := strings.TrimRight(strings.TrimSpace(value), "/")
			if base == "" {
				return nil, fmt.Errorf("%w: %s cannot be empty", ErrInvalidRouting, key)
			}
			cfg.BaseUEI = base
		case strings.HasPrefix(key, prefixInstance):
			substr, err := bracketed(key, prefixInstance)
			if err != nil {
				return nil, err
			}
			cfg.AddInstanceRule(substr, value)
		case strings.HasPrefix(key, prefixDestinationPath):
			pattern, err := bracketed(key, prefixDestinationPath)
			if err != nil {
				return nil, err
			}
			if err := cfg.AddDestinationRule(pattern, strings.TrimSpace(value)); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidRouting, err)
			}
		default:
			log.Warn("ignoring unknown routing property", logger.String("key", key))
		}
	}

	log.Debug("routing configuration loaded",
		logger.String("base_uei", cfg.BaseUEI),
		logger.Bool("use_computed_expression", cfg.UseComputedExpression),
		logger.Int("instance_rules", len(cfg.InstanceRules)),
		logger.Int("destination_rules", len(cfg.DestinationRules)))
	return cfg, nil
}

func bracketed(key, prefix string) (string, error) {
	inner, ok := strings.CutSuffix(strings.TrimPrefix(key, prefix), "]")
	if !ok || inner == "" {
		return "", fmt.Errorf("%w: malformed key %q, expected %s<pattern>]", ErrInvalidRouting, key, prefix)
	}
	return inner, nil
}
