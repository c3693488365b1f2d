package alerting

import (
	"fmt"
	"strings"
)

// Kind is a threshold comparison type.
type Kind int

// Supported threshold kinds.
const (
	kindUnknown Kind = iota
	KindHigh
	KindLow
	KindAbsoluteChange
	KindRelativeChange
	KindRearmingAbsoluteChange
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindHigh, KindLow, KindAbsoluteChange, KindRelativeChange, KindRearmingAbsoluteChange}

// ParseKind maps a thresholds.xml type attribute to a Kind.
func ParseKind(s string) (Kind, error) {
	if strings.TrimSpace(s) == "" {
		return kindUnknown, ErrMissingThresholdType
	}
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return kindUnknown, fmt.Errorf("%w %q", ErrInvalidThresholdType, s)
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHigh:
		return "high"
	case KindLow:
		return "low"
	case KindAbsoluteChange:
		return "absoluteChange"
	case KindRelativeChange:
		return "relativeChange"
	case KindRearmingAbsoluteChange:
		return "rearmingAbsoluteChange"
	case kindUnknown:
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DisplayName is the human readable kind name used in messages.
func (k Kind) DisplayName() string {
	switch k {
	case KindHigh:
		return "High"
	case KindLow:
		return "Low"
	case KindAbsoluteChange:
		return "Absolute Change"
	case KindRelativeChange:
		return "Relative Change"
	case KindRearmingAbsoluteChange:
		return "Rearming Absolute Change"
	case kindUnknown:
	}
	return ""
}

// ParamToken is the event parameter holding the configured threshold value.
func (k Kind) ParamToken() string {
	switch k {
	case KindAbsoluteChange:
		return parmChange
	case KindRelativeChange:
		return parmMultiplier
	case KindHigh, KindLow, KindRearmingAbsoluteChange, kindUnknown:
	}
	return parmThreshold
}

// IsOneShot reports whether the kind models a delta with no recovered state.
func (k Kind) IsOneShot() bool {
	switch k {
	case KindAbsoluteChange, KindRelativeChange:
		return true
	case KindHigh, KindLow, KindRearmingAbsoluteChange, kindUnknown:
	}
	return false
}

// AlarmType returns the alarm type for an event of this kind.
func (k Kind) AlarmType(dir Direction) int {
	if dir == Rearmed {
		return AlarmTypeResolution
	}
	if k.IsOneShot() {
		return AlarmTypeProblemNoClearing
	}
	return AlarmTypeProblem
}

type tableRow struct {
	label string
	token string
}

var commonDescriptionRows = []tableRow{
	{"Data Source", parmDS},
	{"Resource Label", parmLabel},
	{"Resource Instance", parmInstance},
	{"Resource ID", parmResourceID},
	{"Current Metric Value", parmValue},
}

func (k Kind) descriptionRows() []tableRow {
	switch k {
	case KindAbsoluteChange:
		return []tableRow{
			{"Change Threshold", parmChange},
			{"Previous Value", parmPreviousValue},
			{"Trigger Value", parmTrigger},
		}
	case KindRelativeChange:
		return []tableRow{
			{"Multiplier (Threshold Value)", parmMultiplier},
			{"Previous Value", parmPreviousValue},
		}
	case KindRearmingAbsoluteChange:
		return []tableRow{
			{"Threshold Value", parmThreshold},
			{"Previous Value", parmPreviousValue},
			{"Trigger Value", parmTrigger},
		}
	case KindHigh, KindLow, kindUnknown:
	}
	return []tableRow{
		{"Threshold Value", parmThreshold},
		{"Rearm Value", parmRearm},
		{"Trigger Value", parmTrigger},
	}
}

// Direction tells whether an event signals a crossed or a recovered threshold.
type Direction int

const (
	// Exceeded events are raised when the threshold is crossed.
	Exceeded Direction = iota
	// Rearmed events are raised when the value recovers.
	Rearmed
)

func (d Direction) String() string {
	if d == Rearmed {
		return "rearmed"
	}
	return "exceeded"
}
