package alerting

import "strings"

// TriggeredUEI builds the identifier for an exceeded event of a rule that
// does not declare one. subject is the metric name for single data source
// rules and the group name for expressions.
func TriggeredUEI(baseUEI string, kind Kind, dsType, subject string) string {
	return baseUEI + "/" + kind.String() + "/" + dsType + "/" + subject + "/exceeded"
}

// RearmedUEI derives the rearmed identifier from a triggered one.
func RearmedUEI(triggered string) (string, error) {
	if triggered == "" {
		return "", ErrMissingTriggeredUEI
	}
	return strings.Replace(triggered, "exceed", "rearm", 1), nil
}

// clearedUEI reconstructs the exceeded identifier a rearmed event clears.
func clearedUEI(rearmed string) string {
	return strings.Replace(rearmed, "rearmed", "exceeded", 1)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
