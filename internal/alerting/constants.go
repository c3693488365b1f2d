// Package alerting synthesizes OpenNMS threshold events and notifications from
// thresholding rules.
package alerting

// DefaultBaseUEI is the UEI prefix used when synthesizing identifiers.
const DefaultBaseUEI = "uei.opennms.org/threshold"

// Routing defaults.
const (
	DefaultInstanceInfo    = "instance <b>%parm[label]%</b>"
	DefaultDestinationPath = "Email-Admin"
)

// Severity is an OpenNMS event severity name.
type Severity string

// Event severities produced for threshold events.
const (
	SeverityNormal   Severity = "Normal"
	SeverityWarning  Severity = "Warning"
	SeverityMinor    Severity = "Minor"
	SeverityMajor    Severity = "Major"
	SeverityCritical Severity = "Critical"
)

// Alarm types understood by the OpenNMS alarm daemon.
const (
	AlarmTypeProblem           = 1
	AlarmTypeResolution        = 2
	AlarmTypeProblemNoClearing = 3
)

// Placeholder tokens filled in by OpenNMS when the event is raised.
const (
	parmDS            = "%parm[ds]%"
	parmLabel         = "%parm[label]%"
	parmInstance      = "%parm[instance]%"
	parmResourceID    = "%parm[resourceId]%"
	parmValue         = "%parm[value]%"
	parmThreshold     = "%parm[threshold]%"
	parmRearm         = "%parm[rearm]%"
	parmTrigger       = "%parm[trigger]%"
	parmChange        = "%parm[changeThreshold]%"
	parmMultiplier    = "%parm[multiplier]%"
	parmPreviousValue = "%parm[previousValue]%"
	ueiToken          = "%uei%"
)

const (
	dsTypeNode = "node"

	colorExceeded = "#cc0000"
	colorRearmed  = "#4e9a06"

	graphLinkPrefix = "graph/results.htm?resourceId=" + parmResourceID + "&reports="
	graphLinkAll    = "all"
	graphLinkJoin   = "&reports="
)
