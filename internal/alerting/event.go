package alerting

import (
	"strings"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/threshgen/threshgen/internal/eventconf"
	"github.com/threshgen/threshgen/internal/graphs"
	"github.com/threshgen/threshgen/internal/logger"
	"github.com/threshgen/threshgen/internal/threshd"
)

// ThresholdEvent is a synthesized event together with the values notifications
// are derived from.
type ThresholdEvent struct {
	Event     eventconf.Event
	Kind      Kind
	Direction Direction
	Severity  Severity
	// Display is the expression text shown in labels and notification names.
	Display   string
	Metrics   []string
}

// EventSynthesizer builds event definitions for single rules.
type EventSynthesizer struct {
	baseUEI     string
	useComputed bool
	log         logger.Logger
	recorder    Recorder

	// parsed expressions, so each failure is reported once
	metricCache *cache.Cache
}

// NewEventSynthesizer creates an EventSynthesizer.
func NewEventSynthesizer(baseUEI string, useComputedExpression bool, log logger.Logger, recorder Recorder) *EventSynthesizer {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &EventSynthesizer{
		baseUEI:     baseUEI,
		useComputed: useComputedExpression,
		log:         log,
		recorder:    recorder,
		metricCache: cache.New(cache.NoExpiration, 0),
	}
}

// Synthesize builds the event with identifier uei for rule in the given
// direction. Graph templates plotting any of the rule's data sources are
// linked from the log message.
func (s *EventSynthesizer) Synthesize(rule threshd.Rule, uei string, dir Direction, instanceInfo string, templates []graphs.Template) (*ThresholdEvent, error) {
	kind, err := ParseKind(rule.Type)
	if err != nil {
		return nil, err
	}

	te := &ThresholdEvent{
		Kind:      kind,
		Direction: dir,
		Severity:  severityFor(uei, dir),
		Metrics:   s.metrics(rule),
	}
	if s.useComputed {
		te.Display = computedDisplay(uei, s.baseUEI, te.Severity)
	} else {
		te.Display = rule.Subject()
	}
	if rule.DsType == dsTypeNode {
		instanceInfo = ""
	}

	te.Event = eventconf.Event{
		UEI:        uei,
		EventLabel: eventLabel(kind, dir, te.Display, te.Severity),
		Descr:      description(kind, dir, rule.Description),
		Logmsg: eventconf.Logmsg{
			Dest:    eventconf.LogDestDisplay,
			Content: logMessage(kind, dir, graphLink(te.Metrics, templates), te.Display, instanceInfo),
		},
		Severity:  string(te.Severity),
		AlarmData: alarmData(kind, dir, uei),
	}
	return te, nil
}

func (s *EventSynthesizer) metrics(rule threshd.Rule) []string {
	if rule.Variant == threshd.SingleMetric {
		return []string{rule.Metric}
	}
	if cached, ok := s.metricCache.Get(rule.Expression); ok {
		return cached.([]string)
	}
	m, err := ExtractMetrics(rule.Expression)
	if err != nil {
		s.log.Error("failed to resolve expression data sources",
			logger.String("expression", rule.Expression),
			logger.Error(err))
		s.recorder.ExpressionParseFailed()
	}
	s.metricCache.Set(rule.Expression, m, cache.NoExpiration)
	return m
}

func severityFor(uei string, dir Direction) Severity {
	if dir == Rearmed {
		return SeverityNormal
	}
	lower := strings.ToLower(uei)
	switch {
	case strings.Contains(lower, "minor"):
		return SeverityMinor
	case strings.Contains(lower, "major"):
		return SeverityMajor
	case strings.Contains(lower, "critical"):
		return SeverityCritical
	default:
		return SeverityWarning
	}
}

// computedDisplay derives a display name from the UEI path segments that are
// not kind, severity or direction markers.
func computedDisplay(uei, baseUEI string, sev Severity) string {
	sections := strings.Split(strings.ReplaceAll(uei, baseUEI+"/", ""), "/")
	for len(sections) > 0 && sections[len(sections)-1] == "" {
		sections = sections[:len(sections)-1]
	}
	kept := make([]string, 0, len(sections))
	for _, section := range sections {
		if !isDisplayStopword(section, sev) {
			kept = append(kept, section)
		}
	}
	return cases.Upper(language.Und).String(strings.Join(kept, "-"))
}

func isDisplayStopword(section string, sev Severity) bool {
	s := strings.ToLower(section)
	switch s {
	case "high", "low", "ac", "rc", "absolutechange", "relativechange":
		return true
	}
	if len(s) > len("exceed") && strings.HasPrefix(s, "exceed") {
		return true
	}
	if len(s) > len("rearm") && strings.HasPrefix(s, "rearm") {
		return true
	}
	return strings.EqualFold(section, string(sev))
}

func graphLink(metrics []string, templates []graphs.Template) string {
	var reports []string
	for _, t := range templates {
		if t.HasAnyColumn(metrics) {
			reports = append(reports, t.Name)
		}
	}
	if len(reports) == 0 {
		return graphLinkPrefix + graphLinkAll
	}
	return graphLinkPrefix + strings.Join(reports, graphLinkJoin)
}

func eventLabel(kind Kind, dir Direction, display string, sev Severity) string {
	lower := cases.Lower(language.Und)
	var sb strings.Builder
	sb.WriteString("User-defined custom ")
	sb.WriteString(lower.String(kind.DisplayName()))
	sb.WriteString(" threshold ")
	sb.WriteString(dir.String())
	sb.WriteString(" event for ")
	sb.WriteString(lower.String(display))
	if dir == Exceeded {
		sb.WriteString(" [" + string(sev) + "]")
	}
	return sb.String()
}

func logMessage(kind Kind, dir Direction, link, display, instanceInfo string) string {
	var sb strings.Builder
	sb.WriteString("<b><a href='" + link + "'>" + display + "</b></a> ")
	sb.WriteString(kind.DisplayName() + " threshold ")
	sb.WriteString("<b>" + kind.ParamToken() + "</b> " + dir.String())
	if kind.IsOneShot() {
		sb.WriteString(" changed from " + parmPreviousValue + " to ")
	} else {
		sb.WriteString(" with ")
	}
	color := colorExceeded
	if dir == Rearmed {
		color = colorRearmed
	}
	sb.WriteString("<font color=" + color + "><b>" + parmValue + "</b></font>")
	if !isBlank(instanceInfo) {
		sb.WriteString(", on " + instanceInfo)
	}
	sb.WriteString(", for metric " + parmDS + ", on node %nodelabel%.")
	return sb.String()
}

func description(kind Kind, dir Direction, text string) string {
	var sb strings.Builder
	sb.WriteString("<p>" + kind.DisplayName() + " threshold " + dir.String())
	sb.WriteString(" for %service% datasource " + parmDS + " on interface %interface% for node %nodelabel% (nodeId %nodeid%).</p>")
	if text != "" {
		sb.WriteString("<p><b>Description:</b> " + text + "</p>")
	}
	sb.WriteString("<br>\n")
	sb.WriteString("        <table style='width:50%; white-space: nowrap;'>\n")
	for _, rows := range [][]tableRow{commonDescriptionRows, kind.descriptionRows()} {
		for _, r := range rows {
			sb.WriteString("        <tr><td><b>" + r.label + "</b></td><td>" + r.token + "</td></tr>\n")
		}
	}
	sb.WriteString("        </table>\n")
	sb.WriteString("        </br><p>All parameters: %parm[all]%</p>")
	return sb.String()
}

// reductionKeySuffix is shared by the reduction and clear keys so a rearmed
// event clears the alarm of the matching exceeded event.
func reductionKeySuffix(kind Kind) string {
	return ":%dpname%:%nodeid%:%interface%:" + parmDS + ":" + kind.ParamToken() + ":" + parmTrigger + ":" + parmRearm + ":" + parmLabel
}

func alarmData(kind Kind, dir Direction, uei string) *eventconf.AlarmData {
	suffix := reductionKeySuffix(kind)
	data := &eventconf.AlarmData{
		ReductionKey: ueiToken + suffix,
		AlarmType:    kind.AlarmType(dir),
		AutoClean:    false,
	}
	if dir == Rearmed {
		data.ClearKey = clearedUEI(uei) + suffix
	}
	return data
}
