package alerting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/threshgen/threshgen/internal/eventconf"
	"github.com/threshgen/threshgen/internal/logger"
)

func TestSynthesize_SingleThreshold(t *testing.T) {
	rule := singleRule(threshold("high", "if", "ifInOctets",
		"uei.opennms.org/threshold/ifInOctets/major/exceeded",
		"uei.opennms.org/threshold/ifInOctets/major/rearmed"))
	rule.DsLabel = "ifName"
	rule.Description = "Test ifInOctets"

	s := NewEventSynthesizer(DefaultBaseUEI, true, testLogger(), nil)
	te, err := s.Synthesize(rule, rule.TriggeredUEI, Exceeded, DefaultInstanceInfo, testTemplates())
	require.NoError(t, err)

	e := te.Event
	assert.Equal(t, "Major", e.Severity)
	assert.Equal(t, "User-defined custom high threshold exceeded event for ifinoctets [Major]", e.EventLabel)
	assert.Contains(t, e.Logmsg.Content, "resourceId=%parm[resourceId]%&reports=mib2.traffic-inout&reports=mib2.bits")
	assert.Equal(t, eventconf.LogDestDisplay, e.Logmsg.Dest)
	assert.Equal(t, "IFINOCTETS", te.Display)
	assert.Equal(t, []string{"ifInOctets"}, te.Metrics)
}

func TestSynthesize_ExpressionThreshold(t *testing.T) {
	rule := computedRule(expression("high", "if", "((ifInOctets + ifOutOctets) * 8 / ifSpeed) * 100",
		"uei.opennms.org/threshold/interface/utilization/exceeded",
		"uei.opennms.org/threshold/interface/utilization/rearmed"))
	rule.Description = "Test Utilization"

	s := NewEventSynthesizer(DefaultBaseUEI, true, testLogger(), nil)
	te, err := s.Synthesize(rule, rule.TriggeredUEI, Exceeded, DefaultInstanceInfo, testTemplates())
	require.NoError(t, err)

	e := te.Event
	assert.Equal(t, "Warning", e.Severity)
	assert.Equal(t, "User-defined custom high threshold exceeded event for interface-utilization [Warning]", e.EventLabel)
	assert.Contains(t, e.Logmsg.Content, "resourceId=%parm[resourceId]%&reports=mib2.traffic-inout&reports=mib2.bits")
	assert.Contains(t, e.Descr, "<p><b>Description:</b> Test Utilization</p>")
}

func TestSynthesize_LogMessage(t *testing.T) {
	rule := singleRule(threshold("high", "hrProcessorIndex", "cpuPercentBusy",
		"uei.opennms.org/threshold/windows/cpu/high/major/exceeded",
		"uei.opennms.org/threshold/windows/cpu/high/major/rearmed"))
	s := NewEventSynthesizer(DefaultBaseUEI, true, testLogger(), nil)

	exceeded, err := s.Synthesize(rule, rule.TriggeredUEI, Exceeded, DefaultInstanceInfo, testTemplates())
	require.NoError(t, err)
	assert.Equal(t,
		"<b><a href='graph/results.htm?resourceId=%parm[resourceId]%&reports=netsnmp.cpuStats'>WINDOWS-CPU</b></a> "+
			"High threshold <b>%parm[threshold]%</b> exceeded with <font color=#cc0000><b>%parm[value]%</b></font>, "+
			"on instance <b>%parm[label]%</b>, for metric %parm[ds]%, on node %nodelabel%.",
		exceeded.Event.Logmsg.Content)

	rearmed, err := s.Synthesize(rule, rule.RearmedUEI, Rearmed, DefaultInstanceInfo, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"<b><a href='graph/results.htm?resourceId=%parm[resourceId]%&reports=all'>WINDOWS-CPU-MAJOR</b></a> "+
			"High threshold <b>%parm[threshold]%</b> rearmed with <font color=#4e9a06><b>%parm[value]%</b></font>, "+
			"on instance <b>%parm[label]%</b>, for metric %parm[ds]%, on node %nodelabel%.",
		rearmed.Event.Logmsg.Content)
	assert.Equal(t, "User-defined custom high threshold rearmed event for windows-cpu-major", rearmed.Event.EventLabel)
}

func TestSynthesize_InstanceInfo(t *testing.T) {
	s := NewEventSynthesizer(DefaultBaseUEI, false, testLogger(), nil)

	node := singleRule(threshold("low", "node", "loadavg5", "uei.example/load/exceeded", ""))
	te, err := s.Synthesize(node, node.TriggeredUEI, Exceeded, DefaultInstanceInfo, nil)
	require.NoError(t, err)
	assert.NotContains(t, te.Event.Logmsg.Content, ", on instance")

	blank := singleRule(threshold("low", "if", "ifInOctets", "uei.example/if/exceeded", ""))
	te, err = s.Synthesize(blank, blank.TriggeredUEI, Exceeded, "   ", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(te.Event.Logmsg.Content, "</font>, for metric %parm[ds]%, on node %nodelabel%."))
}

func TestSynthesize_ChangeKinds(t *testing.T) {
	s := NewEventSynthesizer(DefaultBaseUEI, true, testLogger(), nil)

	ac := singleRule(threshold("absoluteChange", "node", "upsAdvInputLineVoltage",
		"uei.opennms.org/threshold/apc/ups/vac-in/warning/ac/exceeded", ""))
	te, err := s.Synthesize(ac, ac.TriggeredUEI, Exceeded, DefaultInstanceInfo, nil)
	require.NoError(t, err)
	assert.Equal(t, "Warning", te.Event.Severity)
	assert.Equal(t, "APC-UPS-VAC-IN", te.Display)
	assert.Contains(t, te.Event.Logmsg.Content, " changed from %parm[previousValue]% to <font color=#cc0000>")
	assert.Contains(t, te.Event.Logmsg.Content, "<b>%parm[changeThreshold]%</b> exceeded")
	require.NotNil(t, te.Event.AlarmData)
	assert.Equal(t, 3, te.Event.AlarmData.AlarmType)

	rc := computedRule(expression("relativeChange", "if", "ifInErrors / ifInUcastPkts", "uei.example/rc/errors/exceeded", ""))
	te, err = s.Synthesize(rc, rc.TriggeredUEI, Exceeded, DefaultInstanceInfo, nil)
	require.NoError(t, err)
	assert.Contains(t, te.Event.Logmsg.Content, "Relative Change threshold <b>%parm[multiplier]%</b> exceeded changed from")
	assert.Contains(t, te.Event.Descr, "<tr><td><b>Multiplier (Threshold Value)</b></td><td>%parm[multiplier]%</td></tr>")
	assert.NotContains(t, te.Event.Descr, "Trigger Value")
}

func TestSynthesize_Description(t *testing.T) {
	rule := singleRule(threshold("high", "if", "ifInOctets", "uei.example/if/exceeded", ""))
	s := NewEventSynthesizer(DefaultBaseUEI, true, testLogger(), nil)

	te, err := s.Synthesize(rule, rule.TriggeredUEI, Exceeded, DefaultInstanceInfo, nil)
	require.NoError(t, err)

	want := "<p>High threshold exceeded for %service% datasource %parm[ds]% on interface %interface% for node %nodelabel% (nodeId %nodeid%).</p>" +
		"<br>\n" +
		"        <table style='width:50%; white-space: nowrap;'>\n" +
		"        <tr><td><b>Data Source</b></td><td>%parm[ds]%</td></tr>\n" +
		"        <tr><td><b>Resource Label</b></td><td>%parm[label]%</td></tr>\n" +
		"        <tr><td><b>Resource Instance</b></td><td>%parm[instance]%</td></tr>\n" +
		"        <tr><td><b>Resource ID</b></td><td>%parm[resourceId]%</td></tr>\n" +
		"        <tr><td><b>Current Metric Value</b></td><td>%parm[value]%</td></tr>\n" +
		"        <tr><td><b>Threshold Value</b></td><td>%parm[threshold]%</td></tr>\n" +
		"        <tr><td><b>Rearm Value</b></td><td>%parm[rearm]%</td></tr>\n" +
		"        <tr><td><b>Trigger Value</b></td><td>%parm[trigger]%</td></tr>\n" +
		"        </table>\n" +
		"        </br><p>All parameters: %parm[all]%</p>"
	assert.Equal(t, want, te.Event.Descr)
}

func TestSynthesize_AlarmData(t *testing.T) {
	rule := singleRule(threshold("rearmingAbsoluteChange", "node", "ifInDiscards",
		"uei.opennms.org/threshold/discards/exceeded", "uei.opennms.org/threshold/discards/rearmed"))
	s := NewEventSynthesizer(DefaultBaseUEI, true, testLogger(), nil)
	suffix := ":%dpname%:%nodeid%:%interface%:%parm[ds]%:%parm[threshold]%:%parm[trigger]%:%parm[rearm]%:%parm[label]%"

	exceeded, err := s.Synthesize(rule, rule.TriggeredUEI, Exceeded, "", nil)
	require.NoError(t, err)
	assert.Equal(t, &eventconf.AlarmData{ReductionKey: "%uei%" + suffix, AlarmType: 1}, exceeded.Event.AlarmData)

	rearmed, err := s.Synthesize(rule, rule.RearmedUEI, Rearmed, "", nil)
	require.NoError(t, err)
	assert.Equal(t, &eventconf.AlarmData{
		ReductionKey: "%uei%" + suffix,
		AlarmType:    2,
		ClearKey:     "uei.opennms.org/threshold/discards/exceeded" + suffix,
	}, rearmed.Event.AlarmData)
	assert.Equal(t, "Normal", rearmed.Event.Severity)
}

func TestSynthesize_RawDisplay(t *testing.T) {
	rule := computedRule(expression("high", "if", "ifInOctets * 8", "uei.opennms.org/threshold/bits/critical/exceeded", ""))
	s := NewEventSynthesizer(DefaultBaseUEI, false, testLogger(), nil)

	te, err := s.Synthesize(rule, rule.TriggeredUEI, Exceeded, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ifInOctets * 8", te.Display)
	assert.Equal(t, "User-defined custom high threshold exceeded event for ifinoctets * 8 [Critical]", te.Event.EventLabel)
}

func TestSynthesize_InvalidKind(t *testing.T) {
	rule := singleRule(threshold("between", "node", "cpu", "uei.example/cpu/exceeded", ""))
	s := NewEventSynthesizer(DefaultBaseUEI, true, testLogger(), nil)

	_, err := s.Synthesize(rule, rule.TriggeredUEI, Exceeded, "", nil)
	require.ErrorIs(t, err, ErrInvalidThresholdType)
}

func TestSynthesize_ExpressionParseErrorIsLoggedOnce(t *testing.T) {
	log, logs := logger.NewObservedLogger(logger.LogLevelDebug)
	rec := &countingRecorder{}
	s := NewEventSynthesizer(DefaultBaseUEI, true, log, rec)
	rule := computedRule(expression("high", "if", "(ifInOctets * 8", "uei.example/broken/exceeded", "uei.example/broken/rearmed"))

	for _, dir := range []Direction{Exceeded, Rearmed} {
		uei := rule.TriggeredUEI
		if dir == Rearmed {
			uei = rule.RearmedUEI
		}
		te, err := s.Synthesize(rule, uei, dir, "", testTemplates())
		require.NoError(t, err)
		assert.Empty(t, te.Metrics)
		assert.Contains(t, te.Event.Logmsg.Content, "&reports=all'")
	}

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, "(ifInOctets * 8", errs[0].ContextMap()["expression"])
	assert.Equal(t, 1, rec.parseFailures)
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		uei  string
		dir  Direction
		want Severity
	}{
		{"uei.opennms.org/threshold/disk/exceeded", Exceeded, SeverityWarning},
		{"uei.opennms.org/threshold/disk/MINOR/exceeded", Exceeded, SeverityMinor},
		{"uei.opennms.org/threshold/disk/major/exceeded", Exceeded, SeverityMajor},
		{"uei.opennms.org/threshold/disk/Critical/exceeded", Exceeded, SeverityCritical},
		{"uei.opennms.org/threshold/minor-major/exceeded", Exceeded, SeverityMinor},
		{"uei.opennms.org/threshold/disk/critical/rearmed", Rearmed, SeverityNormal},
	}
	for _, tt := range tests {
		t.Run(tt.uei, func(t *testing.T) {
			assert.Equal(t, tt.want, severityFor(tt.uei, tt.dir))
		})
	}
}

func TestComputedDisplay(t *testing.T) {
	tests := []struct {
		uei  string
		sev  Severity
		want string
	}{
		{"uei.opennms.org/threshold/windows/cpu/high/major/exceeded", SeverityMajor, "WINDOWS-CPU"},
		{"uei.opennms.org/threshold/windows/cpu/high/major/rearmed", SeverityNormal, "WINDOWS-CPU-MAJOR"},
		{"uei.opennms.org/threshold/apc/ups/vac-in/warning/ac/exceeded", SeverityWarning, "APC-UPS-VAC-IN"},
		{"uei.opennms.org/threshold/relativeChange/if/mib2/exceeded", SeverityWarning, "IF-MIB2"},
		{"uei.opennms.org/threshold/disk/exceed", SeverityWarning, "DISK-EXCEED"},
		{"uei.opennms.org/threshold/disk/Low/RC/exceededAgain/", SeverityWarning, "DISK"},
		{"uei.other.org/cpu/exceeded", SeverityWarning, "UEI.OTHER.ORG-CPU"},
	}
	for _, tt := range tests {
		t.Run(tt.uei, func(t *testing.T) {
			assert.Equal(t, tt.want, computedDisplay(tt.uei, DefaultBaseUEI, tt.sev))
		})
	}
}

func TestGraphLink(t *testing.T) {
	assert.Equal(t, "graph/results.htm?resourceId=%parm[resourceId]%&reports=all", graphLink([]string{"cpu"}, testTemplates()))
	assert.Equal(t, "graph/results.htm?resourceId=%parm[resourceId]%&reports=all", graphLink([]string{"ifInOctets"}, nil))
	assert.Equal(t,
		"graph/results.htm?resourceId=%parm[resourceId]%&reports=mib2.traffic-inout&reports=mib2.bits&reports=mib2.errors",
		graphLink([]string{"ifOutOctets", "ifInErrors"}, testTemplates()))
}
