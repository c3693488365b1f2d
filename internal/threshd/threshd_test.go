package threshd

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleThresholds = `<?xml version="1.0"?>
<thresholding-config xmlns="http://xmlns.opennms.org/xsd/config/thresholding">
  <group name="mib2" rrdRepository="/opt/opennms/share/rrd/snmp/">
    <expression type="high" ds-type="if" value="90.0" rearm="85.0" trigger="2" ds-label="ifName"
        expression="((ifInOctets + ifOutOctets) * 8 / ifSpeed) * 100"
        triggeredUEI="uei.opennms.org/threshold/interface/utilization/exceeded"/>
    <threshold type="high" ds-type="node" value="95.0" rearm="80.0" trigger="3" ds-name="cpu"
        description="CPU usage"/>
  </group>
  <group name="apc" rrdRepository="/opt/opennms/share/rrd/snmp/">
    <threshold type="absoluteChange" ds-type="node" value="10.0" rearm="0.0" trigger="1" ds-name="upsAdvInputLineVoltage"/>
  </group>
</thresholding-config>`

func TestLoad(t *testing.T) {
	cfg, err := Load(strings.NewReader(sampleThresholds))
	require.NoError(t, err)
	require.Len(t, cfg.Groups, 2)

	mib2 := cfg.Groups[0]
	assert.Equal(t, "mib2", mib2.Name)
	require.Len(t, mib2.Thresholds, 1)
	require.Len(t, mib2.Expressions, 1)

	cpu := mib2.Thresholds[0]
	assert.Equal(t, "high", cpu.Type)
	assert.Equal(t, "node", cpu.DsType)
	assert.Equal(t, "cpu", cpu.DsName)
	assert.InDelta(t, 95.0, cpu.Value, 0.0001)
	assert.Equal(t, 3, cpu.Trigger)
	assert.Equal(t, "CPU usage", cpu.Description)
	assert.Empty(t, cpu.TriggeredUEI)

	util := mib2.Expressions[0]
	assert.Equal(t, "ifName", util.DsLabel)
	assert.Equal(t, "uei.opennms.org/threshold/interface/utilization/exceeded", util.TriggeredUEI)
}

func TestGroupRules_ThresholdsBeforeExpressions(t *testing.T) {
	cfg, err := Load(strings.NewReader(sampleThresholds))
	require.NoError(t, err)

	rules := cfg.Groups[0].Rules()
	require.Len(t, rules, 2)

	assert.Equal(t, SingleMetric, rules[0].Variant)
	assert.Equal(t, "cpu", rules[0].Subject())
	assert.Empty(t, rules[0].Expression)

	assert.Equal(t, ComputedMetric, rules[1].Variant)
	assert.Equal(t, "((ifInOctets + ifOutOctets) * 8 / ifSpeed) * 100", rules[1].Subject())
	assert.Empty(t, rules[1].Metric)
}

func TestGroupRules_DoesNotAliasInput(t *testing.T) {
	g := Group{Name: "g", Thresholds: []Threshold{{Definition: Definition{Type: "high"}, DsName: "x"}}}
	rules := g.Rules()
	rules[0].TriggeredUEI = "changed"
	assert.Empty(t, g.Thresholds[0].TriggeredUEI)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("<thresholding-config><group"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode thresholding config")
}
