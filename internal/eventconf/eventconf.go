// Package eventconf holds the OpenNMS event definition model and writes
// event configuration files.
package eventconf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// Namespace is the eventconf XML namespace.
const Namespace = "http://xmlns.opennms.org/xsd/eventconf"

// FileName is the generated event file under $OPENNMS_HOME/etc/events.
const FileName = "Thresholds-Categorized.events.xml"

// LogDestDisplay is the log message destination for threshold events.
const LogDestDisplay = "logndisplay"

// Events is the root of an event configuration file.
type Events struct {
	XMLName xml.Name `xml:"http://xmlns.opennms.org/xsd/eventconf events"`
	Events  []Event  `xml:"event"`
}

// Event is a single event definition.
type Event struct {
	UEI        string     `xml:"uei" json:"uei" yaml:"uei"`
	EventLabel string     `xml:"event-label" json:"eventLabel" yaml:"eventLabel"`
	Descr      string     `xml:"descr" json:"descr" yaml:"descr"`
	Logmsg     Logmsg     `xml:"logmsg" json:"logmsg" yaml:"logmsg"`
	Severity   string     `xml:"severity" json:"severity" yaml:"severity"`
	AlarmData  *AlarmData `xml:"alarm-data,omitempty" json:"alarmData,omitempty" yaml:"alarmData,omitempty"`
}

// Logmsg is the event log message and where it is shown.
type Logmsg struct {
	Dest    string `xml:"dest,attr" json:"dest" yaml:"dest"`
	Content string `xml:",chardata" json:"content" yaml:"content"`
}

// AlarmData controls how the event is reduced into alarms.
type AlarmData struct {
	ReductionKey string `xml:"reduction-key,attr" json:"reductionKey" yaml:"reductionKey"`
	AlarmType    int    `xml:"alarm-type,attr" json:"alarmType" yaml:"alarmType"`
	ClearKey     string `xml:"clear-key,attr,omitempty" json:"clearKey,omitempty" yaml:"clearKey,omitempty"`
	AutoClean    bool   `xml:"auto-clean,attr" json:"autoClean" yaml:"autoClean"`
}

// Marshal renders events as an indented eventconf document.
func Marshal(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(Events{Events: events}); err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteFile writes events to path, creating parent directories as needed.
// The file is replaced atomically.
func WriteFile(path string, events []Event) error {
	data, err := Marshal(events)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes an event configuration file.
func ReadFile(path string) (*Events, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	var doc Events
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode events file %s: %w", path, err)
	}
	return &doc, nil
}
