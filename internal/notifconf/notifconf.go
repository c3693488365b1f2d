// Package notifconf holds the OpenNMS notification model and merges generated
// notifications into a notifications.xml template.
package notifconf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the notification configuration file under $OPENNMS_HOME/etc.
const FileName = "notifications.xml"

// CreatedLayout is the header timestamp format OpenNMS writes.
const CreatedLayout = "Monday, January 2, 2006 3:04:05 PM MST"

// Fixed notification field values.
const (
	StatusOn          = "on"
	WriteableYes      = "yes"
	RuleAnyInterface  = "IPADDR != '0.0.0.0'"
	TextMessageLogmsg = "%logmsg%"
)

// Notifications is the root of notifications.xml.
type Notifications struct {
	XMLName       xml.Name       `xml:"http://xmlns.opennms.org/xsd/notifications notifications"`
	Header        Header         `xml:"header"`
	Notifications []Notification `xml:"notification"`
}

// Header carries document metadata.
type Header struct {
	Rev      string `xml:"rev"`
	Created  string `xml:"created"`
	MStation string `xml:"mstation"`
}

// Notification routes an event to a destination path.
type Notification struct {
	Name            string      `xml:"name,attr" json:"name" yaml:"name"`
	Status          string      `xml:"status,attr" json:"status" yaml:"status"`
	Writeable       string      `xml:"writeable,attr,omitempty" json:"writeable,omitempty" yaml:"writeable,omitempty"`
	UEI             string      `xml:"uei" json:"uei" yaml:"uei"`
	Description     string      `xml:"description,omitempty" json:"description,omitempty" yaml:"description,omitempty"`
	Rule            string      `xml:"rule" json:"rule" yaml:"rule"`
	NoticeQueue     string      `xml:"notice-queue,omitempty" json:"noticeQueue,omitempty" yaml:"noticeQueue,omitempty"`
	DestinationPath string      `xml:"destinationPath" json:"destinationPath" yaml:"destinationPath"`
	TextMessage     string      `xml:"text-message" json:"textMessage" yaml:"textMessage"`
	Subject         string      `xml:"subject,omitempty" json:"subject,omitempty" yaml:"subject,omitempty"`
	NumericMessage  string      `xml:"numeric-message,omitempty" json:"numericMessage,omitempty" yaml:"numericMessage,omitempty"`
	EventSeverity   string      `xml:"event-severity,omitempty" json:"eventSeverity,omitempty" yaml:"eventSeverity,omitempty"`
	Parameters      []Parameter `xml:"parameter,omitempty" json:"parameters,omitempty" yaml:"parameters,omitempty"`
	VarbindName     string      `xml:"varbind>vbname,omitempty" json:"vbname,omitempty" yaml:"vbname,omitempty"`
	VarbindValue    string      `xml:"varbind>vbvalue,omitempty" json:"vbvalue,omitempty" yaml:"vbvalue,omitempty"`
}

// Parameter is a name/value pair passed to notification commands.
type Parameter struct {
	Name  string `xml:"name,attr" json:"name" yaml:"name"`
	Value string `xml:"value,attr" json:"value" yaml:"value"`
}

// LoadTemplate parses an existing notifications.xml used as the base document.
func LoadTemplate(path string) (*Notifications, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications template: %w", err)
	}
	var doc Notifications
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode notifications template %s: %w", path, err)
	}
	return &doc, nil
}

// Merge returns a copy of tpl with its creation time set to now and the
// generated notifications appended. Template entries sharing a name with a
// generated notification are replaced so repeated runs do not accumulate.
func Merge(tpl *Notifications, generated []Notification, now time.Time) *Notifications {
	names := make(map[string]struct{}, len(generated))
	for i := range generated {
		names[generated[i].Name] = struct{}{}
	}

	merged := &Notifications{Header: tpl.Header}
	merged.Header.Created = now.Format(CreatedLayout)
	merged.Notifications = make([]Notification, 0, len(tpl.Notifications)+len(generated))
	for i := range tpl.Notifications {
		if _, dup := names[tpl.Notifications[i].Name]; dup {
			continue
		}
		merged.Notifications = append(merged.Notifications, tpl.Notifications[i])
	}
	merged.Notifications = append(merged.Notifications, generated...)
	return merged
}

// Marshal renders the document with indentation.
func Marshal(doc *Notifications) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode notifications: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteFile writes doc to path, creating parent directories as needed.
func WriteFile(path string, doc *Notifications) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
