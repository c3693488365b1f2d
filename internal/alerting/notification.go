package alerting

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/threshgen/threshgen/internal/notifconf"
)

// SynthesizeNotification builds the notification for a threshold event.
func SynthesizeNotification(te *ThresholdEvent, destinationPath string) notifconf.Notification {
	kind := te.Kind.String()
	dir := te.Direction.String()

	name := "TH-" + te.Display + " " + kind + " " + cases.Upper(language.Und).String(string(te.Severity)) + " notification"
	if te.Direction == Rearmed {
		name += " Rearmed"
	}

	return notifconf.Notification{
		Name:            name,
		Status:          notifconf.StatusOn,
		Writeable:       notifconf.WriteableYes,
		UEI:             te.Event.UEI,
		Rule:            notifconf.RuleAnyInterface,
		DestinationPath: destinationPath,
		TextMessage:     notifconf.TextMessageLogmsg,
		Subject:         "[TH][" + kind + "] #%noticeid%: %nodelabel% - " + te.Display + " " + parmDS + " " + dir + ".",
		NumericMessage:  "[" + kind + "] - (" + parmDS + " " + parmThreshold + "/" + parmValue + ") " + dir + ".",
	}
}
