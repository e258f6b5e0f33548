package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func BoostrapLogger() {
	Log = &logrus.Logger{
		Out:   nil,
		Hooks: nil,
		Formatter: &logrus.TextFormatter{
			DisableColors:    false,
			DisableQuote:     false,
			DisableTimestamp: false,
			FullTimestamp:    false,
			TimestampFormat:  "",
		},
		ReportCaller: false,
		Level:        logrus.DebugLevel,
		ExitFunc:     nil,
	}

	Log.SetReportCaller(true)
	Log.Out = os.Stdout
}

// Audit emits an audit record for an administrative or voting action.
// actorID is 0 for anonymous/admin actions.
func Audit(action string, actorID int, details map[string]interface{}) {
	Log.WithFields(logrus.Fields{
		"audit":   true,
		"action":  action,
		"actorId": actorID,
		"details": details,
	}).Info("audit")
}
