package log

import (
	"github.com/sirupsen/logrus"
)

type Fields = logrus.Fields
type TextFormatter = logrus.TextFormatter
type Formatter = logrus.Formatter
type Level = logrus.Level

var (
	Trace      = logrus.Trace
	Tracef     = logrus.Tracef
	Debug      = logrus.Debug
	Debugf     = logrus.Debugf
	Info       = logrus.Info
	Infof      = logrus.Infof
	Warn       = logrus.Warn
	Warnf      = logrus.Warnf
	Error      = logrus.Error
	Errorf     = logrus.Errorf
	Fatal      = logrus.Fatal
	Fatalf     = logrus.Fatalf
	Panicf     = logrus.Panicf
	WithFields = logrus.WithFields
	WithError  = logrus.WithError
)

func SetFormatter(formatter Formatter) {
	logrus.SetFormatter(formatter)
}

func SetLevel(level Level) {
	logrus.SetLevel(level)
}
