// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the service logs.
type Options struct {
	Level string // logrus level name, defaults to info when unparsable
	File  string // rotating log file, empty keeps stdout only
}

// Setup points the standard logrus logger at stdout (and the rotating file when
// configured) with a JSON formatter. The returned closer flushes the file.
func Setup(opts Options) io.Closer {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	logrus.SetLevel(level)
	logrus.SetReportCaller(true)
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
			logrus.FieldKeyFunc: "module",
			logrus.FieldKeyFile: "line",
		},
	})

	if opts.File == "" {
		logrus.SetOutput(os.Stdout)
		return nopCloser{}
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    1, // megabytes
		MaxBackups: 5,
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return rotating
}

// Discard silences the standard logger. Used by tests.
func Discard() {
	logrus.SetOutput(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
