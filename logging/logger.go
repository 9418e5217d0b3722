package logging

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared logrus instance for the whole service.
var Logger = logrus.New()
var once sync.Once

// CustomFormatter renders one log entry as a single comma-separated line.
type CustomFormatter struct {
	SystemName string
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	utc := entry.Time.UTC()
	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", utc.Format("2006-01-02"), utc.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))

	eventID := uuid.New().String()
	b.WriteString(fmt.Sprintf("Event ID: %s, ", eventID))
	b.WriteString(fmt.Sprintf("Message: %s, ", entry.Message))

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(" Location: %s:%d in %s", entry.Caller.File, entry.Caller.Line, entry.Caller.Function))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// InitLogger configures the global logger with rotating file output.
func InitLogger() {
	once.Do(func() {
		if _, err := os.Stat("logs"); os.IsNotExist(err) {
			if err := os.Mkdir("logs", 0700); err != nil {
				logrus.Fatalf("Event ID: LOG_DIR_CREATE_FAILED, Description: Failed to create log directory: %v", err)
			}
		}

		logFile := &lumberjack.Logger{
			Filename:   "logs/snaplist.log",
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}

		Logger.SetOutput(logFile)
		Logger.SetFormatter(&CustomFormatter{SystemName: "snaplist"})
		Logger.SetLevel(logrus.InfoLevel)
		Logger.SetReportCaller(true)

		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized, output to: %s", logFile.Filename)
	})
}
