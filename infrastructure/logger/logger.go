package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	logger  = log.New()
	logFile *os.File
)

func init() {
	Configure(os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"), os.Getenv("LOG_TO_FILE") == "true")
}

// Configure sets formatter, level and output of the shared logger. It is
// called once from init with the raw environment and again once the
// configuration has been loaded. Logs go to stderr unless toFile is set,
// leaving stdout to command output.
func Configure(format, level string, toFile bool) {
	logger.Out = os.Stderr
	if toFile {
		if f, err := openLogFile(); err != nil {
			log.Warnf("Failed to open log file: %v, falling back to stderr", err)
		} else {
			logger.Out = f
		}
	} else {
		closeLogFile()
	}

	if strings.EqualFold(format, "text") {
		logger.Formatter = &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		}
	} else {
		logger.Formatter = &log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		}
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
}

// openLogFile returns the daily log file, reusing the open handle when the
// path has not changed.
func openLogFile() (*os.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logsDir := filepath.Join(cwd, "logs")
	filePath := filepath.Join(logsDir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	if logFile != nil && logFile.Name() == filePath {
		return logFile, nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	closeLogFile()
	logFile = f
	return f, nil
}

func closeLogFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// SetOutput redirects the shared logger, mainly for tests
func SetOutput(w io.Writer) {
	logger.Out = w
}

func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	entry := logger.WithFields(log.Fields{
		"function": functionObject.Name(),
		"file":     filepath.Base(file),
		"line":     line,
	})

	return entry
}
