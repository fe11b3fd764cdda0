package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errSubLoggerNotFound     = errors.New("sub logger not found")
	errFileNameNotSet        = errors.New("file output requested but no file name set")
)

func boolPtr(b bool) *bool { return &b }

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	out := newOutputs()
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(strings.TrimSpace(outputWriters[x])) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if globalLogFile == nil {
				return nil, errFileNameNotSet
			}
			writer = globalLogFile
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		if err := out.attach(writer); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: boolPtr(true),
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: boolPtr(true),
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c Config) Logger {
	showName := c.AdvancedSettings.ShowLogSystemName != nil && *c.AdvancedSettings.ShowLogSystemName
	return Logger{
		ShowLogSystemName: showName,
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
	}
}

// SetupGlobalLogger configures every sub logger from the config. Sub logger
// specific settings override the global level and output.
func SetupGlobalLogger(c Config) error {
	mu.Lock()
	defer mu.Unlock()
	if c.FileName != "" && globalLogFile == nil {
		f, err := os.OpenFile(c.FileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		globalLogFile = f
	}
	enabled := c.Enabled == nil || *c.Enabled
	output, err := getWriters(&c.SubLoggerConfig)
	if err != nil {
		return err
	}
	for _, sl := range subLoggers {
		sl.output = output
		sl.levels = splitLevel(c.Level)
		if !enabled {
			sl.levels = Levels{}
		}
	}
	for x := range c.SubLoggers {
		sl, ok := subLoggers[strings.ToUpper(c.SubLoggers[x].Name)]
		if !ok {
			return fmt.Errorf("%w: %s", errSubLoggerNotFound, c.SubLoggers[x].Name)
		}
		if c.SubLoggers[x].Output != "" {
			sl.output, err = getWriters(&c.SubLoggers[x])
			if err != nil {
				return err
			}
		}
		if c.SubLoggers[x].Level != "" {
			sl.levels = splitLevel(c.SubLoggers[x].Level)
		}
	}
	logger = newLogger(c)
	return nil
}

// SetOutput redirects every sub logger to w with the supplied levels. It is
// used by tests and by callers that capture logs.
func SetOutput(w io.Writer, levels string) {
	mu.Lock()
	defer mu.Unlock()
	for _, sl := range subLoggers {
		sl.output = w
		sl.levels = splitLevel(levels)
	}
}

// CloseLogFile closes the file output when one is configured
func CloseLogFile() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	return err
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(strings.TrimSpace(enabledLevels[x])) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := &SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
		levels: splitLevel("INFO|WARN|ERROR"),
	}
	subLoggers[temp.name] = temp
	return temp
}

// register all loggers at package init()
func init() {
	Global = registerNewSubLogger("LOG")
	BackTester = registerNewSubLogger("BACKTESTER")
	Execution = registerNewSubLogger("EXECUTION")
	Risk = registerNewSubLogger("RISK")
	DataHistory = registerNewSubLogger("DATAHISTORY")
	DatabaseMgr = registerNewSubLogger("DATABASE")
	ConfigMgr = registerNewSubLogger("CONFIG")
}
