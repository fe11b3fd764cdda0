package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string and writes the event
func Info(sl *SubLogger, data string) {
	stage(sl, headerInfo, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface and writes the event
func Infoln(sl *SubLogger, v ...any) {
	stage(sl, headerInfo, func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats and writes the event
func Infof(sl *SubLogger, data string, v ...any) {
	stage(sl, headerInfo, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string and writes the event
func Debug(sl *SubLogger, data string) {
	stage(sl, headerDebug, func() string { return data })
}

// Debugln takes a pointer subLogger struct and interface and writes the event
func Debugln(sl *SubLogger, v ...any) {
	stage(sl, headerDebug, func() string { return fmt.Sprint(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface formats and writes the event
func Debugf(sl *SubLogger, data string, v ...any) {
	stage(sl, headerDebug, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and writes the event
func Warn(sl *SubLogger, data string) {
	stage(sl, headerWarn, func() string { return data })
}

// Warnln takes a pointer subLogger struct & interface formats and writes the event
func Warnln(sl *SubLogger, v ...any) {
	stage(sl, headerWarn, func() string { return fmt.Sprint(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface formats and writes the event
func Warnf(sl *SubLogger, data string, v ...any) {
	stage(sl, headerWarn, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & string and writes the event
func Error(sl *SubLogger, data string) {
	stage(sl, headerError, func() string { return data })
}

// Errorln takes a pointer subLogger struct, string & interface formats and writes the event
func Errorln(sl *SubLogger, v ...any) {
	stage(sl, headerError, func() string { return fmt.Sprint(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats and writes the event
func Errorf(sl *SubLogger, data string, v ...any) {
	stage(sl, headerError, func() string { return fmt.Sprintf(data, v...) })
}

type header uint8

const (
	headerInfo header = iota
	headerDebug
	headerWarn
	headerError
)

func (l *Logger) header(h header) string {
	switch h {
	case headerDebug:
		return l.DebugHeader
	case headerWarn:
		return l.WarnHeader
	case headerError:
		return l.ErrorHeader
	default:
		return l.InfoHeader
	}
}

func (lv Levels) enabled(h header) bool {
	switch h {
	case headerInfo:
		return lv.Info
	case headerDebug:
		return lv.Debug
	case headerWarn:
		return lv.Warn
	case headerError:
		return lv.Error
	}
	return false
}

// stage formats and writes a log event when the level is enabled for the sub
// logger. The message func is only evaluated for enabled levels.
func stage(sl *SubLogger, h header, msg func() string) {
	if sl == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	if sl.output == nil || !sl.levels.enabled(h) {
		return
	}
	var b strings.Builder
	b.WriteString(logger.header(h))
	if logger.TimestampFormat != "" {
		b.WriteString(time.Now().Format(logger.TimestampFormat))
	}
	if logger.ShowLogSystemName {
		b.WriteString(logger.Spacer)
		b.WriteString(sl.name)
	}
	b.WriteString(logger.Spacer)
	b.WriteString(msg())
	b.WriteByte('\n')
	if _, err := sl.output.Write([]byte(b.String())); err != nil {
		displayError(err)
	}
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}
