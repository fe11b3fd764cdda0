package log

import "io"

// Global vars related to the logger package
var (
	subLoggers = map[string]*SubLogger{}

	Global      *SubLogger
	BackTester  *SubLogger
	Execution   *SubLogger
	Risk        *SubLogger
	DataHistory *SubLogger
	DatabaseMgr *SubLogger
	ConfigMgr   *SubLogger
)

// SubLogger defines a named logging target with its own levels and output
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

// Name returns the upper case name of the sub logger
func (sl *SubLogger) Name() string {
	if sl == nil {
		return ""
	}
	return sl.name
}
