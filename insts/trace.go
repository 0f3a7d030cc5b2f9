package insts

import (
	"fmt"
	"io"
)

// Severity ranks diagnostic trace messages.
type Severity int

// Trace severities.
const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// TraceLogger receives diagnostic text from the decoder. Implementations
// decide which severities to keep; the decoder never reads anything back,
// and tracing can never change a decode result.
type TraceLogger interface {
	// Logf logs a formatted message at the given severity.
	Logf(severity Severity, format string, args ...any)
}

// writerTraceLogger writes messages at or above a minimum severity to an
// io.Writer, one line per message.
type writerTraceLogger struct {
	w        io.Writer
	minLevel Severity
}

// NewWriterTraceLogger returns a TraceLogger that writes every message at
// or above minLevel to w.
func NewWriterTraceLogger(w io.Writer, minLevel Severity) TraceLogger {
	return &writerTraceLogger{w: w, minLevel: minLevel}
}

func (l *writerTraceLogger) Logf(severity Severity, format string, args ...any) {
	if severity < l.minLevel {
		return
	}
	fmt.Fprintf(l.w, "%s: %s\n", severity, fmt.Sprintf(format, args...))
}
