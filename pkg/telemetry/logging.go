// Package telemetry provides the structured logging, tracing and metrics
// used by the execution core: VM step accounting, JIT compile/optimize/link
// lifecycle events, and the discarded-insert-error case neither backend can
// propagate as an EvalError.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel mirrors the teacher's logging.LogLevel severity scale.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogFormat selects text or JSON rendering, same two formats the teacher
// supports.
type LogFormat int

const (
	TextFormat LogFormat = iota
	JSONFormat
)

// LogEntry is the same shape the teacher emits, minus the fields
// (MaxFileSize/MaxBackups rotation bookkeeping) that only make sense for a
// long-lived HTTP service writing to a local file. A compiler run or bench
// invocation of this module is short-lived; log rotation has no
// surviving consumer here.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	RunID     string                 `json:"run_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// Config configures a Logger. There is no BufferSize/async-processor knob:
// the teacher's buffered channel plus background goroutine exists to keep
// request handlers from blocking on log I/O, which does not apply to a
// single-threaded compile-then-run invocation.
type Config struct {
	MinLevel      LogLevel
	Format        LogFormat
	IncludeCaller bool
	Output        io.Writer
}

func DefaultConfig() Config {
	return Config{MinLevel: INFO, Format: TextFormat, Output: os.Stderr}
}

// Logger writes LogEntry values synchronously to Output. Synchronous
// instead of the teacher's buffered-channel-plus-goroutine design: there is
// no concurrent request volume here to justify decoupling the caller from
// the write, and a synchronous writer can't lose the last few entries on
// process exit the way an unflushed buffer can.
type Logger struct {
	mu     sync.Mutex
	config Config
}

func NewLogger(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	return &Logger{config: config}
}

func (l *Logger) write(level LogLevel, msg, runID string, fields map[string]interface{}) {
	if level < l.config.MinLevel {
		return
	}
	entry := &LogEntry{Timestamp: time.Now(), Level: level.String(), Message: msg, RunID: runID, Fields: fields}
	if l.config.IncludeCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.config.Format {
	case JSONFormat:
		enc := json.NewEncoder(l.config.Output)
		_ = enc.Encode(entry)
	default:
		fmt.Fprintf(l.config.Output, "[%s] %s %s", entry.Timestamp.Format(time.RFC3339), entry.Level, entry.Message)
		if entry.RunID != "" {
			fmt.Fprintf(l.config.Output, " run_id=%s", entry.RunID)
		}
		for k, v := range entry.Fields {
			fmt.Fprintf(l.config.Output, " %s=%v", k, v)
		}
		fmt.Fprintln(l.config.Output)
	}
}

func (l *Logger) Debug(msg string)                                    { l.write(DEBUG, msg, "", nil) }
func (l *Logger) Info(msg string)                                     { l.write(INFO, msg, "", nil) }
func (l *Logger) Warn(msg string)                                     { l.write(WARN, msg, "", nil) }
func (l *Logger) Error(msg string)                                    { l.write(ERROR, msg, "", nil) }
func (l *Logger) DebugWithFields(msg string, f map[string]interface{}) { l.write(DEBUG, msg, "", f) }
func (l *Logger) InfoWithFields(msg string, f map[string]interface{})  { l.write(INFO, msg, "", f) }
func (l *Logger) WarnWithFields(msg string, f map[string]interface{})  { l.write(WARN, msg, "", f) }
func (l *Logger) ErrorWithFields(msg string, f map[string]interface{}) { l.write(ERROR, msg, "", f) }

// WithRunID returns a RunLogger scoped to a single compile-and-execute
// invocation, named run_id rather than the teacher's request_id since the
// unit of work here is a Program run, not an HTTP request.
func (l *Logger) WithRunID(runID string) *RunLogger {
	return &RunLogger{logger: l, runID: runID}
}

// NewRunID generates a correlation id for one Runtime invocation.
func NewRunID() string {
	return uuid.New().String()
}

// RunLogger is the teacher's ContextLogger, renamed for this domain's unit
// of work and trimmed of WithField chaining that nothing here uses.
type RunLogger struct {
	logger *Logger
	runID  string
}

func (r *RunLogger) Debug(msg string)                                    { r.logger.write(DEBUG, msg, r.runID, nil) }
func (r *RunLogger) Info(msg string)                                     { r.logger.write(INFO, msg, r.runID, nil) }
func (r *RunLogger) Warn(msg string)                                     { r.logger.write(WARN, msg, r.runID, nil) }
func (r *RunLogger) Error(msg string)                                    { r.logger.write(ERROR, msg, r.runID, nil) }
func (r *RunLogger) InfoWithFields(msg string, f map[string]interface{})  { r.logger.write(INFO, msg, r.runID, f) }
func (r *RunLogger) WarnWithFields(msg string, f map[string]interface{})  { r.logger.write(WARN, msg, r.runID, f) }
func (r *RunLogger) ErrorWithFields(msg string, f map[string]interface{}) { r.logger.write(ERROR, msg, r.runID, f) }
