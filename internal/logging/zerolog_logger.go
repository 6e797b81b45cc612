package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures a ZerologLogger.
type Options struct {
	// Domain is attached to every line and names the log file.
	Domain string

	// LogDir receives seed_<domain>.log. Empty disables the file.
	LogDir string

	// Verbose enables Verbose messages.
	Verbose bool

	// RunID tags every line. A random UUID is used when empty.
	RunID string

	// Console defaults to os.Stdout.
	Console io.Writer

	// NoColor disables ANSI colors on the console.
	NoColor bool
}

// ZerologLogger writes human-readable lines to the console and JSON lines
// to the domain log file.
type ZerologLogger struct {
	logger zerolog.Logger
	runID  string
	file   *os.File
}

// LogFileName returns the file a domain's run appends to.
func LogFileName(logDir, domain string) string {
	return filepath.Join(logDir, "seed_"+domain+".log")
}

func NewZerologLogger(opts Options) (*ZerologLogger, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        opts.Console,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}}

	var file *os.File
	if opts.LogDir != "" && opts.Domain != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", opts.LogDir, err)
		}
		f, err := os.OpenFile(LogFileName(opts.LogDir, opts.Domain), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("run_id", opts.RunID)
	if opts.Domain != "" {
		ctx = ctx.Str("domain", opts.Domain)
	}

	return &ZerologLogger{logger: ctx.Logger(), runID: opts.RunID, file: file}, nil
}

// NewConsoleLogger logs to stderr only. Used before a domain is known.
func NewConsoleLogger(verbose bool) *ZerologLogger {
	l, _ := NewZerologLogger(Options{Verbose: verbose, Console: os.Stderr})
	return l
}

func (l *ZerologLogger) Verbose(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Info(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warn(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Error(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *ZerologLogger) RunID() string {
	return l.runID
}

// Zerolog returns the underlying logger.
func (l *ZerologLogger) Zerolog() zerolog.Logger {
	return l.logger
}

// Close flushes and closes the log file, if any.
func (l *ZerologLogger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
