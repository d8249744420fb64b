package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/infrastructure/config"
)

var levelRank = map[string]int{
	common.LevelDebug: 0,
	common.LevelInfo:  1,
	common.LevelWarn:  2,
	common.LevelError: 3,
}

// StdLogger is a ContainerLogger writing one line per entry through the standard log package
type StdLogger struct {
	mu       sync.Mutex
	out      *log.Logger
	minLevel int
	json     bool
	closer   io.Closer
}

// NewStdLogger writes to w. level is one of debug, info, warn, error.
func NewStdLogger(w io.Writer, level string, jsonFormat bool) *StdLogger {
	flags := log.LstdFlags
	if jsonFormat {
		flags = 0
	}
	return &StdLogger{
		out:      log.New(w, "", flags),
		minLevel: parseLevel(level),
		json:     jsonFormat,
	}
}

// NewLoggerFromConfig builds a logger for the configured output
func NewLoggerFromConfig(cfg *config.LoggingConfig) (*StdLogger, error) {
	var w io.Writer
	var closer io.Closer

	switch cfg.Output {
	case "stdout":
		w = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	default:
		w = os.Stderr
	}

	l := NewStdLogger(w, cfg.Level, cfg.Format == "json")
	l.closer = closer
	return l, nil
}

// Close releases the log file, if any
func (l *StdLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Log implements common.ContainerLogger
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	level = strings.ToUpper(level)
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[common.LevelInfo]
	}
	if rank < l.minLevel {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.json {
		entry := make(map[string]interface{}, len(metadata)+2)
		for k, v := range metadata {
			entry[k] = v
		}
		entry["level"] = level
		entry["msg"] = message
		line, err := json.Marshal(entry)
		if err != nil {
			l.out.Printf(`{"level":"ERROR","msg":"unencodable log entry: %s"}`, err)
			return
		}
		l.out.Print(string(line))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, message)
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	l.out.Print(b.String())
}

func parseLevel(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return levelRank[common.LevelDebug]
	case "warn", "warning":
		return levelRank[common.LevelWarn]
	case "error":
		return levelRank[common.LevelError]
	default:
		return levelRank[common.LevelInfo]
	}
}
