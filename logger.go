package recipebrowser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ResolutionLogger is the interface for list resolution logging.
type ResolutionLogger interface {
	LogResolution(entry ResolutionLog) error
}

// NewResolutionLogFilePath returns a timestamped file path tagged with the given label.
func NewResolutionLogFilePath(label string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(label), " ", "_"),
	)
}

// ResolutionLog records a single list resolution.
type ResolutionLog struct {
	Timestamp  time.Time      `json:"timestamp"`
	Source     string         `json:"source"`
	Key        string         `json:"key"`
	Page       int            `json:"page"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	ResetPage  bool           `json:"reset_page,omitempty"`
	CacheHit   bool           `json:"cache_hit"`
	Duration   time.Duration  `json:"duration_ns"`
	Failures   []FetchFailure `json:"failures,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// FetchFailure describes one catalog call that was degraded to an empty contribution.
type FetchFailure struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Error string `json:"error"`
}

// FileResolutionLogger accumulates resolutions and writes them on Flush.
type FileResolutionLogger struct {
	mu      sync.Mutex
	entries []ResolutionLog
	writer  io.Writer
}

// NewFileResolutionLogger creates a new file-based resolution logger
func NewFileResolutionLogger(writer io.Writer) *FileResolutionLogger {
	return &FileResolutionLogger{
		entries: make([]ResolutionLog, 0),
		writer:  writer,
	}
}

// LogResolution buffers the entry (does not flush immediately)
func (l *FileResolutionLogger) LogResolution(entry ResolutionLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Flush writes all buffered resolutions to the writer as one JSON document.
func (l *FileResolutionLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"browse_session": map[string]any{
			"timestamp":   time.Now(),
			"resolutions": l.entries,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal resolution log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write resolution log: %w", err)
	}

	l.entries = l.entries[:0]
	return nil
}

// NoOpResolutionLogger discards all entries.
type NoOpResolutionLogger struct{}

func NewNoOpResolutionLogger() *NoOpResolutionLogger {
	return &NoOpResolutionLogger{}
}

func (nop *NoOpResolutionLogger) LogResolution(entry ResolutionLog) error {
	return nil
}

// StdoutResolutionLogger writes each resolution as a JSON line (for Lambda/CloudWatch).
type StdoutResolutionLogger struct {
	out io.Writer
}

func NewStdoutResolutionLogger() *StdoutResolutionLogger {
	return &StdoutResolutionLogger{out: os.Stdout}
}

func (l *StdoutResolutionLogger) LogResolution(entry ResolutionLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	fmt.Fprintln(l.out, string(data))
	return nil
}
