// Package logger provides leveled logging for the fragmenter CLI.
//
// Debug and Info lines reach the terminal only in verbose mode. Warn and
// Error lines always do. When a log directory is set, every line is also
// appended to a daily file there with a timestamp.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file    *os.File
	now     = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the terminal writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLogFile mirrors all log lines into dir/fragmenter_<date>.log.
// The directory is created if needed. Returns the file path.
func SetLogFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create logs dir: %w", err)
	}
	path := filepath.Join(dir, "fragmenter_"+now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
	}
	file = f
	return path, nil
}

// Close closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write("DEBUG", false, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write("INFO", false, format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write("WARN", true, format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write("ERROR", true, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func write(level string, always bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()

	msg := fmt.Sprintf(format, args...)
	if always || verbose {
		fmt.Fprintf(output, "[%s] %s\n", level, msg)
	}
	if file != nil {
		fmt.Fprintf(file, "%s | %-5s | %s\n", now().Format("2006-01-02 15:04:05"), level, msg)
	}
}
