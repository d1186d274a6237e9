package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

// canInitializeTUI tests if tcell can actually be initialized
func canInitializeTUI() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}
	if err := screen.Init(); err != nil {
		return false
	}
	screen.Fini()
	return true
}

// getTerminalInfo returns a one-line description of the terminal for logs.
func getTerminalInfo() string {
	info := []string{
		"TERM=" + os.Getenv("TERM"),
		fmt.Sprintf("tty=%v", term.IsTerminal(int(os.Stdout.Fd()))),
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		info = append(info, fmt.Sprintf("size=%dx%d", w, h))
	}
	return strings.Join(info, ", ")
}

// getWorkingDir returns the current working directory.
// Falls back to the executable's directory if os.Getwd fails.
func getWorkingDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}

// resolvePath resolves a possibly relative path against the working directory.
// Absolute paths are returned unchanged.
func resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(getWorkingDir(), strings.TrimPrefix(p, "./"))
}

// openLogFile opens the TUI log file, creating its directory.
func openLogFile(path string) (*os.File, error) {
	path = resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// errorFilterWriter only passes lines that look like failures, so the
// terminal still shows errors while the TUI owns the screen.
type errorFilterWriter struct {
	writer *os.File
}

func (w *errorFilterWriter) Write(p []byte) (int, error) {
	lc := strings.ToLower(string(p))
	if strings.Contains(lc, "error") || strings.Contains(lc, "failed") || strings.Contains(lc, "panic") {
		return w.writer.Write(p)
	}
	return len(p), nil
}
