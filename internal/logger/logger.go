// Package logger writes pipeline progress to stderr. Everything except
// Error is suppressed unless --verbose is set. Level tags are coloured
// when the output is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type level struct {
	tag    string
	colour *color.Color
	always bool
}

var (
	debugLevel = level{tag: "DEBUG", colour: color.New(color.FgHiBlack)}
	infoLevel  = level{tag: "INFO", colour: color.New(color.FgCyan)}
	warnLevel  = level{tag: "WARN", colour: color.New(color.FgYellow)}
	errorLevel = level{tag: "ERROR", colour: color.New(color.FgRed, color.Bold), always: true}
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	colours           = isTerminal(os.Stderr)
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetVerbose turns verbose output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects logs to w. Colour is used only if w is a terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	colours = isTerminal(w)
}

func (l level) log(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && !l.always {
		return
	}

	tag := "[" + l.tag + "]"
	if colours {
		c := *l.colour
		c.EnableColor()
		tag = c.Sprint(tag)
	}
	fmt.Fprintf(output, "%s %s\n", tag, fmt.Sprintf(format, args...))
}

// Debug logs pipeline detail.
func Debug(format string, args ...any) { debugLevel.log(format, args...) }

// Info logs pipeline milestones.
func Info(format string, args ...any) { infoLevel.log(format, args...) }

// Warn logs recoverable problems.
func Warn(format string, args ...any) { warnLevel.log(format, args...) }

// Error is printed even without --verbose.
func Error(format string, args ...any) { errorLevel.log(format, args...) }

// Section prints a "=== name ===" header between pipeline stages.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Elapsed logs the time since start at debug level. Use it with defer:
//
//	defer logger.Elapsed("embed", time.Now())
func Elapsed(stage string, start time.Time) {
	Debug("%s took %s", stage, time.Since(start).Round(time.Millisecond))
}
