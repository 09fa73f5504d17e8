// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/refactory/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 35 // Base width for filename
)

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 Header logs the run header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("refactory")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 formatFileResult formats a per-file outcome for display
func (l *Logger) formatFileResult(res status.Result) string {
	var symbol rune
	var symbolColor color.Attribute
	switch res.Outcome {
	case status.OutcomeRewritten:
		symbol = '✓'
		symbolColor = color.FgGreen
	case status.OutcomeRestored:
		symbol = '⟳'
		symbolColor = color.FgYellow
	default:
		symbol = '✗'
		symbolColor = color.FgRed
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, res.Path),
		res.Outcome)

	if res.Err != nil {
		line += " " + color.New(color.Faint).Sprint(res.Err.Error())
	}
	return line
}

// 📝 LogFileResult logs a per-file outcome
func (l *Logger) LogFileResult(res status.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileResult(res))

	event := l.zlog.Info()
	if res.Outcome != status.OutcomeRewritten {
		event = l.zlog.Error().Err(res.Err)
	}
	event.
		Str("file", res.Path).
		Str("outcome", res.Outcome.String()).
		Int("attempts", res.Attempts).
		Msg("file processed")
}

// 📝 LogAttempt logs the start of a per-file completion attempt
func (l *Logger) LogAttempt(path string, attempt, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%sprocessing %s %s\n",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(color.Bold).Sprint(path),
		color.New(color.Faint).Sprintf("(attempt %d/%d)", attempt, total))

	l.zlog.Debug().
		Str("file", path).
		Int("attempt", attempt).
		Int("total", total).
		Msg("starting attempt")
}

// 📊 LogSummary prints the final batch summary
func (l *Logger) LogSummary(summary status.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console)

	if summary.Total == 0 {
		pterm.Warning.WithWriter(l.console).Println("no files matched the pattern")
		l.zlog.Info().Msg("no files matched")
		return
	}

	if summary.Failed == 0 {
		pterm.Success.WithWriter(l.console).Printfln("%d/%d files rewritten", summary.Succeeded, summary.Total)
	} else {
		pterm.Warning.WithWriter(l.console).Printfln("%d/%d files rewritten, %d failed", summary.Succeeded, summary.Total, summary.Failed)
		for _, res := range summary.Failures {
			pterm.Error.WithWriter(l.console).Printfln("%s: %v", res.Path, res.Err)
		}
	}

	l.zlog.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("batch complete")
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
