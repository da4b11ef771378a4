package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/brsample/remoteresource/processor"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	posColor     = color.New(color.Bold)
)

// setColorMode applies the --color flag.
func setColorMode(mode string) error {
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid color mode %q: expecting auto, on or off", mode)
	}
	return nil
}

func severityColor(s processor.Severity) *color.Color {
	switch s {
	case processor.SeverityError:
		return errorColor
	case processor.SeverityWarning:
		return warningColor
	}
	return infoColor
}

// printDiagnostics writes diagnostics one per line, as
// "file:line:col: severity: message".
func printDiagnostics(w io.Writer, diags []processor.Diagnostic) {
	for _, d := range diags {
		if d.Pos.IsValid() {
			posColor.Fprintf(w, "%s: ", d.Pos)
		}
		severityColor(d.Severity).Fprintf(w, "%s:", d.Severity)
		fmt.Fprintf(w, " %s\n", d.Message)
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
