package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/s0up4200/uslcheck/usl"
)

// Format selects how results are rendered
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatConsole, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format: %q (must be console, json or yaml)", name)
}

// Writer renders query results to an io.Writer in one format
type Writer struct {
	out     io.Writer
	format  Format
	console *ConsoleFormatter
}

// NewWriter creates a writer for the given format
func NewWriter(out io.Writer, format Format) *Writer {
	return &Writer{
		out:     out,
		format:  format,
		console: NewConsoleFormatter(),
	}
}

// Statuses writes the results of simple queries
func (w *Writer) Statuses(statuses []usl.BanStatus) error {
	if statuses == nil {
		statuses = []usl.BanStatus{}
	}
	if w.format == FormatConsole {
		_, err := fmt.Fprintln(w.out, w.console.FormatBanStatuses(statuses))
		return err
	}
	return w.encode(statuses)
}

// Records writes bulk listing entries
func (w *Writer) Records(records []usl.BanRecord) error {
	if records == nil {
		records = []usl.BanRecord{}
	}
	if w.format == FormatConsole {
		_, err := fmt.Fprintln(w.out, w.console.FormatBanRecords(records))
		return err
	}
	return w.encode(records)
}

// Raw writes an opaque data payload. Console output is indented JSON.
func (w *Writer) Raw(data json.RawMessage) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	if w.format == FormatYAML {
		return w.encode(v)
	}
	return w.encodeJSON(v)
}

func (w *Writer) encode(v any) error {
	if w.format == FormatYAML {
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	return w.encodeJSON(v)
}

func (w *Writer) encodeJSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
