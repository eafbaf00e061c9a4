// Package output provides output formatters for history entries.
package output

import (
	"io"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// Formatter formats history entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []model.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatIDs   FormatType = "ids"
)

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter()
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, bool) {
	switch f := FormatType(s); f {
	case FormatPlain, FormatJSON, FormatIDs:
		return f, true
	default:
		return "", false
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template     string // Custom text/template for plain format
	ShowTime     bool   // Show relative time
	ShowAttempts bool   // List every mechanism tried when more than one ran
	ShowDuration bool   // Show how long playback took
	Color        bool   // Style output with lipgloss
}

// DefaultFormatterOptions returns the options used by the history command.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowTime:     true,
		ShowAttempts: true,
		ShowDuration: true,
		Color:        true,
	}
}
