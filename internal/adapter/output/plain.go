package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/ocnotify/internal/model"
)

var (
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// PlainFormatter formats entries as one line of text each.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
// An unparsable template is ignored and the default layout is used.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []model.Entry) error {
	for i := range entries {
		if err := f.formatEntry(w, i+1, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// templateData is the value passed to custom templates.
type templateData struct {
	Index        int
	Entry        *model.Entry
	RelativeTime string
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"reltime": func(ts int64) string {
			return relativeTime(ts)
		},
		"ms": func(ms int64) string {
			return (time.Duration(ms) * time.Millisecond).String()
		},
	}
}

func (f *PlainFormatter) formatEntry(w io.Writer, index int, e *model.Entry) error {
	if f.template != nil {
		data := templateData{
			Index:        index,
			Entry:        e,
			RelativeTime: relativeTime(e.Timestamp),
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	if f.opts.ShowTime {
		sb.WriteString(f.style(dimStyle, fmt.Sprintf("%-16s", relativeTime(e.Timestamp))))
		sb.WriteString(" ")
	}

	sb.WriteString(fmt.Sprintf("%-10s ", e.Kind))

	if e.Played {
		sb.WriteString(f.style(okStyle, e.Outcome()))
	} else {
		sb.WriteString(f.style(failStyle, e.Outcome()))
	}

	if f.opts.ShowAttempts && (len(e.Attempts) > 1 || (!e.Played && len(e.Attempts) > 0)) {
		sb.WriteString(f.style(dimStyle, " ["+strings.Join(e.Attempts, ", ")+"]"))
	}

	if f.opts.ShowDuration {
		sb.WriteString(f.style(dimStyle, " "+(time.Duration(e.DurationMs)*time.Millisecond).String()))
	}

	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *PlainFormatter) style(s lipgloss.Style, text string) string {
	if !f.opts.Color {
		return text
	}
	return s.Render(text)
}

// relativeTime renders a unix timestamp as "3 minutes ago".
func relativeTime(timestamp int64) string {
	if timestamp == 0 {
		return "unknown"
	}
	return humanize.Time(time.Unix(timestamp, 0))
}
