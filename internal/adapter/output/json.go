package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// JSONFormatter writes entries as JSON lines, the same shape as the journal.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes one JSON object per entry.
func (f *JSONFormatter) Format(w io.Writer, entries []model.Entry) error {
	encoder := json.NewEncoder(w)
	for _, e := range entries {
		if err := encoder.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
