package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// IDsFormatter outputs just the entry IDs, one per line.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes entry IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, entries []model.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}
