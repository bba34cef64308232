package protocol

import (
	"bytes"
	"fmt"
	"io"
)

// Event is one server-sent event frame
type Event struct {
	ID    string
	Event string
	Data  []byte
}

// WriteEvent writes ev in text/event-stream framing. Multi-line data is
// split into one data field per line.
func WriteEvent(w io.Writer, ev Event) error {
	var buf bytes.Buffer

	if ev.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", ev.ID)
	}
	if ev.Event != "" {
		fmt.Fprintf(&buf, "event: %s\n", ev.Event)
	}
	for _, line := range bytes.Split(ev.Data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// WriteComment writes an SSE comment line, used as a keepalive
func WriteComment(w io.Writer, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return fmt.Errorf("failed to write comment: %w", err)
	}
	return nil
}
