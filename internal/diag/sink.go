package diag

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Sink is the interface for trace output destinations.
type Sink interface {
	Write(event Event) error
	Flush() error
	Close() error
}

// JSONSink writes events in JSON Lines format.
type JSONSink struct {
	w       *bufio.Writer
	encoder *json.Encoder
}

// NewJSONSink creates a new JSON Lines sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	bw := bufio.NewWriter(w)
	return &JSONSink{
		w:       bw,
		encoder: json.NewEncoder(bw),
	}
}

// Write encodes and writes an event as a JSON line.
func (s *JSONSink) Write(event Event) error {
	return s.encoder.Encode(event)
}

// Flush writes any buffered data to the underlying writer.
func (s *JSONSink) Flush() error {
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *JSONSink) Close() error {
	return s.Flush()
}

// PrettySink writes events in human-readable format.
type PrettySink struct {
	w *bufio.Writer
}

// NewPrettySink creates a new pretty-format sink writing to w.
func NewPrettySink(w io.Writer) *PrettySink {
	return &PrettySink{
		w: bufio.NewWriter(w),
	}
}

// Write formats and writes an event in human-readable format.
func (s *PrettySink) Write(event Event) error {
	fmt.Fprintf(s.w, "[%s] [%s/%s] session=%s\n", event.Timestamp, event.Phase, event.Event, event.SessionID)

	switch d := event.Data.(type) {
	case FontLoadedData:
		fmt.Fprintf(s.w, "  font: %q height=%d hardblank=%q glyphs=%d\n",
			d.Name, d.Height, d.Hardblank, d.GlyphCount)
	case ControlParsedData:
		fmt.Fprintf(s.w, "  control: %q stages=%d diagnostics=%d\n",
			d.Name, d.Stages, d.Diagnostics)
	case DirectiveData:
		fmt.Fprintf(s.w, "  %s at line %d: %s\n", d.Kind, d.Line, d.Text)
	case RenderStartData:
		fmt.Fprintf(s.w, "  text: %q (%d bytes), height=%d, stages=%d\n",
			d.Text, d.TextLength, d.Height, d.Stages)
	case GlyphData:
		fmt.Fprintf(s.w, "  glyph %d: cluster=%q code=%d mapped=%d fallback=%t skipped=%t\n",
			d.Index, d.Cluster, d.Code, d.Mapped, d.Fallback, d.Skipped)
	case TrimDecisionData:
		fmt.Fprintf(s.w, "  trim leading column: %t\n", d.TrimRow)
	case RenderEndData:
		fmt.Fprintf(s.w, "  rows=%d clusters=%d elapsed=%dms bytes=%d\n",
			d.Rows, d.Clusters, d.ElapsedMs, d.BytesWritten)
	case map[string]interface{}:
		for k, v := range d {
			fmt.Fprintf(s.w, "  %s: %v\n", k, v)
		}
	case map[string]int64:
		for k, v := range d {
			fmt.Fprintf(s.w, "  %s: %d\n", k, v)
		}
	default:
		fmt.Fprintf(s.w, "  data: %+v\n", d)
	}

	return nil
}

// Flush writes any buffered data to the underlying writer.
func (s *PrettySink) Flush() error {
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *PrettySink) Close() error {
	return s.Flush()
}
