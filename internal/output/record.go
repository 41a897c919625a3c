package output

import (
	"fmt"
	"io"
)

// Record is one grid-point measurement: the raw pan/tilt angles in degrees
// and the echo pulse width in microseconds (0 = no echo).
type Record struct {
	PanDeg       int
	TiltDeg      int
	PulseWidthUs int64
}

// Sink consumes measurement records.
type Sink interface {
	Write(rec Record) error
}

// Encoder serializes records as one ASCII line per measurement:
//
//	<pan-panRef>,<tilt-tiltRef>,<pulseWidth>\n
//
// The reference angles re-center the raw servo angles to a zero-based
// coordinate for the downstream visualizer. No framing beyond the newline,
// no checksums, no acknowledgment.
type Encoder struct {
	w          io.Writer
	panRefDeg  int
	tiltRefDeg int
}

// NewEncoder creates an encoder writing to w with the given reference
// angles.
func NewEncoder(w io.Writer, panRefDeg, tiltRefDeg int) *Encoder {
	return &Encoder{
		w:          w,
		panRefDeg:  panRefDeg,
		tiltRefDeg: tiltRefDeg,
	}
}

// Write emits one record. The pulse width is passed through untransformed.
func (e *Encoder) Write(rec Record) error {
	_, err := fmt.Fprintf(e.w, "%d,%d,%d\n",
		rec.PanDeg-e.panRefDeg,
		rec.TiltDeg-e.tiltRefDeg,
		rec.PulseWidthUs,
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
