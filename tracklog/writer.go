// Package tracklog reads and writes the binary step-log format: a small
// global header followed by fixed-size little-endian records, one per
// control cycle. Logs capture the truth, the estimate, the applied command
// and the barrier terms, so a run can be replayed or exported offline.
package tracklog

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"sync"
)

const (
	// Magic identifies a step log ("SFL1").
	Magic   = 0x53464C31
	Version = 1

	headerLen = 16
	recordLen = 112
)

// Record flag bits.
const (
	FlagActive = 0x1 // safety filter modified the command
	FlagUnsafe = 0x2 // post-hoc audit failed this step
)

// Record is one control cycle.
type Record struct {
	TimestampMs int64

	TruthPX, TruthPY float64
	TruthVX, TruthVY float64

	EstPX, EstPY float64
	EstVX, EstVY float64

	AccelX, AccelY float64

	H, DH float64

	Flags uint16
}

// Active reports whether the safety filter intervened on this step.
func (r Record) Active() bool { return r.Flags&FlagActive != 0 }

// Safe reports whether the step passed the post-hoc audit.
func (r Record) Safe() bool { return r.Flags&FlagUnsafe == 0 }

// Writer appends records to a step log. Safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte // reused record buffer
}

// NewWriter creates path and writes the global header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{w: f, buf: make([]byte, recordLen)}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	b := make([]byte, headerLen)
	binary.LittleEndian.PutUint32(b[0:], Magic)
	binary.LittleEndian.PutUint16(b[4:], Version)
	binary.LittleEndian.PutUint32(b[8:], recordLen)
	_, err := w.w.Write(b)
	return err
}

// WriteRecord appends one record.
func (w *Writer) WriteRecord(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	b := w.buf
	binary.LittleEndian.PutUint64(b[0:], uint64(r.TimestampMs))
	putF64(b[8:], r.TruthPX)
	putF64(b[16:], r.TruthPY)
	putF64(b[24:], r.TruthVX)
	putF64(b[32:], r.TruthVY)
	putF64(b[40:], r.EstPX)
	putF64(b[48:], r.EstPY)
	putF64(b[56:], r.EstVX)
	putF64(b[64:], r.EstVY)
	putF64(b[72:], r.AccelX)
	putF64(b[80:], r.AccelY)
	putF64(b[88:], r.H)
	putF64(b[96:], r.DH)
	binary.LittleEndian.PutUint16(b[104:], r.Flags)
	// bytes 106..112 reserved

	_, err := w.w.Write(b)
	return err
}

func (w *Writer) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func putF64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}
