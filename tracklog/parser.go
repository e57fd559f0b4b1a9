package tracklog

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// Parser loads a step log into memory.
type Parser struct {
	path    string
	Records []Record
}

// NewParser returns a parser for path. Call Parse to load it.
func NewParser(path string) *Parser {
	return &Parser{path: path}
}

// Parse reads the whole log. A short trailing record is ignored; a bad magic
// or record length is an error.
func (p *Parser) Parse() error {
	f, err := os.Open(p.path)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := make([]byte, headerLen)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:]) != Magic {
		return fmt.Errorf("%s: not a step log", p.path)
	}
	if rl := binary.LittleEndian.Uint32(hdr[8:]); rl != recordLen {
		return fmt.Errorf("%s: unsupported record length %d", p.path, rl)
	}

	buf := make([]byte, recordLen)
	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return fmt.Errorf("read record: %w", err)
		}
		p.Records = append(p.Records, decodeRecord(buf))
	}
	return nil
}

func decodeRecord(b []byte) Record {
	return Record{
		TimestampMs: int64(binary.LittleEndian.Uint64(b[0:])),
		TruthPX:     getF64(b[8:]),
		TruthPY:     getF64(b[16:]),
		TruthVX:     getF64(b[24:]),
		TruthVY:     getF64(b[32:]),
		EstPX:       getF64(b[40:]),
		EstPY:       getF64(b[48:]),
		EstVX:       getF64(b[56:]),
		EstVY:       getF64(b[64:]),
		AccelX:      getF64(b[72:]),
		AccelY:      getF64(b[80:]),
		H:           getF64(b[88:]),
		DH:          getF64(b[96:]),
		Flags:       binary.LittleEndian.Uint16(b[104:]),
	}
}

func getF64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// Replay feeds the loaded records to fn, pacing them against the wall clock
// at the given speed multiplier. speed <= 0 replays as fast as possible.
func (p *Parser) Replay(speed float64, fn func(Record)) {
	var firstTs int64
	var startReal time.Time

	for i, rec := range p.Records {
		if i == 0 {
			firstTs = rec.TimestampMs
			startReal = time.Now()
		} else if speed > 0 {
			targetDelay := time.Duration(float64(rec.TimestampMs-firstTs) / speed * float64(time.Millisecond))
			elapsed := time.Since(startReal)
			if targetDelay > elapsed {
				time.Sleep(targetDelay - elapsed)
			}
		}
		fn(rec)
	}
}

// ExportCSV writes records as a CSV track for offline analysis.
func ExportCSV(path string, recs []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{{
		"ts_ms", "truth_x", "truth_y", "est_x", "est_y",
		"accel_x", "accel_y", "h", "active", "safe",
	}}
	for _, r := range recs {
		rows = append(rows, []string{
			strconv.FormatInt(r.TimestampMs, 10),
			fmt.Sprintf("%.4f", r.TruthPX),
			fmt.Sprintf("%.4f", r.TruthPY),
			fmt.Sprintf("%.4f", r.EstPX),
			fmt.Sprintf("%.4f", r.EstPY),
			fmt.Sprintf("%.4f", r.AccelX),
			fmt.Sprintf("%.4f", r.AccelY),
			fmt.Sprintf("%.4f", r.H),
			strconv.FormatBool(r.Active()),
			strconv.FormatBool(r.Safe()),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
