package telemetry

import (
	"fmt"
	"time"
)

// FormatAgentPos builds one text position line:
//
//	track:   ,<id16hex>,<seq>,<timestamp>,<x>,<y>,<h>,<active>\r\n
//
// The three spaces after the prefix are overwritten with the total line
// length so stream consumers can frame records without scanning for the
// terminator.
func FormatAgentPos(id int, ts int64, seq uint16, x, y, h float64, active bool) []byte {
	t := time.UnixMilli(ts)
	timeStr := t.Format("20060102150405.000")

	act := 0
	if active {
		act = 1
	}
	body := fmt.Sprintf("track:   ,%016X,%d,%s,%.2f,%.2f,%.2f,%d\r\n",
		id, seq, timeStr, x, y, h, act)

	b := []byte(body)
	n := len(b)
	if n >= 100 {
		b[6] = byte('0' + (n / 100))
	}
	b[7] = byte('0' + ((n / 10) % 10))
	b[8] = byte('0' + (n % 10))
	return b
}
