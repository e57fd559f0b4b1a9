package tracklog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{
			TimestampMs: 16,
			TruthPX:     50.5, TruthPY: 50.1,
			TruthVX: 0.8, TruthVY: 0.2,
			EstPX: 49.9, EstPY: 50.4,
			EstVX: 0.7, EstVY: 0.1,
			AccelX: 48.5, AccelY: 12.1,
			H: 61.8, DH: -0.5,
		},
		{
			TimestampMs: 33,
			TruthPX:     51.3, TruthPY: 50.3,
			EstPX: 51.0, EstPY: 50.2,
			AccelX: 30.0, AccelY: 15.0,
			H: 4.2, DH: -22.0,
			Flags: FlagActive,
		},
		{
			TimestampMs: 50,
			TruthPX:     52.1, TruthPY: 50.6,
			H:           -1.3,
			Flags:       FlagActive | FlagUnsafe,
		},
	}
}

func writeLog(t *testing.T, recs []Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.sfl")
	w, err := NewWriter(path)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, w.WriteRecord(r))
	}
	require.NoError(t, w.Close())
	return path
}

func TestWriteParseRoundtrip(t *testing.T) {
	want := sampleRecords()
	path := writeLog(t, want)

	p := NewParser(path)
	require.NoError(t, p.Parse())
	require.Len(t, p.Records, len(want))
	for i := range want {
		assert.Equal(t, want[i], p.Records[i], "record %d", i)
	}
}

func TestRecordFlags(t *testing.T) {
	var r Record
	assert.False(t, r.Active())
	assert.True(t, r.Safe())

	r.Flags = FlagActive
	assert.True(t, r.Active())
	assert.True(t, r.Safe())

	r.Flags = FlagActive | FlagUnsafe
	assert.True(t, r.Active())
	assert.False(t, r.Safe())
}

func TestParseRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.sfl")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	err := NewParser(path).Parse()
	assert.ErrorContains(t, err, "not a step log")
}

func TestParseIgnoresTruncatedTail(t *testing.T) {
	path := writeLog(t, sampleRecords())

	// Chop the last record in half, as a crashed writer would leave it.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b[:len(b)-50], 0o644))

	p := NewParser(path)
	require.NoError(t, p.Parse())
	assert.Len(t, p.Records, len(sampleRecords())-1)
}

func TestReplayFastDeliversInOrder(t *testing.T) {
	path := writeLog(t, sampleRecords())
	p := NewParser(path)
	require.NoError(t, p.Parse())

	var got []int64
	p.Replay(0, func(r Record) { got = append(got, r.TimestampMs) })
	assert.Equal(t, []int64{16, 33, 50}, got)
}

func TestExportCSV(t *testing.T) {
	recs := sampleRecords()
	path := filepath.Join(t.TempDir(), "track.csv")
	require.NoError(t, ExportCSV(path, recs))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(recs)+1)

	assert.Equal(t, []string{
		"ts_ms", "truth_x", "truth_y", "est_x", "est_y",
		"accel_x", "accel_y", "h", "active", "safe",
	}, rows[0])
	assert.Equal(t, "16", rows[1][0])
	assert.Equal(t, "50.5000", rows[1][1])
	assert.Equal(t, "false", rows[1][8])
	assert.Equal(t, "true", rows[2][8])
	assert.Equal(t, "false", rows[3][9])
}
