package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"safectl-go/sim"
	"safectl-go/tracklog"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario XML (defaults to the built-in corridor run)")
	steps := flag.Int("steps", 0, "Override step count (0 = scenario value)")
	seed := flag.Uint64("seed", 0, "Override noise seed (0 = scenario value)")
	outPath := flag.String("out", "track.csv", "Output CSV path")
	logPath := flag.String("log", "", "Optional binary step-log output")
	refPath := flag.String("ref", "", "Optional reference CSV for RMSE")
	maxShift := flag.Int("max-shift", 400, "Max frame shift for RMSE")
	flag.Parse()

	sc := sim.DefaultScenario()
	if *scenarioPath != "" {
		var err error
		sc, err = sim.ParseScenario(*scenarioPath)
		if err != nil {
			log.Fatalf("load scenario: %v", err)
		}
	}
	if *steps > 0 {
		sc.Steps = *steps
	}
	if *seed > 0 {
		sc.Seed = *seed
	}

	var lw *tracklog.Writer
	if *logPath != "" {
		var err error
		lw, err = tracklog.NewWriter(*logPath)
		if err != nil {
			log.Fatalf("create step log: %v", err)
		}
		defer lw.Close()
	}

	recs := make([]tracklog.Record, 0, sc.Steps)
	stats := sim.Run(sc, func(r sim.StepRecord) {
		rec := logRecord(r)
		recs = append(recs, rec)
		if lw != nil {
			if err := lw.WriteRecord(rec); err != nil {
				log.Fatalf("write step log: %v", err)
			}
		}
	})

	if err := tracklog.ExportCSV(*outPath, recs); err != nil {
		log.Fatalf("write csv: %v", err)
	}

	fmt.Printf("Scenario %q: %d steps, %d violations, %d interventions\n",
		sc.Name, stats.Steps, stats.Violations, stats.Interventions)
	fmt.Printf("Estimation error: final %.3f, max %.3f, rmse %.3f\n",
		stats.FinalErr, stats.MaxErr, stats.RMSE)
	fmt.Printf("Final position: (%.2f, %.2f), wrote %d rows to %s\n",
		stats.FinalTruth.P.X, stats.FinalTruth.P.Y, len(recs), *outPath)

	if *refPath != "" {
		rmse, shift, err := compareWithRef(*outPath, *refPath, *maxShift)
		if err != nil {
			log.Printf("rmse compare failed: %v", err)
		} else {
			fmt.Printf("ref shift %d frames, RMSE %.3f\n", shift, rmse)
		}
	}
}

func logRecord(r sim.StepRecord) tracklog.Record {
	var flags uint16
	if r.Active {
		flags |= tracklog.FlagActive
	}
	if !r.Safe {
		flags |= tracklog.FlagUnsafe
	}
	return tracklog.Record{
		TimestampMs: r.TimestampMs,
		TruthPX:     r.Truth.P.X,
		TruthPY:     r.Truth.P.Y,
		TruthVX:     r.Truth.V.X,
		TruthVY:     r.Truth.V.Y,
		EstPX:       r.EstP.X,
		EstPY:       r.EstP.Y,
		EstVX:       r.EstV.X,
		EstVY:       r.EstV.Y,
		AccelX:      r.Accel.X,
		AccelY:      r.Accel.Y,
		H:           r.H,
		DH:          r.DH,
		Flags:       flags,
	}
}

// compareWithRef aligns the estimated track with a reference CSV by frame
// shift and reports the best RMSE.
func compareWithRef(predPath, refPath string, maxShift int) (float64, int, error) {
	pred, err := readXY(predPath)
	if err != nil {
		return 0, 0, err
	}
	ref, err := readXY(refPath)
	if err != nil {
		return 0, 0, err
	}
	bestShift := 0
	bestRmse := math.MaxFloat64
	for shift := -maxShift; shift <= maxShift; shift++ {
		var n int
		var sum float64
		if shift >= 0 {
			n = min(len(pred)-shift, len(ref))
			if n <= 0 {
				continue
			}
			for i := 0; i < n; i++ {
				dx := pred[i+shift][0] - ref[i][0]
				dy := pred[i+shift][1] - ref[i][1]
				sum += dx*dx + dy*dy
			}
		} else {
			s := -shift
			n = min(len(ref)-s, len(pred))
			if n <= 0 {
				continue
			}
			for i := 0; i < n; i++ {
				dx := pred[i][0] - ref[i+s][0]
				dy := pred[i][1] - ref[i+s][1]
				sum += dx*dx + dy*dy
			}
		}
		rmse := math.Sqrt(sum / float64(n))
		if rmse < bestRmse {
			bestRmse = rmse
			bestShift = shift
		}
	}
	return bestRmse, bestShift, nil
}

func readXY(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) <= 1 {
		return nil, fmt.Errorf("no rows")
	}
	header := recs[0]
	pairs := [][2]string{
		{"est_x", "est_y"},
		{"truth_x", "truth_y"},
		{"x", "y"},
	}
	idxX, idxY := -1, -1
	for _, p := range pairs {
		ix := indexOf(header, p[0])
		iy := indexOf(header, p[1])
		if ix >= 0 && iy >= 0 {
			idxX, idxY = ix, iy
			break
		}
	}
	if idxX < 0 || idxY < 0 {
		return nil, fmt.Errorf("columns not found")
	}
	out := make([][2]float64, 0, len(recs)-1)
	for _, row := range recs[1:] {
		if len(row) <= idxX || len(row) <= idxY {
			continue
		}
		x, _ := strconv.ParseFloat(row[idxX], 64)
		y, _ := strconv.ParseFloat(row[idxY], 64)
		out = append(out, [2]float64{x, y})
	}
	return out, nil
}

func indexOf(arr []string, key string) int {
	for i, v := range arr {
		if strings.EqualFold(v, key) {
			return i
		}
	}
	return -1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
