// Command calibrate fits the linear map from echo pulse duration to
// distance. Feed it a CSV of known distances and the durations the scanner
// reported at them; the slope/intercept it prints go into the downstream
// visualizer, which is where durations become inches. The scanner itself
// always emits raw durations.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
)

func main() {
	csvPath := flag.String("csv", "", "path to calibration CSV (header: actual_inch,measured_duration)")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open calibration CSV: %v", err)
	}
	defer f.Close()

	inches, durations, err := readCalibrationCSV(f)
	if err != nil {
		log.Fatalf("read calibration CSV: %v", err)
	}

	fit, err := fitCalibration(durations, inches)
	if err != nil {
		log.Fatalf("fit: %v", err)
	}

	fmt.Printf("points:    %d\n", len(inches))
	fmt.Printf("slope:     %.6f inch/us\n", fit.Slope)
	fmt.Printf("intercept: %.6f inch\n", fit.Intercept)
	fmt.Printf("r^2:       %.6f\n", fit.RSquared)
	fmt.Printf("\ndistance_inch = %.6f * duration + %.6f\n", fit.Slope, fit.Intercept)
}

// readCalibrationCSV parses (actual_inch, measured_duration) rows. A header
// line is skipped if the first field is not numeric.
func readCalibrationCSV(r io.Reader) (inches, durations []float64, err error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	for i, rec := range records {
		if len(rec) < 2 {
			return nil, nil, fmt.Errorf("row %d: want 2 fields, got %d", i+1, len(rec))
		}
		inch, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, nil, fmt.Errorf("row %d: bad distance %q", i+1, rec[0])
		}
		dur, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad duration %q", i+1, rec[1])
		}
		inches = append(inches, inch)
		durations = append(durations, dur)
	}
	return inches, durations, nil
}
