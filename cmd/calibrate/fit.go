package main

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Calibration is a least-squares linear map from echo pulse duration (us)
// to distance (inches).
type Calibration struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// fitCalibration regresses distance on duration.
func fitCalibration(durations, inches []float64) (Calibration, error) {
	if len(durations) != len(inches) {
		return Calibration{}, fmt.Errorf("mismatched lengths: %d durations, %d distances", len(durations), len(inches))
	}
	if len(durations) < 2 {
		return Calibration{}, fmt.Errorf("need at least 2 calibration points, got %d", len(durations))
	}

	intercept, slope := stat.LinearRegression(durations, inches, nil, false)
	r2 := stat.RSquared(durations, inches, nil, intercept, slope)

	return Calibration{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
	}, nil
}

// Distance applies the calibration to one duration. The zero duration
// sentinel (no echo) maps to 0 rather than the intercept.
func (c Calibration) Distance(durationUs float64) float64 {
	if durationUs == 0 {
		return 0
	}
	return c.Slope*durationUs + c.Intercept
}
