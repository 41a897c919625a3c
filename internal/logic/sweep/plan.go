package sweep

import (
	"fmt"

	"github.com/Zaraius/3d-scanner/internal/config"
)

// AxisRange describes the angular sweep of one axis: every angle from
// StartDeg to EndDeg inclusive, StepDeg apart.
type AxisRange struct {
	StartDeg int
	EndDeg   int
	StepDeg  int
}

// Angles returns the swept angles in ascending order.
func (r AxisRange) Angles() []int {
	var angles []int
	for a := r.StartDeg; a <= r.EndDeg; a += r.StepDeg {
		angles = append(angles, a)
	}
	return angles
}

// Count returns the number of swept angles.
func (r AxisRange) Count() int {
	if r.EndDeg < r.StartDeg {
		return 0
	}
	return (r.EndDeg-r.StartDeg)/r.StepDeg + 1
}

// Plan holds the full angular grid for one scan, plus the home position
// both axes park at before and after the sweep.
type Plan struct {
	Pan  AxisRange
	Tilt AxisRange

	HomePanDeg  int
	HomeTiltDeg int
}

// Column is one pan stop and the ordered tilt angles swept there.
type Column struct {
	PanDeg   int
	TiltsDeg []int
}

// Validate checks the plan is sweepable.
func (p Plan) Validate() error {
	if p.Pan.StepDeg <= 0 {
		return fmt.Errorf("pan step must be > 0, got %d", p.Pan.StepDeg)
	}
	if p.Tilt.StepDeg <= 0 {
		return fmt.Errorf("tilt step must be > 0, got %d", p.Tilt.StepDeg)
	}
	if p.Pan.EndDeg < p.Pan.StartDeg {
		return fmt.Errorf("pan range is empty: start %d > end %d", p.Pan.StartDeg, p.Pan.EndDeg)
	}
	if p.Tilt.EndDeg < p.Tilt.StartDeg {
		return fmt.Errorf("tilt range is empty: start %d > end %d", p.Tilt.StartDeg, p.Tilt.EndDeg)
	}
	return nil
}

// Columns generates the serpentine column list: tilt ascends on the first
// column and alternates direction on every pan step after that, so the head
// never travels back across the full tilt range between columns.
//
// Pan advances twice per forward/backward pair: once by the loop and once
// more, explicitly, before the backward column. The backward column
// therefore sits one pan step past the forward one, and when less than one
// step of range remains it is skipped, ending the scan on a forward column.
func (p Plan) Columns() []Column {
	up := p.Tilt.Angles()
	down := make([]int, len(up))
	for i, a := range up {
		down[len(up)-1-i] = a
	}

	var cols []Column
	for pan := p.Pan.StartDeg; pan <= p.Pan.EndDeg; pan += p.Pan.StepDeg {
		cols = append(cols, Column{PanDeg: pan, TiltsDeg: up})

		pan += p.Pan.StepDeg
		if pan > p.Pan.EndDeg {
			break
		}
		cols = append(cols, Column{PanDeg: pan, TiltsDeg: down})
	}
	return cols
}

// TotalPoints returns the number of grid points one scan measures.
func (p Plan) TotalPoints() int {
	return p.Pan.Count() * p.Tilt.Count()
}

// PlanFromConfig builds the scan plan from configuration.
func PlanFromConfig(cfg *config.Config) Plan {
	return Plan{
		Pan: AxisRange{
			StartDeg: cfg.Sweep.Pan.StartDeg,
			EndDeg:   cfg.Sweep.Pan.EndDeg,
			StepDeg:  cfg.Sweep.Pan.StepDeg,
		},
		Tilt: AxisRange{
			StartDeg: cfg.Sweep.Tilt.StartDeg,
			EndDeg:   cfg.Sweep.Tilt.EndDeg,
			StepDeg:  cfg.Sweep.Tilt.StepDeg,
		},
		HomePanDeg:  cfg.Sweep.Pan.HomeDeg,
		HomeTiltDeg: cfg.Sweep.Tilt.HomeDeg,
	}
}
