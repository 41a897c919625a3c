package sweep

import (
	"context"
	"time"

	"github.com/Zaraius/3d-scanner/internal/debug"
	"github.com/Zaraius/3d-scanner/internal/output"
)

// PanTilter positions the two gimbal axes to absolute angles.
// *gimbal.Controller satisfies it.
type PanTilter interface {
	MovePan(angleDeg int) error
	MoveTilt(angleDeg int) error
}

// RangeSensor produces one echo pulse width per measurement, in
// microseconds. 0 means no echo. *hcsr04.Sensor satisfies it.
type RangeSensor interface {
	MeasurePulse() (int64, error)
}

// Sequencer drives a full scan: serpentine grid traversal, one range
// measurement and one emitted record per grid point.
type Sequencer struct {
	gimbal PanTilter
	sensor RangeSensor
	out    output.Sink
}

func NewSequencer(g PanTilter, s RangeSensor, out output.Sink) *Sequencer {
	return &Sequencer{
		gimbal: g,
		sensor: s,
		out:    out,
	}
}

// Params defines the parameters for one scan.
type Params struct {
	Plan Plan

	PanSettle  time.Duration // wait after a pan move
	TiltSettle time.Duration // wait after a tilt move
	HomeSettle time.Duration // wait after the initial homing move
}

// Run performs one full scan and returns when both axes are back at home.
// Position control is open loop: each move is followed by its settle delay
// and then trusted. The context is checked between moves; cancelling aborts
// the scan without homing (matching a hard stop).
func (s *Sequencer) Run(ctx context.Context, p Params) error {
	if err := p.Plan.Validate(); err != nil {
		return err
	}

	cols := p.Plan.Columns()
	debug.Sweep(len(cols), p.Plan.Tilt.Count(), p.Plan.TotalPoints())

	if err := s.moveHome(p); err != nil {
		return err
	}
	time.Sleep(p.HomeSettle)

	for i, col := range cols {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		direction := "up"
		if i%2 == 1 {
			direction = "down"
		}
		debug.Column(i+1, len(cols), direction)

		debug.Move("pan", col.PanDeg)
		if err := s.gimbal.MovePan(col.PanDeg); err != nil {
			return err
		}
		time.Sleep(p.PanSettle)

		for _, tilt := range col.TiltsDeg {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			debug.Move("tilt", tilt)
			if err := s.gimbal.MoveTilt(tilt); err != nil {
				return err
			}
			time.Sleep(p.TiltSettle)

			width, err := s.sensor.MeasurePulse()
			if err != nil {
				return err
			}
			debug.Point(col.PanDeg, tilt, width)

			rec := output.Record{
				PanDeg:       col.PanDeg,
				TiltDeg:      tilt,
				PulseWidthUs: width,
			}
			if err := s.out.Write(rec); err != nil {
				return err
			}
		}
	}

	// Park back at home. No further output after this point.
	if err := s.moveHome(p); err != nil {
		return err
	}

	debug.Live("Scan complete, head parked at home (%d, %d)", p.Plan.HomePanDeg, p.Plan.HomeTiltDeg)
	return nil
}

func (s *Sequencer) moveHome(p Params) error {
	debug.Move("pan", p.Plan.HomePanDeg)
	if err := s.gimbal.MovePan(p.Plan.HomePanDeg); err != nil {
		return err
	}
	debug.Move("tilt", p.Plan.HomeTiltDeg)
	return s.gimbal.MoveTilt(p.Plan.HomeTiltDeg)
}
