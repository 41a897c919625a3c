package hcsr04

import (
	"time"

	"github.com/Zaraius/3d-scanner/internal/debug"
	"github.com/Zaraius/3d-scanner/internal/hw/gpio"
)

// DefaultMaxEchoWait bounds the echo polling loop. It matches the implicit
// one-second timeout of the sensor class.
const DefaultMaxEchoWait = time.Second

// Config holds the hardware configuration for an HC-SR04 ultrasonic sensor.
type Config struct {
	TriggerPin  int
	EchoPin     int
	MaxEchoWait time.Duration // 0 = DefaultMaxEchoWait
}

// Sensor measures echo pulse widths from an HC-SR04-class ultrasonic
// ranger. The pulse width is proportional to round-trip acoustic travel
// time; converting it to a distance is left to the consumer.
type Sensor struct {
	gpio gpio.Driver
	cfg  Config
}

// New creates a sensor and puts the trigger line in its idle (low) state.
func New(g gpio.Driver, cfg Config) *Sensor {
	if cfg.MaxEchoWait <= 0 {
		cfg.MaxEchoWait = DefaultMaxEchoWait
	}

	_ = g.SetupPin(cfg.TriggerPin, gpio.Output)
	_ = g.SetupPin(cfg.EchoPin, gpio.Input)
	_ = g.WritePin(cfg.TriggerPin, gpio.Low)

	return &Sensor{
		gpio: g,
		cfg:  cfg,
	}
}

// MeasurePulse fires the trigger and returns the width of the echo pulse in
// microseconds. If the echo line never rises, or never falls back, within
// the configured maximum wait, it returns the sentinel 0 with a nil error;
// a zero reading is indistinguishable from a true near-zero distance.
// Errors are reserved for GPIO faults.
func (s *Sensor) MeasurePulse() (int64, error) {
	// Trigger pulse: low to clear, then high for at least 10 us.
	if err := s.gpio.WritePin(s.cfg.TriggerPin, gpio.Low); err != nil {
		return 0, err
	}
	time.Sleep(2 * time.Microsecond)
	if err := s.gpio.WritePin(s.cfg.TriggerPin, gpio.High); err != nil {
		return 0, err
	}
	time.Sleep(10 * time.Microsecond)
	if err := s.gpio.WritePin(s.cfg.TriggerPin, gpio.Low); err != nil {
		return 0, err
	}

	deadline := time.Now().Add(s.cfg.MaxEchoWait)

	// Wait for the echo line to rise. Busy polling: the edges are tens of
	// microseconds apart, far below sleep granularity.
	for {
		level, err := s.gpio.ReadPin(s.cfg.EchoPin)
		if err != nil {
			return 0, err
		}
		if level == gpio.High {
			break
		}
		if time.Now().After(deadline) {
			debug.Verbose("hcsr04: no echo rise within %v", s.cfg.MaxEchoWait)
			return 0, nil
		}
	}

	start := time.Now()

	// Measure how long the echo line stays high.
	for {
		level, err := s.gpio.ReadPin(s.cfg.EchoPin)
		if err != nil {
			return 0, err
		}
		if level == gpio.Low {
			break
		}
		if time.Now().After(deadline) {
			debug.Verbose("hcsr04: echo stuck high past %v", s.cfg.MaxEchoWait)
			return 0, nil
		}
	}

	width := time.Since(start).Microseconds()
	debug.Trace("hcsr04: echo pulse %d us", width)
	return width, nil
}
