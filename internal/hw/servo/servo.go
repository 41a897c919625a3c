package servo

import (
	"github.com/Zaraius/3d-scanner/internal/debug"
	"github.com/Zaraius/3d-scanner/internal/hw/gpio"
)

// Standard hobby-servo PWM frame: 50 Hz, one duty unit per microsecond.
const (
	FrameHz  = 50
	CycleLen = 20000 // 20 ms frame in 1 us duty units

	MinAngleDeg = 0
	MaxAngleDeg = 180
)

// Config holds the hardware configuration for a hobby servo.
type Config struct {
	PWMPin     int // hardware PWM pin (BCM). RPi: 12, 13, 18 or 19.
	MinPulseUs int // pulse width at 0 degrees. 0 = default 544.
	MaxPulseUs int // pulse width at 180 degrees. 0 = default 2400.
}

// Servo positions a hobby servo to absolute angles over a PWM line.
// Positioning is open loop: MoveTo returns as soon as the pulse width is
// updated, and the caller waits an axis-appropriate settle time before
// relying on the position.
type Servo struct {
	gpio gpio.Driver
	cfg  Config
}

// NewServo creates a servo on the given PWM pin and parks the output at 0
// duty (no pulse, servo unpowered) until the first MoveTo.
func NewServo(g gpio.Driver, cfg Config) *Servo {
	if cfg.MinPulseUs <= 0 {
		cfg.MinPulseUs = 544
	}
	if cfg.MaxPulseUs <= 0 {
		cfg.MaxPulseUs = 2400
	}

	_ = g.SetupPWM(cfg.PWMPin, FrameHz, CycleLen)

	return &Servo{
		gpio: g,
		cfg:  cfg,
	}
}

// MoveTo commands the servo to an absolute angle in degrees.
// Angles outside [0, 180] are clamped. Returns immediately; there is no
// position feedback.
func (s *Servo) MoveTo(angleDeg int) error {
	if angleDeg < MinAngleDeg {
		angleDeg = MinAngleDeg
	}
	if angleDeg > MaxAngleDeg {
		angleDeg = MaxAngleDeg
	}

	pulse := s.PulseWidthUs(angleDeg)
	debug.Printf("Servo: pin %d -> %d deg (%d us pulse)", s.cfg.PWMPin, angleDeg, pulse)

	return s.gpio.WritePWMDuty(s.cfg.PWMPin, uint32(pulse), CycleLen)
}

// PulseWidthUs maps an angle to its pulse width in microseconds, linearly
// between the configured endpoints (integer arithmetic, truncating).
func (s *Servo) PulseWidthUs(angleDeg int) int {
	span := s.cfg.MaxPulseUs - s.cfg.MinPulseUs
	return s.cfg.MinPulseUs + angleDeg*span/(MaxAngleDeg-MinAngleDeg)
}

// Release stops driving the servo (0 duty, no pulse). The horn freewheels.
func (s *Servo) Release() error {
	debug.Printf("Servo: pin %d released", s.cfg.PWMPin)
	return s.gpio.WritePWMDuty(s.cfg.PWMPin, 0, CycleLen)
}
