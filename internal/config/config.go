package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServoConfig holds the configuration for one servo axis.
type ServoConfig struct {
	PWMPin     int `yaml:"pwm_pin"`      // hardware PWM pin (BCM). RPi: 12, 13, 18, 19.
	MinPulseUs int `yaml:"min_pulse_us"` // pulse width at 0 degrees. 0 = 544.
	MaxPulseUs int `yaml:"max_pulse_us"` // pulse width at 180 degrees. 0 = 2400.
	SettleMs   int `yaml:"settle_ms"`    // wait after a move before trusting the position
}

// SensorConfig holds the configuration for the ultrasonic ranger.
type SensorConfig struct {
	TriggerPin    int `yaml:"trigger_pin"`
	EchoPin       int `yaml:"echo_pin"`
	MaxEchoWaitMs int `yaml:"max_echo_wait_ms"` // echo polling bound. 0 = 1000.
}

// AxisSweepConfig describes the swept range of one axis.
type AxisSweepConfig struct {
	StartDeg int `yaml:"start_deg"`
	EndDeg   int `yaml:"end_deg"`
	StepDeg  int `yaml:"step_deg"`
	HomeDeg  int `yaml:"home_deg"` // park position before and after a scan
}

// SweepConfig describes the full scan grid.
type SweepConfig struct {
	Pan          AxisSweepConfig `yaml:"pan"`
	Tilt         AxisSweepConfig `yaml:"tilt"`
	HomeSettleMs int             `yaml:"home_settle_ms"` // one-time wait after the initial homing move
}

// SerialConfig describes the output serial link.
type SerialConfig struct {
	Device   string `yaml:"device"`    // e.g. /dev/ttyAMA0
	BaudRate int    `yaml:"baud_rate"` // 0 = 115200
}

// OutputConfig holds the record re-centering references. Emitted angles are
// raw angle minus reference, so the downstream visualizer sees zero-based
// coordinates.
type OutputConfig struct {
	PanReferenceDeg  int `yaml:"pan_reference_deg"`
	TiltReferenceDeg int `yaml:"tilt_reference_deg"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	MockSerial bool `yaml:"mock_serial"` // stream records to stdout instead of the serial port
}

// Config aggregates all application configuration.
type Config struct {
	PanServo  ServoConfig    `yaml:"pan_servo"`
	TiltServo ServoConfig    `yaml:"tilt_servo"`
	Sensor    SensorConfig   `yaml:"sensor"`
	Sweep     SweepConfig    `yaml:"sweep"`
	Serial    SerialConfig   `yaml:"serial"`
	Output    OutputConfig   `yaml:"output"`
	Defaults  DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Axis settle defaults: the pan axis carries the whole head and needs
	// far longer to stop ringing than the light tilt stage.
	if cfg.PanServo.SettleMs <= 0 {
		cfg.PanServo.SettleMs = 200
	}
	if cfg.TiltServo.SettleMs <= 0 {
		cfg.TiltServo.SettleMs = 30
	}

	if cfg.Sensor.MaxEchoWaitMs <= 0 {
		cfg.Sensor.MaxEchoWaitMs = 1000
	}

	// Sweep grid defaults: the stock scan window.
	if cfg.Sweep.Pan.StepDeg == 0 && cfg.Sweep.Pan.EndDeg == 0 {
		cfg.Sweep.Pan = AxisSweepConfig{StartDeg: 5, EndDeg: 50, StepDeg: 2, HomeDeg: 5}
	}
	if cfg.Sweep.Tilt.StepDeg == 0 && cfg.Sweep.Tilt.EndDeg == 0 {
		cfg.Sweep.Tilt = AxisSweepConfig{StartDeg: 15, EndDeg: 75, StepDeg: 1, HomeDeg: 45}
	}
	if cfg.Sweep.HomeSettleMs <= 0 {
		cfg.Sweep.HomeSettleMs = 500
	}

	if cfg.Serial.BaudRate <= 0 {
		cfg.Serial.BaudRate = 115200
	}

	// Output references default to the home angles so a scan starting at
	// home emits coordinates starting near zero.
	if cfg.Output.PanReferenceDeg == 0 {
		cfg.Output.PanReferenceDeg = cfg.Sweep.Pan.HomeDeg
	}
	if cfg.Output.TiltReferenceDeg == 0 {
		cfg.Output.TiltReferenceDeg = cfg.Sweep.Tilt.HomeDeg
	}

	// Basic validation
	if err := validateAxis("pan", cfg.Sweep.Pan); err != nil {
		return nil, err
	}
	if err := validateAxis("tilt", cfg.Sweep.Tilt); err != nil {
		return nil, err
	}
	if !cfg.Defaults.MockSerial && cfg.Serial.Device == "" {
		return nil, fmt.Errorf("serial.device is required (or set defaults.mock_serial)")
	}
	if !cfg.Defaults.MockGPIO {
		if cfg.PanServo.PWMPin <= 0 || cfg.TiltServo.PWMPin <= 0 {
			return nil, fmt.Errorf("pan_servo.pwm_pin and tilt_servo.pwm_pin are required")
		}
		if cfg.Sensor.TriggerPin <= 0 || cfg.Sensor.EchoPin <= 0 {
			return nil, fmt.Errorf("sensor.trigger_pin and sensor.echo_pin are required")
		}
	}

	return &cfg, nil
}

func validateAxis(name string, a AxisSweepConfig) error {
	if a.StepDeg <= 0 {
		return fmt.Errorf("sweep.%s.step_deg must be > 0, got %d", name, a.StepDeg)
	}
	if a.EndDeg < a.StartDeg {
		return fmt.Errorf("sweep.%s: start_deg %d > end_deg %d", name, a.StartDeg, a.EndDeg)
	}
	if a.StartDeg < 0 || a.EndDeg > 180 {
		return fmt.Errorf("sweep.%s: range [%d, %d] outside servo travel [0, 180]", name, a.StartDeg, a.EndDeg)
	}
	if a.HomeDeg < 0 || a.HomeDeg > 180 {
		return fmt.Errorf("sweep.%s: home_deg %d outside servo travel [0, 180]", name, a.HomeDeg)
	}
	return nil
}

// PanSettle returns the wait applied after a pan move.
func (c *Config) PanSettle() time.Duration {
	return time.Duration(c.PanServo.SettleMs) * time.Millisecond
}

// TiltSettle returns the wait applied after a tilt move.
func (c *Config) TiltSettle() time.Duration {
	return time.Duration(c.TiltServo.SettleMs) * time.Millisecond
}

// HomeSettle returns the one-time wait applied after the initial homing
// move.
func (c *Config) HomeSettle() time.Duration {
	return time.Duration(c.Sweep.HomeSettleMs) * time.Millisecond
}

// MaxEchoWait returns the bound on the echo polling loop.
func (c *Config) MaxEchoWait() time.Duration {
	return time.Duration(c.Sensor.MaxEchoWaitMs) * time.Millisecond
}
