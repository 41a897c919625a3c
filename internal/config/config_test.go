package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validYAML = `
pan_servo:
  pwm_pin: 12
  min_pulse_us: 544
  max_pulse_us: 2400
  settle_ms: 200
tilt_servo:
  pwm_pin: 13
  settle_ms: 30
sensor:
  trigger_pin: 23
  echo_pin: 24
  max_echo_wait_ms: 1000
sweep:
  pan:
    start_deg: 5
    end_deg: 50
    step_deg: 2
    home_deg: 5
  tilt:
    start_deg: 15
    end_deg: 75
    step_deg: 1
    home_deg: 45
  home_settle_ms: 500
serial:
  device: /dev/ttyAMA0
  baud_rate: 115200
output:
  pan_reference_deg: 5
  tilt_reference_deg: 45
defaults:
  debug_level: 2
  mock_gpio: false
  mock_serial: false
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PanServo.PWMPin != 12 || cfg.TiltServo.PWMPin != 13 {
		t.Errorf("servo pins = %d, %d, want 12, 13", cfg.PanServo.PWMPin, cfg.TiltServo.PWMPin)
	}
	if cfg.Sensor.TriggerPin != 23 || cfg.Sensor.EchoPin != 24 {
		t.Errorf("sensor pins = %d, %d, want 23, 24", cfg.Sensor.TriggerPin, cfg.Sensor.EchoPin)
	}
	if cfg.Sweep.Pan.EndDeg != 50 || cfg.Sweep.Tilt.EndDeg != 75 {
		t.Errorf("sweep ends = %d, %d, want 50, 75", cfg.Sweep.Pan.EndDeg, cfg.Sweep.Tilt.EndDeg)
	}
	if cfg.Serial.Device != "/dev/ttyAMA0" {
		t.Errorf("device = %q, want /dev/ttyAMA0", cfg.Serial.Device)
	}
	if cfg.Defaults.DebugLevel != 2 {
		t.Errorf("debug level = %d, want 2", cfg.Defaults.DebugLevel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "pan_servo: [not: a: map")); err == nil {
		t.Error("expected error for invalid yaml, got nil")
	}
}

func TestLoad_DefaultsFilledIn(t *testing.T) {
	// Minimal config: mock everything, say nothing else.
	cfg, err := Load(writeConfig(t, `
defaults:
  mock_gpio: true
  mock_serial: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PanServo.SettleMs != 200 {
		t.Errorf("pan settle = %d ms, want 200", cfg.PanServo.SettleMs)
	}
	if cfg.TiltServo.SettleMs != 30 {
		t.Errorf("tilt settle = %d ms, want 30", cfg.TiltServo.SettleMs)
	}
	if cfg.Sensor.MaxEchoWaitMs != 1000 {
		t.Errorf("max echo wait = %d ms, want 1000", cfg.Sensor.MaxEchoWaitMs)
	}
	if cfg.Sweep.HomeSettleMs != 500 {
		t.Errorf("home settle = %d ms, want 500", cfg.Sweep.HomeSettleMs)
	}
	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("baud = %d, want 115200", cfg.Serial.BaudRate)
	}

	wantPan := AxisSweepConfig{StartDeg: 5, EndDeg: 50, StepDeg: 2, HomeDeg: 5}
	if cfg.Sweep.Pan != wantPan {
		t.Errorf("pan sweep = %+v, want %+v", cfg.Sweep.Pan, wantPan)
	}
	wantTilt := AxisSweepConfig{StartDeg: 15, EndDeg: 75, StepDeg: 1, HomeDeg: 45}
	if cfg.Sweep.Tilt != wantTilt {
		t.Errorf("tilt sweep = %+v, want %+v", cfg.Sweep.Tilt, wantTilt)
	}

	// Output references follow the home angles.
	if cfg.Output.PanReferenceDeg != 5 || cfg.Output.TiltReferenceDeg != 45 {
		t.Errorf("output refs = (%d, %d), want (5, 45)",
			cfg.Output.PanReferenceDeg, cfg.Output.TiltReferenceDeg)
	}
}

func TestLoad_MissingSerialDevice(t *testing.T) {
	_, err := Load(writeConfig(t, `
defaults:
  mock_gpio: true
`))
	if err == nil {
		t.Error("expected error for missing serial.device, got nil")
	}
}

func TestLoad_MissingPins(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no_servo_pins", `
sensor: {trigger_pin: 23, echo_pin: 24}
serial: {device: /dev/ttyAMA0}
`},
		{"no_sensor_pins", `
pan_servo: {pwm_pin: 12}
tilt_servo: {pwm_pin: 13}
serial: {device: /dev/ttyAMA0}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoad_MockGPIOAllowsMissingPins(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
serial: {device: /dev/ttyAMA0}
defaults: {mock_gpio: true}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Defaults.MockGPIO {
		t.Error("mock_gpio not set")
	}
}

func TestLoad_InvalidSweep(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"inverted_pan", `
sweep:
  pan: {start_deg: 50, end_deg: 5, step_deg: 2}
defaults: {mock_gpio: true, mock_serial: true}
`},
		{"negative_tilt_step", `
sweep:
  tilt: {start_deg: 15, end_deg: 75, step_deg: -1}
defaults: {mock_gpio: true, mock_serial: true}
`},
		{"pan_past_travel", `
sweep:
  pan: {start_deg: 100, end_deg: 200, step_deg: 2}
defaults: {mock_gpio: true, mock_serial: true}
`},
		{"home_past_travel", `
sweep:
  pan: {start_deg: 5, end_deg: 50, step_deg: 2, home_deg: 190}
defaults: {mock_gpio: true, mock_serial: true}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.PanSettle(); got != 200*time.Millisecond {
		t.Errorf("PanSettle() = %v, want 200ms", got)
	}
	if got := cfg.TiltSettle(); got != 30*time.Millisecond {
		t.Errorf("TiltSettle() = %v, want 30ms", got)
	}
	if got := cfg.HomeSettle(); got != 500*time.Millisecond {
		t.Errorf("HomeSettle() = %v, want 500ms", got)
	}
	if got := cfg.MaxEchoWait(); got != time.Second {
		t.Errorf("MaxEchoWait() = %v, want 1s", got)
	}
}
