package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/Zaraius/3d-scanner/internal/config"
	"github.com/Zaraius/3d-scanner/internal/debug"
	"github.com/Zaraius/3d-scanner/internal/hw/gpio"
	"github.com/Zaraius/3d-scanner/internal/hw/hcsr04"
	"github.com/Zaraius/3d-scanner/internal/hw/servo"
	"github.com/Zaraius/3d-scanner/internal/logic/gimbal"
	"github.com/Zaraius/3d-scanner/internal/logic/sweep"
	"github.com/Zaraius/3d-scanner/internal/output"
	"github.com/Zaraius/3d-scanner/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web monitor on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	once := flag.Bool("once", false, "exit after one scan instead of idling")
	panStartDeg := flag.Int("pan_start_deg", 0, "override pan sweep start in degrees (0 = config default)")
	panEndDeg := flag.Int("pan_end_deg", 0, "override pan sweep end in degrees (0 = config default)")
	tiltStartDeg := flag.Int("tilt_start_deg", 0, "override tilt sweep start in degrees (0 = config default)")
	tiltEndDeg := flag.Int("tilt_end_deg", 0, "override tilt sweep end in degrees (0 = config default)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (only non-zero values are applied; zero means "use config default")
	overrides := web.Overrides{
		PanStartDeg:  *panStartDeg,
		PanEndDeg:    *panEndDeg,
		TiltStartDeg: *tiltStartDeg,
		TiltEndDeg:   *tiltEndDeg,
	}
	if err := validateOverrides(overrides); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}

	// Apply CLI overrides to config
	applyOverrides(cfg, overrides)

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize servos
	debug.Step(2, "Initializing servos")
	panServo := servo.NewServo(gpioDriver, servo.Config{
		PWMPin:     cfg.PanServo.PWMPin,
		MinPulseUs: cfg.PanServo.MinPulseUs,
		MaxPulseUs: cfg.PanServo.MaxPulseUs,
	})
	debug.PrintStruct("Pan servo config", cfg.PanServo)
	tiltServo := servo.NewServo(gpioDriver, servo.Config{
		PWMPin:     cfg.TiltServo.PWMPin,
		MinPulseUs: cfg.TiltServo.MinPulseUs,
		MaxPulseUs: cfg.TiltServo.MaxPulseUs,
	})
	debug.PrintStruct("Tilt servo config", cfg.TiltServo)
	head := gimbal.NewController(panServo, tiltServo)

	// Initialize range sensor
	debug.Step(3, "Initializing range sensor")
	sensor := hcsr04.New(gpioDriver, hcsr04.Config{
		TriggerPin:  cfg.Sensor.TriggerPin,
		EchoPin:     cfg.Sensor.EchoPin,
		MaxEchoWait: cfg.MaxEchoWait(),
	})
	debug.Value("Trigger pin", cfg.Sensor.TriggerPin)
	debug.Value("Echo pin", cfg.Sensor.EchoPin)

	// Open the record stream
	debug.Step(4, "Opening record stream")
	var out io.Writer
	if cfg.Defaults.MockSerial {
		debug.Info("Streaming records to stdout (mock serial)")
		out = os.Stdout
	} else {
		port, err := output.OpenSerial(cfg.Serial.Device, cfg.Serial.BaudRate)
		if err != nil {
			log.Fatalf("open serial failed: %v", err)
		}
		defer func() {
			if err := port.Close(); err != nil {
				log.Printf("closing serial port failed: %v", err)
			}
		}()
		debug.Value("Serial device", cfg.Serial.Device)
		debug.Value("Baud rate", cfg.Serial.BaudRate)
		out = port
	}
	var sink output.Sink = output.NewEncoder(out, cfg.Output.PanReferenceDeg, cfg.Output.TiltReferenceDeg)

	if port := webPort.port(); port > 0 {
		webAddr := fmt.Sprintf(":%d", port)
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
		sink = &web.RecordTee{Next: sink, Broadcaster: broadcaster}

		runScan := func(ctx context.Context, overrides web.Overrides) error {
			return executeScan(ctx, cfg, head, sensor, sink, overrides)
		}

		formDefaults := web.FormConfig{
			PanStartDeg:  cfg.Sweep.Pan.StartDeg,
			PanEndDeg:    cfg.Sweep.Pan.EndDeg,
			TiltStartDeg: cfg.Sweep.Tilt.StartDeg,
			TiltEndDeg:   cfg.Sweep.Tilt.EndDeg,
		}
		srv := web.NewServer(webAddr, broadcaster, runScan, formDefaults)
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("web server: %v", err)
		}
		return
	}

	// Run one scan with current config (already has CLI overrides applied)
	if err := executeScan(ctx, cfg, head, sensor, sink, web.Overrides{}); err != nil {
		log.Fatalf("scan failed: %v", err)
	}

	if *once {
		return
	}

	// The scan is done; park and idle until interrupted, matching the
	// terminal idle state of the sweep firmware.
	debug.Section("Idle")
	<-ctx.Done()
}

// executeScan runs one serpentine scan with the given config and overrides.
// It applies overrides to a copy of the config, then drives the sequencer.
func executeScan(
	ctx context.Context,
	baseCfg *config.Config,
	head *gimbal.Controller,
	sensor sweep.RangeSensor,
	sink output.Sink,
	overrides web.Overrides,
) error {
	cfg := applyOverridesToCopy(baseCfg, overrides)

	debug.Step(5, "Calculating sweep plan")
	plan := sweep.PlanFromConfig(cfg)
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("sweep plan: %w", err)
	}

	debug.Summary("Sweep Plan Summary")
	debug.Value("Pan range", debug.Fmt("%d-%d deg step %d", plan.Pan.StartDeg, plan.Pan.EndDeg, plan.Pan.StepDeg))
	debug.Value("Tilt range", debug.Fmt("%d-%d deg step %d", plan.Tilt.StartDeg, plan.Tilt.EndDeg, plan.Tilt.StepDeg))
	debug.Value("Home position", debug.Fmt("(%d, %d)", plan.HomePanDeg, plan.HomeTiltDeg))
	debug.Value("Total points", plan.TotalPoints())

	seq := sweep.NewSequencer(head, sensor, sink)

	debug.Section("Starting Scan")
	err := seq.Run(ctx, sweep.Params{
		Plan:       plan,
		PanSettle:  cfg.PanSettle(),
		TiltSettle: cfg.TiltSettle(),
		HomeSettle: cfg.HomeSettle(),
	})
	if err != nil {
		return err
	}

	debug.Section("Scan Complete")
	return nil
}

// validateOverrides checks that non-zero overrides are within servo travel.
// Zero values are ignored (they mean "use config default").
func validateOverrides(o web.Overrides) error {
	for _, deg := range []int{o.PanStartDeg, o.PanEndDeg, o.TiltStartDeg, o.TiltEndDeg} {
		if deg < 0 || deg > 180 {
			return fmt.Errorf("angles must be between 0 and 180, got %d", deg)
		}
	}
	return nil
}

// applyOverrides mutates cfg with overrides. Only non-zero override values are applied.
func applyOverrides(cfg *config.Config, overrides web.Overrides) {
	if overrides.PanStartDeg > 0 {
		cfg.Sweep.Pan.StartDeg = overrides.PanStartDeg
	}
	if overrides.PanEndDeg > 0 {
		cfg.Sweep.Pan.EndDeg = overrides.PanEndDeg
	}
	if overrides.TiltStartDeg > 0 {
		cfg.Sweep.Tilt.StartDeg = overrides.TiltStartDeg
	}
	if overrides.TiltEndDeg > 0 {
		cfg.Sweep.Tilt.EndDeg = overrides.TiltEndDeg
	}
}

// applyOverridesToCopy returns a new config with overrides applied.
// Zero values in overrides mean "use base config".
func applyOverridesToCopy(baseCfg *config.Config, overrides web.Overrides) *config.Config {
	cfg := *baseCfg
	applyOverrides(&cfg, overrides)
	return &cfg
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
