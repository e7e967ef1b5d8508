package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/Alia5/egodrive/hmd"
	"github.com/Alia5/egodrive/internal/autopilot"
	"github.com/Alia5/egodrive/internal/configpaths"
	"github.com/Alia5/egodrive/internal/input"
	"github.com/Alia5/egodrive/internal/keyboard"
	"github.com/Alia5/egodrive/internal/log"
	"github.com/Alia5/egodrive/internal/ndrt"
	"github.com/Alia5/egodrive/internal/recorder"
	"github.com/Alia5/egodrive/internal/server/api"
	"github.com/Alia5/egodrive/internal/server/api/handler"
	"github.com/Alia5/egodrive/internal/session"
	"github.com/Alia5/egodrive/internal/speech"
	"github.com/Alia5/egodrive/internal/takeover"
	"github.com/Alia5/egodrive/internal/util"
	"github.com/Alia5/egodrive/vehicle"
	"github.com/Alia5/egodrive/wheel"
	"github.com/Alia5/egodrive/wheel/virtual"
)

// HardwareConfig selects the wheel.
type HardwareConfig struct {
	Driver     string `help:"Wheel driver (auto, sdl, g920, virtual, null)" default:"auto" env:"EGODRIVE_WHEEL_DRIVER"`
	DeviceIdx  int    `help:"Index of the wheel on its driver" default:"0" env:"EGODRIVE_WHEEL_DEVICE_IDX"`
	LogUpdates bool   `help:"Log every wheel channel change" default:"false" env:"EGODRIVE_WHEEL_LOG_UPDATES"`
	Exclusive  bool   `help:"Only open wheels, skipping gamepads the driver also sees" default:"false" env:"EGODRIVE_WHEEL_EXCLUSIVE"`
}

// HMDConfig selects the headset runtime and its spectator screen.
type HMDConfig struct {
	Driver                string  `help:"Headset runtime (none, virtual)" default:"none" enum:"none,virtual" env:"EGODRIVE_HMD_DRIVER"`
	WarmupPolls           int     `help:"Polls a virtual headset needs before it reports enabled" default:"3" env:"EGODRIVE_HMD_WARMUP_POLLS"`
	EnableSpectatorScreen bool    `help:"Mirror the headset view with a reticle on the desktop" default:"true" env:"EGODRIVE_HMD_ENABLE_SPECTATOR_SCREEN"`
	ReticleSize           int     `help:"Reticle size in pixels" default:"32" env:"EGODRIVE_HMD_RETICLE_SIZE"`
	RectangularReticle    bool    `help:"Draw a square reticle instead of a crosshair" default:"false" env:"EGODRIVE_HMD_RECTANGULAR_RETICLE"`
	HUDScaleVR            float64 `help:"HUD scale applied while a headset is connected" default:"1.0" env:"EGODRIVE_HMD_HUD_SCALE_VR"`
}

// Drive runs a driving session.
type Drive struct {
	TickRate  time.Duration       `help:"Session tick interval" default:"11ms" env:"EGODRIVE_TICK_RATE"`
	Hardware  HardwareConfig      `embed:"" prefix:"hardware."`
	HMD       HMDConfig           `embed:"" prefix:"hmd."`
	Inputs    vehicle.InputConfig `embed:"" prefix:"vehicle-inputs."`
	Autopilot autopilot.Config    `embed:"" prefix:"autopilot."`
	Takeover  takeover.Config     `embed:"" prefix:"takeover."`
	NDRT      ndrt.Config         `embed:"" prefix:"ndrt."`
	Recorder  recorder.Config     `embed:"" prefix:"recorder."`
	API       api.ServerConfig    `embed:"" prefix:"api."`
	Keyboard  keyboard.Config     `embed:"" prefix:"keyboard."`
}

// Run is called by Kong when the drive command is executed.
func (d *Drive) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.StartDrive(ctx, logger, rawLogger)
}

// StartDrive wires the devices, the session and the control API and blocks
// until ctx ends or the session quits.
func (d *Drive) StartDrive(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	goRun := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTask(ctx, name, fn, logger)
		}()
	}

	driver, err := wheel.Detect(d.Hardware.Driver, logger)
	if err != nil {
		return err
	}
	platform, err := hmd.New(d.HMD.Driver, d.HMD.WarmupPolls)
	if err != nil {
		return err
	}
	ap, err := autopilot.New(d.Autopilot)
	if err != nil {
		return err
	}

	deps := session.Deps{
		Driver:    driver,
		HMD:       platform,
		Autopilot: ap,
		RawLog:    rawLogger,
	}

	if d.NDRT.TTS {
		synth, err := speech.NewSynthesizer(d.NDRT.Synthesizer)
		if err != nil {
			logger.Warn("text-to-speech unavailable, continuing silently", "error", err)
			synth = speech.Null{}
		}
		deps.Speaker = speech.NewSpeaker(synth, 8, logger)
		goRun("speech", deps.Speaker.Run)
	}
	deps.Sounds = soundCues(deps.Speaker, logger)
	deps.Vehicle = vehicle.NewEgoVehicle(d.Inputs, deps.Sounds)
	if d.Autopilot.Engaged {
		deps.Vehicle.SetAutopilot(true)
	}

	if d.NDRT.TextFile != "" {
		task, err := ndrt.Load(d.NDRT.TextFile, d.NDRT.WPM)
		if err != nil {
			return err
		}
		deps.Task = task
		logger.Info("reading task loaded", "file", d.NDRT.TextFile, "words", task.Words(), "duration", task.Duration())
	}

	if d.Takeover.SignalFile != "" {
		link := takeover.Watch(ctx, takeover.File{Path: d.Takeover.SignalFile}, d.Takeover.PollInterval, logger)
		deps.Signal = link
		deps.Signals = link.Signals()
	}

	if d.Keyboard.Enabled {
		restore, err := keyboard.RawTerminal(os.Stdin)
		switch {
		case errors.Is(err, keyboard.ErrNotTerminal):
			logger.Warn("keyboard control disabled", "error", err)
		case err != nil:
			return err
		default:
			defer restore()
			reader := keyboard.NewReader(os.Stdin, keyboard.DefaultKeymap(), logger)
			deps.Keys = reader.Events()
			// The read on stdin cannot be interrupted, so nothing waits for it.
			go runTask(ctx, "keyboard", reader.Run, logger)
		}
	}

	recordTo, err := configpaths.RecordingPath(d.Recorder.Path)
	if err != nil {
		return fmt.Errorf("resolve recording path: %w", err)
	}
	if recordTo != "" {
		logger.Info("recording session", "path", recordTo)
		db, err := recorder.Open(recordTo)
		if err != nil {
			return err
		}
		rec, err := recorder.New(db, d.Recorder, recorder.SessionRecord{Driver: driver.Name()}, logger)
		if err != nil {
			_ = recorder.Close(db)
			return err
		}
		deps.Recorder = rec
		goRun("recorder", func(ctx context.Context) error {
			defer func() { _ = recorder.Close(db) }()
			return rec.Run(ctx)
		})
	}

	s, err := session.New(session.Config{
		TickRate: d.TickRate,
		Monitor: input.MonitorConfig{
			DeviceIdx:          d.Hardware.DeviceIdx,
			Exclusive:          d.Hardware.Exclusive,
			SpectatorScreen:    d.HMD.EnableSpectatorScreen,
			ReticleSize:        d.HMD.ReticleSize,
			RectangularReticle: d.HMD.RectangularReticle,
			HUDScaleVR:         d.HMD.HUDScaleVR,
		},
		LogUpdates:     d.Hardware.LogUpdates,
		KeyHold:        d.Keyboard.HoldTime,
		KeyRepeatDelay: d.Keyboard.RepeatDelay,
		NDRTWPM:        d.NDRT.WPM,
		NDRTSpeak:      d.NDRT.TTS,
	}, deps, logger)
	if err != nil {
		return err
	}

	if d.API.Addr != "" {
		apiSrv, err := d.startAPI(s, driver, logger)
		if err != nil {
			logger.Error("failed to start API server", "error", err)
			if util.IsRunFromGUI() {
				fmt.Println("Press any key to exit...")
				b := make([]byte, 1)
				_, _ = os.Stdin.Read(b)
			}
			return err
		}
		defer apiSrv.Close()
	}

	logger.Info("driving session ready", "wheel_driver", driver.Name(), "hmd", d.HMD.Driver, "autopilot", ap.Name())
	return s.Run(ctx)
}

func (d *Drive) startAPI(s *session.Session, driver wheel.Driver, logger *slog.Logger) (*api.Server, error) {
	cfg := d.API
	if err := resolveAPIPassword(&cfg, logger); err != nil {
		return nil, err
	}
	apiSrv, err := api.New(cfg.Addr, cfg, logger)
	if err != nil {
		return nil, err
	}
	r := apiSrv.Router()
	r.Register("ping", handler.Ping(version()))
	r.Register("vehicle/state", handler.VehicleState(s))
	r.Register("devices", handler.Devices(s))
	r.Register("autopilot/set", handler.AutopilotSet(s))
	r.Register("takeover/{action}", handler.Takeover(s))
	r.Register("speak", handler.Speak(s.Speaker(), d.NDRT.WPM))
	r.Register("camera/look", handler.CameraLook(s))
	r.Register("camera/{direction}", handler.Camera(s))
	r.RegisterStream("autopilot/stream", handler.AutopilotStream(s))
	if vd, ok := driver.(*virtual.Driver); ok {
		r.RegisterStream("wheel/{index}", virtual.StreamHandler(vd))
	}
	if err := apiSrv.Start(); err != nil {
		return nil, err
	}
	if util.IsRunFromGUI() {
		go func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		}()
	}
	return apiSrv, nil
}

// soundCues logs every cue and reads the take-over alert aloud when a
// speaker is available.
func soundCues(sp *speech.Speaker, logger *slog.Logger) vehicle.Sounds {
	logger = logger.With("component", "sounds")
	return vehicle.SoundFunc(func(s vehicle.Sound) {
		logger.Debug("sound cue", "sound", s.String())
		if s == vehicle.SoundTORAlert && sp != nil {
			sp.Say(speech.Utterance{Text: "Take over"})
		}
	})
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// runTask runs fn until it returns and logs its failure.
func runTask(ctx context.Context, name string, fn func(context.Context) error, logger *slog.Logger) {
	if err := fn(ctx); err != nil {
		logger.Error("background task failed", "task", name, "error", err)
	}
}
