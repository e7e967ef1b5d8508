//go:build sdl

package sdlwheel

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Alia5/egodrive/wheel"
)

func init() {
	wheel.RegisterDriver("sdl", registration{})
}

type registration struct{}

func (registration) CreateDriver(logger *slog.Logger) wheel.Driver { return New(logger) }

func (registration) Available() bool {
	if err := sdl.InitSubSystem(sdl.INIT_JOYSTICK); err != nil {
		return false
	}
	return sdl.NumJoysticks() > 0
}

type device struct {
	joy    *sdl.Joystick
	haptic *sdl.Haptic
	effect int
	force  wheel.ForceState
	sample wheel.RawWheelSample
}

// Driver reads SDL joysticks and renders the spring with an SDL haptic
// condition effect. SDL must be used from a single thread; the tick loop is
// the only caller.
//
// Devices are keyed by SDL instance ID. Wheel index i is whatever SDL lists
// at device index i on the last Initialize.
type Driver struct {
	mu      sync.Mutex
	logger  *slog.Logger
	started bool
	devices map[sdl.JoystickID]*device
	slots   []sdl.JoystickID
}

// New returns a driver; SDL is started on the first Initialize.
func New(logger *slog.Logger) *Driver {
	return &Driver{logger: logger.With("driver", "sdl"), devices: make(map[sdl.JoystickID]*device)}
}

func (d *Driver) Name() string { return "sdl" }

// Initialize starts SDL and opens new joysticks. With exclusive set,
// devices SDL maps as gamepads are skipped and only wheels get an index.
func (d *Driver) Initialize(exclusive bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		if err := sdl.Init(sdl.INIT_JOYSTICK | sdl.INIT_GAMECONTROLLER | sdl.INIT_HAPTIC); err != nil {
			return fmt.Errorf("sdl init: %w", err)
		}
		d.started = true
	}
	// Nothing else pumps SDL events, so hotplugs only show up after this.
	sdl.JoystickUpdate()

	var indices []int
	var enumerated []int32
	for i := 0; i < sdl.NumJoysticks(); i++ {
		if exclusive && sdl.IsGameController(i) {
			continue
		}
		indices = append(indices, i)
		enumerated = append(enumerated, int32(sdl.JoystickGetDeviceInstanceID(i)))
	}
	open := make(map[int32]bool, len(d.devices))
	for id := range d.devices {
		open[int32(id)] = true
	}
	toOpen, stale := Reconcile(enumerated, open)
	for _, id := range stale {
		d.closeDevice(sdl.JoystickID(id))
	}
	for _, pos := range toOpen {
		i := indices[pos]
		joy := sdl.JoystickOpen(i)
		if joy == nil {
			continue
		}
		dev := &device{joy: joy, effect: -1, sample: wheel.DefaultingSample()}
		if h, err := sdl.HapticOpenFromJoystick(joy); err == nil {
			dev.haptic = h
		}
		d.logger.Debug("opened joystick", "index", i, "instance", joy.InstanceID(), "name", joy.Name(), "haptic", dev.haptic != nil)
		d.devices[joy.InstanceID()] = dev
	}

	d.slots = d.slots[:0]
	for _, id := range enumerated {
		d.slots = append(d.slots, sdl.JoystickID(id))
	}
	return nil
}

// device looks up the joystick behind wheel index idx.
func (d *Driver) device(idx int) (*device, bool) {
	if idx < 0 || idx >= len(d.slots) {
		return nil, false
	}
	dev, ok := d.devices[d.slots[idx]]
	return dev, ok
}

func (d *Driver) IsConnected(idx int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.device(idx)
	if !ok {
		return false
	}
	if !dev.joy.Attached() {
		d.closeDevice(d.slots[idx])
		return false
	}
	return true
}

func (d *Driver) Update() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return false
	}
	sdl.JoystickUpdate()
	for _, dev := range d.devices {
		f := Frame{
			Axes:    make([]int16, dev.joy.NumAxes()),
			Hats:    make([]uint8, dev.joy.NumHats()),
			Buttons: make([]uint8, dev.joy.NumButtons()),
		}
		for i := range f.Axes {
			f.Axes[i] = dev.joy.Axis(i)
		}
		for i := range f.Hats {
			f.Hats[i] = dev.joy.Hat(i)
		}
		for i := range f.Buttons {
			f.Buttons[i] = dev.joy.Button(i)
		}
		dev.sample = f.Sample()
	}
	return true
}

func (d *Driver) State(idx int) (wheel.RawWheelSample, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.device(idx)
	if !ok {
		return wheel.RawWheelSample{}, false
	}
	return dev.sample, true
}

func (d *Driver) FriendlyName(idx int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.device(idx)
	if !ok {
		return "", fmt.Errorf("no joystick on index %d", idx)
	}
	return dev.joy.Name(), nil
}

func (d *Driver) HasForceFeedback(idx int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.device(idx)
	return ok && dev.haptic != nil
}

func (d *Driver) PlaySpringForce(idx, offsetPct, saturationPct, coeffPct int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.device(idx)
	if !ok || dev.haptic == nil {
		return fmt.Errorf("no haptic device on index %d", idx)
	}
	f := wheel.SpringForce(offsetPct, saturationPct, coeffPct)
	if dev.effect >= 0 && dev.force == f {
		return nil
	}

	sp := SpringParams(f)
	cond := &sdl.HapticCondition{
		Type:       sdl.HAPTIC_SPRING,
		Length:     sdl.HAPTIC_INFINITY,
		RightSat:   [3]uint16{sp.Saturation},
		LeftSat:    [3]uint16{sp.Saturation},
		RightCoeff: [3]int16{sp.Coeff},
		LeftCoeff:  [3]int16{sp.Coeff},
		Center:     [3]int16{sp.Center},
	}
	if dev.effect < 0 {
		id, err := dev.haptic.NewEffect(cond)
		if err != nil {
			return fmt.Errorf("create spring effect: %w", err)
		}
		dev.effect = id
	} else if err := dev.haptic.UpdateEffect(dev.effect, cond); err != nil {
		return fmt.Errorf("update spring effect: %w", err)
	}
	if err := dev.haptic.RunEffect(dev.effect, 1); err != nil {
		return fmt.Errorf("run spring effect: %w", err)
	}
	dev.force = f
	return nil
}

func (d *Driver) StopSpringForce(idx int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.device(idx)
	if !ok || dev.haptic == nil || dev.effect < 0 || !dev.force.Active {
		return nil
	}
	if err := dev.haptic.StopEffect(dev.effect); err != nil {
		return fmt.Errorf("stop spring effect: %w", err)
	}
	dev.force = wheel.ForceState{}
	return nil
}

func (d *Driver) closeDevice(id sdl.JoystickID) {
	dev, ok := d.devices[id]
	if !ok {
		return
	}
	if dev.haptic != nil {
		if dev.effect >= 0 {
			dev.haptic.DestroyEffect(dev.effect)
		}
		dev.haptic.Close()
	}
	dev.joy.Close()
	delete(d.devices, id)
	d.logger.Debug("closed joystick", "instance", id)
}

func (d *Driver) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id := range d.devices {
		d.closeDevice(id)
	}
	d.slots = nil
	if d.started {
		sdl.QuitSubSystem(sdl.INIT_JOYSTICK | sdl.INIT_GAMECONTROLLER | sdl.INIT_HAPTIC)
		d.started = false
	}
}
