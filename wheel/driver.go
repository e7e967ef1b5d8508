package wheel

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Driver is the capability surface of a steering wheel backend.
// Implementations must not block: every call is made from the tick loop.
type Driver interface {
	// Name returns the registry name of the driver.
	Name() string
	// Initialize prepares the backend. It is safe to call repeatedly.
	Initialize(exclusive bool) error
	IsConnected(idx int) bool
	// Update refreshes the cached device state. It returns false when the
	// backend failed to read new data.
	Update() bool
	// State returns the most recent sample for device idx.
	State(idx int) (RawWheelSample, bool)
	FriendlyName(idx int) (string, error)
	HasForceFeedback(idx int) bool
	// PlaySpringForce starts or updates a centring spring. All values are percentages.
	PlaySpringForce(idx, offsetPct, saturationPct, coeffPct int) error
	StopSpringForce(idx int) error
	Shutdown()
}

// DriverRegistration describes a driver backend that can be selected at startup.
type DriverRegistration interface {
	// CreateDriver returns a new driver instance.
	CreateDriver(logger *slog.Logger) Driver
	// Available reports whether the backend can be used on this machine.
	Available() bool
}

// Default probe order used by Detect when no driver is named.
var probeOrder = []string{"sdl", "g920", "virtual"}

var (
	driverRegistry   = make(map[string]DriverRegistration)
	driverRegistryMu sync.RWMutex
)

// ErrUnknownDriver is returned by Detect for a name nothing registered.
var ErrUnknownDriver = errors.New("unknown wheel driver")

// RegisterDriver registers a driver backend. Call it from init().
// The name is case-insensitive.
func RegisterDriver(name string, reg DriverRegistration) {
	driverRegistryMu.Lock()
	defer driverRegistryMu.Unlock()
	driverRegistry[strings.ToLower(name)] = reg
}

// GetDriver returns the registration for name, or nil.
func GetDriver(name string) DriverRegistration {
	driverRegistryMu.RLock()
	defer driverRegistryMu.RUnlock()
	return driverRegistry[strings.ToLower(name)]
}

// ListDrivers returns the sorted names of all registered drivers.
func ListDrivers() []string {
	driverRegistryMu.RLock()
	defer driverRegistryMu.RUnlock()
	names := make([]string, 0, len(driverRegistry))
	for name := range driverRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect creates the driver named by preferred. With "auto" (or "") the
// hardware backends are probed in order and the first available one wins;
// the null driver is returned when nothing else is usable.
func Detect(preferred string, logger *slog.Logger) (Driver, error) {
	preferred = strings.ToLower(preferred)
	if preferred != "" && preferred != "auto" {
		reg := GetDriver(preferred)
		if reg == nil {
			return nil, fmt.Errorf("%w: %s (registered: %s)", ErrUnknownDriver, preferred, strings.Join(ListDrivers(), ", "))
		}
		if !reg.Available() {
			logger.Warn("wheel driver reports unavailable, using it anyway", "driver", preferred)
		}
		return reg.CreateDriver(logger), nil
	}

	for _, name := range probeOrder {
		reg := GetDriver(name)
		if reg == nil {
			continue
		}
		if !reg.Available() {
			logger.Debug("wheel driver not available", "driver", name)
			continue
		}
		logger.Info("selected wheel driver", "driver", name)
		return reg.CreateDriver(logger), nil
	}
	logger.Warn("no wheel driver available, falling back to null driver")
	return NewNull(), nil
}
