package input

// DeviceKind identifies a monitored device.
type DeviceKind int

const (
	DeviceHMD DeviceKind = iota
	DeviceWheel
)

func (k DeviceKind) String() string {
	if k == DeviceHMD {
		return "hmd"
	}
	return "wheel"
}

// ConnState is the connection state of a device.
type ConnState int

const (
	Unavailable ConnState = iota
	Available
)

func (s ConnState) String() string {
	if s == Available {
		return "available"
	}
	return "unavailable"
}

// DeviceConnection is the monitor's view of one device.
type DeviceConnection struct {
	Kind  DeviceKind
	State ConnState
	// LastCheckedTick is the tick of the most recent poll.
	LastCheckedTick uint64
	// Name is the friendly name reported on connection.
	Name string
	// ForceFeedback is set for wheels that support the spring effect.
	ForceFeedback bool
}

// Connected reports whether the device is available.
func (c DeviceConnection) Connected() bool { return c.State == Available }
