package wheel

import (
	"errors"
	"log/slog"
)

func init() {
	RegisterDriver("null", nullRegistration{})
}

type nullRegistration struct{}

func (nullRegistration) CreateDriver(*slog.Logger) Driver { return NewNull() }
func (nullRegistration) Available() bool { return true }

// Null is a driver without any device. Used when no wheel backend is usable.
type Null struct{}

// NewNull returns a driver that never reports a connected device.
func NewNull() *Null { return &Null{} }

func (*Null) Name() string { return "null" }
func (*Null) Initialize(bool) error { return nil }
func (*Null) IsConnected(int) bool { return false }
func (*Null) Update() bool { return true }
func (*Null) State(int) (RawWheelSample, bool) { return RawWheelSample{}, false }
func (*Null) FriendlyName(int) (string, error) { return "", errors.New("no device") }
func (*Null) HasForceFeedback(int) bool { return false }
func (*Null) PlaySpringForce(int, int, int, int) error { return nil }
func (*Null) StopSpringForce(int) error { return nil }
func (*Null) Shutdown() {}
