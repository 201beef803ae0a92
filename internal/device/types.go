// Package device defines the gateway contracts for the room hardware (LED
// bank and motion detector) and an HTTP implementation backed by the device
// bridge daemon that owns the GPIO pins.
package device

import (
	"context"
	"time"
)

// LEDState is the state of the three status LEDs. The bridge daemon owns the
// truth; callers never cache this beyond a single snapshot.
type LEDState struct {
	Red    bool `json:"red"`
	Yellow bool `json:"yellow"`
	Green  bool `json:"green"`
}

// Sensor is the capability contract every physical device implements.
// The concrete set is closed at construction; nothing downstream inspects
// device types at runtime.
type Sensor interface {
	Name() string
	Configure(ctx context.Context) error
}

// ActuatorGateway controls the LED bank. Set is an unconditional write of all
// three channels and is idempotent.
type ActuatorGateway interface {
	SetLEDs(ctx context.Context, state LEDState) error
	LEDs(ctx context.Context) (LEDState, error)
}

// MotionSensor reads the PIR motion detector. The read blocks up to timeout
// waiting for motion and reports whether any was seen.
type MotionSensor interface {
	ReadMotion(ctx context.Context, timeout time.Duration) (bool, error)
}
