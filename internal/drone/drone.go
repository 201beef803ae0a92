// Package drone defines the flight control and ranging deck contracts for the
// Crazyflie and implements them against the flight bridge daemon, which wraps
// the radio link and the motion commander.
package drone

import (
	"context"
	"errors"
)

// Turn directions for the fixed inspection maneuver.
type Direction string

const (
	Clockwise        Direction = "clockwise"
	CounterClockwise Direction = "counterclockwise"
)

// ErrNotConnected is returned by flight commands issued before Connect.
var ErrNotConnected = errors.New("drone: link not connected")

// FlightController drives the drone over an open link. Connect and Disconnect
// manage the link lifecycle; both are no-ops when already in the target state.
type FlightController interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	TakeOff(ctx context.Context) error
	Turn(ctx context.Context, dir Direction, degrees float64) error
	Land(ctx context.Context) error
}

// Reading is one raw multiranger sample. A nil channel means the sensor had
// no value for that direction (still warming up, or a transient failure).
type Reading struct {
	Front *float64 `json:"front"`
	Back  *float64 `json:"back"`
	Right *float64 `json:"right"`
	Left  *float64 `json:"left"`
	Up    *float64 `json:"up"`
}

// Complete reports whether all five channels carry a value.
func (r Reading) Complete() bool {
	return r.Front != nil && r.Back != nil && r.Right != nil && r.Left != nil && r.Up != nil
}

// Values returns the five distances in front, back, right, left, up order.
// Only valid when Complete.
func (r Reading) Values() [5]float64 {
	return [5]float64{*r.Front, *r.Back, *r.Right, *r.Left, *r.Up}
}

// Ranger is the five-directional ranging deck. Start powers the deck up after
// the link is open; Close stops it before landing.
type Ranger interface {
	Start(ctx context.Context) error
	Read(ctx context.Context) (Reading, error)
	Close(ctx context.Context) error
}
