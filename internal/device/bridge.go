package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Bridge talks to the device bridge daemon over its HTTP API.
type Bridge struct {
	baseURL string
	client  *http.Client
}

// NewBridge creates a bridge client for the given daemon base URL.
func NewBridge(baseURL string) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (b *Bridge) postJSON(ctx context.Context, path string, payload, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, out)
}

func (b *Bridge) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return b.do(req, out)
}

func (b *Bridge) do(req *http.Request, out any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge error: %s returned status %d", req.URL.Path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode bridge response: %w", err)
		}
	}
	return nil
}

// LEDBank is the ActuatorGateway implementation over the bridge.
type LEDBank struct {
	bridge *Bridge
}

// NewLEDBank creates the LED actuator gateway.
func NewLEDBank(bridge *Bridge) *LEDBank {
	return &LEDBank{bridge: bridge}
}

// Name implements Sensor.
func (l *LEDBank) Name() string { return "LED Bank" }

// Configure implements Sensor.
func (l *LEDBank) Configure(ctx context.Context) error {
	return l.bridge.postJSON(ctx, "/api/leds/configure", nil, nil)
}

// SetLEDs writes all three LED channels.
func (l *LEDBank) SetLEDs(ctx context.Context, state LEDState) error {
	return l.bridge.postJSON(ctx, "/api/leds/set", state, nil)
}

// LEDs reads the current LED state back from the bridge.
func (l *LEDBank) LEDs(ctx context.Context) (LEDState, error) {
	var state LEDState
	if err := l.bridge.getJSON(ctx, "/api/leds", &state); err != nil {
		return LEDState{}, err
	}
	return state, nil
}

// PIRMotionDetector reads the PIR sensor through the bridge.
type PIRMotionDetector struct {
	bridge *Bridge
}

// NewPIRMotionDetector creates the motion sensor gateway.
func NewPIRMotionDetector(bridge *Bridge) *PIRMotionDetector {
	return &PIRMotionDetector{bridge: bridge}
}

// Name implements Sensor.
func (p *PIRMotionDetector) Name() string { return "PIR HC-SR501" }

// Configure implements Sensor.
func (p *PIRMotionDetector) Configure(ctx context.Context) error {
	return p.bridge.postJSON(ctx, "/api/motion/configure", nil, nil)
}

// ReadMotion blocks up to timeout on the bridge side and reports whether
// motion was detected.
func (p *PIRMotionDetector) ReadMotion(ctx context.Context, timeout time.Duration) (bool, error) {
	path := fmt.Sprintf("/api/motion?timeout=%g", timeout.Seconds())
	var out struct {
		Motion bool `json:"motion"`
	}
	if err := p.bridge.getJSON(ctx, path, &out); err != nil {
		return false, err
	}
	return out.Motion, nil
}

var (
	_ ActuatorGateway = (*LEDBank)(nil)
	_ MotionSensor    = (*PIRMotionDetector)(nil)
	_ Sensor          = (*LEDBank)(nil)
	_ Sensor          = (*PIRMotionDetector)(nil)
)
