package drone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Link is the FlightController implementation over the flight bridge daemon.
// The connected flag makes Disconnect safe to call from cleanup paths that
// may run after an earlier failure.
type Link struct {
	baseURL      string
	uri          string
	flyingHeight float64
	client       *http.Client

	mu        sync.Mutex
	connected bool
}

// NewLink creates a flight link client. uri is the Crazyflie radio address
// the bridge should open; flyingHeight is the take-off hover height in meters.
func NewLink(baseURL, uri string, flyingHeight float64) *Link {
	return &Link{
		baseURL:      baseURL,
		uri:          uri,
		flyingHeight: flyingHeight,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Connect opens the radio link. No-op when already connected.
func (l *Link) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.connected {
		return nil
	}

	payload := map[string]any{
		"uri":           l.uri,
		"flying_height": l.flyingHeight,
	}
	if err := l.post(ctx, "/api/link/connect", payload); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	l.connected = true
	return nil
}

// Disconnect closes the radio link. No-op when already closed.
func (l *Link) Disconnect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		return nil
	}
	if err := l.post(ctx, "/api/link/disconnect", nil); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	l.connected = false
	return nil
}

// Connected reports the link state.
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// TakeOff lifts the drone to the configured hover height.
func (l *Link) TakeOff(ctx context.Context) error {
	if !l.Connected() {
		return ErrNotConnected
	}
	if err := l.post(ctx, "/api/motion/takeoff", nil); err != nil {
		return fmt.Errorf("take off: %w", err)
	}
	return nil
}

// Turn yaws the drone in place by the given number of degrees.
func (l *Link) Turn(ctx context.Context, dir Direction, degrees float64) error {
	if !l.Connected() {
		return ErrNotConnected
	}
	payload := map[string]any{
		"direction": string(dir),
		"degrees":   degrees,
	}
	if err := l.post(ctx, "/api/motion/turn", payload); err != nil {
		return fmt.Errorf("turn %s: %w", dir, err)
	}
	return nil
}

// Land brings the drone down from hover.
func (l *Link) Land(ctx context.Context) error {
	if !l.Connected() {
		return ErrNotConnected
	}
	if err := l.post(ctx, "/api/motion/land", nil); err != nil {
		return fmt.Errorf("land: %w", err)
	}
	return nil
}

func (l *Link) post(ctx context.Context, path string, payload any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge error: %s returned status %d", path, resp.StatusCode)
	}
	return nil
}

// MultirangerDeck is the Ranger implementation over the flight bridge.
type MultirangerDeck struct {
	baseURL string
	client  *http.Client
}

// NewMultirangerDeck creates a ranging deck client against the same bridge
// the flight link uses. The deck shares the radio link but never contends
// with motion commands for it; the bridge serializes the two streams.
func NewMultirangerDeck(baseURL string) *MultirangerDeck {
	return &MultirangerDeck{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start powers up the ranging deck.
func (m *MultirangerDeck) Start(ctx context.Context) error {
	if err := m.post(ctx, "/api/multiranger/start"); err != nil {
		return fmt.Errorf("start multiranger: %w", err)
	}
	return nil
}

// Read fetches the current five-channel distances.
func (m *MultirangerDeck) Read(ctx context.Context) (Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/multiranger", nil)
	if err != nil {
		return Reading{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("multiranger read failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("bridge error: multiranger read returned status %d", resp.StatusCode)
	}

	var reading Reading
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		return Reading{}, fmt.Errorf("failed to decode reading: %w", err)
	}
	return reading, nil
}

// Close stops the ranging deck.
func (m *MultirangerDeck) Close(ctx context.Context) error {
	if err := m.post(ctx, "/api/multiranger/stop"); err != nil {
		return fmt.Errorf("stop multiranger: %w", err)
	}
	return nil
}

func (m *MultirangerDeck) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge error: %s returned status %d", path, resp.StatusCode)
	}
	return nil
}

var (
	_ FlightController = (*Link)(nil)
	_ Ranger           = (*MultirangerDeck)(nil)
)
