package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLEDBankSetLEDs(t *testing.T) {
	var gotPath string
	var gotState LEDState
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotState))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	leds := NewLEDBank(NewBridge(srv.URL))
	err := leds.SetLEDs(context.Background(), LEDState{Yellow: true})
	require.NoError(t, err)

	assert.Equal(t, "/api/leds/set", gotPath)
	assert.Equal(t, LEDState{Yellow: true}, gotState)
}

func TestLEDBankReadsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leds", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"red_led": true, "yellow_led": false, "green_led": true}`))
	}))
	defer srv.Close()

	leds := NewLEDBank(NewBridge(srv.URL))
	state, err := leds.LEDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LEDState{Red: true, Green: true}, state)
}

func TestLEDBankBridgeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gpio busy", http.StatusInternalServerError)
	}))
	defer srv.Close()

	leds := NewLEDBank(NewBridge(srv.URL))
	err := leds.SetLEDs(context.Background(), LEDState{Red: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestPIRMotionDetectorReadMotion(t *testing.T) {
	var gotTimeout string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/motion", r.URL.Path)
		gotTimeout = r.URL.Query().Get("timeout")
		w.Write([]byte(`{"motion": true}`))
	}))
	defer srv.Close()

	pir := NewPIRMotionDetector(NewBridge(srv.URL))
	motion, err := pir.ReadMotion(context.Background(), 5*time.Second)
	require.NoError(t, err)

	assert.True(t, motion)
	assert.Equal(t, "5", gotTimeout)
}

func TestConfigureEndpoints(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	bridge := NewBridge(srv.URL)
	require.NoError(t, NewLEDBank(bridge).Configure(context.Background()))
	require.NoError(t, NewPIRMotionDetector(bridge).Configure(context.Background()))

	assert.Equal(t, []string{"/api/leds/configure", "/api/motion/configure"}, paths)
}

func TestBridgeContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	pir := NewPIRMotionDetector(NewBridge(srv.URL))
	_, err := pir.ReadMotion(ctx, time.Second)
	require.Error(t, err)
}
