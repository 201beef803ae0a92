package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eduard0Castro/smart-inspection/internal/device"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Instruction
	}{
		{
			name: "plain json",
			raw:  `{"message": "yellow on", "leds": {"red_led": false, "yellow_led": true, "green_led": false}}`,
			want: Instruction{
				Message: "yellow on",
				LEDs:    &device.LEDState{Yellow: true},
			},
		},
		{
			name: "missing led fields default to false",
			raw:  `{"message": "info only"}`,
			want: Instruction{
				Message: "info only",
				LEDs:    &device.LEDState{},
			},
		},
		{
			name: "missing message gets a placeholder",
			raw:  `{"leds": {"green_led": true}}`,
			want: Instruction{
				Message: "No response provided.",
				LEDs:    &device.LEDState{Green: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReply(tt.raw)
			assert.Equal(t, tt.want.Message, got.Message)
			assert.Equal(t, tt.want.LEDs, got.LEDs)
			assert.Nil(t, got.MotionDetected)
		})
	}
}

func TestParseReplyMotionFlag(t *testing.T) {
	got := ParseReply(`{"message": "MOTION DETECTED", "leds": {"red_led": true}, "motion_detected": true}`)
	require.NotNil(t, got.MotionDetected)
	assert.True(t, *got.MotionDetected)

	got = ParseReply(`{"message": "MOTION NOT DETECTED", "motion_detected": false}`)
	require.NotNil(t, got.MotionDetected)
	assert.False(t, *got.MotionDetected)
}

func TestParseReplyFencedEqualsUnfenced(t *testing.T) {
	body := `{"message": "hello", "leds": {"red_led": true, "yellow_led": false, "green_led": true}, "motion_detected": false}`
	fenced := "```json\n" + body + "\n```"
	plainFence := "```\n" + body + "\n```"

	want := ParseReply(body)
	assert.Equal(t, want, ParseReply(fenced))
	assert.Equal(t, want, ParseReply(plainFence))
}

func TestParseReplyFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "free text", raw: "Sure, I turned the LED on!"},
		{name: "truncated json", raw: `{"message": "oops"`},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReply(tt.raw)
			assert.Equal(t, FallbackMessage, got.Message)
			// LEDs stay untouched on a parse failure.
			assert.Nil(t, got.LEDs)
			assert.Nil(t, got.MotionDetected)
		})
	}
}

func TestWantsInspectionTool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"fly the drone around the room", true},
		{"start a Crazyflie inspection", true},
		{"run the INSPECTION now", true},
		{"turn on the yellow led", false},
		{"what is the motion status?", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, wantsInspectionTool(tt.input))
		})
	}
}
