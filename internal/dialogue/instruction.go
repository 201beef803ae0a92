package dialogue

import (
	"encoding/json"
	"strings"

	"github.com/Eduard0Castro/smart-inspection/internal/device"
)

// FallbackMessage is shown when the assistant reply cannot be parsed.
const FallbackMessage = "Error: could not parse assistant response."

// Instruction is the validated form of a structured assistant reply. LEDs is
// nil only for the parse-failure fallback, in which case the physical LEDs
// are left untouched. MotionDetected is absent unless the model set it.
type Instruction struct {
	Message        string
	LEDs           *device.LEDState
	MotionDetected *bool
}

type replyPayload struct {
	Message string `json:"message"`
	LEDs    struct {
		Red    bool `json:"red_led"`
		Yellow bool `json:"yellow_led"`
		Green  bool `json:"green_led"`
	} `json:"leds"`
	MotionDetected *bool `json:"motion_detected"`
}

// ParseReply validates a raw assistant reply into an Instruction. The reply
// may arrive wrapped in a fenced code block; the fence is stripped before the
// JSON is parsed. Missing fields default to false or absent. A reply that
// fails to parse yields the fallback instruction instead of an error.
func ParseReply(raw string) Instruction {
	cleaned := stripFence(raw)

	var payload replyPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Instruction{Message: FallbackMessage}
	}

	message := payload.Message
	if message == "" {
		message = "No response provided."
	}

	return Instruction{
		Message: message,
		LEDs: &device.LEDState{
			Red:    payload.LEDs.Red,
			Yellow: payload.LEDs.Yellow,
			Green:  payload.LEDs.Green,
		},
		MotionDetected: payload.MotionDetected,
	}
}

// stripFence removes a surrounding ``` or ```json code fence, leaving the
// body untouched. Unfenced input passes through unchanged.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 2 {
		text = strings.Join(lines[1:len(lines)-1], "\n")
	}
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
