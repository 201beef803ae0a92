package dialogue

import (
	"fmt"
	"io"
	"strings"

	"github.com/Eduard0Castro/smart-inspection/internal/device"
	"github.com/Eduard0Castro/smart-inspection/internal/llm"
)

// ToolStartInspection is the single capability the engine may advertise.
const ToolStartInspection = "start_inspection"

// triggerWords gate the inspection tool: the tool is advertised for a turn
// only when the lowercased input contains one of these.
var triggerWords = []string{"crazyflie", "drone", "fly", "inspection"}

// systemMessage sets the assistant contract: JSON-only replies with message,
// LED states and the motion flag, and the inspection tool reserved for
// explicit user requests.
const systemMessage = `You are an IoT assistant controlling an environmental monitoring
setup in a room with a motion sensor, three status LEDs and an inspection drone.

Respond with JSON only:
{"message": "your helpful response", "leds": {"red_led": bool,
 "yellow_led": bool, "green_led": bool}, "motion_detected": bool}

RULES:
- Information queries: keep current LED states unchanged
- LED commands: update LEDs as requested
- Only ONE LED should be on at a time UNLESS the user explicitly says "all"
- Be concise and conversational
- Questions about motion sensor data: answer ONLY with MOTION DETECTED or
  MOTION NOT DETECTED and set motion_detected to true.
- If the user EXPLICITLY requests a drone inspection (examples: "start drone
  inspection", "fly the drone", "run crazyflie inspection"), you MUST call the
  start_inspection function instead of replying JSON. Without an explicit user
  request, DO NOT call the function!

For LED and sensor operations ALWAYS RESPOND with valid JSON containing both
"message" and "leds" fields.`

// inspectionTool is the zero-argument capability declaration attached to a
// request only on turns whose input matches a trigger word.
var inspectionTool = llm.NewFunctionTool(
	ToolStartInspection,
	"Starts the autonomous drone room inspection when the user explicitly asks for it.",
)

// wantsInspectionTool reports whether the inspection capability should be
// advertised for this turn. Re-evaluated every turn, never sticky.
func wantsInspectionTool(input string) bool {
	msg := strings.ToLower(input)
	for _, word := range triggerWords {
		if strings.Contains(msg, word) {
			return true
		}
	}
	return false
}

func onOff(lit bool) string {
	if lit {
		return "ON"
	}
	return "OFF"
}

func motionLabel(motion bool) string {
	if motion {
		return "DETECTED"
	}
	return "NOT DETECTED"
}

// statusPreamble wraps the raw user input with a snapshot of the physical
// state so the model answers against sensor truth rather than memory.
func statusPreamble(motion bool, leds device.LEDState, input string) string {
	return fmt.Sprintf(
		"STATUS:\nMotion=%s\nLEDs: R=%s/Y=%s/G=%s\nUSER: %s",
		motionLabel(motion),
		onOff(leds.Red), onOff(leds.Yellow), onOff(leds.Green),
		input,
	)
}

func ledGlyph(lit bool) string {
	if lit {
		return "●"
	}
	return "○"
}

// RenderStatus prints the human-readable status snapshot for the `status`
// console command.
func RenderStatus(w io.Writer, motion bool, leds device.LEDState) {
	divider := strings.Repeat("=", 60)
	fmt.Fprintln(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, "SYSTEM STATUS")
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "Motion:        %s\n", motionLabel(motion))
	fmt.Fprintln(w, "\nLED Status:")
	fmt.Fprintf(w, "  Red LED:    %s %s\n", ledGlyph(leds.Red), onOff(leds.Red))
	fmt.Fprintf(w, "  Yellow LED: %s %s\n", ledGlyph(leds.Yellow), onOff(leds.Yellow))
	fmt.Fprintf(w, "  Green LED:  %s %s\n", ledGlyph(leds.Green), onOff(leds.Green))
	fmt.Fprintln(w, divider)
}

// printBanner shows the interactive mode instructions.
func printBanner(w io.Writer, model string) {
	divider := strings.Repeat("=", 60)
	fmt.Fprintln(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, "Smart Inspection System - Interactive Mode")
	fmt.Fprintf(w, "Using model: %s\n", model)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, "\nCommands you can try:")
	fmt.Fprintln(w, "  - Turn on the yellow LED")
	fmt.Fprintln(w, "  - Turn on all LEDs")
	fmt.Fprintln(w, "  - Turn off all LEDs")
	fmt.Fprintln(w, "  - Type 'status' to see system status")
	fmt.Fprintln(w, "  - For a drone inspection, mention 'drone', 'crazyflie' or 'fly'")
	fmt.Fprintln(w, "  - Type 'exit' or 'quit' to stop")
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w)
}
