// Package dialogue drives the conversational control loop: one user turn at a
// time, status-augmented prompting, capability gating, and reconciliation of
// model-issued intents with the physical devices.
package dialogue

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Eduard0Castro/smart-inspection/internal/device"
	"github.com/Eduard0Castro/smart-inspection/internal/inspection"
	"github.com/Eduard0Castro/smart-inspection/internal/llm"
)

// maxHistory caps the dialogue history: one system message plus the last
// eight user/assistant entries. The truncation is lossy and one-way.
const maxHistory = 9

// resultSignalHold is how long the pass/fail LED is held after a run.
const resultSignalHold = 5 * time.Second

// ChatClient is the slice of the chat API the engine needs.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.ChatResponse, error)
	Preload(ctx context.Context) error
	Model() string
}

// Inspector runs one inspection and reports the outcome.
type Inspector interface {
	Run(ctx context.Context) (*inspection.Result, error)
}

// Params collects the engine's collaborators.
type Params struct {
	Chat          ChatClient
	Inspector     Inspector
	LEDs          device.ActuatorGateway
	Motion        device.MotionSensor
	MotionTimeout time.Duration
	Logger        *zap.Logger
	Input         io.Reader
	Output        io.Writer
}

// Engine is the turn-based conversational loop. Turns are processed strictly
// one at a time; an inspection blocks the conversation for its whole
// duration.
type Engine struct {
	chat          ChatClient
	inspector     Inspector
	leds          device.ActuatorGateway
	motion        device.MotionSensor
	motionTimeout time.Duration
	logger        *zap.Logger
	out           io.Writer
	scanner       *bufio.Scanner
	history       []llm.Message
	signalHold    time.Duration
}

// NewEngine creates a dialogue engine. Input and Output default to the
// process's stdin/stdout.
func NewEngine(p Params) *Engine {
	if p.Input == nil {
		p.Input = os.Stdin
	}
	if p.Output == nil {
		p.Output = os.Stdout
	}
	if p.MotionTimeout <= 0 {
		p.MotionTimeout = 5 * time.Second
	}

	return &Engine{
		chat:          p.Chat,
		inspector:     p.Inspector,
		leds:          p.LEDs,
		motion:        p.Motion,
		motionTimeout: p.MotionTimeout,
		logger:        p.Logger,
		out:           p.Output,
		scanner:       bufio.NewScanner(p.Input),
		history:       []llm.Message{{Role: llm.RoleSystem, Content: systemMessage}},
		signalHold:    resultSignalHold,
	}
}

// Run drives the interactive loop until the user exits, input ends, or the
// context is cancelled. Errors inside a turn never terminate the loop.
func (e *Engine) Run(ctx context.Context) error {
	printBanner(e.out, e.chat.Model())

	fmt.Fprintf(e.out, "Pre-loading model %s...\n", e.chat.Model())
	if err := e.chat.Preload(ctx); err != nil {
		e.logger.Warn("model preload failed, first turn will be slower", zap.Error(err))
	} else {
		fmt.Fprintf(e.out, "Model %s loaded.\n\n", e.chat.Model())
	}

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(e.out, "\nExiting interactive mode. Goodbye!")
			return nil
		}

		fmt.Fprint(e.out, "You: ")
		if !e.scanner.Scan() {
			fmt.Fprintln(e.out, "\nExiting interactive mode. Goodbye!")
			return e.scanner.Err()
		}

		input := strings.TrimSpace(e.scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Fprintln(e.out, "\nExiting interactive mode. Goodbye!")
			return nil
		case "status":
			e.showStatus(ctx)
			continue
		}

		e.processTurn(ctx, input)
	}
}

// processTurn runs one model round trip and applies its side effects.
func (e *Engine) processTurn(ctx context.Context, input string) {
	defer func() {
		e.history = truncateHistory(e.history)
	}()

	// Capability gating is re-evaluated per turn; the tool is never sticky.
	var tools []llm.Tool
	if wantsInspectionTool(input) {
		tools = []llm.Tool{inspectionTool}
	}

	e.history = append(e.history, llm.Message{Role: llm.RoleUser, Content: e.userMessage(ctx, input)})

	fmt.Fprintln(e.out, "Assistant: [Thinking...]")
	resp, err := e.chat.Chat(ctx, e.history, tools)
	if err != nil {
		e.logger.Error("chat request failed", zap.Error(err))
		fmt.Fprintln(e.out, "Assistant: the model is unreachable, please try again.")
		return
	}

	if call, ok := resp.FirstToolCall(); ok {
		if call.Function.Name == ToolStartInspection {
			e.runInspection(ctx)
		} else {
			e.logger.Warn("model requested unknown tool", zap.String("tool", call.Function.Name))
		}
		return
	}

	raw := resp.Content()
	instruction := ParseReply(raw)

	e.history = append(e.history, llm.Message{Role: llm.RoleAssistant, Content: raw})
	fmt.Fprintf(e.out, "Assistant: %s\n", instruction.Message)

	if instruction.LEDs != nil {
		if err := e.leds.SetLEDs(ctx, *instruction.LEDs); err != nil {
			e.logger.Error("failed to apply LED state", zap.Error(err))
		}
	}

	// LEDs were applied above even when motion is flagged: apply-then-ask.
	if instruction.MotionDetected != nil && *instruction.MotionDetected {
		e.confirmInspection(ctx)
	}
}

// userMessage wraps the raw input with a physical status snapshot. A snapshot
// failure never blocks the turn; the raw text goes out unaugmented.
func (e *Engine) userMessage(ctx context.Context, input string) string {
	motion, leds, err := e.snapshot(ctx)
	if err != nil {
		e.logger.Warn("unable to read physical status, sending raw input", zap.Error(err))
		return input
	}
	return statusPreamble(motion, leds, input)
}

func (e *Engine) snapshot(ctx context.Context) (bool, device.LEDState, error) {
	motion, err := e.motion.ReadMotion(ctx, e.motionTimeout)
	if err != nil {
		return false, device.LEDState{}, fmt.Errorf("motion read: %w", err)
	}
	leds, err := e.leds.LEDs(ctx)
	if err != nil {
		return false, device.LEDState{}, fmt.Errorf("led read: %w", err)
	}
	return motion, leds, nil
}

// showStatus renders the snapshot locally, bypassing the model.
func (e *Engine) showStatus(ctx context.Context) {
	motion, leds, err := e.snapshot(ctx)
	if err != nil {
		e.logger.Error("status snapshot failed", zap.Error(err))
		fmt.Fprintln(e.out, "Unable to read system status, please try again.")
		return
	}
	RenderStatus(e.out, motion, leds)
}

// confirmInspection asks the operator before launching a flight off a
// model-asserted motion event. The model's word alone never flies the drone.
func (e *Engine) confirmInspection(ctx context.Context) {
	fmt.Fprint(e.out, "Motion detected: start drone inspection? (Y/N): ")
	if !e.scanner.Scan() {
		return
	}
	if strings.EqualFold(strings.TrimSpace(e.scanner.Text()), "y") {
		e.runInspection(ctx)
	}
}

// runInspection executes the orchestrator synchronously and renders the
// result as a held LED signal. No assistant message is recorded for the turn.
func (e *Engine) runInspection(ctx context.Context) {
	fmt.Fprintln(e.out, "Assistant: Initiating drone inspection...")

	result, err := e.inspector.Run(ctx)
	if err != nil {
		e.logger.Error("drone inspection failed", zap.Error(err))
		fmt.Fprintln(e.out, "Assistant: The inspection could not be completed.")
		return
	}

	verdict := "PASSED"
	if !result.Passed {
		verdict = "FAILED"
	}
	fmt.Fprintf(e.out, "Assistant: Inspection %s (%d anomalous samples).\n", verdict, result.AnomalyCount)
	e.signalResult(ctx, *result)
}

// signalResult holds green for a passed run or red for a failed one, then
// clears all LEDs back to idle.
func (e *Engine) signalResult(ctx context.Context, result inspection.Result) {
	signal := device.LEDState{Green: true}
	if !result.Passed {
		signal = device.LEDState{Red: true}
	}

	if err := e.leds.SetLEDs(ctx, signal); err != nil {
		e.logger.Error("failed to set result signal", zap.Error(err))
		return
	}
	time.Sleep(e.signalHold)
	if err := e.leds.SetLEDs(ctx, device.LEDState{}); err != nil {
		e.logger.Error("failed to clear result signal", zap.Error(err))
	}
}

// History returns a copy of the dialogue history.
func (e *Engine) History() []llm.Message {
	out := make([]llm.Message, len(e.history))
	copy(out, e.history)
	return out
}

// truncateHistory keeps the system message plus the most recent eight
// entries once the history outgrows the cap.
func truncateHistory(history []llm.Message) []llm.Message {
	if len(history) <= maxHistory {
		return history
	}
	trimmed := make([]llm.Message, 0, maxHistory)
	trimmed = append(trimmed, history[0])
	trimmed = append(trimmed, history[len(history)-(maxHistory-1):]...)
	return trimmed
}
