package inspection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Eduard0Castro/smart-inspection/internal/drone"
)

// Phase names the orchestrator states. One run walks
// Idle -> Connecting -> TakingOff -> Sampling -> Landing -> Disconnected and
// ends Reported or Aborted.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseConnecting   Phase = "connecting"
	PhaseTakingOff    Phase = "taking_off"
	PhaseSampling     Phase = "sampling"
	PhaseLanding      Phase = "landing"
	PhaseDisconnected Phase = "disconnected"
	PhaseReported     Phase = "reported"
	PhaseAborted      Phase = "aborted"
)

// stabilizationHold is the pause after take-off and before landing.
const stabilizationHold = 1 * time.Second

// PersistFunc writes a frozen run log. It reports whether a file was written;
// runs with too few samples are skipped.
type PersistFunc func(samples []DistanceSample) (bool, error)

// Orchestrator executes exactly one fixed-maneuver inspection run end to end:
// take off, yaw 360 degrees each way while the sampler collects distances,
// land, persist, report.
type Orchestrator struct {
	flight  drone.FlightController
	sampler *Sampler
	ranger  drone.Ranger
	logger  *zap.Logger
	persist PersistFunc
	hold    time.Duration
}

// NewOrchestrator creates an orchestrator whose run log is written to csvPath,
// replacing the previous run's file.
func NewOrchestrator(flight drone.FlightController, ranger drone.Ranger, logger *zap.Logger, csvPath string) *Orchestrator {
	return NewOrchestratorWithPersist(flight, ranger, logger, func(samples []DistanceSample) (bool, error) {
		return WriteCSV(csvPath, samples)
	})
}

// NewOrchestratorWithPersist creates an orchestrator with a custom log sink.
func NewOrchestratorWithPersist(flight drone.FlightController, ranger drone.Ranger, logger *zap.Logger, persist PersistFunc) *Orchestrator {
	return &Orchestrator{
		flight:  flight,
		sampler: NewSampler(ranger, logger),
		ranger:  ranger,
		logger:  logger,
		persist: persist,
		hold:    stabilizationHold,
	}
}

// Run performs one inspection run. A connection failure aborts the run with
// no result; failures after take-off still force the stop flag, join the
// sampler and disconnect the link, and partial data remains eligible for
// persistence. Nothing propagates out of here except the returned error.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID))
	state := NewState()

	var samplerDone chan struct{}
	joined := false
	joinSampler := func() {
		if joined {
			return
		}
		joined = true
		state.RequestStop()
		if err := o.ranger.Close(ctx); err != nil {
			log.Warn("failed to close ranging deck", zap.Error(err))
		}
		if samplerDone != nil {
			<-samplerDone
		}
	}

	defer func() {
		if err := o.flight.Disconnect(ctx); err != nil {
			log.Warn("failed to disconnect flight link", zap.Error(err))
		}
		o.transition(log, PhaseDisconnected)
	}()

	o.transition(log, PhaseConnecting)
	if err := o.flight.Connect(ctx); err != nil {
		o.transition(log, PhaseAborted)
		return nil, fmt.Errorf("connecting flight link: %w", err)
	}
	if err := o.ranger.Start(ctx); err != nil {
		o.transition(log, PhaseAborted)
		return nil, fmt.Errorf("starting ranging deck: %w", err)
	}

	o.transition(log, PhaseTakingOff)
	if err := o.flight.TakeOff(ctx); err != nil {
		joinSampler()
		o.transition(log, PhaseAborted)
		return nil, fmt.Errorf("take off: %w", err)
	}
	time.Sleep(o.hold)

	samplerDone = make(chan struct{})
	go func() {
		defer close(samplerDone)
		o.sampler.Run(ctx, state)
	}()

	o.transition(log, PhaseSampling)
	runErr := o.maneuver(ctx, log)

	// Landing: stop flag first, deck closed, sampler joined. Land must not be
	// issued while the sampler may still be reading the stopped deck.
	o.transition(log, PhaseLanding)
	joinSampler()
	time.Sleep(o.hold)

	if runErr == nil {
		log.Info("landing the drone")
		if err := o.flight.Land(ctx); err != nil {
			runErr = fmt.Errorf("land: %w", err)
		}
	}

	samples := state.Samples()
	written, err := o.persist(samples)
	if err != nil {
		log.Error("failed to persist inspection log", zap.Error(err))
	} else if written {
		log.Info("inspection log written", zap.Int("samples", len(samples)))
	} else {
		log.Info("insufficient samples, log discarded", zap.Int("samples", len(samples)))
	}

	if runErr != nil {
		o.transition(log, PhaseAborted)
		return nil, runErr
	}

	o.transition(log, PhaseReported)
	result := Summarize(samples)
	log.Info("inspection complete",
		zap.Int("samples", len(samples)),
		zap.Int("anomalies", result.AnomalyCount),
		zap.Bool("passed", result.Passed))
	return &result, nil
}

// maneuver issues the fixed flight sequence: yaw 360 counterclockwise, hold,
// yaw 360 clockwise. The flight link and the ranging deck are distinct
// resources, so the concurrent sampler never contends with these commands.
func (o *Orchestrator) maneuver(ctx context.Context, log *zap.Logger) error {
	log.Info("rotating 360 degrees counterclockwise")
	if err := o.flight.Turn(ctx, drone.CounterClockwise, 360); err != nil {
		return fmt.Errorf("counterclockwise turn: %w", err)
	}

	time.Sleep(o.hold)

	log.Info("rotating 360 degrees clockwise")
	if err := o.flight.Turn(ctx, drone.Clockwise, 360); err != nil {
		return fmt.Errorf("clockwise turn: %w", err)
	}
	return nil
}

func (o *Orchestrator) transition(log *zap.Logger, phase Phase) {
	log.Debug("inspection phase", zap.String("phase", string(phase)))
}
