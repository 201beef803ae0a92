package inspection

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Eduard0Castro/smart-inspection/internal/drone"
)

// SampleInterval is the fixed polling cadence of the ranging sampler. There
// is no drift correction; the maneuver duration dominates any jitter.
const SampleInterval = 300 * time.Millisecond

// State is the stop flag and sample log shared between one orchestrator run
// and its sampler goroutine. One mutex guards both, scoped to a single run.
type State struct {
	mu      sync.Mutex
	stop    bool
	samples []DistanceSample
}

// NewState creates the shared state for a fresh run, flag cleared.
func NewState() *State {
	return &State{}
}

// RequestStop signals the sampler to exit at its next iteration.
func (s *State) RequestStop() {
	s.mu.Lock()
	s.stop = true
	s.mu.Unlock()
}

func (s *State) stopRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop
}

func (s *State) clearStop() {
	s.mu.Lock()
	s.stop = false
	s.mu.Unlock()
}

func (s *State) append(sample DistanceSample) {
	s.mu.Lock()
	s.samples = append(s.samples, sample)
	s.mu.Unlock()
}

// Samples returns a copy of the collected log. Call only after the sampler
// has been joined, when the log is frozen.
func (s *State) Samples() []DistanceSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DistanceSample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Sampler polls the ranging deck at a fixed cadence and appends classified
// samples to the shared log until the stop flag is raised.
type Sampler struct {
	ranger   drone.Ranger
	logger   *zap.Logger
	interval time.Duration
}

// NewSampler creates a sampler over the given ranging deck.
func NewSampler(ranger drone.Ranger, logger *zap.Logger) *Sampler {
	return &Sampler{
		ranger:   ranger,
		logger:   logger,
		interval: SampleInterval,
	}
}

// Run loops until the stop flag is observed. A failed or incomplete read is
// skipped silently; constant-rate polling is the retry mechanism. On exit the
// stop flag is cleared so the state could serve a subsequent run.
func (s *Sampler) Run(ctx context.Context, state *State) {
	for !state.stopRequested() {
		reading, err := s.ranger.Read(ctx)
		if err != nil {
			s.logger.Debug("ranging read skipped", zap.Error(err))
		} else if sample, ok := NewSample(reading); ok {
			state.append(sample)
		}

		time.Sleep(s.interval)
	}

	s.logger.Info("ranging sampler finished")
	state.clearStop()
}
