// Package dataset records multiranger training data: the same fixed maneuver
// as an inspection run, with the classified samples appended to a cumulative
// dataset file instead of replacing the per-run log.
package dataset

import (
	"context"

	"go.uber.org/zap"

	"github.com/Eduard0Castro/smart-inspection/internal/drone"
	"github.com/Eduard0Castro/smart-inspection/internal/inspection"
)

// Recorder runs inspection maneuvers whose sample logs accumulate in one
// dataset CSV across runs.
type Recorder struct {
	orch   *inspection.Orchestrator
	logger *zap.Logger
}

// NewRecorder creates a recorder appending to csvPath.
func NewRecorder(flight drone.FlightController, ranger drone.Ranger, logger *zap.Logger, csvPath string) *Recorder {
	orch := inspection.NewOrchestratorWithPersist(flight, ranger, logger,
		func(samples []inspection.DistanceSample) (bool, error) {
			return inspection.AppendCSV(csvPath, samples)
		})
	return &Recorder{orch: orch, logger: logger}
}

// Record performs one maneuver and appends its samples to the dataset.
func (r *Recorder) Record(ctx context.Context) (*inspection.Result, error) {
	r.logger.Info("starting dataset recording run")
	return r.orch.Run(ctx)
}
