// Package inspection implements the room inspection run: the fixed flight
// maneuver, the concurrent ranging sampler, and the pass/fail summary over
// the collected samples.
package inspection

import (
	"github.com/Eduard0Castro/smart-inspection/internal/drone"
)

// AnomalyThreshold is the distance at or under which a reading counts as an
// anomaly, in meters.
const AnomalyThreshold = 0.3

// MaxAnomalies is the number of anomalous samples at which a run fails.
const MaxAnomalies = 4

// Status classifies a single sample.
type Status string

const (
	StatusClear   Status = "Nothing detected"
	StatusAnomaly Status = "Anomaly Detected"
)

// DistanceSample is one classified multiranger sample. Samples are only built
// from complete readings; a reading with any missing channel is discarded
// before it gets here.
type DistanceSample struct {
	Front  float64
	Back   float64
	Right  float64
	Left   float64
	Up     float64
	Status Status
}

// NewSample builds a classified sample from a raw reading. The second return
// is false when the reading is incomplete and must be discarded.
func NewSample(r drone.Reading) (DistanceSample, bool) {
	if !r.Complete() {
		return DistanceSample{}, false
	}

	v := r.Values()
	status := StatusClear
	for _, distance := range v {
		if distance <= AnomalyThreshold {
			status = StatusAnomaly
			break
		}
	}

	return DistanceSample{
		Front:  v[0],
		Back:   v[1],
		Right:  v[2],
		Left:   v[3],
		Up:     v[4],
		Status: status,
	}, true
}

// Result is the outcome of one completed run.
type Result struct {
	AnomalyCount int
	Passed       bool
}

// Summarize computes the run result over a frozen sample log.
func Summarize(samples []DistanceSample) Result {
	count := 0
	for _, s := range samples {
		if s.Status == StatusAnomaly {
			count++
		}
	}
	return Result{
		AnomalyCount: count,
		Passed:       count < MaxAnomalies,
	}
}
