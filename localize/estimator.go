package localize

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrNoMap is returned for commands and scans that arrive before
	// the first map.
	ErrNoMap = errors.New("no map loaded")

	// ErrScanDiscarded is returned when a scan arrives without a
	// pending prediction step. Discarding is documented behavior, not
	// a failure: at most one correction is applied per prediction.
	ErrScanDiscarded = errors.New("scan discarded: no prediction pending")
)

// Estimator runs the histogram filter. It owns the map, the running
// belief, and the two generation counters, and serializes every update
// behind a single mutex so no step observes a partially written belief.
type Estimator struct {
	mu     sync.Mutex
	motion *MotionModel

	grid   *GridMap
	sensor *SensorModel
	belief *Belief

	predictionGen uint64 // bumped once at map load and per applied command
	consumedGen   uint64 // bumped per applied scan
}

// NewEstimator creates an estimator with the given motion probabilities.
// Malformed parameters are fatal here, before any event is processed.
func NewEstimator(params MotionParams) (*Estimator, error) {
	motion, err := NewMotionModel(params)
	if err != nil {
		return nil, fmt.Errorf("configuring motion model: %w", err)
	}
	return &Estimator{motion: motion}, nil
}

// LoadMap installs the occupancy grid and the uniform prior. Only the
// first call takes effect: the map is static for the estimator's
// lifetime and later payloads are ignored.
func (e *Estimator) LoadMap(width, height int, codes []int8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.grid != nil {
		log.Printf("Ignoring map update: map already locked at %dx%d", e.grid.Width(), e.grid.Height())
		return nil
	}

	grid, err := NewGridMap(width, height, codes)
	if err != nil {
		return err
	}

	e.grid = grid
	e.sensor = NewSensorModel(grid)
	e.belief = NewUniformBelief(grid)
	e.predictionGen = 1
	e.consumedGen = 0
	return nil
}

// ApplyCommand runs the motion-prediction step for the given symbol.
// The updated belief is deliberately left unnormalized; mass drift from
// invalid source cells is corrected at the next sensor update.
func (e *Estimator) ApplyCommand(symbol string) error {
	cmd, err := DirectionFromSymbol(symbol)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.grid == nil {
		return ErrNoMap
	}

	e.belief = e.predict(cmd)
	e.predictionGen++
	return nil
}

// predict computes the motion update: each valid cell keeps stay times
// its own mass and collects, per direction, the mass of the source one
// step behind, weighted by the transition probability. Invalid sources
// contribute nothing, and invalid cells stay at zero, so mass never
// leaks through walls or unknown regions.
func (e *Estimator) predict(cmd Direction) *Belief {
	next := newZeroBelief(e.grid.Width(), e.grid.Height())
	stay := e.motion.StayProbability()

	for row := 0; row < e.grid.Height(); row++ {
		for col := 0; col < e.grid.Width(); col++ {
			if !e.grid.ValidPose(row, col) {
				continue
			}
			p := stay * e.belief.At(row, col)
			for d := DirDown; d <= DirRight; d++ {
				step := directionSteps[d]
				srcRow := row - step[0]
				srcCol := col - step[1]
				if !e.grid.ValidPose(srcRow, srcCol) {
					continue
				}
				p += e.belief.At(srcRow, srcCol) * e.motion.TransitionProbability(cmd, d)
			}
			next.set(row, col, p)
		}
	}
	return next
}

// ApplyScan runs the sensor-correction step and returns the MAP pose
// with a snapshot of the posterior. A scan without a pending prediction
// returns ErrScanDiscarded and leaves the belief untouched; the caller
// may drop such scans silently.
func (e *Estimator) ApplyScan(scan Scan) (Pose, *BeliefSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.grid == nil {
		return Pose{}, nil, ErrNoMap
	}
	if e.predictionGen <= e.consumedGen {
		return Pose{}, nil, ErrScanDiscarded
	}

	likelihood := newZeroBelief(e.grid.Width(), e.grid.Height())
	posterior := newZeroBelief(e.grid.Width(), e.grid.Height())
	for row := 0; row < e.grid.Height(); row++ {
		for col := 0; col < e.grid.Width(); col++ {
			l := e.sensor.Likelihood(row, col, scan)
			likelihood.set(row, col, l)
			posterior.set(row, col, l*e.belief.At(row, col))
		}
	}

	if posterior.Sum() == 0 {
		// Total mismatch between scan and prior, e.g. after a badly
		// wrong prediction. Drop the prior for this step so the
		// estimator can re-localize from the observation alone.
		posterior = likelihood
	}

	if !posterior.Normalize() {
		log.Printf("Degenerate belief: scan matched no cell, belief left all-zero")
	}

	e.belief = posterior
	e.consumedGen++

	pose := posterior.ArgMax()
	return pose, posterior.snapshot(pose, e.consumedGen), nil
}

// HasMap reports whether the first map has been loaded.
func (e *Estimator) HasMap() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid != nil
}

// Grid returns the immutable map, or nil before the first load.
func (e *Estimator) Grid() *GridMap {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid
}

// Generations returns the prediction and consumed counters.
func (e *Estimator) Generations() (prediction, consumed uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.predictionGen, e.consumedGen
}

// Snapshot captures the current belief and its MAP pose without
// advancing the filter. Returns nil before the first map.
func (e *Estimator) Snapshot() *BeliefSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.belief == nil {
		return nil
	}
	return e.belief.snapshot(e.belief.ArgMax(), e.consumedGen)
}
