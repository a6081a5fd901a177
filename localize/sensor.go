package localize

import "math"

// Per-direction likelihoods of the deterministic four-ray model.
const (
	likelihoodExact = 0.8 // reported range lands exactly on a wall
	likelihoodNear  = 0.1 // a wall sits one cell off the reported range
)

// SensorModel scores a four-direction range scan against the static
// map. The model is deterministic and peaked: per-direction likelihoods
// combine multiplicatively, so a single inconsistent ray zeroes the
// whole observation.
type SensorModel struct {
	grid *GridMap
}

// NewSensorModel creates a sensor model bound to the given map.
func NewSensorModel(grid *GridMap) *SensorModel {
	return &SensorModel{grid: grid}
}

// Likelihood returns the observation likelihood of scan at cell
// (row, col). Cells the robot cannot occupy (out of bounds, wall,
// unknown) score 0 outright.
//
// For each direction the hypothesized hit cell is the pose displaced by
// the rounded range along that direction's unit step. A wall or the map
// edge exactly at the hit cell scores 0.8; a wall or edge one cell off
// scores 0.1; anything else is inconsistent and scores 0. The near-miss
// neighbors are offset along the row axis for every ray, so they run
// along vertical rays and across horizontal ones.
func (s *SensorModel) Likelihood(row, col int, scan Scan) float64 {
	if !s.grid.ValidPose(row, col) {
		return 0
	}

	p := 1.0
	for d, r := range scan {
		steps := int(math.Round(r))
		step := directionSteps[d]
		hitRow := row + steps*step[0]
		hitCol := col + steps*step[1]

		switch {
		case s.wallOrEdge(hitRow, hitCol):
			p *= likelihoodExact
		case s.wallOrEdge(hitRow+1, hitCol) || s.wallOrEdge(hitRow-1, hitCol):
			p *= likelihoodNear
		default:
			return 0
		}
	}
	return p
}

// wallOrEdge reports whether (row, col) reads as a wall to the range
// sensor: an actual wall cell or anything beyond the map boundary.
func (s *SensorModel) wallOrEdge(row, col int) bool {
	return !s.grid.InBounds(row, col) || s.grid.Classify(row, col) == CellWall
}
