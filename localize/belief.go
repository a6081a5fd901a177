package localize

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// Belief is the discrete probability distribution over map cells.
// Values on wall and unknown cells are always zero; after a completed
// correction step the free cells sum to 1.
type Belief struct {
	width  int
	height int
	cells  []float64 // row-major
}

func newZeroBelief(width, height int) *Belief {
	return &Belief{
		width:  width,
		height: height,
		cells:  make([]float64, width*height),
	}
}

// NewUniformBelief spreads probability mass evenly over the free cells
// of the map. With no free cells the belief is all-zero.
func NewUniformBelief(m *GridMap) *Belief {
	b := newZeroBelief(m.Width(), m.Height())
	free := m.FreeCount()
	if free == 0 {
		return b
	}
	p := 1.0 / float64(free)
	for row := 0; row < m.Height(); row++ {
		for col := 0; col < m.Width(); col++ {
			if m.ValidPose(row, col) {
				b.set(row, col, p)
			}
		}
	}
	return b
}

// At returns the probability at (row, col); zero when out of bounds.
func (b *Belief) At(row, col int) float64 {
	if row < 0 || row >= b.height || col < 0 || col >= b.width {
		return 0
	}
	return b.cells[row*b.width+col]
}

func (b *Belief) set(row, col int, v float64) {
	b.cells[row*b.width+col] = v
}

// Sum returns the total probability mass. Prediction steps are allowed
// to let this drift from 1; correction restores it.
func (b *Belief) Sum() float64 {
	return floats.Sum(b.cells)
}

// Normalize scales the distribution to sum to 1. It reports false and
// leaves the cells untouched when the mass is zero, so a degenerate
// belief is never divided by zero.
func (b *Belief) Normalize() bool {
	sum := floats.Sum(b.cells)
	if sum == 0 {
		return false
	}
	floats.Scale(1/sum, b.cells)
	return true
}

// Clone returns an independent copy.
func (b *Belief) Clone() *Belief {
	c := newZeroBelief(b.width, b.height)
	copy(c.cells, b.cells)
	return c
}

// ArgMax returns the cell with the highest probability. Ties resolve to
// the first occurrence in row-major traversal order, so the result is
// deterministic for identical inputs.
func (b *Belief) ArgMax() Pose {
	best := Pose{}
	bestVal := b.cells[0]
	for row := 0; row < b.height; row++ {
		for col := 0; col < b.width; col++ {
			if v := b.cells[row*b.width+col]; v > bestVal {
				bestVal = v
				best = Pose{Row: row, Col: col}
			}
		}
	}
	return best
}

// Cells returns a copy of the row-major probability values.
func (b *Belief) Cells() []float64 {
	out := make([]float64, len(b.cells))
	copy(out, b.cells)
	return out
}

// Width returns the number of columns.
func (b *Belief) Width() int { return b.width }

// Height returns the number of rows.
func (b *Belief) Height() int { return b.height }

// snapshot captures the belief for publishing and rendering.
func (b *Belief) snapshot(pose Pose, generation uint64) *BeliefSnapshot {
	return &BeliefSnapshot{
		Width:      b.width,
		Height:     b.height,
		Cells:      b.Cells(),
		Pose:       pose,
		Generation: generation,
		Timestamp:  time.Now().Unix(),
	}
}
