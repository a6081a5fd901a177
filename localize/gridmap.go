package localize

import "fmt"

// CellKind classifies a single map cell.
type CellKind int

const (
	CellFree CellKind = iota
	CellWall
	CellUnknown
)

// Occupancy codes used on the wire.
const (
	codeFree    int8 = 0
	codeWall    int8 = 100
	codeUnknown int8 = -1
)

func (k CellKind) String() string {
	switch k {
	case CellFree:
		return "free"
	case CellWall:
		return "wall"
	case CellUnknown:
		return "unknown"
	}
	return fmt.Sprintf("CellKind(%d)", int(k))
}

// GridMap is the static occupancy classification of the environment.
// It is immutable once built; the estimator treats it as ground truth.
type GridMap struct {
	width  int
	height int
	cells  []CellKind // row-major, height rows of width columns
}

// NewGridMap builds a GridMap from raw occupancy codes laid out row-major
// (height rows of width columns). Codes other than 0, 100 and -1 are
// classified as unknown rather than rejected.
func NewGridMap(width, height int, codes []int8) (*GridMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid map dimensions %dx%d", width, height)
	}
	if len(codes) != width*height {
		return nil, fmt.Errorf("map data length %d does not match %dx%d", len(codes), width, height)
	}

	cells := make([]CellKind, len(codes))
	for i, code := range codes {
		switch code {
		case codeFree:
			cells[i] = CellFree
		case codeWall:
			cells[i] = CellWall
		default:
			cells[i] = CellUnknown
		}
	}

	return &GridMap{width: width, height: height, cells: cells}, nil
}

// Width returns the number of columns.
func (m *GridMap) Width() int { return m.width }

// Height returns the number of rows.
func (m *GridMap) Height() int { return m.height }

// InBounds reports whether (row, col) lies on the grid.
func (m *GridMap) InBounds(row, col int) bool {
	return row >= 0 && row < m.height && col >= 0 && col < m.width
}

// Classify returns the cell kind at (row, col). Out-of-bounds cells
// classify as unknown.
func (m *GridMap) Classify(row, col int) CellKind {
	if !m.InBounds(row, col) {
		return CellUnknown
	}
	return m.cells[row*m.width+col]
}

// ValidPose reports whether the robot can occupy (row, col): in bounds
// and free. Walls and unknown cells are never valid positions.
func (m *GridMap) ValidPose(row, col int) bool {
	return m.InBounds(row, col) && m.cells[row*m.width+col] == CellFree
}

// FreeCount returns the number of free cells.
func (m *GridMap) FreeCount() int {
	count := 0
	for _, c := range m.cells {
		if c == CellFree {
			count++
		}
	}
	return count
}
