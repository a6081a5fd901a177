package localize

import "testing"

func TestNewGridMapValidation(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		codes       []int8
		shouldError bool
	}{
		{
			name:   "valid 2x2",
			width:  2,
			height: 2,
			codes:  []int8{0, 100, -1, 0},
		},
		{
			name:        "zero width",
			width:       0,
			height:      2,
			codes:       []int8{},
			shouldError: true,
		},
		{
			name:        "negative height",
			width:       2,
			height:      -1,
			codes:       []int8{},
			shouldError: true,
		},
		{
			name:        "data length mismatch",
			width:       2,
			height:      2,
			codes:       []int8{0, 0, 0},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewGridMap(tt.width, tt.height, tt.codes)
			if tt.shouldError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if m.Width() != tt.width || m.Height() != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, m.Width(), m.Height())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	// Row 0: free, wall; row 1: unknown, unexpected code.
	m, err := NewGridMap(2, 2, []int8{0, 100, -1, 42})
	if err != nil {
		t.Fatalf("Failed to build map: %v", err)
	}

	tests := []struct {
		row, col int
		want     CellKind
	}{
		{0, 0, CellFree},
		{0, 1, CellWall},
		{1, 0, CellUnknown},
		{1, 1, CellUnknown}, // unexpected code reads as unknown
		{-1, 0, CellUnknown},
		{0, 2, CellUnknown},
		{2, 0, CellUnknown},
	}

	for _, tt := range tests {
		if got := m.Classify(tt.row, tt.col); got != tt.want {
			t.Errorf("Classify(%d,%d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestValidPose(t *testing.T) {
	m, err := NewGridMap(2, 2, []int8{0, 100, -1, 0})
	if err != nil {
		t.Fatalf("Failed to build map: %v", err)
	}

	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{1, 1, true},
		{0, 1, false}, // wall
		{1, 0, false}, // unknown
		{-1, 0, false},
		{0, 2, false},
	}

	for _, tt := range tests {
		if got := m.ValidPose(tt.row, tt.col); got != tt.want {
			t.Errorf("ValidPose(%d,%d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}

	if got := m.FreeCount(); got != 2 {
		t.Errorf("FreeCount() = %d, want 2", got)
	}
}
