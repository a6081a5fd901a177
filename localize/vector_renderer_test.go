package localize

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestRenderToSVG(t *testing.T) {
	grid := mustGrid(t, 3, 2, []int8{
		0, 100, -1,
		0, 0, 0,
	})

	r := NewBeliefVectorRenderer(grid)

	var buf bytes.Buffer
	err := r.RenderToSVG(&buf, &BeliefSnapshot{
		Width:  3,
		Height: 2,
		Cells:  []float64{0.5, 0, 0, 0.3, 0.2, 0},
		Pose:   Pose{Row: 0, Col: 0},
	})
	if err != nil {
		t.Fatalf("RenderToSVG failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("Output does not contain an <svg element")
	}
	if !strings.Contains(out, "</svg>") {
		t.Error("Output is not a closed SVG document")
	}
}

func TestRenderToSVGWithoutBelief(t *testing.T) {
	grid := mustGrid(t, 2, 2, []int8{0, 0, 0, 100})
	r := NewBeliefVectorRenderer(grid)
	r.GridLines = false

	var buf bytes.Buffer
	if err := r.RenderToSVG(&buf, nil); err != nil {
		t.Fatalf("RenderToSVG failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("Output does not contain an <svg element")
	}
}

func TestRenderToPNG(t *testing.T) {
	grid := mustGrid(t, 2, 2, []int8{0, 0, 0, 100})
	r := NewBeliefVectorRenderer(grid)

	var buf bytes.Buffer
	err := r.RenderToPNG(&buf, &BeliefSnapshot{
		Width:  2,
		Height: 2,
		Cells:  []float64{0.1, 0.2, 0.7, 0},
		Pose:   Pose{Row: 1, Col: 0},
	})
	if err != nil {
		t.Fatalf("RenderToPNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Error("Decoded PNG is empty")
	}
}

func TestNRGBAToRGBA(t *testing.T) {
	tests := []struct {
		name       string
		r, g, b, a uint8
		wantR      uint8
	}{
		{"opaque", 255, 0, 0, 255, 255},
		{"transparent", 255, 0, 0, 0, 0},
		{"half alpha premultiplies", 255, 0, 0, 128, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nrgbaToRGBA(color.NRGBA{R: tt.r, G: tt.g, B: tt.b, A: tt.a})
			if got.R != tt.wantR {
				t.Errorf("R = %d, want %d", got.R, tt.wantR)
			}
			if got.A != tt.a {
				t.Errorf("A = %d, want %d", got.A, tt.a)
			}
		})
	}
}
