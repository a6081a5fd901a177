package localize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Default colors for the heatmap.
var (
	heatmapWall       = color.RGBA{45, 45, 45, 255}
	heatmapUnknown    = color.RGBA{200, 200, 200, 255}
	heatmapBackground = color.RGBA{255, 255, 255, 255}
	heatmapPoseMarker = color.RGBA{0, 0, 255, 255}
	heatmapLegendText = color.RGBA{0, 0, 0, 255}
)

const legendHeight = 18

// HeatmapRenderer draws the occupancy grid with the posterior overlaid
// as a red intensity ramp, plus a marker on the MAP cell.
type HeatmapRenderer struct {
	Grid     *GridMap
	CellSize int  // pixels per map cell
	Legend   bool // draw a text strip under the grid
}

// NewHeatmapRenderer creates a renderer with default settings.
func NewHeatmapRenderer(grid *GridMap) *HeatmapRenderer {
	return &HeatmapRenderer{
		Grid:     grid,
		CellSize: 12,
		Legend:   true,
	}
}

// Render draws the map and the snapshot's belief. A nil snapshot
// renders the bare map.
func (r *HeatmapRenderer) Render(snapshot *BeliefSnapshot) *image.RGBA {
	cell := r.CellSize
	if cell <= 0 {
		cell = 12
	}

	width := r.Grid.Width() * cell
	height := r.Grid.Height() * cell
	if r.Legend {
		height += legendHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(heatmapBackground), image.Point{}, draw.Src)

	maxProb := 0.0
	if snapshot != nil {
		for _, v := range snapshot.Cells {
			if v > maxProb {
				maxProb = v
			}
		}
	}

	for row := 0; row < r.Grid.Height(); row++ {
		for col := 0; col < r.Grid.Width(); col++ {
			var c color.RGBA
			switch r.Grid.Classify(row, col) {
			case CellWall:
				c = heatmapWall
			case CellUnknown:
				c = heatmapUnknown
			default:
				c = heatmapBackground
				if snapshot != nil && maxProb > 0 {
					// White-to-red ramp scaled by the cell's share of
					// the peak probability.
					t := snapshot.Cells[row*r.Grid.Width()+col] / maxProb
					c = color.RGBA{255, uint8(255 * (1 - t)), uint8(255 * (1 - t)), 255}
				}
			}
			r.fillCell(img, row, col, cell, c)
		}
	}

	if snapshot != nil {
		r.outlineCell(img, snapshot.Pose.Row, snapshot.Pose.Col, cell, heatmapPoseMarker)
	}

	if r.Legend {
		label := "no estimate"
		if snapshot != nil {
			label = fmt.Sprintf("pose=(%d,%d) gen=%d max p=%.3f",
				snapshot.Pose.Col, snapshot.Pose.Row, snapshot.Generation, maxProb)
		}
		drawString(img, 4, r.Grid.Height()*cell+13, label, heatmapLegendText)
	}

	return img
}

// SavePNG renders the snapshot and writes it to path.
func (r *HeatmapRenderer) SavePNG(path string, snapshot *BeliefSnapshot) error {
	img := r.Render(snapshot)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func (r *HeatmapRenderer) fillCell(img *image.RGBA, row, col, cell int, c color.RGBA) {
	rect := image.Rect(col*cell, row*cell, (col+1)*cell, (row+1)*cell)
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *HeatmapRenderer) outlineCell(img *image.RGBA, row, col, cell int, c color.RGBA) {
	x0, y0 := col*cell, row*cell
	x1, y1 := (col+1)*cell-1, (row+1)*cell-1
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, c)
		img.SetRGBA(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, c)
		img.SetRGBA(x1, y, c)
	}
}

// drawString renders text using the basic 7x13 font.
func drawString(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
