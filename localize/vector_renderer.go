package localize

import (
	"image/color"
	"image/png"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// BeliefVectorRenderer renders the map and posterior as vector
// graphics, for crisp output at any zoom level.
type BeliefVectorRenderer struct {
	Grid       *GridMap
	CellSize   float64 // canvas units per map cell
	GridLines  bool
	Resolution canvas.Resolution // for PNG output
}

// NewBeliefVectorRenderer creates a vector renderer with default settings.
func NewBeliefVectorRenderer(grid *GridMap) *BeliefVectorRenderer {
	return &BeliefVectorRenderer{
		Grid:       grid,
		CellSize:   10.0,
		GridLines:  true,
		Resolution: canvas.DPI(300),
	}
}

// canvasRenderer is the subset of the canvas renderers used here; both
// the svg and rasterizer backends implement it.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the belief heatmap as an SVG to the provided writer.
func (r *BeliefVectorRenderer) RenderToSVG(w io.Writer, snapshot *BeliefSnapshot) error {
	width := float64(r.Grid.Width()) * r.CellSize
	height := float64(r.Grid.Height()) * r.CellSize

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, snapshot, width, height)
	return svgRenderer.Close()
}

// RenderToPNG rasterizes the belief heatmap and writes it as a PNG.
func (r *BeliefVectorRenderer) RenderToPNG(w io.Writer, snapshot *BeliefSnapshot) error {
	width := float64(r.Grid.Width()) * r.CellSize
	height := float64(r.Grid.Height()) * r.CellSize

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, snapshot, width, height)
	return png.Encode(w, rast)
}

// renderToCanvas draws cells, grid lines, and the MAP pose marker
// (shared logic for SVG and PNG).
func (r *BeliefVectorRenderer) renderToCanvas(renderer canvasRenderer, snapshot *BeliefSnapshot, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	// Canvas origin is bottom-left; map rows grow downward.
	cellOrigin := func(row, col int) (float64, float64) {
		return float64(col) * r.CellSize, height - float64(row+1)*r.CellSize
	}

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
			var fill color.RGBA
			switch r.Grid.Classify(row, col) {
			case CellWall:
				fill = color.RGBA{45, 45, 45, 255}
			case CellUnknown:
				fill = color.RGBA{200, 200, 200, 255}
			default:
				if snapshot == nil || maxProb == 0 {
					continue // free cell on white background
				}
				t := snapshot.Cells[row*r.Grid.Width()+col] / maxProb
				if t == 0 {
					continue
				}
				fill = nrgbaToRGBA(color.NRGBA{255, 0, 0, uint8(255 * t)})
			}

			cellStyle := canvas.DefaultStyle
			cellStyle.Fill = canvas.Paint{Color: fill}
			cellStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

			x, y := cellOrigin(row, col)
			renderer.RenderPath(canvas.Rectangle(r.CellSize, r.CellSize).Translate(x, y), cellStyle, canvas.Identity)
		}
	}

	if r.GridLines {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 0.5

		for col := 0; col <= r.Grid.Width(); col++ {
			x := float64(col) * r.CellSize
			line := &canvas.Path{}
			line.MoveTo(x, 0)
			line.LineTo(x, height)
			renderer.RenderPath(line, gridStyle, canvas.Identity)
		}
		for row := 0; row <= r.Grid.Height(); row++ {
			y := float64(row) * r.CellSize
			line := &canvas.Path{}
			line.MoveTo(0, y)
			line.LineTo(width, y)
			renderer.RenderPath(line, gridStyle, canvas.Identity)
		}
	}

	if snapshot != nil {
		poseStyle := canvas.DefaultStyle
		poseStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		poseStyle.Stroke = canvas.Paint{Color: canvas.Blue}
		poseStyle.StrokeWidth = 1.0

		x, y := cellOrigin(snapshot.Pose.Row, snapshot.Pose.Col)
		marker := canvas.Circle(r.CellSize / 2).Translate(x+r.CellSize/2, y+r.CellSize/2)
		renderer.RenderPath(marker, poseStyle, canvas.Identity)
	}
}

// nrgbaToRGBA converts color.NRGBA to premultiplied color.RGBA, which
// the canvas library expects.
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	alpha := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha) / 255),
		G: uint8((uint32(c.G) * alpha) / 255),
		B: uint8((uint32(c.B) * alpha) / 255),
		A: c.A,
	}
}
