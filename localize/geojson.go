package localize

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MapFeatureCollection converts the wall cells and the MAP pose track
// into a GeoJSON FeatureCollection for web map viewers. Coordinates are
// in cell units: x is the column, y the row.
func MapFeatureCollection(grid *GridMap, track []Pose) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, poly := range wallPolygons(grid) {
		f := geojson.NewFeature(poly)
		f.Properties["kind"] = "wall"
		fc.Append(f)
	}

	if len(track) > 0 {
		line := make(orb.LineString, len(track))
		for i, p := range track {
			line[i] = cellCenter(p)
		}
		trackFeature := geojson.NewFeature(line)
		trackFeature.Properties["kind"] = "track"
		fc.Append(trackFeature)

		poseFeature := geojson.NewFeature(cellCenter(track[len(track)-1]))
		poseFeature.Properties["kind"] = "pose"
		fc.Append(poseFeature)
	}

	return fc
}

// wallPolygons merges horizontal runs of wall cells into one rectangle
// polygon per run, keeping the feature count reasonable.
func wallPolygons(grid *GridMap) []orb.Polygon {
	var polys []orb.Polygon

	for row := 0; row < grid.Height(); row++ {
		col := 0
		for col < grid.Width() {
			if grid.Classify(row, col) != CellWall {
				col++
				continue
			}
			start := col
			for col < grid.Width() && grid.Classify(row, col) == CellWall {
				col++
			}

			x0, x1 := float64(start), float64(col)
			y0, y1 := float64(row), float64(row+1)
			ring := orb.Ring{
				{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0},
			}
			polys = append(polys, orb.Polygon{ring})
		}
	}
	return polys
}

func cellCenter(p Pose) orb.Point {
	return orb.Point{float64(p.Col) + 0.5, float64(p.Row) + 0.5}
}
