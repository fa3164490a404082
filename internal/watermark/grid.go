// Package watermark tiles a rotated text or image mark across a surface.
//
// Every consumer (HTML overlay, preview, pixel stamping) derives its tile
// layout from ComputeGridWithBase, so a watermark previewed at a given
// density lands on the same grid as the final image.
package watermark

import "math"

// Spacing is the distance between adjacent tile centers, in CSS pixels.
type Spacing struct {
	X float64
	Y float64
}

// Base spacings at density 1.
var (
	TextBaseSpacing  = Spacing{X: 300, Y: 200}
	ImageBaseSpacing = Spacing{X: 400, Y: 300}
)

// Density bounds.
const (
	MinDensity = 1
	MaxDensity = 5
)

// Padding is the number of extra columns and rows added past the surface
// edge so rotated tiles still cover the corners.
const Padding = 1

// Grid is a tile layout over a surface.
type Grid struct {
	Cols     int
	Rows     int
	SpacingX float64
	SpacingY float64
	OffsetX  float64
	OffsetY  float64
}

// Point is a tile center in surface coordinates.
type Point struct {
	X float64
	Y float64
}

// ClampDensity forces density into [MinDensity, MaxDensity].
func ClampDensity(density int) int {
	return min(max(density, MinDensity), MaxDensity)
}

// Factor is the spacing multiplier for a density: 1.0 at density 1 down to
// 0.6 at density 5.
func Factor(density int) float64 {
	return float64(11-ClampDensity(density)) / 10
}

// ComputeGrid lays text tiles over a width x height surface.
func ComputeGrid(width, height float64, density int) Grid {
	return ComputeGridWithBase(width, height, density, TextBaseSpacing)
}

// ComputeGridWithBase lays tiles with the given base spacing. Non-positive
// dimensions yield an empty grid.
func ComputeGridWithBase(width, height float64, density int, base Spacing) Grid {
	if width <= 0 || height <= 0 || base.X <= 0 || base.Y <= 0 {
		return Grid{}
	}

	// Integer numerator keeps common spacings exact (240, 160, ...).
	n := float64(11 - ClampDensity(density))
	sx := base.X * n / 10
	sy := base.Y * n / 10

	return Grid{
		Cols:     int(math.Ceil(width/sx)) + Padding,
		Rows:     int(math.Ceil(height/sy)) + Padding,
		SpacingX: sx,
		SpacingY: sy,
		OffsetX:  sx / 2,
		OffsetY:  sy / 2,
	}
}

// Len is the number of tiles.
func (g Grid) Len() int {
	return g.Cols * g.Rows
}

// Tiles returns tile centers in row-major order.
func (g Grid) Tiles() []Point {
	if g.Cols <= 0 || g.Rows <= 0 {
		return nil
	}
	pts := make([]Point, 0, g.Len())
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			pts = append(pts, Point{
				X: g.OffsetX + float64(c)*g.SpacingX,
				Y: g.OffsetY + float64(r)*g.SpacingY,
			})
		}
	}
	return pts
}

// Scale returns the grid in a coordinate space k times larger, such as a
// raster captured at device pixel ratio k.
func (g Grid) Scale(k float64) Grid {
	return Grid{
		Cols:     g.Cols,
		Rows:     g.Rows,
		SpacingX: g.SpacingX * k,
		SpacingY: g.SpacingY * k,
		OffsetX:  g.OffsetX * k,
		OffsetY:  g.OffsetY * k,
	}
}
