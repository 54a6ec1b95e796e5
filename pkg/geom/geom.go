package geom

import "math"

// GridUnit is the fixed grid step in canvas units.
const GridUnit = 20.0

// Eps is the tolerance used when comparing derived geometry.
const Eps = 1e-9

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are strictly positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Scale holds independent horizontal and vertical scale factors.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the unit scale.
var Identity = Scale{X: 1, Y: 1}

// Uniform returns a scale with the same factor on both axes.
func Uniform(f float64) Scale { return Scale{X: f, Y: f} }

// Quantize rounds v to the nearest multiple of unit.
// Halves round away from zero (12.5 units becomes 13).
func Quantize(v, unit float64) float64 {
	if unit <= 0 {
		return v
	}
	return math.Round(v/unit) * unit
}

// NearlyEqual reports whether a and b differ by less than tol.
func NearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}
