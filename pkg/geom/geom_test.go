package geom

import (
	"math/rand"
	"testing"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		unit float64
		want float64
	}{
		{name: "exact", v: 400, unit: 20, want: 400},
		{name: "round down", v: 409, unit: 20, want: 400},
		{name: "round up", v: 411, unit: 20, want: 420},
		{name: "half rounds away from zero", v: 250, unit: 20, want: 260},
		{name: "negative half", v: -250, unit: 20, want: -260},
		{name: "zero unit", v: 13.7, unit: 0, want: 13.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantize(tt.v, tt.unit); got != tt.want {
				t.Errorf("Quantize(%v, %v) = %v, want %v", tt.v, tt.unit, got, tt.want)
			}
		})
	}
}

func TestBoxVisual(t *testing.T) {
	tests := []struct {
		name  string
		box   Box
		wantW float64
		wantH float64
	}{
		{name: "identity", box: NewBox(0, 0, 400, 300), wantW: 400, wantH: 300},
		{name: "stretched", box: Box{Base: Size{Width: 400, Height: 300}, Scale: Scale{X: 1.5, Y: 0.5}}, wantW: 600, wantH: 150},
		{name: "zero base", box: Box{Scale: Scale{X: 2, Y: 2}}, wantW: 0, wantH: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.VisualWidth(); got != tt.wantW {
				t.Errorf("VisualWidth() = %v, want %v", got, tt.wantW)
			}
			if got := tt.box.VisualHeight(); got != tt.wantH {
				t.Errorf("VisualHeight() = %v, want %v", got, tt.wantH)
			}
		})
	}
}

func TestSetVisualSizeZeroBase(t *testing.T) {
	b := Box{Base: Size{Width: 0, Height: 100}, Scale: Scale{X: 3, Y: 1}}
	b.SetVisualSize(Size{Width: 200, Height: 50})

	if b.Scale.X != 3 {
		t.Errorf("Scale.X = %v, want unchanged 3", b.Scale.X)
	}
	if b.Scale.Y != 0.5 {
		t.Errorf("Scale.Y = %v, want 0.5", b.Scale.Y)
	}
}

func TestSetVisualSizeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		b := NewBox(0, 0, 1+rng.Float64()*1000, 1+rng.Float64()*1000)
		for j := 0; j < 5; j++ {
			want := Size{Width: rng.Float64() * 5000, Height: rng.Float64() * 5000}
			b.SetVisualSize(want)
			got := b.Visual()
			if !NearlyEqual(got.Width, want.Width, 1e-6) || !NearlyEqual(got.Height, want.Height, 1e-6) {
				t.Fatalf("iteration %d: visual = %+v, want %+v", i, got, want)
			}
		}
	}
}

func TestRect(t *testing.T) {
	b := Box{Position: Point{X: 10, Y: 20}, Base: Size{Width: 100, Height: 50}, Scale: Scale{X: 2, Y: 2}}
	r := b.Rect()

	if r != (Rect{X: 10, Y: 20, Width: 200, Height: 100}) {
		t.Fatalf("Rect() = %+v", r)
	}
	if c := r.Center(); c != (Point{X: 110, Y: 70}) {
		t.Errorf("Center() = %+v, want {110 70}", c)
	}
	if !r.Contains(Point{X: 210, Y: 120}) {
		t.Error("Contains should include the bottom-right corner")
	}
	if r.Contains(Point{X: 9, Y: 20}) {
		t.Error("Contains should exclude points left of the rect")
	}
}
