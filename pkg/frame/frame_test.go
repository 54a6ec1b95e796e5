package frame

import (
	"testing"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/geom"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		canvas   geom.Size
		count    int
		wantPos  geom.Point
		wantName string
	}{
		{
			name:     "1200x800 canvas",
			canvas:   geom.Size{Width: 1200, Height: 800},
			count:    0,
			wantPos:  geom.Point{X: 400, Y: 260},
			wantName: "Frame 1",
		},
		{
			name:     "odd canvas snaps to grid",
			canvas:   geom.Size{Width: 1000, Height: 700},
			count:    2,
			wantPos:  geom.Point{X: 300, Y: 200},
			wantName: "Frame 3",
		},
		{
			name:     "small canvas",
			canvas:   geom.Size{Width: 100, Height: 100},
			count:    0,
			wantPos:  geom.Point{X: -160, Y: -100},
			wantName: "Frame 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("id", tt.canvas, tt.count)
			if f.Box.Position != tt.wantPos {
				t.Errorf("Position = %+v, want %+v", f.Box.Position, tt.wantPos)
			}
			if got := f.Box.Visual(); got != (geom.Size{Width: 400, Height: 300}) {
				t.Errorf("Visual = %+v, want 400x300", got)
			}
			if f.Box.Scale != geom.Identity {
				t.Errorf("Scale = %+v, want identity", f.Box.Scale)
			}
			if f.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", f.Name, tt.wantName)
			}
			if f.Fit != FitCover {
				t.Errorf("Fit = %q, want cover", f.Fit)
			}
		})
	}
}

func TestParseFit(t *testing.T) {
	tests := []struct {
		input   string
		want    Fit
		wantErr bool
	}{
		{"cover", FitCover, false},
		{"contain", FitContain, false},
		{" Contain ", FitContain, false},
		{"fill", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFit) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFit)
			}
			if got != tt.want {
				t.Errorf("ParseFit(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFitToggle(t *testing.T) {
	if FitCover.Toggle() != FitContain || FitContain.Toggle() != FitCover {
		t.Error("Toggle should swap cover and contain")
	}
}

func TestClone(t *testing.T) {
	f := New("a", geom.Size{Width: 800, Height: 600}, 0)
	c := f.Clone()
	c.Style.Dash[0] = 99
	c.Box.Position.X = 1

	if f.Style.Dash[0] == 99 {
		t.Error("Clone should copy the dash slice")
	}
	if f.Box.Position.X == 1 {
		t.Error("Clone should copy the box")
	}
}
