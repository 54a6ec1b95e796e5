package clip

import (
	"testing"

	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
)

func TestRegion(t *testing.T) {
	f := frame.New("f", geom.Size{Width: 1200, Height: 800}, 0)
	f.Box.Scale = geom.Scale{X: 1.5, Y: 2}

	got := Region(f)
	want := geom.Clip{
		Rect:   geom.Rect{X: 400, Y: 260, Width: 600, Height: 600},
		Radius: f.Style.CornerRadius,
	}
	if got != want {
		t.Errorf("Region() = %+v, want %+v", got, want)
	}
}

func TestRegionIgnoresImageTransform(t *testing.T) {
	f := frame.New("f", geom.Size{Width: 1200, Height: 800}, 0)
	img := &frame.Image{
		ID:       "i",
		FrameOf:  "f",
		Box:      geom.Box{Position: geom.Point{X: -50, Y: 7}, Base: geom.Size{Width: 10, Height: 10}, Scale: geom.Uniform(9)},
		Rotation: 30,
	}
	Apply(f, img)

	if img.Clip == nil || img.Clip.Rect != f.Rect() {
		t.Errorf("clip = %+v, want frame rect %+v", img.Clip, f.Rect())
	}
}

func TestSync(t *testing.T) {
	m := frame.NewModel()
	f1 := frame.New("f1", geom.Size{Width: 1200, Height: 800}, 0)
	f2 := frame.New("f2", geom.Size{Width: 1200, Height: 800}, 1)
	f2.Box.Position = geom.Point{X: 0, Y: 0}
	m.AddFrame(f1)
	m.AddFrame(f2)

	a := &frame.Image{ID: "a", FrameOf: "f1"}
	b := &frame.Image{ID: "b", FrameOf: "f2"}
	free := &frame.Image{ID: "free"}
	m.AddImage(a)
	m.AddImage(b)
	m.AddImage(free)

	Sync(m, "f1")
	Sync(m, "f2")
	if a.Clip == nil || a.Clip.Rect != f1.Rect() {
		t.Errorf("a clip = %+v, want %+v", a.Clip, f1.Rect())
	}
	if b.Clip == nil || b.Clip.Rect != f2.Rect() {
		t.Errorf("b clip = %+v, want %+v", b.Clip, f2.Rect())
	}
	if free.Clip != nil {
		t.Errorf("free image should have no clip, got %+v", free.Clip)
	}

	// Moving f1 re-derives only its images.
	f1.Box.Position = geom.Point{X: 20, Y: 40}
	touched := Sync(m, "f1")
	if len(touched) != 1 || touched[0] != a {
		t.Fatalf("Sync touched %d images, want [a]", len(touched))
	}
	if a.Clip.X != 20 || a.Clip.Y != 40 {
		t.Errorf("a clip after move = %+v", a.Clip)
	}

	// Orphans keep their last clip.
	last := *b.Clip
	m.DeleteFrame("f2")
	if got := Sync(m, "f2"); got != nil {
		t.Errorf("Sync on a deleted frame = %v, want nil", got)
	}
	if *b.Clip != last {
		t.Error("orphan clip changed")
	}
}
