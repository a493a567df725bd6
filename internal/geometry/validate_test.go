package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smoke-annotator/internal/coords"
)

type item struct {
	name string
	box  NormalizedBox
}

func (i item) BoundingBox() NormalizedBox { return i.box }

func TestIsPointInBox_InclusiveBorders(t *testing.T) {
	bounds := coords.ImageBounds{Width: 800, Height: 600, X: 100, Y: 0}
	box := NewBox(0.25, 0.5, 0.5, 1)

	assert.True(t, IsPointInBox(coords.ImagePoint{X: 300, Y: 300}, box, bounds))
	assert.True(t, IsPointInBox(coords.ImagePoint{X: 500, Y: 600}, box, bounds))
	assert.True(t, IsPointInBox(coords.ImagePoint{X: 400, Y: 450}, box, bounds))
	assert.False(t, IsPointInBox(coords.ImagePoint{X: 299.9, Y: 450}, box, bounds))
	assert.False(t, IsPointInBox(coords.ImagePoint{X: 400, Y: 601}, box, bounds))
}

func TestHitTest_LaterItemWins(t *testing.T) {
	bounds := coords.ImageBounds{Width: 1000, Height: 1000}
	items := []item{
		{"a", NewBox(0.1, 0.1, 0.5, 0.5)},
		{"b", NewBox(0.3, 0.3, 0.7, 0.7)},
	}

	got, ok := HitTest(coords.ImagePoint{X: 400, Y: 400}, items, bounds)
	assert.True(t, ok)
	assert.Equal(t, "b", got.name)

	got, ok = HitTest(coords.ImagePoint{X: 150, Y: 150}, items, bounds)
	assert.True(t, ok)
	assert.Equal(t, "a", got.name)

	_, ok = HitTest(coords.ImagePoint{X: 900, Y: 900}, items, bounds)
	assert.False(t, ok)

	_, ok = HitTest(coords.ImagePoint{X: 400, Y: 400}, items, coords.ImageBounds{})
	assert.False(t, ok, "unmeasured image never hits")
}

func TestBoxesAreSimilar(t *testing.T) {
	a := NewBox(0.1, 0.1, 0.4, 0.4)
	assert.True(t, BoxesAreSimilar(a, NewBox(0.12, 0.08, 0.44, 0.41), 0.05))
	assert.False(t, BoxesAreSimilar(a, NewBox(0.1, 0.1, 0.46, 0.4), 0.05))
	assert.True(t, BoxesAreSimilar(a, a, 0), "zero threshold falls back to default")
}

func TestBoxOverlapRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b NormalizedBox
		want float64
	}{
		{"identical", NewBox(0, 0, 0.5, 0.5), NewBox(0, 0, 0.5, 0.5), 1},
		{"quarter overlap", NewBox(0, 0, 0.2, 0.2), NewBox(0.1, 0.1, 0.3, 0.3), 0.01 / 0.07},
		{"disjoint", NewBox(0, 0, 0.1, 0.1), NewBox(0.5, 0.5, 0.6, 0.6), 0},
		{"edge adjacent", NewBox(0, 0, 0.5, 0.5), NewBox(0.5, 0, 1, 0.5), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BoxOverlapRatio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestMinimumSize(t *testing.T) {
	bounds := coords.ImageBounds{Width: 800, Height: 600}
	threshold := MinSizeThreshold(10, bounds, 1)
	assert.InDelta(t, 0.0125, threshold, 1e-12)

	assert.False(t, HasMinimumSize(NewBox(0.1, 0.1, 0.105, 0.104), threshold))
	assert.False(t, HasMinimumSize(NewBox(0.1, 0.1, 0.4, 0.105), threshold))
	assert.True(t, HasMinimumSize(NewBox(0.1, 0.1, 0.2, 0.2), threshold))

	// Zooming in shrinks the normalized minimum.
	assert.InDelta(t, 0.00625, MinSizeThreshold(10, bounds, 2), 1e-12)
}

func TestNormalizedBox_ValidAndCorners(t *testing.T) {
	box := BoxFromCorners(coords.NormPoint{X: 0.6, Y: 0.2}, coords.NormPoint{X: 0.1, Y: 0.9})
	assert.Equal(t, NewBox(0.1, 0.2, 0.6, 0.9), box)
	assert.True(t, box.Valid())
	assert.False(t, NewBox(0.5, 0.5, 0.5, 0.7).Valid())
	assert.False(t, NewBox(-0.1, 0, 0.5, 0.5).Valid())
	assert.True(t, NewBox(-0.001, 0, 0.5, 1.002).Clamp().Valid())
}
