package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func TestImageBoundsFromContainer_Letterbox(t *testing.T) {
	tests := []struct {
		name           string
		cw, ch, nw, nh float64
		want           ImageBounds
	}{
		{"wide image pillarless", 800, 600, 1600, 900, ImageBounds{Width: 800, Height: 450, X: 0, Y: 75}},
		{"tall image", 800, 600, 300, 600, ImageBounds{Width: 300, Height: 600, X: 250, Y: 0}},
		{"exact fit", 800, 600, 400, 300, ImageBounds{Width: 800, Height: 600}},
		{"unknown natural size", 800, 600, 0, 0, ImageBounds{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImageBoundsFromContainer(tt.cw, tt.ch, tt.nw, tt.nh)
			assert.InDelta(t, tt.want.Width, got.Width, tolerance)
			assert.InDelta(t, tt.want.Height, got.Height, tolerance)
			assert.InDelta(t, tt.want.X, got.X, tolerance)
			assert.InDelta(t, tt.want.Y, got.Y, tolerance)
		})
	}
}

func TestScreenToImage_IdentityIsTranslation(t *testing.T) {
	bounds := ImageBounds{Width: 640, Height: 360, X: 80, Y: 120}
	offset := Offset{X: 15, Y: 42}

	got := ScreenToImage(ScreenPoint{X: 300, Y: 250}, offset, bounds, IdentityTransform())
	assert.InDelta(t, 285, got.X, tolerance)
	assert.InDelta(t, 208, got.Y, tolerance)

	norm := ScreenToNormalized(ScreenPoint{X: 300, Y: 250}, offset, bounds, IdentityTransform())
	assert.InDelta(t, (300-15-80)/640.0, norm.X, tolerance)
	assert.InDelta(t, (250-42-120)/360.0, norm.Y, tolerance)
}

func TestScreenToImage_RoundTrip(t *testing.T) {
	boundsCases := []ImageBounds{
		{Width: 800, Height: 600},
		{Width: 640, Height: 360, X: 80, Y: 120},
		{Width: 300, Height: 600, X: 250, Y: 0},
	}
	transforms := []Transform{
		IdentityTransform(),
		{ZoomLevel: 1.6, TransformOrigin: Percent{X: 50, Y: 50}},
		{ZoomLevel: 2, PanOffset: Offset{X: -40, Y: 25}, TransformOrigin: Percent{X: 10, Y: 90}},
		{ZoomLevel: 3.4, PanOffset: Offset{X: 120, Y: -60}, TransformOrigin: Percent{X: 73, Y: 12}},
	}
	offset := Offset{X: 12, Y: 64}

	for _, b := range boundsCases {
		for _, tr := range transforms {
			for _, p := range []ScreenPoint{{X: b.X + 20, Y: b.Y + 30}, {X: b.X + b.Width/2, Y: b.Y + b.Height/3}, {X: b.X + b.Width - 1, Y: b.Y + b.Height - 1}} {
				img := ScreenToImage(p, offset, b, tr)
				back := NormalizedToImage(ImageToNormalized(img, b), b)
				require.InDelta(t, img.X, back.X, tolerance)
				require.InDelta(t, img.Y, back.Y, tolerance)

				screen := ImageToScreen(img, offset, b, tr)
				require.InDelta(t, p.X, screen.X, tolerance, "transform %+v", tr)
				require.InDelta(t, p.Y, screen.Y, tolerance, "transform %+v", tr)
			}
		}
	}
}

func TestScreenToImage_ZoomAboutOriginKeepsOriginFixed(t *testing.T) {
	bounds := ImageBounds{Width: 800, Height: 600}
	tr := Transform{ZoomLevel: 2, TransformOrigin: Percent{X: 25, Y: 75}}

	// The origin itself does not move under scaling.
	got := ScreenToImage(ScreenPoint{X: 200, Y: 450}, Offset{}, bounds, tr)
	assert.InDelta(t, 200, got.X, tolerance)
	assert.InDelta(t, 450, got.Y, tolerance)

	// A point 100px right of the origin on screen is 50px right in the image.
	got = ScreenToImage(ScreenPoint{X: 300, Y: 450}, Offset{}, bounds, tr)
	assert.InDelta(t, 250, got.X, tolerance)
}

func TestComputeZoomLevel_ClampsAtMax(t *testing.T) {
	opts := ZoomOptions{Min: 1, Max: 2.0, Step: 0.2}
	zoom := 1.0
	for i := 0; i < 6; i++ {
		zoom = ComputeZoomLevel(zoom, -1, opts)
	}
	assert.Equal(t, 2.0, zoom)

	zoom = ComputeZoomLevel(zoom, 120, opts)
	assert.InDelta(t, 1.8, zoom, tolerance)

	for i := 0; i < 10; i++ {
		zoom = ComputeZoomLevel(zoom, 1, opts)
	}
	assert.Equal(t, 1.0, zoom)
	assert.Equal(t, 1.0, ComputeZoomLevel(1.0, 0, opts))
}

func TestComputeTransformOrigin(t *testing.T) {
	assert.Equal(t, Percent{X: 25, Y: 50}, ComputeTransformOrigin(100, 150, 400, 300))
	assert.Equal(t, Percent{X: 100, Y: 0}, ComputeTransformOrigin(500, -20, 400, 300))
	assert.Equal(t, Percent{X: 50, Y: 50}, ComputeTransformOrigin(10, 10, 0, 0))
}

func TestConstrainPan(t *testing.T) {
	got := ConstrainPan(Offset{X: 500, Y: -500}, 2, 800, 600)
	assert.Equal(t, Offset{X: 400, Y: -300}, got)

	got = ConstrainPan(Offset{X: 10, Y: 20}, 2, 800, 600)
	assert.Equal(t, Offset{X: 10, Y: 20}, got)

	assert.Equal(t, Offset{}, ConstrainPan(Offset{X: 10, Y: 20}, 1, 800, 600))
}

func TestTransformNormalize_ResetsAtZoomOne(t *testing.T) {
	tr := Transform{ZoomLevel: 1, PanOffset: Offset{X: 3, Y: 4}, TransformOrigin: Percent{X: 10, Y: 10}}
	assert.Equal(t, IdentityTransform(), tr.Normalize())

	zoomed := Transform{ZoomLevel: 1.4, PanOffset: Offset{X: 3, Y: 4}, TransformOrigin: Percent{X: 10, Y: 10}}
	assert.Equal(t, zoomed, zoomed.Normalize())
}
