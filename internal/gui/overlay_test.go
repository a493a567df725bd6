package gui

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/stretchr/testify/assert"
)

var red = color.NRGBA{R: 255, A: 255}

func TestDrawRectangle_StrokesInside(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	drawRectangle(img, image.Rect(10, 10, 30, 30), red, 2)

	assert.Equal(t, red, img.NRGBAAt(10, 10))
	assert.Equal(t, red, img.NRGBAAt(11, 20))
	assert.Equal(t, red, img.NRGBAAt(30, 30))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(9, 10), "nothing outside the box")
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(20, 20), "interior stays clear")
}

func TestDrawLine_ClipsAndDashes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 5))
	drawLine(img, image.Pt(-5, 2), image.Pt(30, 2), red, 0)
	assert.Equal(t, red, img.NRGBAAt(0, 2))
	assert.Equal(t, red, img.NRGBAAt(19, 2))

	dashed := image.NewNRGBA(image.Rect(0, 0, 20, 5))
	drawLine(dashed, image.Pt(0, 0), image.Pt(19, 0), red, 4)
	assert.Equal(t, red, dashed.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, dashed.NRGBAAt(5, 0))
	assert.Equal(t, red, dashed.NRGBAAt(9, 0))
}

func TestDrawLabel_MovesInsideAtTopEdge(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 40))
	drawLabel(img, image.Pt(5, 0), "wildfire", red)
	assert.Equal(t, red, img.NRGBAAt(5, 0))

	img = image.NewNRGBA(image.Rect(0, 0, 100, 40))
	drawLabel(img, image.Pt(5, 30), "other", red)
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(5, 31))
	assert.Equal(t, red, img.NRGBAAt(5, 29))
}

func TestKeyState_TracksModifiers(t *testing.T) {
	k := &keyState{}
	k.down(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	k.down(&fyne.KeyEvent{Name: desktop.KeyControlRight})

	ev := k.event(fyne.KeyZ)
	assert.True(t, ev.Shift)
	assert.True(t, ev.Ctrl)
	assert.False(t, ev.Meta)

	k.up(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	k.up(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	k.up(&fyne.KeyEvent{Name: desktop.KeyControlRight})
	k.down(&fyne.KeyEvent{Name: desktop.KeySuperLeft})

	ev = k.event(fyne.KeyD)
	assert.False(t, ev.Shift, "extra key-up never goes negative")
	assert.False(t, ev.Ctrl)
	assert.True(t, ev.Meta)
	assert.Equal(t, fyne.KeyD, ev.Name)
}
