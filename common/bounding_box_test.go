package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCenterBox(t *testing.T) {
	box := CenterBox(640, 480)
	assert.Equal(t, BoundingBox{X: 160, Y: 120, Width: 320, Height: 240}, box)

	// Odd sizes use integer division like the frame dimensions themselves.
	box = CenterBox(641, 481)
	assert.Equal(t, BoundingBox{X: 160, Y: 120, Width: 320, Height: 240}, box)
}

func TestClampTo(t *testing.T) {
	tests := []struct {
		name string
		in   BoundingBox
		want BoundingBox
	}{
		{"inside", NewBoundingBox(10, 10, 100, 80), NewBoundingBox(10, 10, 100, 80)},
		{"past right edge", NewBoundingBox(600, 10, 100, 80), NewBoundingBox(540, 10, 100, 80)},
		{"negative origin", NewBoundingBox(-5, -7, 100, 80), NewBoundingBox(0, 0, 100, 80)},
		{"past bottom edge", NewBoundingBox(0, 470, 100, 80), NewBoundingBox(0, 400, 100, 80)},
		{"larger than frame", NewBoundingBox(3, 3, 800, 600), NewBoundingBox(0, 0, 640, 480)},
		{"negative size", NewBoundingBox(3, 3, -1, -1), NewBoundingBox(3, 3, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.ClampTo(640, 480))
		})
	}
}

func TestRectRoundTrip(t *testing.T) {
	r := image.Rect(10, 20, 110, 100)
	box := BoundingBoxFromRect(r)
	assert.Equal(t, NewBoundingBox(10, 20, 100, 80), box)
	assert.Equal(t, r, box.ToRect())
}

func TestTranslateAndCenter(t *testing.T) {
	box := NewBoundingBox(10, 10, 20, 40).Translate(5, -5)
	assert.Equal(t, NewBoundingBox(15, 5, 20, 40), box)

	cx, cy := box.Center()
	assert.Equal(t, float32(25), cx)
	assert.Equal(t, float32(25), cy)
	assert.False(t, box.IsZero())
	assert.True(t, BoundingBox{}.IsZero())
}
