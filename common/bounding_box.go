// Package common - Types shared by the trackers, the harness and the writers.
package common

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// BoundingBox is an axis-aligned box in pixel coordinates with a top-left origin.
type BoundingBox struct {
	X      float32 `json:"x"      yaml:"x"`
	Y      float32 `json:"y"      yaml:"y"`
	Width  float32 `json:"width"  yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// NewBoundingBox creates a box from its top-left corner and size.
func NewBoundingBox(x, y, width, height float32) BoundingBox {
	return BoundingBox{X: x, Y: y, Width: width, Height: height}
}

// BoundingBoxFromRect converts an image.Rectangle into a BoundingBox.
func BoundingBoxFromRect(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return NewBoundingBox(float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()))
}

// CenterBox returns the box covering the middle half of a frame, (w/4, h/4, w/2, h/2).
//
// Integer division is applied before conversion so the result lands on whole pixels.
//
// Arguments:
// - width: The frame width in pixels.
// - height: The frame height in pixels.
//
// Returns:
// - The centered bounding box.
//
// @example
// box := CenterBox(640, 480) // (160, 120, 320, 240)
func CenterBox(width, height int) BoundingBox {
	return NewBoundingBox(float32(width/4), float32(height/4), float32(width/2), float32(height/2))
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f, %.1f)", b.X, b.Y, b.Width, b.Height)
}

// IsZero reports whether the box has never been set.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Center returns the center point of the box.
func (b BoundingBox) Center() (float32, float32) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Translate returns the box shifted by (dx, dy).
func (b BoundingBox) Translate(dx, dy float32) BoundingBox {
	b.X += dx
	b.Y += dy
	return b
}

// ClampTo keeps the box inside a frame of the given size.
//
// Width and height are first forced non-negative and no larger than the frame,
// then x is limited to [0, frameWidth-width] and y to [0, frameHeight-height].
//
// Arguments:
// - frameWidth: The frame width in pixels.
// - frameHeight: The frame height in pixels.
//
// Returns:
// - The clamped bounding box.
//
// @example
// box := BoundingBox{X: 600, Y: -5, Width: 100, Height: 80}
// box.ClampTo(640, 480) // (540, 0, 100, 80)
func (b BoundingBox) ClampTo(frameWidth, frameHeight int) BoundingBox {
	fw := float32(frameWidth)
	fh := float32(frameHeight)

	b.Width = math32.Min(math32.Max(b.Width, 0), math32.Max(fw, 0))
	b.Height = math32.Min(math32.Max(b.Height, 0), math32.Max(fh, 0))
	b.X = math32.Max(0, math32.Min(fw-b.Width, b.X))
	b.Y = math32.Max(0, math32.Min(fh-b.Height, b.Y))

	return b
}

// ToRect converts the bounding box to an image.Rectangle.
//
// Coordinates are rounded to the nearest pixel.
//
// Returns:
// - An image.Rectangle with canonicalized coordinates.
//
// @example
// box := BoundingBox{X: 100.4, Y: 100.6, Width: 50, Height: 20}
// rect := box.ToRect() // (100,101)-(150,121)
func (b BoundingBox) ToRect() image.Rectangle {
	x := int(math32.Round(b.X))
	y := int(math32.Round(b.Y))
	return image.Rect(x, y, x+int(math32.Round(b.Width)), y+int(math32.Round(b.Height))).Canon()
}
