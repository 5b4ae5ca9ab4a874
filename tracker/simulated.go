package tracker

import (
	"image"
	"math/rand/v2"

	"github.com/nvr-ai/go-trackbench/common"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// randomWalk is the motion model shared by the simulated trackers.
//
// Each step moves the box by (dx, dy) drawn from N(0, sigma²) and clamps it to
// the frame. The frame pixels are not consulted.
type randomWalk struct {
	sigma       float64
	rng         *rand.Rand
	initialized bool
	box         common.BoundingBox
}

func newRandomWalk(sigma float64, rng *rand.Rand) randomWalk {
	return randomWalk{sigma: sigma, rng: rng}
}

func (w *randomWalk) start(box common.BoundingBox) {
	w.box = box
	w.initialized = true
}

func (w *randomWalk) step(frame gocv.Mat) common.BoundingBox {
	dx := w.rng.NormFloat64() * w.sigma
	dy := w.rng.NormFloat64() * w.sigma
	w.box = w.box.Translate(float32(dx), float32(dy)).ClampTo(frame.Cols(), frame.Rows())
	return w.box
}

// cropRect returns the part of rect that lies inside frame.
func cropRect(frame gocv.Mat, rect image.Rectangle) image.Rectangle {
	return rect.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
}

// cropTemplate crops box from frame. The returned Mat is a copy and must be closed.
// ok is false when the box does not overlap the frame.
func cropTemplate(frame gocv.Mat, box common.BoundingBox) (gocv.Mat, bool) {
	rect := cropRect(frame, box.ToRect())
	if rect.Empty() {
		return gocv.NewMat(), false
	}

	region := frame.Region(rect)
	defer region.Close()

	return region.Clone(), true
}

// searchRegion returns the square of side scale*max(w, h) centered on box,
// clipped to the frame.
func searchRegion(frame gocv.Mat, box common.BoundingBox, scale float32) image.Rectangle {
	cx, cy := box.Center()
	size := box.Width
	if box.Height > size {
		size = box.Height
	}
	size *= scale

	rect := image.Rect(int(cx-size/2), int(cy-size/2), int(cx+size/2), int(cy+size/2))
	return cropRect(frame, rect)
}

// randomTensor fills a tensor of the given shape with standard normal values.
// Simulated trackers build these where the real network would produce feature
// maps, so the allocation and fill cost shows up in the measured latency.
func randomTensor(rng *rand.Rand, shape ...int) *tensor.Dense {
	n := 1
	for _, s := range shape {
		n *= s
	}

	data := make([]float32, n)
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}

	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
}
