package tracker

import (
	"image"

	"github.com/nvr-ai/go-trackbench/common"
	"gocv.io/x/gocv"
)

const (
	ostrackSigma       = 2.0
	ostrackSearchScale = 4.0
	ostrackFeatureDim  = 256
)

// OSTrack simulates the one-stream transformer tracker.
type OSTrack struct {
	walk         randomWalk
	templateSize image.Point
	model        *ModelInfo
}

// NewOSTrack creates a simulated OSTrack tracker.
func NewOSTrack(opts ...Option) *OSTrack {
	o := newOptions(opts)
	return &OSTrack{
		walk:  newRandomWalk(ostrackSigma, o.rng),
		model: loadCheckpoint(OSTrackName, o.modelPath),
	}
}

// Init records box and the size of the template it covers.
func (t *OSTrack) Init(frame gocv.Mat, box common.BoundingBox) bool {
	t.walk.start(box)

	tmpl, ok := cropTemplate(frame, box)
	defer tmpl.Close()
	if ok {
		t.templateSize = image.Pt(tmpl.Cols(), tmpl.Rows())
	}

	return true
}

// Update crops the search region, builds a placeholder feature map and drifts the box.
func (t *OSTrack) Update(frame gocv.Mat) (bool, common.BoundingBox) {
	if !t.walk.initialized || frame.Empty() {
		return false, t.walk.box
	}

	if rect := searchRegion(frame, t.walk.box, ostrackSearchScale); !rect.Empty() {
		search := frame.Region(rect)
		search.Close()
	}

	_ = randomTensor(t.walk.rng, ostrackFeatureDim, ostrackFeatureDim, 3)

	return true, t.walk.step(frame)
}

// TemplateSize returns the size of the template captured by Init.
func (t *OSTrack) TemplateSize() image.Point { return t.templateSize }

// Model returns the probed checkpoint, or nil when none was loaded.
func (t *OSTrack) Model() *ModelInfo { return t.model }

// Name returns "OSTrack".
func (t *OSTrack) Name() string { return OSTrackName }

// Close is a no-op; OSTrack holds no native resources.
func (t *OSTrack) Close() error { return nil }
