package tracker

import (
	"github.com/nvr-ai/go-trackbench/common"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

const (
	dimpSigma       = 2.5
	dimpChannels    = 256
	dimpFeatureSize = 18
)

// DiMP simulates the discriminative model prediction tracker.
type DiMP struct {
	walk     randomWalk
	features *tensor.Dense
	model    *ModelInfo
}

// NewDiMP creates a simulated DiMP tracker.
func NewDiMP(opts ...Option) *DiMP {
	o := newOptions(opts)
	return &DiMP{
		walk:  newRandomWalk(dimpSigma, o.rng),
		model: loadCheckpoint(DiMPName, o.modelPath),
	}
}

// Init records box and builds the placeholder 256x18x18 target model.
func (t *DiMP) Init(frame gocv.Mat, box common.BoundingBox) bool {
	t.walk.start(box)

	tmpl, _ := cropTemplate(frame, box)
	tmpl.Close()

	t.features = randomTensor(t.walk.rng, dimpChannels, dimpFeatureSize, dimpFeatureSize)
	return true
}

// Update builds placeholder score and IoU maps and drifts the box.
func (t *DiMP) Update(frame gocv.Mat) (bool, common.BoundingBox) {
	if !t.walk.initialized || frame.Empty() {
		return false, t.walk.box
	}

	_ = randomTensor(t.walk.rng, 1, dimpFeatureSize, dimpFeatureSize)
	_ = randomTensor(t.walk.rng, 1, dimpFeatureSize, dimpFeatureSize)

	return true, t.walk.step(frame)
}

// Features returns the target model built by Init, or nil.
func (t *DiMP) Features() *tensor.Dense { return t.features }

// Model returns the probed checkpoint, or nil when none was loaded.
func (t *DiMP) Model() *ModelInfo { return t.model }

// Name returns "DiMP".
func (t *DiMP) Name() string { return DiMPName }

// Close drops the target model.
func (t *DiMP) Close() error {
	t.features = nil
	return nil
}
