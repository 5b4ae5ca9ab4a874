package tracker

import (
	"image"
	"log/slog"

	"github.com/nfnt/resize"
	"github.com/nvr-ai/go-trackbench/common"
	"gocv.io/x/gocv"
)

const (
	siamrpnSigma        = 3.0
	siamrpnExemplarSize = 127
	siamrpnAnchors      = 5
	siamrpnProposals    = 1000
)

// SiamRPN simulates the SiamRPN++ Siamese region-proposal tracker.
type SiamRPN struct {
	walk     randomWalk
	exemplar image.Image
	model    *ModelInfo
}

// NewSiamRPN creates a simulated SiamRPN++ tracker.
func NewSiamRPN(opts ...Option) *SiamRPN {
	o := newOptions(opts)
	return &SiamRPN{
		walk:  newRandomWalk(siamrpnSigma, o.rng),
		model: loadCheckpoint(SiamRPNName, o.modelPath),
	}
}

// Init records box and resizes the template to the 127x127 exemplar size.
func (t *SiamRPN) Init(frame gocv.Mat, box common.BoundingBox) bool {
	t.walk.start(box)

	tmpl, ok := cropTemplate(frame, box)
	defer tmpl.Close()
	if !ok {
		return true
	}

	img, err := tmpl.ToImage()
	if err != nil {
		slog.Debug("siamrpn template conversion failed", "error", err)
		return true
	}
	t.exemplar = resize.Resize(siamrpnExemplarSize, siamrpnExemplarSize, img, resize.Bilinear)

	return true
}

// Update builds placeholder anchor proposals and drifts the box.
func (t *SiamRPN) Update(frame gocv.Mat) (bool, common.BoundingBox) {
	if !t.walk.initialized || frame.Empty() {
		return false, t.walk.box
	}

	_ = randomTensor(t.walk.rng, siamrpnAnchors, siamrpnProposals, 4)

	return true, t.walk.step(frame)
}

// Exemplar returns the resized template captured by Init, or nil.
func (t *SiamRPN) Exemplar() image.Image { return t.exemplar }

// Model returns the probed checkpoint, or nil when none was loaded.
func (t *SiamRPN) Model() *ModelInfo { return t.model }

// Name returns "SiamRPN++".
func (t *SiamRPN) Name() string { return SiamRPNName }

// Close drops the exemplar.
func (t *SiamRPN) Close() error {
	t.exemplar = nil
	return nil
}
