package tracker

import (
	"github.com/nvr-ai/go-trackbench/common"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// CSRT wraps the OpenCV Channel and Spatial Reliability Tracker.
type CSRT struct {
	tracker     gocv.Tracker
	initialized bool
	box         common.BoundingBox
}

// NewCSRT creates an OpenCV CSRT tracker. Call Close to release it.
func NewCSRT() *CSRT {
	return &CSRT{tracker: contrib.NewTrackerCSRT()}
}

// Init initializes the OpenCV tracker on frame.
func (t *CSRT) Init(frame gocv.Mat, box common.BoundingBox) bool {
	t.box = box
	t.initialized = t.tracker.Init(frame, box.ToRect())
	return t.initialized
}

// Update returns what OpenCV reports. On failure the last good box is kept.
func (t *CSRT) Update(frame gocv.Mat) (bool, common.BoundingBox) {
	if !t.initialized || frame.Empty() {
		return false, t.box
	}

	rect, ok := t.tracker.Update(frame)
	if ok {
		t.box = common.BoundingBoxFromRect(rect)
	}
	return ok, t.box
}

// Name returns "CSRT".
func (t *CSRT) Name() string { return CSRTName }

// Close releases the OpenCV tracker.
func (t *CSRT) Close() error {
	return t.tracker.Close()
}
