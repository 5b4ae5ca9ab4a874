package video

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Synthetic test video geometry.
const (
	TestVideoWidth  = 640
	TestVideoHeight = 480
	TestVideoFPS    = 30.0
	TestVideoFrames = 500
)

var (
	testBackground = gocv.NewScalar(50, 50, 50, 0)
	testTarget     = color.RGBA{G: 255}
)

// TargetRect returns where the moving rectangle sits in frame i of the test video.
func TargetRect(i int) image.Rectangle {
	x := int(100+float64(i)*0.5) % 540
	y := 200 + int(50*math.Sin(float64(i)*0.05))
	return image.Rect(x, y, x+100, y+80)
}

// RenderTestFrame draws frame i of the test video into dst.
//
// The frame is a gray background with a filled green 100x80 rectangle moving
// right along a sine path, plus uniform noise in [0, 20) on every channel.
func RenderTestFrame(i int, dst *gocv.Mat) {
	frame := gocv.NewMatWithSizeFromScalar(testBackground, TestVideoHeight, TestVideoWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	gocv.Rectangle(&frame, TargetRect(i), testTarget, -1)

	noise := gocv.NewMatWithSize(TestVideoHeight, TestVideoWidth, gocv.MatTypeCV8UC3)
	defer noise.Close()
	gocv.RandU(&noise, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(20, 20, 20, 0))

	gocv.Add(frame, noise, dst)
}

// CreateTestVideo writes a synthetic 640x480 mp4v video with a moving target.
//
// Arguments:
// - path: Output file; parent directories are created.
// - frames: Number of frames to write (default: 500 when <= 0).
//
// Returns:
// - An error if the writer cannot be opened or a frame cannot be written.
func CreateTestVideo(path string, frames int) error {
	if frames <= 0 {
		frames = TestVideoFrames
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create video directory")
	}

	writer, err := gocv.VideoWriterFile(path, "mp4v", TestVideoFPS, TestVideoWidth, TestVideoHeight, true)
	if err != nil {
		return errors.Wrapf(err, "failed to open video writer %s", path)
	}
	defer writer.Close()

	if !writer.IsOpened() {
		return errors.Errorf("video writer for %s did not open", path)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for i := 0; i < frames; i++ {
		RenderTestFrame(i, &frame)
		if err := writer.Write(frame); err != nil {
			return errors.Wrapf(err, "failed to write frame %d", i)
		}
	}

	return nil
}
