// Package video opens the frame sources the benchmark harness reads from.
package video

import (
	"log/slog"
	"os"

	"github.com/nvr-ai/go-trackbench/util"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrOpen is returned when a source cannot be opened.
var ErrOpen = errors.New("cannot open video")

// Source yields decoded frames in order.
type Source interface {
	// Read decodes the next frame into frame and reports whether one was available.
	Read(frame *gocv.Mat) bool
	// FrameCount returns the number of frames the source advertises, or 0 if unknown.
	FrameCount() int
	// Close releases the source.
	Close() error
}

// Opener opens a Source for a path.
type Opener func(path string) (Source, error)

// Open opens a video file, or a directory of numbered frame images.
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	if info.IsDir() {
		return OpenImageSequence(path)
	}
	return OpenFile(path)
}

type capture struct {
	vc *gocv.VideoCapture
}

// OpenFile opens a video file through OpenCV.
func OpenFile(path string) (Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Wrapf(ErrOpen, "%s", path)
	}
	return &capture{vc: vc}, nil
}

func (c *capture) Read(frame *gocv.Mat) bool {
	return c.vc.Read(frame) && !frame.Empty()
}

func (c *capture) FrameCount() int {
	n := int(c.vc.Get(gocv.VideoCaptureFrameCount))
	if n < 0 {
		return 0
	}
	return n
}

func (c *capture) Close() error {
	return c.vc.Close()
}

type imageSequence struct {
	files []util.ImageFile
	next  int
}

// OpenImageSequence opens a directory of images named with a trailing frame number.
// Images are decoded lazily, one per Read.
func OpenImageSequence(dir string) (Source, error) {
	files, err := util.ListDirectoryImageFiles(dir)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "%s: %v", dir, err)
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrOpen, "%s: no images", dir)
	}
	return &imageSequence{files: files}, nil
}

// Read decodes the next image. Unreadable images are skipped with a warning.
func (s *imageSequence) Read(frame *gocv.Mat) bool {
	for s.next < len(s.files) {
		file := s.files[s.next]
		s.next++

		data, err := os.ReadFile(file.Path)
		if err != nil {
			slog.Warn("skipping unreadable frame", "path", file.Path, "error", err)
			continue
		}

		decoded, err := gocv.IMDecode(data, gocv.IMReadColor)
		if err != nil {
			slog.Warn("skipping undecodable frame", "path", file.Path, "error", err)
			continue
		}
		if decoded.Empty() {
			decoded.Close()
			slog.Warn("skipping empty frame", "path", file.Path)
			continue
		}

		decoded.CopyTo(frame)
		decoded.Close()
		return true
	}
	return false
}

func (s *imageSequence) FrameCount() int {
	return len(s.files)
}

func (s *imageSequence) Close() error {
	s.next = len(s.files)
	return nil
}
