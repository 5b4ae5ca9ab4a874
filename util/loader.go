package util

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the frame number of the image file.
	Frame int
}

// frameNumber matches the trailing digits of names like frame-0012.jpg or 0012.png.
var frameNumber = regexp.MustCompile(`(\d+)$`)

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}

// ListDirectoryImageFiles returns the image files of a directory ordered by frame number
// without reading them.
//
// Arguments:
// - dir: Directory path containing image files named with a trailing frame number.
//
// Returns:
// - []ImageFile: Files with Path and Frame set, sorted by Frame.
// - error: Error if the directory cannot be read or a name carries no frame number.
func ListDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() || !IsImageFile(file.Name()) {
			continue
		}

		stem := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		match := frameNumber.FindString(stem)
		if match == "" {
			return nil, errors.Errorf("image %s has no frame number", file.Name())
		}
		frame, err := strconv.Atoi(match)
		if err != nil {
			return nil, errors.Wrapf(err, "image %s", file.Name())
		}

		images = append(images, ImageFile{
			Path:  filepath.Join(dir, file.Name()),
			Frame: frame,
		})
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Frame < images[j].Frame
	})

	return images, nil
}
