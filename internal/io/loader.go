// Detection image loading through OpenCV
package io

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrUnsupportedFormat is returned for files with an unknown image extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp", ".webp"}

// ImageLoader reads image files from disk.
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage reads a colour image. The caller owns the returned Mat.
func (il *ImageLoader) LoadImage(path string) (gocv.Mat, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !IsSupportedImageFormat(path) {
		return gocv.NewMat(), fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return gocv.NewMat(), fmt.Errorf("failed to load image: %s", path)
	}
	if err := ValidateImage(mat); err != nil {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image loaded successfully")

	return mat, nil
}

// Decode loads an image file and converts it for display.
func (il *ImageLoader) Decode(path string) (image.Image, ImageMetadata, error) {
	mat, err := il.LoadImage(path)
	if err != nil {
		return nil, ImageMetadata{}, err
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return nil, ImageMetadata{}, fmt.Errorf("failed to convert image %s: %w", path, err)
	}

	meta := metadataFor(mat, path)
	if info, err := os.Stat(path); err == nil {
		meta.Size = info.Size()
	}
	return img, meta, nil
}

// IsSupportedImageFormat checks the file extension.
func IsSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// PathResolver maps a detection id to its image file.
type PathResolver interface {
	ImagePath(detectionID string) (string, error)
}

// DatasetImages serves detection images from the dataset directory.
type DatasetImages struct {
	paths  PathResolver
	loader *ImageLoader
}

func NewDatasetImages(paths PathResolver, loader *ImageLoader) *DatasetImages {
	return &DatasetImages{paths: paths, loader: loader}
}

// Image loads the image of a detection. Decoding is not interruptible, so
// ctx is only checked before the read starts.
func (d *DatasetImages) Image(ctx context.Context, detectionID string) (image.Image, error) {
	path, err := d.paths.ImagePath(detectionID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, meta, err := d.loader.Decode(path)
	if err != nil {
		return nil, err
	}
	d.loader.logger.WithFields(logrus.Fields{
		"detection_id": detectionID,
		"format":       meta.Format,
		"bytes":        meta.Size,
	}).Debug("Detection image decoded")
	return img, nil
}
