package imageprocessor

import (
	"os"
	"path/filepath"
	"strings"

	"photofingerprint/logging"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
)

// StandardImageLoader handles common image formats like JPEG, PNG, etc.
type StandardImageLoader struct{}

// NewStandardImageLoader creates a new loader for standard image formats
func NewStandardImageLoader() *StandardImageLoader {
	return &StandardImageLoader{}
}

// CanLoad checks if this loader can handle the given file
func (l *StandardImageLoader) CanLoad(path string) bool {
	return fileExists(path)
}

// LoadImage loads a standard image format, falling back to a pure-Go decode
// when OpenCV cannot read the file.
func (l *StandardImageLoader) LoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if !img.Empty() {
		return img, nil
	}

	// Fall back to Go decoding; imaging applies the EXIF orientation so
	// rotated camera files normalize the same way as their upright copies.
	goImg, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return gocv.NewMat(), newImageLoadError("failed to load image", path)
	}
	return matFromImage(goImg)
}

// TiffImageLoader specializes in TIFF format loading
type TiffImageLoader struct{}

// NewTiffImageLoader creates a new TIFF image loader
func NewTiffImageLoader() *TiffImageLoader {
	return &TiffImageLoader{}
}

// CanLoad checks if this loader can handle the given file
func (l *TiffImageLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return (ext == ".tif" || ext == ".tiff") && fileExists(path)
}

// LoadImage implements specialized loading for TIFF images, including the
// uncompressed Gray16 fingerprint files this tool writes itself.
func (l *TiffImageLoader) LoadImage(path string) (gocv.Mat, error) {
	// Standard OpenCV loading works for most TIFF files
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if !img.Empty() {
		return img, nil
	}

	logging.LogInfo("OpenCV could not read TIFF %s, trying Go decoder", path)

	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), newImageLoadError("failed to open TIFF image", path)
	}
	defer f.Close()

	goImg, err := tiff.Decode(f)
	if err != nil {
		return gocv.NewMat(), newImageLoadError("failed to decode TIFF image", path)
	}
	return matFromImage(goImg)
}
