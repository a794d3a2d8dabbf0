// Package imageprocessor provides the image gateway: decoding with fallback
// loaders, fingerprint normalization, the fingerprint file codec, and the
// pixel-difference comparison primitive.
package imageprocessor

import "gocv.io/x/gocv"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage loads and returns the image as a single-channel grayscale Mat
	LoadImage(path string) (gocv.Mat, error)
}
