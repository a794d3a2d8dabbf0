package imageprocessor

import (
	"image"

	"gocv.io/x/gocv"
)

// Processor decodes, normalizes and compares images. It is safe for use by
// concurrent workers: the loader registry is read-only after construction and
// every call operates on its own Mats.
type Processor struct {
	registry *ImageLoaderRegistry
}

// NewProcessor creates a processor with the default loader registry
func NewProcessor() *Processor {
	return &Processor{
		registry: NewImageLoaderRegistry(),
	}
}

// Decode loads an image as single-channel grayscale using the loader
// registered for its extension. The caller owns the returned Mat.
func (p *Processor) Decode(path string) (gocv.Mat, error) {
	loader := p.registry.LoaderFor(path)
	if loader != nil && loader.CanLoad(path) {
		return loader.LoadImage(path)
	}

	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		return img, newImageLoadError("failed to load image", path)
	}
	return img, nil
}

// Normalize resizes a decoded image to the fingerprint dimensions. Candidate
// images and stored fingerprints pass through the same call, which is what
// makes their pixels directly comparable. The caller owns the returned Mat.
func (p *Processor) Normalize(img gocv.Mat, width, height int) gocv.Mat {
	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)
	return resized
}

// Compare computes the distortion score between two normalized images: the
// number of sample points whose absolute difference exceeds the fuzz
// tolerance. fuzz is a fraction of the full channel range, so 0 counts every
// differing pixel. For WxH fingerprints the score ranges 0..W*H; lower means
// more similar.
func (p *Processor) Compare(a, b gocv.Mat, fuzz float64) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, float32(fuzz*255.0), 255, gocv.ThresholdBinary)

	return float64(gocv.CountNonZero(mask))
}
