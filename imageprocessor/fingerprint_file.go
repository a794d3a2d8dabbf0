package imageprocessor

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
)

// FingerprintExtension is the fixed suffix of stored fingerprint files.
const FingerprintExtension = ".tif"

// FingerprintFilename maps a source image path to the flat destination
// filename of its fingerprint: the original base name with a .tif suffix.
func FingerprintFilename(srcPath string) string {
	base := filepath.Base(srcPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + FingerprintExtension
}

// WriteFingerprint stores a normalized image as an uncompressed 16-bit
// grayscale TIFF. The elevated bit depth and the absence of a lossy encoder
// keep re-decoded fingerprints byte-comparable with freshly normalized
// candidates.
func WriteFingerprint(img gocv.Mat, path string) error {
	rows, cols := img.Rows(), img.Cols()
	out := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			// Widen 0..255 to the full 16-bit range.
			v := uint16(img.GetUCharAt(y, x))
			out.SetGray16(x, y, color.Gray16{Y: v * 257})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create fingerprint file %s: %v", path, err)
	}

	if err := tiff.Encode(f, out, &tiff.Options{Compression: tiff.Uncompressed}); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("cannot encode fingerprint file %s: %v", path, err)
	}
	return f.Close()
}
