package imageprocessor

import (
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
)

func TestFingerprintFilename(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"/photos/holiday/beach.jpg", "beach.tif"},
		{"/photos/IMG_0042.JPEG", "IMG_0042.tif"},
		{"archive.tar.gz", "archive.tar.tif"},
		{"/x/noext", "noext.tif"},
	}
	for _, tt := range tests {
		if got := FingerprintFilename(tt.src); got != tt.want {
			t.Errorf("FingerprintFilename(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestWriteFingerprintRoundTrip(t *testing.T) {
	src := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC1)
	defer src.Close()
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetUCharAt(y, x, uint8(y*10+x))
		}
	}

	path := filepath.Join(t.TempDir(), "fp.tif")
	if err := WriteFingerprint(src, path); err != nil {
		t.Fatalf("WriteFingerprint: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("decoding written fingerprint: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 10 || bounds.Dy() != 10 {
		t.Errorf("dimensions %dx%d, want 10x10", bounds.Dx(), bounds.Dy())
	}

	// Spot check a pixel survived the 8-to-16 bit widening.
	r, _, _, _ := img.At(3, 2).RGBA()
	if uint8(r>>8) != 23 {
		t.Errorf("pixel (3,2) = %d, want 23", uint8(r>>8))
	}
}

func TestCompareIdenticalImagesScoresZero(t *testing.T) {
	a := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer a.Close()
	b := a.Clone()
	defer b.Close()

	proc := NewProcessor()
	if score := proc.Compare(a, b, 0); score != 0 {
		t.Errorf("identical images scored %v, want 0", score)
	}
}

func TestCompareCountsDifferingPixels(t *testing.T) {
	a := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer a.Close()
	b := a.Clone()
	defer b.Close()
	for x := 0; x < 7; x++ {
		b.SetUCharAt(0, x, 200)
	}

	proc := NewProcessor()
	if score := proc.Compare(a, b, 0); score != 7 {
		t.Errorf("got score %v, want 7", score)
	}

	// A tolerance above the pixel delta absorbs all differences.
	if score := proc.Compare(a, b, 0.9); score != 0 {
		t.Errorf("fuzzed score %v, want 0", score)
	}
}

func TestNormalizeResizesToTarget(t *testing.T) {
	src := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC1)
	defer src.Close()

	proc := NewProcessor()
	norm := proc.Normalize(src, 100, 100)
	defer norm.Close()

	if norm.Cols() != 100 || norm.Rows() != 100 {
		t.Errorf("normalized to %dx%d, want 100x100", norm.Cols(), norm.Rows())
	}
}
