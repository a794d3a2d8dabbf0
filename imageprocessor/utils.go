package imageprocessor

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// Utility functions used across the various image loaders

// Convert a Go standard library image to a grayscale OpenCV Mat
func matFromImage(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return gocv.NewMat(), fmt.Errorf("cannot convert empty image")
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// Convert from 0-65535 to 0-255
			mat.SetUCharAt3(y, x, 0, uint8(b>>8))
			mat.SetUCharAt3(y, x, 1, uint8(g>>8))
			mat.SetUCharAt3(y, x, 2, uint8(r>>8))
		}
	}

	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	mat.Close()

	return gray, nil
}

// Check if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Helper function to create standardized image load errors
func newImageLoadError(message, path string) error {
	return fmt.Errorf("%s: %s", message, path)
}
