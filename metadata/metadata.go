// Package metadata reads and writes image attributes through exiftool: the
// embedded comment that ties a fingerprint back to its source photo, and the
// capture timestamp harvested in metadata mode.
package metadata

import (
	"fmt"
	"sync"
	"time"

	"github.com/barasher/go-exiftool"
)

const (
	// commentKey is the attribute carrying the original absolute source path
	// inside a fingerprint file.
	commentKey = "ImageDescription"

	// captureTimeKey is the EXIF attribute holding the capture timestamp.
	captureTimeKey = "DateTimeOriginal"

	// exifTimeLayout is the timestamp format found in EXIF data.
	exifTimeLayout = "2006:01:02 15:04:05"

	// outputTimeLayout is the timestamp format emitted by metadata mode.
	outputTimeLayout = "2006-01-02 15:04:05"
)

// Tool wraps a long-lived exiftool process. The underlying process is not
// safe for concurrent calls, so every operation is serialized on a mutex.
type Tool struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewTool starts the exiftool process. Callers must Close it when done.
func NewTool() (*Tool, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("cannot start exiftool: %v", err)
	}
	return &Tool{et: et}, nil
}

// Close stops the underlying exiftool process.
func (t *Tool) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.et.Close()
}

// ReadComment returns the embedded comment attribute of an image, or an empty
// string when the attribute is absent.
func (t *Tool) ReadComment(path string) (string, error) {
	value, err := t.readField(path, commentKey)
	if err != nil {
		return "", err
	}
	return value, nil
}

// WriteComment embeds a comment attribute in an image file.
func (t *Tool) WriteComment(path, comment string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	fm.SetString(commentKey, comment)

	fms := []exiftool.FileMetadata{fm}
	t.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("cannot write comment to %s: %v", path, fms[0].Err)
	}
	return nil
}

// CaptureTime returns the capture timestamp of an image converted to the
// output format, or an empty string when the attribute is absent.
func (t *Tool) CaptureTime(path string) (string, error) {
	raw, err := t.readField(path, captureTimeKey)
	if err != nil || raw == "" {
		return "", err
	}
	return ConvertTimestamp(raw)
}

// readField extracts a single metadata field. A missing key is not an error;
// it yields an empty string.
func (t *Tool) readField(path, key string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fms := t.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return "", fmt.Errorf("no metadata result for %s", path)
	}
	if fms[0].Err != nil {
		return "", fmt.Errorf("cannot read metadata from %s: %v", path, fms[0].Err)
	}

	value, err := fms[0].GetString(key)
	if err != nil {
		return "", nil
	}
	return value, nil
}

// ConvertTimestamp rewrites an EXIF timestamp (YYYY:MM:DD HH:MM:SS) into the
// output format (YYYY-MM-DD HH:MM:SS).
func ConvertTimestamp(raw string) (string, error) {
	ts, err := time.Parse(exifTimeLayout, raw)
	if err != nil {
		return "", fmt.Errorf("unrecognized timestamp %q: %v", raw, err)
	}
	return ts.Format(outputTimeLayout), nil
}
