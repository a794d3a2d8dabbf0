package fingerprint

import (
	"os"
	"path/filepath"

	"photofingerprint/imageprocessor"
	"photofingerprint/logging"
)

// generate is the per-file operation of generate mode: decode, normalize,
// write the fingerprint file into the destination directory, and embed the
// original absolute path as the comment attribute. Every failure is scoped to
// this one file.
func (s *Store) generate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	img, err := s.proc.Decode(path)
	if err != nil {
		s.recordSkip(path, err.Error(), true)
		return
	}
	norm := s.proc.Normalize(img, s.options.FingerprintWidth, s.options.FingerprintHeight)
	img.Close()
	defer norm.Close()

	outPath := filepath.Join(s.options.DstDirectory, imageprocessor.FingerprintFilename(path))
	if err := imageprocessor.WriteFingerprint(norm, outPath); err != nil {
		s.recordSkip(path, err.Error(), true)
		return
	}
	if err := s.meta.WriteComment(outPath, abs); err != nil {
		// A fingerprint without its comment attribute would later be reported
		// under a bare filename stem, useless to the review tool. Remove it so
		// a fingerprint either exists complete or not at all.
		os.Remove(outPath)
		s.recordSkip(path, err.Error(), true)
		return
	}

	logging.LogImageProcessed(path, true, "")
	s.progress.AddProcessed()
}
