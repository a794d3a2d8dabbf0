package fingerprint

import (
	"photofingerprint/database"
	"photofingerprint/logging"
	"photofingerprint/types"

	"gocv.io/x/gocv"
)

// findDuplicates is the per-file operation of duplicate-finding mode: decode
// a candidate, normalize it the same way stored fingerprints were, and
// compare it against the full loaded set.
func (s *Store) findDuplicates(path string) {
	img, err := s.proc.Decode(path)
	if err != nil {
		s.recordSkip(path, err.Error(), false)
		return
	}
	norm := s.proc.Normalize(img, s.options.FingerprintWidth, s.options.FingerprintHeight)
	img.Close()
	defer norm.Close()

	s.findMatchesForImage(norm, path)
	s.progress.AddProcessed()
}

// findMatchesForImage compares a normalized candidate against every loaded
// fingerprint in load order. Every fingerprint is checked, so a candidate may
// match more than one. Only identical and similar pairs are reported.
func (s *Store) findMatchesForImage(img gocv.Mat, candidate string) {
	for i := range s.fingerprints {
		fp := &s.fingerprints[i]
		distortion := s.proc.Compare(img, fp.Image, s.options.FuzzFactor)

		class := Classify(distortion, s.options.LowThreshold, s.options.HighThreshold)
		if class == Distinct {
			continue
		}

		result := types.MatchResult{
			Candidate:      candidate,
			Match:          fp.Name,
			Classification: class.String(),
			Distortion:     distortion,
		}
		if err := s.emitter.EmitMatch(result); err != nil {
			logging.LogError("Cannot emit match for %s: %v", candidate, err)
		}
		if s.db != nil {
			if err := database.RecordMatch(s.db, s.runID, result); err != nil {
				logging.LogError("Cannot record match for %s: %v", candidate, err)
			}
		}
	}
}
