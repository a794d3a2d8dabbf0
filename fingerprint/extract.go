package fingerprint

import (
	"photofingerprint/logging"
)

// extractMetadata is the per-file operation of metadata mode: read the
// capture timestamp and emit one path<TAB>timestamp line. Files without the
// attribute, like unreadable files, are skipped without comment; the mode is
// best-effort harvesting, not validation.
func (s *Store) extractMetadata(path string) {
	timestamp, err := s.meta.CaptureTime(path)
	if err != nil {
		logging.LogImageProcessed(path, false, err.Error())
		s.progress.AddSkipped()
		return
	}
	if timestamp == "" {
		s.progress.AddSkipped()
		return
	}

	if err := s.emitter.EmitLine(path + "\t" + timestamp); err != nil {
		logging.LogError("Cannot emit timestamp for %s: %v", path, err)
		return
	}
	s.progress.AddProcessed()
}
