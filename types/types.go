package types

import (
	"path/filepath"
	"strings"
)

// WorkerMode selects the per-file operation a worker pool performs.
type WorkerMode int

const (
	// GenerateWorker normalizes source images into fingerprint files.
	GenerateWorker WorkerMode = iota
	// DuplicateWorker compares candidate images against loaded fingerprints.
	DuplicateWorker
	// MetadataWorker harvests capture timestamps from source images.
	MetadataWorker
)

// String returns the mode name used in logs and the run-report database.
func (m WorkerMode) String() string {
	switch m {
	case GenerateWorker:
		return "generate"
	case DuplicateWorker:
		return "find"
	case MetadataWorker:
		return "metadata"
	default:
		return "unknown"
	}
}

// WorkerOptions is the immutable per-run configuration shared by all workers.
type WorkerOptions struct {
	Mode              WorkerMode
	SrcDirectory      string
	DstDirectory      string
	NumThreads        int
	FuzzFactor        float64
	LowThreshold      float64
	HighThreshold     float64
	FingerprintWidth  int
	FingerprintHeight int
	Extensions        ExtensionSet
	DebugMode         bool
}

// MatchResult is one reported comparison between a candidate image and a
// stored fingerprint. Emitted only for identical and similar classifications.
type MatchResult struct {
	Candidate      string  `json:"candidate"`
	Match          string  `json:"match"`
	Classification string  `json:"classification"`
	Distortion     float64 `json:"distortion"`
}

// ExtensionSet is the set of recognized image suffixes. Lookup is
// case-insensitive; entries are stored with a leading dot.
type ExtensionSet map[string]bool

// NewExtensionSet builds a set from a list of suffixes, normalizing case and
// adding the leading dot where missing.
func NewExtensionSet(exts []string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// DefaultExtensions returns the suffixes recognized when no configuration
// overrides them.
func DefaultExtensions() ExtensionSet {
	return NewExtensionSet([]string{
		".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff",
	})
}

// Contains reports whether the file's extension is a recognized image suffix.
func (s ExtensionSet) Contains(path string) bool {
	return s[strings.ToLower(filepath.Ext(path))]
}

// List returns the suffixes in the set, for usage messages and run records.
func (s ExtensionSet) List() []string {
	exts := make([]string, 0, len(s))
	for ext := range s {
		exts = append(exts, ext)
	}
	return exts
}
