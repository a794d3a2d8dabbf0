package fingerprint

// Classification buckets a distortion score relative to the two configured
// thresholds.
type Classification int

const (
	// Identical means the distortion fell below the low threshold.
	Identical Classification = iota
	// Similar means the distortion fell between the two thresholds.
	Similar
	// Distinct means the distortion reached the high threshold; distinct
	// pairs are never reported.
	Distinct
)

// String returns the classification name used in emitted results.
func (c Classification) String() string {
	switch c {
	case Identical:
		return "identical"
	case Similar:
		return "similar"
	default:
		return "distinct"
	}
}

// Classify buckets a distortion score. Lower scores mean more similar images;
// the thresholds are run-level configuration, tuned per corpus.
func Classify(distortion, lowThreshold, highThreshold float64) Classification {
	if distortion < lowThreshold {
		return Identical
	}
	if distortion < highThreshold {
		return Similar
	}
	return Distinct
}
