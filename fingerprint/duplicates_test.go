package fingerprint

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"photofingerprint/report"
	"photofingerprint/types"

	"gocv.io/x/gocv"
)

// matchStore builds a store wired for duplicate finding: thresholds 10/1000,
// zero fuzz, matches emitted to out.
func matchStore(t *testing.T, out io.Writer) *Store {
	t.Helper()
	options := testOptions(1)
	options.Mode = types.DuplicateWorker
	options.FuzzFactor = 0
	options.LowThreshold = 10
	options.HighThreshold = 1000
	store := NewStore(options, nil, report.NewEmitter(out))
	store.progress = NewProgressTracker()
	t.Cleanup(store.progress.Stop)
	t.Cleanup(store.Close)
	return store
}

func TestFindMatchesReportsIdenticalFingerprint(t *testing.T) {
	var out bytes.Buffer
	store := matchStore(t, &out)

	keeper := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	unrelated := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 100, 100, gocv.MatTypeCV8UC1)
	store.fingerprints = []Fingerprint{
		{Image: keeper, Name: "/photos/keeper.jpg"},
		{Image: unrelated, Name: "/photos/unrelated.jpg"},
	}

	candidate := keeper.Clone()
	defer candidate.Close()
	store.findMatchesForImage(candidate, "/photos/copy.jpg")

	var results []types.MatchResult
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r types.MatchResult
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("decoding match result: %v", err)
		}
		results = append(results, r)
	}

	if len(results) != 1 {
		t.Fatalf("got %d match results, want 1 (distinct pair must be suppressed): %v", len(results), results)
	}
	r := results[0]
	if r.Candidate != "/photos/copy.jpg" {
		t.Errorf("candidate = %q, want /photos/copy.jpg", r.Candidate)
	}
	if r.Match != "/photos/keeper.jpg" {
		t.Errorf("match = %q, want the stored fingerprint identity", r.Match)
	}
	if r.Classification != "identical" {
		t.Errorf("classification = %q, want identical", r.Classification)
	}
	if r.Distortion != 0 {
		t.Errorf("distortion = %v, want 0 for an identical candidate", r.Distortion)
	}
}

func TestFindMatchesReportsSimilarFingerprint(t *testing.T) {
	var out bytes.Buffer
	store := matchStore(t, &out)

	fp := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	store.fingerprints = []Fingerprint{{Image: fp, Name: "/photos/near.jpg"}}

	// 500 differing pixels sits between the 10/1000 thresholds.
	candidate := fp.Clone()
	defer candidate.Close()
	for y := 0; y < 5; y++ {
		for x := 0; x < 100; x++ {
			candidate.SetUCharAt(y, x, 200)
		}
	}
	store.findMatchesForImage(candidate, "/photos/edited.jpg")

	var r types.MatchResult
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("decoding match result: %v", err)
	}
	if r.Classification != "similar" {
		t.Errorf("classification = %q, want similar", r.Classification)
	}
	if r.Distortion != 500 {
		t.Errorf("distortion = %v, want 500", r.Distortion)
	}
}

func TestFindMatchesIsDeterministicAcrossRuns(t *testing.T) {
	var first, second bytes.Buffer
	fp := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer fp.Close()
	candidate := fp.Clone()
	defer candidate.Close()

	for _, out := range []*bytes.Buffer{&first, &second} {
		store := matchStore(t, out)
		store.fingerprints = []Fingerprint{{Image: fp.Clone(), Name: "/photos/keeper.jpg"}}
		store.findMatchesForImage(candidate, "/photos/copy.jpg")
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("two runs over the same set disagree:\n%s\n%s", first.Bytes(), second.Bytes())
	}
}

func TestFindDuplicatesSkipsUndecodableFile(t *testing.T) {
	var out bytes.Buffer
	store := matchStore(t, &out)
	fp := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	store.fingerprints = []Fingerprint{{Image: fp, Name: "/photos/keeper.jpg"}}

	// Recognized extension, empty content: decode must fail without aborting
	// the run or emitting anything.
	empty := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	store.findDuplicates(empty)

	if processed, skipped := store.Counts(); processed != 0 || skipped != 1 {
		t.Errorf("counts = %d processed, %d skipped, want 0/1", processed, skipped)
	}
	if out.Len() != 0 {
		t.Errorf("undecodable candidate produced output: %s", out.Bytes())
	}
}
