package fingerprint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"photofingerprint/types"
)

func testOptions(threads int) types.WorkerOptions {
	return types.WorkerOptions{
		Mode:              types.GenerateWorker,
		NumThreads:        threads,
		FingerprintWidth:  100,
		FingerprintHeight: 100,
		Extensions:        types.DefaultExtensions(),
	}
}

func TestWorkerPoolVisitsEachRecognizedFileOnce(t *testing.T) {
	root := t.TempDir()
	want := []string{"a.jpg", "b.png", "c.tif"}
	for _, name := range want {
		writeFile(t, filepath.Join(root, name))
	}
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "video.mp4"))
	if err := os.Mkdir(filepath.Join(root, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "nested", "d.jpeg"))
	want = append(want, "d.jpeg")

	store := NewStore(testOptions(4), nil, nil)

	var mu sync.Mutex
	var seen []string
	err := store.runWorkerPool(root, func(path string) {
		mu.Lock()
		seen = append(seen, filepath.Base(path))
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("runWorkerPool: %v", err)
	}

	sort.Strings(seen)
	sort.Strings(want)
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("visited %v, want %v", seen, want)
		}
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("img%02d.jpg", i)))
	}

	const threads = 3
	store := NewStore(testOptions(threads), nil, nil)

	var inFlight, peak int64
	err := store.runWorkerPool(root, func(path string) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
	})
	if err != nil {
		t.Fatalf("runWorkerPool: %v", err)
	}

	if got := atomic.LoadInt64(&peak); got > threads {
		t.Errorf("observed %d concurrent operations, want at most %d", got, threads)
	}
}

func TestWorkerPoolOnEmptyDirectory(t *testing.T) {
	store := NewStore(testOptions(2), nil, nil)
	calls := 0
	err := store.runWorkerPool(t.TempDir(), func(string) { calls++ })
	if err != nil {
		t.Fatalf("runWorkerPool: %v", err)
	}
	if calls != 0 {
		t.Errorf("op called %d times on empty directory", calls)
	}
}

func TestFingerprintNameFallsBackToStem(t *testing.T) {
	store := NewStore(testOptions(1), nil, nil)
	if got := store.fingerprintName("/fp/IMG_0042.tif"); got != "IMG_0042" {
		t.Errorf("fingerprintName = %q, want IMG_0042", got)
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}
