// Package fingerprint owns the three operating modes of the pipeline:
// generating normalized fingerprint files, finding duplicates against a
// loaded fingerprint set, and harvesting capture timestamps. Each mode runs a
// directory crawler plus a pool of workers draining the shared path queue.
package fingerprint

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photofingerprint/database"
	"photofingerprint/imageprocessor"
	"photofingerprint/logging"
	"photofingerprint/report"
	"photofingerprint/types"
	"photofingerprint/walker"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// Fingerprint is one stored fingerprint held in memory: the normalized image
// and the display identity reported on a match.
type Fingerprint struct {
	Image gocv.Mat
	Name  string
}

// MetadataTool is the attribute access the store needs; *metadata.Tool is the
// shipped implementation.
type MetadataTool interface {
	ReadComment(path string) (string, error)
	WriteComment(path, comment string) error
	CaptureTime(path string) (string, error)
}

// Store owns the fingerprint set and the worker pools that operate on it.
// The fingerprint slice is filled once, single-threaded, by Load and never
// mutated afterward, which is what makes lock-free concurrent reads from the
// comparison workers safe.
type Store struct {
	options      types.WorkerOptions
	proc         *imageprocessor.Processor
	meta         MetadataTool
	emitter      *report.Emitter
	progress     *ProgressTracker
	fingerprints []Fingerprint

	db    *sql.DB
	runID int64
}

// NewStore creates a store for one run. meta may be nil only when the mode
// needs no attribute access (never the case for the shipped modes, but tests
// exercise the pool without it).
func NewStore(options types.WorkerOptions, meta MetadataTool, emitter *report.Emitter) *Store {
	return &Store{
		options: options,
		proc:    imageprocessor.NewProcessor(),
		meta:    meta,
		emitter: emitter,
	}
}

// AttachReportDB enables run-report persistence for this store.
func (s *Store) AttachReportDB(db *sql.DB, runID int64) {
	s.db = db
	s.runID = runID
}

// Counts returns the processed and skipped counters of the last worker pool.
func (s *Store) Counts() (processed, skipped int) {
	if s.progress == nil {
		return 0, 0
	}
	return s.progress.Counts()
}

// Load performs the single-threaded load phase of duplicate finding: a fully
// recursive crawl of the fingerprint directory, decoding every recognized
// image into memory. It returns the number of fingerprints loaded. Unreadable
// entries are skipped; they fail only themselves, not the load. Must complete
// before RunWorkers starts comparing.
func (s *Store) Load() int {
	queue := walker.NewPathQueue()
	crawler := walker.NewCrawler(queue)
	crawler.Start(s.options.SrcDirectory, true)

	fmt.Fprintln(os.Stderr, "Loading fingerprints into memory...")
	loaded := 0
	for {
		path, ok := queue.Next()
		if !ok {
			break
		}
		if !s.options.Extensions.Contains(path) {
			continue
		}

		img, err := s.proc.Decode(path)
		if err != nil {
			logging.LogWarning("Cannot load fingerprint %s: %v", path, err)
			continue
		}
		norm := s.proc.Normalize(img, s.options.FingerprintWidth, s.options.FingerprintHeight)
		img.Close()

		s.fingerprints = append(s.fingerprints, Fingerprint{
			Image: norm,
			Name:  s.fingerprintName(path),
		})
		loaded++
		fmt.Fprintf(os.Stderr, "\r%d", loaded)
	}
	crawler.Join()
	fmt.Fprintf(os.Stderr, "\rLoaded %d fingerprints\n", loaded)

	return loaded
}

// fingerprintName resolves the display identity of a stored fingerprint: the
// embedded comment attribute when present, else the filename stem.
func (s *Store) fingerprintName(path string) string {
	if s.meta != nil {
		if comment, err := s.meta.ReadComment(path); err == nil && comment != "" {
			return comment
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RunWorkers starts the mode's crawler and worker pool and blocks until the
// directory has been fully drained. The crawl root depends on the mode:
// duplicate finding crawls the directory being searched, the other modes
// crawl the source directory.
func (s *Store) RunWorkers() error {
	root := s.options.SrcDirectory
	if s.options.Mode == types.DuplicateWorker {
		root = s.options.DstDirectory
	}
	return s.runWorkerPool(root, s.operation())
}

// operation binds the mode's per-file operation once, at pool construction,
// keeping the dispatch out of the consume loop.
func (s *Store) operation() func(path string) {
	switch s.options.Mode {
	case types.GenerateWorker:
		return s.generate
	case types.DuplicateWorker:
		return s.findDuplicates
	default:
		return s.extractMetadata
	}
}

// runWorkerPool crawls root recursively and runs NumThreads workers against
// the shared queue. Workers exit only when the queue is empty and the crawl
// is complete; per-file failures never abort the pool.
func (s *Store) runWorkerPool(root string, op func(path string)) error {
	queue := walker.NewPathQueue()
	crawler := walker.NewCrawler(queue)
	crawler.Start(root, true)

	s.progress = NewProgressTracker()
	defer s.progress.Stop()

	var group errgroup.Group
	for i := 0; i < s.options.NumThreads; i++ {
		group.Go(func() error {
			for {
				path, ok := queue.Next()
				if !ok {
					return nil
				}
				if !s.options.Extensions.Contains(path) {
					logging.DebugLog("skipping unrecognized extension: %s", path)
					continue
				}
				logging.DebugLog("processing %s", path)
				op(path)
			}
		})
	}

	err := group.Wait()
	crawler.Join()
	return err
}

// recordSkip accounts for a file that could not be processed. announce
// additionally reports the skip on stderr; generate mode announces, the other
// modes skip quietly since unreadable files are expected in uncurated
// directories.
func (s *Store) recordSkip(path, cause string, announce bool) {
	s.progress.AddSkipped()
	logging.LogImageProcessed(path, false, cause)
	if announce {
		fmt.Fprintf(os.Stderr, "skipping %s: %s\n", path, cause)
	}
	if s.db != nil {
		if err := database.RecordSkip(s.db, s.runID, path, cause); err != nil {
			logging.LogError("Cannot record skipped file %s: %v", path, err)
		}
	}
}

// Close releases the in-memory fingerprint set.
func (s *Store) Close() {
	for i := range s.fingerprints {
		s.fingerprints[i].Image.Close()
	}
	s.fingerprints = nil
}
