package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"photofingerprint/logging"
)

// PathQueue is a thread-safe, unbounded queue of discovered file paths plus a
// completion flag. A crawler pushes entries and marks completion; any number
// of concurrent consumers drain it. Once MarkComplete has been called, no
// further entries are accepted and an empty queue is the permanent
// end-of-work signal.
type PathQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	entries  []string
	complete bool
}

// NewPathQueue creates an empty queue.
func NewPathQueue() *PathQueue {
	q := &PathQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a path and wakes one waiting consumer. Pushes after
// MarkComplete are dropped.
func (q *PathQueue) Push(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.complete {
		return
	}
	q.entries = append(q.entries, path)
	q.cond.Signal()
}

// MarkComplete flags that no further entries will ever arrive and wakes every
// waiting consumer so it can observe the exhausted state.
func (q *PathQueue) MarkComplete() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.complete = true
	q.cond.Broadcast()
}

// TryPop atomically removes and returns the front entry if one is present.
// When the queue is empty, ok is false and complete carries the completion
// flag: false means more work may still arrive, true means it never will.
func (q *PathQueue) TryPop() (path string, ok bool, complete bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return "", false, q.complete
	}
	path = q.entries[0]
	q.entries = q.entries[1:]
	return path, true, q.complete
}

// Next blocks until an entry is available and returns it, or returns ok=false
// once the queue is empty and complete. Consumers suspend on a condition
// variable rather than polling, so they wake only on Push or MarkComplete.
func (q *PathQueue) Next() (path string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.entries) == 0 && !q.complete {
		q.cond.Wait()
	}
	if len(q.entries) == 0 {
		return "", false
	}
	path = q.entries[0]
	q.entries = q.entries[1:]
	return path, true
}

// Crawler walks a directory tree on its own goroutine, pushing every regular
// file it finds into its queue. Enumeration is best-effort: unreadable
// subtrees are logged and skipped, never fatal.
type Crawler struct {
	queue *PathQueue
	done  chan struct{}
}

// NewCrawler creates a crawler feeding the given queue.
func NewCrawler(queue *PathQueue) *Crawler {
	return &Crawler{
		queue: queue,
		done:  make(chan struct{}),
	}
}

// Start launches the background traversal of root. If recursive is false only
// direct children are visited. MarkComplete is called exactly once when
// enumeration ends, including when the root itself is empty or unreadable.
func (c *Crawler) Start(root string, recursive bool) {
	go func() {
		defer close(c.done)
		defer c.queue.MarkComplete()

		if !recursive {
			c.listDirectory(root)
			return
		}

		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// WalkDir does not descend into directories it failed to
				// read, so skipping the entry skips the subtree.
				logging.LogWarning("Skipping unreadable path %s: %v", path, err)
				return nil
			}
			if d.Type().IsRegular() {
				c.queue.Push(path)
			}
			return nil
		})
	}()
}

// listDirectory enumerates only the direct children of root.
func (c *Crawler) listDirectory(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		logging.LogWarning("Cannot read directory %s: %v", root, err)
		return
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			c.queue.Push(filepath.Join(root, entry.Name()))
		}
	}
}

// Join blocks until the background traversal has finished and the queue has
// been marked complete.
func (c *Crawler) Join() {
	<-c.done
}
