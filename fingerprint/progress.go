package fingerprint

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// ProgressTracker tracks progress of a worker pool run
type ProgressTracker struct {
	mu        sync.Mutex
	processed int
	skipped   int
	ticker    *time.Ticker
	done      chan bool
}

// NewProgressTracker starts a tracker that periodically reports counters on
// stderr; stdout stays reserved for structured results.
func NewProgressTracker() *ProgressTracker {
	tracker := &ProgressTracker{
		ticker: time.NewTicker(500 * time.Millisecond),
		done:   make(chan bool),
	}
	go tracker.displayProgress()
	return tracker
}

// AddProcessed increments the processed counter
func (p *ProgressTracker) AddProcessed() {
	p.mu.Lock()
	p.processed++
	p.mu.Unlock()
}

// AddSkipped increments the skipped counter
func (p *ProgressTracker) AddSkipped() {
	p.mu.Lock()
	p.skipped++
	p.mu.Unlock()
}

// Counts returns the current counters
func (p *ProgressTracker) Counts() (processed, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.skipped
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			processed, skipped := p.Counts()
			if skipped > 0 {
				fmt.Fprintf(os.Stderr, "\rProcessed: %d (skipped: %d)", processed, skipped)
			} else {
				fmt.Fprintf(os.Stderr, "\rProcessed: %d", processed)
			}
		}
	}
}

// Stop ends the progress display; counters remain readable
func (p *ProgressTracker) Stop() {
	p.ticker.Stop()
	p.done <- true
	fmt.Fprint(os.Stderr, "\r")
}
