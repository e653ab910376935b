package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/wattline/wattline/backend-go/internal/document"
)

// DefaultAutosaveDelay is how long the document must be quiet before it is
// written.
const DefaultAutosaveDelay = 800 * time.Millisecond

const saveTimeout = 10 * time.Second

// Autosaver debounces writes of one symbol. At most one write is pending:
// every Schedule replaces the pending document and restarts the delay.
// Write failures are logged and dropped; the next change retries.
type Autosaver struct {
	store Store
	key   string
	delay time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *document.Document
	seq     uint64 // bumped by every Schedule
	stopped bool

	// writeMu serializes writes between the timer and Flush. A write whose
	// sequence is not newer than written is stale and dropped.
	writeMu  sync.Mutex
	written  uint64
	lastHash [blake2b.Size256]byte
	hashed   bool
}

// NewAutosaver creates an autosaver for key. A non-positive delay uses
// DefaultAutosaveDelay.
func NewAutosaver(s Store, key string, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{
		store: s,
		key:   key,
		delay: delay,
		log:   slog.Default().With("symbol", key),
	}
}

// Prime records doc as already stored so an unchanged document is not
// written again.
func (a *Autosaver) Prime(doc document.Document) {
	data, err := encode(doc)
	if err != nil {
		return
	}
	a.writeMu.Lock()
	a.lastHash = blake2b.Sum256(data)
	a.hashed = true
	a.writeMu.Unlock()
}

// Schedule queues doc for writing after the delay.
func (a *Autosaver) Schedule(doc document.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	doc = doc.Clone()
	a.pending = &doc
	a.seq++
	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
		return
	}
	a.timer.Reset(a.delay)
}

// Pending reports whether a write is queued.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

func (a *Autosaver) fire() {
	if doc, seq := a.take(); doc != nil {
		a.write(*doc, seq)
	}
}

// Flush writes the pending document now.
func (a *Autosaver) Flush() {
	if doc, seq := a.take(); doc != nil {
		a.write(*doc, seq)
	}
}

// take removes the pending document and cancels its timer.
func (a *Autosaver) take() (*document.Document, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	doc := a.pending
	a.pending = nil
	return doc, a.seq
}

// Stop flushes and ignores later Schedule calls.
func (a *Autosaver) Stop() {
	a.Flush()
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
}

func (a *Autosaver) write(doc document.Document, seq uint64) {
	data, err := encode(doc)
	if err != nil {
		a.log.Error("autosave encode", "error", err)
		return
	}
	sum := blake2b.Sum256(data)

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if seq <= a.written {
		return
	}
	a.written = seq
	if a.hashed && sum == a.lastHash {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := a.store.Save(ctx, a.key, doc); err != nil {
		a.log.Error("autosave failed", "error", err)
		return
	}
	a.lastHash = sum
	a.hashed = true
	a.log.Debug("autosaved", "shapes", len(doc.Shapes))
}
