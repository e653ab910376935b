package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wattline/wattline/backend-go/internal/document"
)

type recordingStore struct {
	*Memory
	mu    sync.Mutex
	saves int
	fail  error
	saved chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Memory: NewMemory(), saved: make(chan struct{}, 16)}
}

func (r *recordingStore) Save(ctx context.Context, key string, doc document.Document) error {
	r.mu.Lock()
	r.saves++
	fail := r.fail
	r.mu.Unlock()
	defer func() { r.saved <- struct{}{} }()
	if fail != nil {
		return fail
	}
	return r.Memory.Save(ctx, key, doc)
}

func (r *recordingStore) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func docWith(n int) document.Document {
	shapes := make([]document.Shape, n)
	for i := range shapes {
		shapes[i] = document.NewLine(0, 0, float64(i+1), 0)
	}
	return document.Document{Shapes: shapes}
}

func TestAutosaverCoalesces(t *testing.T) {
	rs := newRecordingStore()
	a := NewAutosaver(rs, "sym_a", 20*time.Millisecond)

	for i := 1; i <= 5; i++ {
		a.Schedule(docWith(i))
	}

	select {
	case <-rs.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave never fired")
	}
	time.Sleep(60 * time.Millisecond)

	if got := rs.count(); got != 1 {
		t.Errorf("got %d saves for a burst of changes, want 1", got)
	}
	rec, err := rs.Load(context.Background(), "sym_a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Shapes) != 5 {
		t.Errorf("saved %d shapes, want the latest document with 5", len(rec.Shapes))
	}
}

func TestAutosaverFlush(t *testing.T) {
	rs := newRecordingStore()
	a := NewAutosaver(rs, "sym_a", time.Hour)

	a.Schedule(docWith(2))
	if !a.Pending() {
		t.Fatal("expected a pending write")
	}
	a.Flush()
	if a.Pending() {
		t.Error("write still pending after Flush")
	}
	if got := rs.count(); got != 1 {
		t.Errorf("got %d saves, want 1", got)
	}

	a.Flush()
	if got := rs.count(); got != 1 {
		t.Errorf("empty Flush wrote again: %d saves", got)
	}
}

func TestAutosaverSkipsUnchanged(t *testing.T) {
	rs := newRecordingStore()
	a := NewAutosaver(rs, "sym_a", time.Hour)
	doc := docWith(1)

	a.Prime(doc)
	a.Schedule(doc)
	a.Flush()
	if got := rs.count(); got != 0 {
		t.Errorf("unchanged document written %d times", got)
	}

	changed := docWith(3)
	a.Schedule(changed)
	a.Flush()
	a.Schedule(changed.Clone())
	a.Flush()
	if got := rs.count(); got != 1 {
		t.Errorf("got %d saves, want 1", got)
	}
}

func TestAutosaverFailureIsRetried(t *testing.T) {
	rs := newRecordingStore()
	rs.fail = errors.New("disk full")
	a := NewAutosaver(rs, "sym_a", time.Hour)
	doc := docWith(1)

	a.Schedule(doc)
	a.Flush()

	rs.mu.Lock()
	rs.fail = nil
	rs.mu.Unlock()

	a.Schedule(doc)
	a.Flush()
	if got := rs.count(); got != 2 {
		t.Errorf("got %d save attempts, want 2", got)
	}
	if _, err := rs.Load(context.Background(), "sym_a"); err != nil {
		t.Errorf("document not stored after retry: %v", err)
	}
}

func TestAutosaverStop(t *testing.T) {
	rs := newRecordingStore()
	a := NewAutosaver(rs, "sym_a", time.Hour)

	a.Schedule(docWith(1))
	a.Stop()
	a.Schedule(docWith(2))
	a.Flush()

	if got := rs.count(); got != 1 {
		t.Errorf("got %d saves, want 1", got)
	}
}

func TestAutosaverDropsStaleWrite(t *testing.T) {
	rs := newRecordingStore()
	a := NewAutosaver(rs, "sym_a", time.Hour)

	// The timer has taken the older document but not written it yet when a
	// newer change is flushed.
	a.Schedule(docWith(1))
	older, seq := a.take()
	a.Schedule(docWith(2))
	a.Flush()
	a.write(*older, seq)

	if got := rs.count(); got != 1 {
		t.Errorf("got %d saves, want 1", got)
	}
	rec, err := rs.Load(context.Background(), "sym_a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Shapes) != 2 {
		t.Errorf("stored %d shapes, want the newer document with 2", len(rec.Shapes))
	}
}
