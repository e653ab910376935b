package engine

import "github.com/wattline/wattline/backend-go/internal/document"

// DefaultHistoryLimit is the number of undo snapshots kept per session.
const DefaultHistoryLimit = 100

// History is a bounded stack of full shape-list snapshots. When the stack is
// full the oldest snapshot is dropped. There is no redo.
type History struct {
	limit int
	stack [][]document.Shape
}

// NewHistory creates a history holding at most limit snapshots. A limit of
// zero or less uses DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push stores a snapshot. The caller hands over ownership; pass a deep copy.
func (h *History) Push(snapshot []document.Shape) {
	if len(h.stack) == h.limit {
		copy(h.stack, h.stack[1:])
		h.stack[len(h.stack)-1] = nil
		h.stack = h.stack[:len(h.stack)-1]
	}
	h.stack = append(h.stack, snapshot)
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() ([]document.Shape, bool) {
	if len(h.stack) == 0 {
		return nil, false
	}
	last := h.stack[len(h.stack)-1]
	h.stack[len(h.stack)-1] = nil
	h.stack = h.stack[:len(h.stack)-1]
	return last, true
}

func (h *History) Len() int   { return len(h.stack) }
func (h *History) Limit() int { return h.limit }

// Clear drops every snapshot.
func (h *History) Clear() {
	h.stack = nil
}
