// Package queue implements the wait set as a container/heap priority queue,
// ordered by priority descending, wait_slice_deadline ascending
// (longest-waited-first), then phase_entered_at ascending.
package queue

import (
	"container/heap"
	"sort"
	"time"
)

// Waiter is one room's entry in the wait set.
type Waiter struct {
	RoomID            string
	Priority          int
	WaitSliceDeadline time.Time
	PhaseEnteredAt    time.Time

	index int // heap bookkeeping, maintained by container/heap
}

// WaitQueue is a priority queue over Waiter ordered for admission-from-wait:
// the best candidate to promote is always at the top.
type WaitQueue struct {
	items []*Waiter
	index map[string]*Waiter
}

// New returns an empty wait queue.
func New() *WaitQueue {
	wq := &WaitQueue{index: make(map[string]*Waiter)}
	heap.Init(wq)
	return wq
}

// Len, Less, Swap, Push, Pop implement heap.Interface.

func (q *WaitQueue) Len() int { return len(q.items) }

func (q *WaitQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.Priority != b.Priority {
		return a.Priority > b.Priority // priority descending
	}
	if !a.WaitSliceDeadline.Equal(b.WaitSliceDeadline) {
		return a.WaitSliceDeadline.Before(b.WaitSliceDeadline) // longest-waited first
	}
	return a.PhaseEnteredAt.Before(b.PhaseEnteredAt)
}

func (q *WaitQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *WaitQueue) Push(x any) {
	w := x.(*Waiter)
	w.index = len(q.items)
	q.items = append(q.items, w)
}

func (q *WaitQueue) Pop() any {
	old := q.items
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.index = -1
	q.items = old[:n-1]
	return w
}

// Add inserts or updates a room's wait-set entry.
func (q *WaitQueue) Add(w *Waiter) {
	if existing, ok := q.index[w.RoomID]; ok {
		heap.Remove(q, existing.index)
	}
	heap.Push(q, w)
	q.index[w.RoomID] = w
}

// Remove takes a room out of the wait set, returning its entry if present.
func (q *WaitQueue) Remove(roomID string) (*Waiter, bool) {
	w, ok := q.index[roomID]
	if !ok {
		return nil, false
	}
	heap.Remove(q, w.index)
	delete(q.index, roomID)
	return w, true
}

// Contains reports whether roomID is in the wait set.
func (q *WaitQueue) Contains(roomID string) bool {
	_, ok := q.index[roomID]
	return ok
}

// Best returns the top-ranked waiter without removing it.
func (q *WaitQueue) Best() (*Waiter, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// PopBest removes and returns the top-ranked waiter.
func (q *WaitQueue) PopBest() (*Waiter, bool) {
	w, ok := q.Best()
	if !ok {
		return nil, false
	}
	q.Remove(w.RoomID)
	return w, true
}

// All returns every waiter in heap array order: the first entry is the
// top-ranked waiter, and the rest are not sorted.
func (q *WaitQueue) All() []*Waiter {
	out := make([]*Waiter, len(q.items))
	copy(out, q.items)
	return out
}

// DueForRotation returns waiters whose wait_slice_deadline has passed at
// now, ordered highest-priority-first then longest-total-wait, matching
// §4.5 step 4's "highest priority first, then longest total wait".
func (q *WaitQueue) DueForRotation(now time.Time) []*Waiter {
	var due []*Waiter
	for _, w := range q.items {
		if !w.WaitSliceDeadline.After(now) {
			due = append(due, w)
		}
	}
	sortWaiters(due)
	return due
}

func sortWaiters(ws []*Waiter) {
	sort.Slice(ws, func(i, j int) bool {
		a, b := ws[i], ws[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.WaitSliceDeadline.Before(b.WaitSliceDeadline)
	})
}
