package quad

import (
	"container/heap"
	"errors"
)

// ErrEmptyQueue signals a pop from an exhausted queue. The driver never
// does this under correct bookkeeping, so seeing it is an internal
// invariant violation, not a user error.
var ErrEmptyQueue = errors.New("work queue is empty")

// WorkQueue is a max-priority queue of intervals keyed by ErrEstimate.
// Ties break on the smaller midpoint so the subdivision order, and with
// it every downstream result, is reproducible across runs. The queue is
// owned by a single driver invocation and needs no locking.
type WorkQueue struct {
	intervals []*Interval
}

// NewWorkQueue creates an empty work queue
func NewWorkQueue() *WorkQueue {
	wq := &WorkQueue{intervals: make([]*Interval, 0)}
	heap.Init(wq)
	return wq
}

// Len returns the number of queued intervals
func (wq *WorkQueue) Len() int {
	return len(wq.intervals)
}

// Less orders intervals by descending error estimate, then ascending midpoint
func (wq *WorkQueue) Less(i, j int) bool {
	a, b := wq.intervals[i], wq.intervals[j]
	if a.ErrEstimate != b.ErrEstimate {
		return a.ErrEstimate > b.ErrEstimate
	}
	return a.Mid() < b.Mid()
}

// Swap swaps two intervals in the queue
func (wq *WorkQueue) Swap(i, j int) {
	wq.intervals[i], wq.intervals[j] = wq.intervals[j], wq.intervals[i]
}

// Push adds an interval to the heap (container/heap interface)
func (wq *WorkQueue) Push(x interface{}) {
	wq.intervals = append(wq.intervals, x.(*Interval))
}

// Pop removes the last interval from the heap (container/heap interface)
func (wq *WorkQueue) Pop() interface{} {
	old := wq.intervals
	n := len(old)
	iv := old[n-1]
	old[n-1] = nil // avoid memory leak
	wq.intervals = old[0 : n-1]
	return iv
}

// Add pushes an interval onto the queue
func (wq *WorkQueue) Add(iv *Interval) {
	heap.Push(wq, iv)
}

// PopMax removes and returns the interval with the largest error estimate
func (wq *WorkQueue) PopMax() (*Interval, error) {
	if wq.Len() == 0 {
		return nil, ErrEmptyQueue
	}
	return heap.Pop(wq).(*Interval), nil
}

// Peek returns the worst interval without removing it, or nil if empty
func (wq *WorkQueue) Peek() *Interval {
	if wq.Len() == 0 {
		return nil
	}
	return wq.intervals[0]
}
