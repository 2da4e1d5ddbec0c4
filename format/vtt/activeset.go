// Package vtt
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package vtt

import "container/heap"

// endTimeHeap implements container/heap.Interface as a min-heap ordered by
// end time (ascending), with arrival index as the tie-breaker. It only ever
// holds live entries; eviction pops from the front.
type endTimeHeap []*activeEntry

func (h endTimeHeap) Len() int { return len(h) }

func (h endTimeHeap) Less(i, j int) bool {
	if h[i].endTime != h[j].endTime {
		return h[i].endTime < h[j].endTime
	}
	return h[i].arrival < h[j].arrival
}

func (h endTimeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *endTimeHeap) Push(x any) {
	*h = append(*h, x.(*activeEntry))
}

func (h *endTimeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// activeSet is the multiset of cues currently active: those whose interval
// contains the cutter's cursor. It maintains two orderings over the same
// entries: a min-heap by end time for eviction, and an arrival-ordered
// slice for composing output samples. Entries always arrive with a
// strictly increasing arrival index, so appending to order keeps it sorted
// for free.
type activeSet struct {
	byEnd endTimeHeap
	order []*activeEntry
}

func newActiveSet() *activeSet {
	return &activeSet{}
}

func (s *activeSet) len() int {
	return len(s.order)
}

// insert adds entry to the active set.
func (s *activeSet) insert(entry *activeEntry) {
	heap.Push(&s.byEnd, entry)
	s.order = append(s.order, entry)
}

// earliestEnd returns the minimum end time among current entries. The
// caller must check len() > 0 first.
func (s *activeSet) earliestEnd() uint64 {
	return s.byEnd[0].endTime
}

// popAllEndingAtOrBefore removes and returns every entry whose end time is
// <= t. Entries sharing the same end time are evicted together.
func (s *activeSet) popAllEndingAtOrBefore(t uint64) []*activeEntry {
	var evicted []*activeEntry
	for len(s.byEnd) > 0 && s.byEnd[0].endTime <= t {
		e := heap.Pop(&s.byEnd).(*activeEntry)
		evicted = append(evicted, e)
	}
	if len(evicted) == 0 {
		return nil
	}
	s.removeFromOrder(evicted)
	return evicted
}

func (s *activeSet) removeFromOrder(evicted []*activeEntry) {
	dead := make(map[*activeEntry]bool, len(evicted))
	for _, e := range evicted {
		dead[e] = true
	}
	live := s.order[:0]
	for _, e := range s.order {
		if !dead[e] {
			live = append(live, e)
		}
	}
	s.order = live
}

// iterateInArrivalOrder returns the currently active entries sorted by
// arrival index, the order in which their boxes are composed into an
// output sample.
func (s *activeSet) iterateInArrivalOrder() []*activeEntry {
	return s.order
}
