// Package fragsvc
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package fragsvc

import (
	"github.com/teocci/go-stream-av/format/mp4"
	"github.com/teocci/go-stream-av/format/vtt"
)

// trackState is the per-track in-memory state: one Fragmenter driving the
// core decomposition, and one FragmentWriter stamping moof sequence
// numbers for that track's flushes.
type trackState struct {
	fragmenter *vtt.Fragmenter
	writer     *mp4.FragmentWriter
}

func newTrackState() *trackState {
	return &trackState{
		fragmenter: vtt.NewFragmenter(),
		writer:     mp4.NewFragmentWriter(),
	}
}

// Store is the persistence abstraction for track state. The only
// implementation here is in-memory; the interface exists so a future
// durable backend can be substituted without touching Repository's callers.
type Store interface {
	GetTrack(id TrackID) (*trackState, bool)
	SetTrack(id TrackID, st *trackState)
	DeleteTrack(id TrackID)
	ListTrackIDs() []TrackID
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	tracks map[TrackID]*trackState
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tracks: make(map[TrackID]*trackState)}
}

func (s *InMemoryStore) GetTrack(id TrackID) (*trackState, bool) {
	st, ok := s.tracks[id]
	return st, ok
}

func (s *InMemoryStore) SetTrack(id TrackID, st *trackState) {
	s.tracks[id] = st
}

func (s *InMemoryStore) DeleteTrack(id TrackID) {
	delete(s.tracks, id)
}

func (s *InMemoryStore) ListTrackIDs() []TrackID {
	ids := make([]TrackID, 0, len(s.tracks))
	for id := range s.tracks {
		ids = append(ids, id)
	}
	return ids
}
