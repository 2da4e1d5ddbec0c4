// Package fragsvc
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package fragsvc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teocci/go-stream-av/format/mp4/mp4io"
	"github.com/teocci/go-stream-av/format/vtt"
)

// ErrUnknownTrack is returned for operations on a track ID the repository
// has never seen.
var ErrUnknownTrack = errors.New("fragsvc: unknown track")

// ErrOutOfOrder is returned when format/vtt rejects a cue whose start time
// falls before the track's already-emitted timeline (for example, a cue
// pushed after a flush that starts before the flushed cues ended).
var ErrOutOfOrder = errors.New("fragsvc: cue start time precedes the track's already-emitted timeline")

// Repository defines the concurrency-safe contract for pushing cues into
// and flushing fragments out of in-memory track state. One Fragmenter
// instance is never touched by more than one goroutine at a time; the
// repository's lock is what guarantees that, the same way
// the cue-level map in an HLS orchestrator guards its stream state.
type Repository interface {
	// CreateTrack ensures a track exists for id without requiring a cue
	// push, e.g. to preconfigure tracks from a static track list at
	// startup. Creating an already-existing track is a no-op.
	CreateTrack(id TrackID)

	// PushCue pushes cue into the named track's fragmenter, creating the
	// track on first use.
	PushCue(id TrackID, cue vtt.Cue) error

	// Flush drains the named track's fragmenter and assembles every
	// pending sample into one moof/mdat fragment. Returns ErrUnknownTrack
	// if the track does not exist.
	Flush(id TrackID) (moof *mp4io.MovieFrag, mdat []byte, err error)

	// ReadySamples returns the number of samples currently queued for the
	// named track, or ErrUnknownTrack if it does not exist.
	ReadySamples(id TrackID) (int, error)

	// DeleteTrack drops a track's in-memory state. Deleting an unknown
	// track is a no-op.
	DeleteTrack(id TrackID)

	// ActiveTrackCount returns the number of tracks currently held.
	ActiveTrackCount() int
}

// InMemoryRepository is a concurrency-safe in-memory implementation of
// Repository, guarded by a single RWMutex exactly as an HLS orchestrator
// guards its stream map: read-locked snapshot reads, write-locked
// mutation, idempotent creation-on-first-use.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a repository with a default in-memory
// store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository using the given
// Store. Useful for testing or plugging in a different persistence
// backend.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// CreateTrack implements Repository.CreateTrack.
func (r *InMemoryRepository) CreateTrack(id TrackID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateTrackLocked(id)
}

// PushCue implements Repository.PushCue. It recovers format/vtt's
// out-of-order precondition panic and reports it as ErrOutOfOrder: a
// malformed request body is an ordinary, recoverable condition at this
// boundary, not a programmer error inside a single process.
func (r *InMemoryRepository) PushCue(id TrackID, cue vtt.Cue) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrOutOfOrder, rec)
		}
	}()

	track := r.getOrCreateTrackLocked(id)
	track.fragmenter.PushSample(cue)
	return nil
}

// Flush implements Repository.Flush.
func (r *InMemoryRepository) Flush(id TrackID) (*mp4io.MovieFrag, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.store.GetTrack(id)
	if !ok {
		return nil, nil, ErrUnknownTrack
	}

	track.fragmenter.Flush()

	n := track.fragmenter.ReadySamplesSize()
	samples := make([]vtt.OutputSample, n)
	for i := 0; i < n; i++ {
		samples[i] = track.fragmenter.PopSample()
	}

	moof, mdat := track.writer.WriteFragment(samples)
	return moof, mdat, nil
}

// ReadySamples implements Repository.ReadySamples.
func (r *InMemoryRepository) ReadySamples(id TrackID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	track, ok := r.store.GetTrack(id)
	if !ok {
		return 0, ErrUnknownTrack
	}
	return track.fragmenter.ReadySamplesSize(), nil
}

// DeleteTrack implements Repository.DeleteTrack.
func (r *InMemoryRepository) DeleteTrack(id TrackID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.DeleteTrack(id)
}

// ActiveTrackCount implements Repository.ActiveTrackCount.
func (r *InMemoryRepository) ActiveTrackCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store.ListTrackIDs())
}

// getOrCreateTrackLocked returns an existing track or creates a new one.
// Caller must hold r.mu in write mode.
func (r *InMemoryRepository) getOrCreateTrackLocked(id TrackID) *trackState {
	if track, ok := r.store.GetTrack(id); ok {
		return track
	}
	track := newTrackState()
	r.store.SetTrack(id, track)
	return track
}
