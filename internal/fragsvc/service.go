// Package fragsvc
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package fragsvc

import (
	"errors"

	"github.com/teocci/go-stream-av/format/mp4/mp4io"
	"github.com/teocci/go-stream-av/format/vtt"
)

// ErrZeroDuration is returned when a cue's duration is zero: this would
// otherwise trip format/vtt's fail-fast precondition panic, so the
// service rejects it before it ever reaches the core.
var ErrZeroDuration = errors.New("fragsvc: cue duration must be > 0")

// Service applies request-level validation ahead of the core's
// precondition panics and delegates storage to Repository.
type Service struct {
	repo Repository
}

// NewService returns a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateTrack ensures a track exists for id, used to preconfigure tracks
// from a static track list at startup.
func (s *Service) CreateTrack(id TrackID) {
	s.repo.CreateTrack(id)
}

// PushCue validates and pushes cue into the named track. A zero duration
// is rejected up front; an out-of-order start time is caught by the
// repository, which recovers format/vtt's precondition panic and turns it
// into ErrOutOfOrder. format/vtt's panics remain reserved for genuine
// programmer misuse within a single process; they must never propagate out
// of a request handler for a malformed request body arriving over the
// network.
func (s *Service) PushCue(id TrackID, cue vtt.Cue) error {
	if cue.Duration == 0 {
		return ErrZeroDuration
	}
	return s.repo.PushCue(id, cue)
}

// Flush drains the named track's pending samples into one moof/mdat
// fragment.
func (s *Service) Flush(id TrackID) (*mp4io.MovieFrag, []byte, error) {
	return s.repo.Flush(id)
}

// ReadySamples returns the number of samples currently queued for the
// named track.
func (s *Service) ReadySamples(id TrackID) (int, error) {
	return s.repo.ReadySamples(id)
}

// DeleteTrack drops a track's in-memory state.
func (s *Service) DeleteTrack(id TrackID) {
	s.repo.DeleteTrack(id)
}

// ActiveTrackCount returns the number of tracks currently held.
func (s *Service) ActiveTrackCount() int {
	return s.repo.ActiveTrackCount()
}
