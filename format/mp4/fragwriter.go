// Package mp4
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package mp4

import (
	"github.com/teocci/go-stream-av/format/mp4/mp4io"
	"github.com/teocci/go-stream-av/format/vtt"
)

// FragmentWriter turns a closed run of vtt.OutputSample into one moof box
// plus its mdat payload, one call per fragment. It does not interpret a
// sample's Data: it only measures and concatenates it.
//
// mp4io's TrackFragHeader has no track_ID field (inherited as-is from the
// box definitions this writer builds on); every fragment this writer
// produces implicitly belongs to the single track its FragmentWriter was
// constructed for.
type FragmentWriter struct {
	seqnum uint32
}

// NewFragmentWriter returns a FragmentWriter starting at sequence number 1.
func NewFragmentWriter() *FragmentWriter {
	return &FragmentWriter{}
}

// WriteFragment assembles samples into a moof box and the raw bytes that
// belong in the matching mdat box. The caller is responsible for writing
// the 'mdat' header around mdat itself; WriteFragment returns only the
// concatenated sample payload.
func (w *FragmentWriter) WriteFragment(samples []vtt.OutputSample) (moof *mp4io.MovieFrag, mdat []byte) {
	w.seqnum++

	entries := make([]mp4io.TrackFragRunEntry, len(samples))
	for i, s := range samples {
		entries[i] = mp4io.TrackFragRunEntry{
			Duration: uint32(s.Duration),
			Size:     uint32(len(s.Data)),
		}
		mdat = append(mdat, s.Data...)
	}

	run := &mp4io.TrackFragRun{
		Flags:   mp4io.TRUN_SAMPLE_DURATION | mp4io.TRUN_SAMPLE_SIZE | mp4io.TRUN_DATA_OFFSET,
		Entries: entries,
	}
	header := &mp4io.TrackFragHeader{
		Flags: mp4io.TFHD_DEFAULT_BASE_IS_MOOF,
	}
	traf := &mp4io.TrackFrag{Header: header, Run: run}

	moof = &mp4io.MovieFrag{
		Header: &mp4io.MovieFragHeader{Seqnum: w.seqnum},
		Tracks: []*mp4io.TrackFrag{traf},
	}

	// trun's data offset is relative to the start of the moof box: moof
	// size plus the 8-byte mdat header reaches the first sample byte.
	run.DataOffset = uint32(moof.Len() + 8)

	return moof, mdat
}
