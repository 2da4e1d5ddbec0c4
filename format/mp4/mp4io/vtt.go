// Package mp4io
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package mp4io

import (
	"github.com/teocci/go-stream-av/utils/bits/pio"
)

const VTTC = Tag(0x76747463) // 'vttc'
const VTTE = Tag(0x76747465) // 'vtte'
const IDEN = Tag(0x6964656e) // 'iden'
const STTG = Tag(0x73747467) // 'sttg'
const PAYL = Tag(0x7061796c) // 'payl'
const CTIM = Tag(0x6374696d) // 'ctim'

// vttLeaf is a length-prefixed box whose payload is an opaque byte string,
// used for the 'iden', 'sttg', 'payl' and 'ctim' sub-boxes of a VTTCueBox.
type vttLeaf struct {
	tag_ Tag
	Data []byte
	AtomPos
}

func (l vttLeaf) Tag() Tag {
	return l.tag_
}

func (l vttLeaf) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(l.tag_))
	copy(b[8:], l.Data)
	n = 8 + len(l.Data)
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (l vttLeaf) Len() (n int) {
	return 8 + len(l.Data)
}

func (l *vttLeaf) Unmarshal(b []byte, offset int) (n int, err error) {
	(&l.AtomPos).setPos(offset, len(b))
	if len(b) < 8 {
		err = parseErr(l.tag_.String(), offset, err)
		return
	}
	l.tag_ = Tag(pio.U32BE(b[4:]))
	l.Data = b[8:]
	n = len(b)
	return
}

func (l vttLeaf) Children() (r []Atom) {
	return
}

// IdentifierBox is the 'iden' sub-box of a VTTCueBox: the WebVTT cue identifier.
type IdentifierBox struct {
	vttLeaf
}

func NewIdentifierBox(identifier []byte) *IdentifierBox {
	return &IdentifierBox{vttLeaf{tag_: IDEN, Data: identifier}}
}

// SettingsBox is the 'sttg' sub-box of a VTTCueBox: the cue settings string.
type SettingsBox struct {
	vttLeaf
}

func NewSettingsBox(settings []byte) *SettingsBox {
	return &SettingsBox{vttLeaf{tag_: STTG, Data: settings}}
}

// PayloadBox is the 'payl' sub-box of a VTTCueBox: the cue text.
type PayloadBox struct {
	vttLeaf
}

func NewPayloadBox(payload []byte) *PayloadBox {
	return &PayloadBox{vttLeaf{tag_: PAYL, Data: payload}}
}

// CueTimeBox is the 'ctim' sub-box of a VTTCueBox: the originating cue time,
// populated only when the caller supplies it.
type CueTimeBox struct {
	vttLeaf
}

func NewCueTimeBox(cueTime []byte) *CueTimeBox {
	return &CueTimeBox{vttLeaf{tag_: CTIM, Data: cueTime}}
}

// VTTCueBox is the 'vttc' box: one WebVTT cue, carried as the ordered
// concatenation of its populated sub-boxes. A sub-box is omitted entirely
// when its corresponding string is empty.
type VTTCueBox struct {
	Identifier []byte
	Settings   []byte
	Payload    []byte
	CueTime    []byte
	AtomPos
}

func (v VTTCueBox) Tag() Tag {
	return VTTC
}

func (v VTTCueBox) children() []Atom {
	var children []Atom
	if len(v.Identifier) > 0 {
		children = append(children, NewIdentifierBox(v.Identifier))
	}
	if len(v.Settings) > 0 {
		children = append(children, NewSettingsBox(v.Settings))
	}
	if len(v.Payload) > 0 {
		children = append(children, NewPayloadBox(v.Payload))
	}
	if len(v.CueTime) > 0 {
		children = append(children, NewCueTimeBox(v.CueTime))
	}
	return children
}

func (v VTTCueBox) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(VTTC))
	n += 8
	for _, child := range v.children() {
		n += child.Marshal(b[n:])
	}
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (v VTTCueBox) Len() (n int) {
	n = 8
	for _, child := range v.children() {
		n += child.Len()
	}
	return
}

func (v *VTTCueBox) Unmarshal(b []byte, offset int) (n int, err error) {
	(&v.AtomPos).setPos(offset, len(b))
	n = 8
	for n+8 <= len(b) {
		size := int(pio.U32BE(b[n:]))
		tag := Tag(pio.U32BE(b[n+4:]))
		if size < 8 || len(b) < n+size {
			err = parseErr("vttc child", offset+n, err)
			return
		}
		switch tag {
		case IDEN:
			v.Identifier = b[n+8 : n+size]
		case STTG:
			v.Settings = b[n+8 : n+size]
		case PAYL:
			v.Payload = b[n+8 : n+size]
		case CTIM:
			v.CueTime = b[n+8 : n+size]
		}
		n += size
	}
	return
}

func (v VTTCueBox) Children() (r []Atom) {
	return v.children()
}

// vtteBytes is the fixed 8-byte encoding of an empty 'vtte' box.
var vtteBytes = [8]byte{0x00, 0x00, 0x00, 0x08, 0x76, 0x74, 0x74, 0x65}

// VTTEmptyCueBox is the 'vtte' box: a marker for an interval with no active cue.
type VTTEmptyCueBox struct {
	AtomPos
}

func (v VTTEmptyCueBox) Tag() Tag {
	return VTTE
}

func (v VTTEmptyCueBox) Marshal(b []byte) (n int) {
	return copy(b, vtteBytes[:])
}

func (v VTTEmptyCueBox) Len() int {
	return len(vtteBytes)
}

func (v *VTTEmptyCueBox) Unmarshal(b []byte, offset int) (n int, err error) {
	(&v.AtomPos).setPos(offset, len(b))
	if len(b) < 8 {
		err = parseErr("vtte", offset, err)
		return
	}
	n = 8
	return
}

func (v VTTEmptyCueBox) Children() (r []Atom) {
	return
}

// AppendBoxToVector marshals atom and appends its serialized bytes to dst,
// returning the grown slice.
func AppendBoxToVector(atom Atom, dst []byte) []byte {
	buf := make([]byte, atom.Len())
	atom.Marshal(buf)
	return append(dst, buf...)
}
