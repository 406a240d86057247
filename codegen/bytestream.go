// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "encoding/binary"

// StreamID distinguishes the streams a compilation writes into.
type StreamID uint8

const (
	// CodeStream holds method bodies, exception tables and debug
	// records; it becomes the image's code pool.
	CodeStream StreamID = iota + 1
	// DataStream holds constant strings and lists; it becomes the
	// image's constant pool.
	DataStream
	// ObjectStream holds object static data for OBJS blocks.
	ObjectStream
)

func (s StreamID) String() string {
	switch s {
	case CodeStream:
		return "code"
	case DataStream:
		return "data"
	case ObjectStream:
		return "object"
	}
	return "<unknown stream>"
}

// ByteStream is an append-only byte buffer with random-access back
// patching. All multi-byte values are little-endian.
type ByteStream struct {
	ID  StreamID
	buf []byte
}

// NewByteStream returns an empty stream.
func NewByteStream(id StreamID) *ByteStream {
	return &ByteStream{ID: id}
}

// Len returns the current logical append offset.
func (s *ByteStream) Len() uint32 { return uint32(len(s.buf)) }

// Bytes returns the underlying buffer. The caller must not write past
// Len through the returned slice.
func (s *ByteStream) Bytes() []byte { return s.buf }

// Write appends raw bytes.
func (s *ByteStream) Write(b []byte) {
	s.buf = append(s.buf, b...)
}

// WriteString appends the raw bytes of str.
func (s *ByteStream) WriteString(str string) {
	s.buf = append(s.buf, str...)
}

// Write1 appends a single byte.
func (s *ByteStream) Write1(v byte) {
	s.buf = append(s.buf, v)
}

// Write2 appends a 16-bit value.
func (s *ByteStream) Write2(v uint16) {
	s.buf = append(s.buf, byte(v), byte(v>>8))
}

// Write4 appends a 32-bit value.
func (s *ByteStream) Write4(v uint32) {
	s.buf = append(s.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// ByteAt returns the byte at the given offset.
func (s *ByteStream) ByteAt(ofs uint32) byte { return s.buf[ofs] }

// Read2At reads a 16-bit value at the given offset.
func (s *ByteStream) Read2At(ofs uint32) uint16 {
	return binary.LittleEndian.Uint16(s.buf[ofs:])
}

// Read4At reads a 32-bit value at the given offset.
func (s *ByteStream) Read4At(ofs uint32) uint32 {
	return binary.LittleEndian.Uint32(s.buf[ofs:])
}

// WriteAt patches previously written bytes without moving the append
// position.
func (s *ByteStream) WriteAt(ofs uint32, b []byte) {
	copy(s.buf[ofs:], b)
}

// Write1At patches a byte at the given offset.
func (s *ByteStream) Write1At(ofs uint32, v byte) { s.buf[ofs] = v }

// Write2At patches a 16-bit value at the given offset.
func (s *ByteStream) Write2At(ofs uint32, v uint16) {
	binary.LittleEndian.PutUint16(s.buf[ofs:], v)
}

// Write4At patches a 32-bit value at the given offset.
func (s *ByteStream) Write4At(ofs uint32, v uint32) {
	binary.LittleEndian.PutUint32(s.buf[ofs:], v)
}

// SeekBack discards the last n bytes, moving the append position back.
func (s *ByteStream) SeekBack(n uint32) {
	s.buf = s.buf[:uint32(len(s.buf))-n]
}
