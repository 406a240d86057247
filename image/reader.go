// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-interpreter/tads3/t3"
)

// ErrBadSignature is returned for files that do not start with the T3
// image signature.
var ErrBadSignature = errors.New("image: bad signature")

// ErrMissingEOF is returned when the block list ends without an EOF
// block.
var ErrMissingEOF = errors.New("image: missing EOF block")

// TruncatedBlockError is returned when a block's declared size runs
// past the end of the file.
type TruncatedBlockError struct {
	ID  t3.BlockID
	Ofs int64
}

func (e TruncatedBlockError) Error() string {
	return fmt.Sprintf("image: truncated %q block at offset %d", string(e.ID), e.Ofs)
}

// Block is one decoded block header.
type Block struct {
	ID    t3.BlockID
	Ofs   int64 // data start within the file
	Size  uint32
	Flags uint16
}

// Mandatory reports whether a loader must understand the block.
func (b Block) Mandatory() bool { return b.Flags&t3.BlockFlagMandatory != 0 }

// File is a decoded image file.
type File struct {
	Version   uint16
	ToolID    [4]byte
	Timestamp string

	Blocks []Block

	data []byte
}

// headerSize is the fixed image header: signature, version, reserved
// bytes, tool id, timestamp.
var headerSize = len(t3.Signature) + 2 + 28 + 4 + 24

// Decode parses an image from memory. Block payloads reference the
// input slice without copying.
func Decode(data []byte) (*File, error) {
	if len(data) < headerSize || string(data[:len(t3.Signature)]) != t3.Signature {
		return nil, ErrBadSignature
	}
	f := &File{data: data}
	ofs := len(t3.Signature)
	f.Version = binary.LittleEndian.Uint16(data[ofs:])
	ofs += 2 + 28
	copy(f.ToolID[:], data[ofs:])
	ofs += 4
	f.Timestamp = string(data[ofs : ofs+24])
	ofs += 24

	for {
		if ofs+t3.BlockHeaderSize > len(data) {
			return nil, ErrMissingEOF
		}
		b := Block{
			ID:    t3.BlockID(data[ofs : ofs+4]),
			Size:  binary.LittleEndian.Uint32(data[ofs+4:]),
			Flags: binary.LittleEndian.Uint16(data[ofs+8:]),
			Ofs:   int64(ofs + t3.BlockHeaderSize),
		}
		if b.Ofs+int64(b.Size) > int64(len(data)) {
			return nil, TruncatedBlockError{ID: b.ID, Ofs: int64(ofs)}
		}
		f.Blocks = append(f.Blocks, b)
		ofs = int(b.Ofs) + int(b.Size)
		if b.ID == t3.BlockEOF {
			return f, nil
		}
	}
}

// BlockData returns a block's payload.
func (f *File) BlockData(b Block) []byte {
	return f.data[b.Ofs : b.Ofs+int64(b.Size)]
}

// Find returns the first block with the given ID, or nil.
func (f *File) Find(id t3.BlockID) *Block {
	for i := range f.Blocks {
		if f.Blocks[i].ID == id {
			return &f.Blocks[i]
		}
	}
	return nil
}

// PoolPage is one decoded, unmasked pool page.
type PoolPage struct {
	Pool  t3.PoolID
	Index uint32
	Mask  byte
	Data  []byte
}

// DecodePoolPage decodes a CPPG block, reversing the XOR mask.
func (f *File) DecodePoolPage(b Block) (PoolPage, error) {
	data := f.BlockData(b)
	if len(data) < 7 {
		return PoolPage{}, TruncatedBlockError{ID: b.ID, Ofs: b.Ofs}
	}
	p := PoolPage{
		Pool:  t3.PoolID(binary.LittleEndian.Uint16(data)),
		Index: binary.LittleEndian.Uint32(data[2:]),
		Mask:  data[6],
	}
	raw := data[7:]
	if p.Mask == 0 {
		p.Data = raw
		return p, nil
	}
	out := make([]byte, len(raw))
	for i, v := range raw {
		out[i] = v ^ p.Mask
	}
	p.Data = out
	return p, nil
}

// Pool reassembles a pool's bytes from its pages.
func (f *File) Pool(id t3.PoolID) ([]byte, error) {
	var out []byte
	for _, b := range f.Blocks {
		if b.ID != t3.BlockPoolPage {
			continue
		}
		p, err := f.DecodePoolPage(b)
		if err != nil {
			return nil, err
		}
		if p.Pool == id {
			out = append(out, p.Data...)
		}
	}
	return out, nil
}

// Entrypoint decodes the ENTP block.
func (f *File) Entrypoint() (t3.PoolOfs, error) {
	b := f.Find(t3.BlockEntrypoint)
	if b == nil {
		return 0, errors.New("image: no entrypoint block")
	}
	data := f.BlockData(*b)
	if len(data) < 4 {
		return 0, TruncatedBlockError{ID: b.ID, Ofs: b.Ofs}
	}
	return t3.PoolOfs(binary.LittleEndian.Uint32(data)), nil
}

// MetaDepNames decodes the metaclass names of an MCLD block, stepping
// entries by their next-record offsets.
func MetaDepNames(data []byte) []string {
	if len(data) < 2 {
		return nil
	}
	n := int(binary.LittleEndian.Uint16(data))
	ofs := 2
	names := make([]string, 0, n)
	for i := 0; i < n && ofs+2 <= len(data); i++ {
		next := int(binary.LittleEndian.Uint16(data[ofs:]))
		if ofs+3 > len(data) {
			break
		}
		l := int(data[ofs+2])
		if ofs+3+l > len(data) {
			break
		}
		names = append(names, string(data[ofs+3:ofs+3+l]))
		if next <= 0 {
			break
		}
		ofs += next
	}
	return names
}

// MethodList decodes the addresses of an MHLS block.
func MethodList(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	out := make([]uint32, 0, n)
	for i := 0; i < n && len(data) >= 4; i++ {
		out = append(out, binary.LittleEndian.Uint32(data))
		data = data[4:]
	}
	return out
}

// DepNames decodes a FNSD-style dependency list.
func DepNames(data []byte) []string {
	if len(data) < 2 {
		return nil
	}
	n := int(binary.LittleEndian.Uint16(data))
	data = data[2:]
	names := make([]string, 0, n)
	for i := 0; i < n && len(data) > 0; i++ {
		l := int(data[0])
		if 1+l > len(data) {
			break
		}
		names = append(names, string(data[1:1+l]))
		data = data[1+l:]
	}
	return names
}
