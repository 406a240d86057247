// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-interpreter/tads3/t3"
)

var testTime = time.Date(2019, time.March, 9, 12, 30, 0, 0, time.UTC)

func testProgram() *Program {
	code := make([]byte, 300)
	for i := range code {
		code[i] = byte(i)
	}
	return &Program{
		Version:    t3.ImageVersion,
		ToolID:     [4]byte{'t', '3', 'g', 'o'},
		EntryOfs:   0x40,
		PageSize:   256,
		CodePages:  [][]byte{code[:256], code[256:]},
		ConstPages: [][]byte{{2, 0, 'h', 'i'}},
		XorMask:    0xad,
		FuncSets:   []string{"t3vm/010006", "tads-gen/030008"},
		Metaclasses: []MetaDep{
			{Name: "tads-object/030005", Props: []t3.PropID{1, 2}},
			{Name: "list/030008"},
		},
		ObjGroups: []ObjGroup{{
			MetaIndex: 0,
			Objects:   []ObjRecord{{ID: 21, Data: []byte{0, 0, 0, 0, 0, 0}}},
		}},
		Symbols: []SymEntry{
			{Name: "lamp", Val: t3.ObjValue(21)},
		},
		MethodHeaders: []t3.PoolOfs{0x40},
		StaticInit:    &StaticInitInfo{CodeOfs: 0x80, Count: 1},
	}
}

func TestImageHeader(t *testing.T) {
	w := NewWriter()
	w.WriteProgram(testProgram(), testTime)
	b := w.Bytes()

	require.True(t, bytes.HasPrefix(b, []byte(t3.Signature)))
	ofs := len(t3.Signature)
	assert.Equal(t, uint16(t3.ImageVersion), binary.LittleEndian.Uint16(b[ofs:]))
	// 28 reserved zero bytes
	for i := 0; i < 28; i++ {
		assert.Zero(t, b[ofs+2+i])
	}
	assert.Equal(t, []byte("t3go"), b[ofs+30:ofs+34])
	assert.Len(t, "Sat Mar  9 12:30:00 2019", 24)
	assert.Equal(t, "Sat Mar  9 12:30:00 2019", string(b[ofs+34:ofs+58]))
}

// TestBlockFraming walks the block list by size fields only: reading
// the size at start+4 and skipping that many bytes must land exactly on
// the next block, ending at an empty EOF block.
func TestBlockFraming(t *testing.T) {
	w := NewWriter()
	w.WriteProgram(testProgram(), testTime)
	b := w.Bytes()

	ofs := len(t3.Signature) + 2 + 28 + 4 + 24
	sawEOF := false
	for ofs < len(b) {
		require.LessOrEqual(t, ofs+t3.BlockHeaderSize, len(b))
		id := string(b[ofs : ofs+4])
		size := binary.LittleEndian.Uint32(b[ofs+4:])
		ofs += t3.BlockHeaderSize + int(size)
		if id == string(t3.BlockEOF) {
			assert.Zero(t, size)
			sawEOF = true
			break
		}
	}
	require.True(t, sawEOF, "missing EOF block")
	assert.Equal(t, len(b), ofs, "EOF must terminate the stream")
}

func TestXorMaskRoundTrip(t *testing.T) {
	w := NewWriter()
	p := testProgram()
	w.WriteProgram(p, testTime)

	f, err := Decode(w.Bytes())
	require.NoError(t, err)

	pool, err := f.Pool(t3.PoolCode)
	require.NoError(t, err)
	want := append(append([]byte{}, p.CodePages[0]...), p.CodePages[1]...)
	assert.Equal(t, want, pool, "xor(xor(page, m), m) must restore the page")

	// the on-disk bytes really are masked
	var raw []byte
	for _, blk := range f.Blocks {
		if blk.ID == t3.BlockPoolPage {
			data := f.BlockData(blk)
			if t3.PoolID(binary.LittleEndian.Uint16(data)) == t3.PoolCode {
				raw = data[7:]
				break
			}
		}
	}
	require.NotNil(t, raw)
	assert.NotEqual(t, p.CodePages[0], raw)
	assert.Equal(t, p.CodePages[0][1]^0xad, raw[1])
}

func TestDecodeRoundTrip(t *testing.T) {
	w := NewWriter()
	p := testProgram()
	w.WriteProgram(p, testTime)

	f, err := Decode(w.Bytes())
	require.NoError(t, err)

	assert.Equal(t, p.Version, f.Version)
	assert.Equal(t, p.ToolID, f.ToolID)

	entry, err := f.Entrypoint()
	require.NoError(t, err)
	assert.Equal(t, p.EntryOfs, entry)

	fnsd := f.Find(t3.BlockFuncSetDep)
	require.NotNil(t, fnsd)
	assert.True(t, fnsd.Mandatory())
	assert.Equal(t, p.FuncSets, DepNames(f.BlockData(*fnsd)))

	mcld := f.Find(t3.BlockMetaDep)
	require.NotNil(t, mcld)
	assert.Equal(t, []string{"tads-object/030005", "list/030008"},
		MetaDepNames(f.BlockData(*mcld)))

	mhls := f.Find(t3.BlockMethodList)
	require.NotNil(t, mhls)
	assert.Equal(t, []uint32{0x40}, MethodList(f.BlockData(*mhls)))

	objs := f.Find(t3.BlockObjects)
	require.NotNil(t, objs)
	data := f.BlockData(*objs)
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data))      // count
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[2:])) // metaclass
	assert.Equal(t, uint32(21), binary.LittleEndian.Uint32(data[6:])) // object id

	sini := f.Find(t3.BlockStaticInit)
	require.NotNil(t, sini)
	sdata := f.BlockData(*sini)
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(sdata))
	assert.Equal(t, uint32(0x80), binary.LittleEndian.Uint32(sdata[4:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(sdata[8:]))
}

func TestPoolDefFixup(t *testing.T) {
	w := NewWriter()
	w.Prepare(1, [4]byte{}, testTime)
	defOfs := w.WritePoolDef(t3.PoolCode, 0, 4096, true)
	w.WritePoolPage(t3.PoolCode, 0, []byte{1, 2, 3}, true, 0)
	w.FixPoolDef(defOfs, 1)
	w.Finish()

	f, err := Decode(w.Bytes())
	require.NoError(t, err)
	cpdf := f.Find(t3.BlockPoolDef)
	require.NotNil(t, cpdf)
	data := f.BlockData(*cpdf)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[2:]), "page count back-patched")
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	assert.ErrorIs(t, err, ErrBadSignature)

	w := NewWriter()
	w.Prepare(1, [4]byte{}, testTime)
	w.BeginBlock(t3.BlockEntrypoint, true)
	w.EndBlock()
	// no EOF block written
	_, err = Decode(w.Bytes())
	assert.ErrorIs(t, err, ErrMissingEOF)

	// a block whose size runs past the end of the file
	b := append([]byte{}, w.Bytes()...)
	binary.LittleEndian.PutUint32(b[len(b)-6:], 0xffff)
	_, err = Decode(b)
	var trunc TruncatedBlockError
	assert.ErrorAs(t, err, &trunc)
}

func TestImplicitBlockClose(t *testing.T) {
	w := NewWriter()
	w.Prepare(1, [4]byte{}, testTime)
	w.BeginBlock(t3.BlockMacros, false)
	w.WriteBytes([]byte{1, 2, 3})
	// beginning the next block must close the previous one
	w.BeginBlock(t3.BlockEOF, true)
	w.EndBlock()

	f, err := Decode(w.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Blocks, 2)
	assert.Equal(t, uint32(3), f.Blocks[0].Size)
	assert.Equal(t, t3.BlockEOF, f.Blocks[1].ID)
}
