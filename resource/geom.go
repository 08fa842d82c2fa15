/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package resource

import (
	"fmt"
	"slices"
	"sync"

	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/internal/util"
)

type Contents uint8

const (
	ContentsPoint Contents = iota
	ContentsNormal
	ContentsColor
	ContentsTexcoord
	ContentsOther
)

func (c Contents) String() string {
	switch c {
	case ContentsPoint:
		return "Point"
	case ContentsNormal:
		return "Normal"
	case ContentsColor:
		return "Color"
	case ContentsTexcoord:
		return "Texcoord"
	case ContentsOther:
		return "Other"
	}
	return "Invalid"
}

type NumericType uint8

const (
	NumericF32 NumericType = iota
	NumericU8
	NumericU16
	NumericU32
	// NumericPackedABGR is four normalized u8 in one 32 bit word.
	NumericPackedABGR
)

func (n NumericType) String() string {
	switch n {
	case NumericF32:
		return "F32"
	case NumericU8:
		return "U8"
	case NumericU16:
		return "U16"
	case NumericU32:
		return "U32"
	case NumericPackedABGR:
		return "PackedABGR"
	}
	return "Invalid"
}

func (n NumericType) Size() int {
	switch n {
	case NumericU8:
		return 1
	case NumericU16:
		return 2
	}
	return 4
}

type UsageHint uint8

const (
	UsageStatic UsageHint = iota
	UsageDynamic
	UsageStream
)

func (u UsageHint) String() string {
	switch u {
	case UsageStatic:
		return "Static"
	case UsageDynamic:
		return "Dynamic"
	case UsageStream:
		return "Stream"
	}
	return "Invalid"
}

type Column struct {
	Name       string
	Contents   Contents
	Components int32
	Type       NumericType
	Offset     int32
}

func (c Column) Size() int32 {
	if c.Type == NumericPackedABGR {
		return 4
	}
	return c.Components * int32(c.Type.Size())
}

// ArrayFormat is the interleaved layout of one vertex array.
type ArrayFormat struct {
	Columns []Column
	Stride  int32
}

// Column returns the first column with the given name.
func (f *ArrayFormat) Column(name string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (f *ArrayFormat) validate() error {
	if f.Stride <= 0 {
		return debug.Errorf("Invalid stride: %d", f.Stride)
	}
	for _, c := range f.Columns {
		if c.Components < 1 || c.Components > 4 {
			return debug.Errorf("Column %q has %d components", c.Name, c.Components)
		}
		if c.Offset < 0 || c.Offset+c.Size() > f.Stride {
			return debug.Errorf("Column %q [%d, %d) outside stride %d", c.Name, c.Offset, c.Offset+c.Size(), f.Stride)
		}
	}
	if _, ok := f.Column("vertex"); !ok {
		return debug.Errorf("Missing vertex column")
	}
	return nil
}

// VertexData is one interleaved vertex array.
type VertexData struct {
	noCopy util.NoCopy
	mtx    sync.RWMutex
	name   string
	format ArrayFormat
	usage  UsageHint
	data   []byte
	// alreadyTransformed marks vertices that are already in clip space.
	alreadyTransformed bool
	modified           uint64
}

func NewVertexData(name string, format ArrayFormat, usage UsageHint, data []byte) (*VertexData, error) {
	if err := format.validate(); err != nil {
		return nil, debug.ErrorWrapf(err, "Invalid format for %q", name)
	}
	if len(data)%int(format.Stride) != 0 {
		return nil, debug.Errorf("%q: data size %d not a multiple of stride %d", name, len(data), format.Stride)
	}
	v := &VertexData{
		name: name, format: format, usage: usage, data: data, modified: 1,
	}
	v.format.Columns = slices.Clone(format.Columns)
	v.noCopy.Init()
	return v, nil
}

func (v *VertexData) Name() string { return v.name }

func (v *VertexData) Format() ArrayFormat {
	return v.format
}

func (v *VertexData) Usage() UsageHint {
	return v.usage
}

func (v *VertexData) NumRows() int {
	v.mtx.RLock()
	defer v.mtx.RUnlock()
	return len(v.data) / int(v.format.Stride)
}

// Data returns the vertex bytes and the counter they correspond to.
func (v *VertexData) Data() ([]byte, uint64) {
	v.noCopy.Check()
	v.mtx.RLock()
	defer v.mtx.RUnlock()
	return v.data, v.modified
}

func (v *VertexData) Modified() uint64 {
	v.mtx.RLock()
	defer v.mtx.RUnlock()
	return v.modified
}

func (v *VertexData) SetData(data []byte) {
	v.noCopy.Check()
	v.mtx.Lock()
	defer v.mtx.Unlock()
	v.data = data
	v.modified++
}

func (v *VertexData) AlreadyTransformed() bool {
	v.mtx.RLock()
	defer v.mtx.RUnlock()
	return v.alreadyTransformed
}

func (v *VertexData) SetAlreadyTransformed(b bool) {
	v.noCopy.Check()
	v.mtx.Lock()
	defer v.mtx.Unlock()
	v.alreadyTransformed = b
}

func (v *VertexData) String() string {
	return v.name
}

type PrimitiveKind uint8

const (
	PrimitiveTriangles PrimitiveKind = iota
	PrimitiveTristrips
	PrimitiveTrifans
	PrimitiveLines
	PrimitiveLinestrips
	PrimitivePoints
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveTriangles:
		return "Triangles"
	case PrimitiveTristrips:
		return "Tristrips"
	case PrimitiveTrifans:
		return "Trifans"
	case PrimitiveLines:
		return "Lines"
	case PrimitiveLinestrips:
		return "Linestrips"
	case PrimitivePoints:
		return "Points"
	}
	return "Invalid"
}

type IndexType uint8

const (
	IndexU8 IndexType = iota
	IndexU16
	IndexU32
)

func (t IndexType) String() string {
	switch t {
	case IndexU8:
		return "U8"
	case IndexU16:
		return "U16"
	case IndexU32:
		return "U32"
	}
	return "Invalid"
}

func (t IndexType) Size() int {
	switch t {
	case IndexU16:
		return 2
	case IndexU32:
		return 4
	}
	return 1
}

// Primitive is either an indexed range or a run of consecutive vertices.
type Primitive struct {
	noCopy    util.NoCopy
	mtx       sync.RWMutex
	kind      PrimitiveKind
	indexType IndexType
	indices   []byte
	first     int32
	count     int32
	minIndex  uint32
	maxIndex  uint32
	modified  uint64
}

func NewPrimitive(kind PrimitiveKind, first, count int32) *Primitive {
	p := &Primitive{kind: kind, first: first, count: count, modified: 1}
	p.noCopy.Init()
	return p
}

// NewIndexedPrimitive copies indices into a packed array of the smallest
// index type that holds them.
func NewIndexedPrimitive(kind PrimitiveKind, indices []uint32) *Primitive {
	p := &Primitive{kind: kind, modified: 1}
	p.noCopy.Init()
	p.setIndices(indices)
	return p
}

func (p *Primitive) setIndices(indices []uint32) {
	p.count = int32(len(indices))
	p.minIndex, p.maxIndex = 0, 0
	if len(indices) > 0 {
		p.minIndex, p.maxIndex = slices.Min(indices), slices.Max(indices)
	}
	switch {
	case p.maxIndex <= 0xFF:
		p.indexType = IndexU8
		b := make([]uint8, len(indices))
		for i, x := range indices {
			b[i] = uint8(x)
		}
		p.indices = b
	case p.maxIndex <= 0xFFFF:
		p.indexType = IndexU16
		b := make([]uint16, len(indices))
		for i, x := range indices {
			b[i] = uint16(x)
		}
		p.indices = util.SliceBytes(b)
	default:
		p.indexType = IndexU32
		p.indices = util.SliceBytes(slices.Clone(indices))
	}
}

func (p *Primitive) SetIndices(indices []uint32) {
	p.noCopy.Check()
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.setIndices(indices)
	p.modified++
}

func (p *Primitive) Kind() PrimitiveKind { return p.kind }

func (p *Primitive) IsIndexed() bool {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.indices != nil
}

type PrimitiveSnapshot struct {
	Kind      PrimitiveKind
	IndexType IndexType
	Indices   []byte
	First     int32
	Count     int32
	MinIndex  uint32
	MaxIndex  uint32
	Modified  uint64
}

func (p *Primitive) Snapshot() PrimitiveSnapshot {
	p.noCopy.Check()
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return PrimitiveSnapshot{
		Kind: p.kind, IndexType: p.indexType, Indices: p.indices,
		First: p.first, Count: p.count, MinIndex: p.minIndex, MaxIndex: p.maxIndex,
		Modified: p.modified,
	}
}

func (p *Primitive) Modified() uint64 {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.modified
}

func (p *Primitive) String() string {
	return fmt.Sprintf("%s[%d]", p.kind, p.count)
}

// Geom pairs one vertex array with the primitives drawn from it.
type Geom struct {
	noCopy     util.NoCopy
	mtx        sync.RWMutex
	name       string
	data       *VertexData
	primitives []*Primitive
	modified   uint64
}

func NewGeom(name string, data *VertexData, primitives ...*Primitive) *Geom {
	g := &Geom{name: name, data: data, primitives: slices.Clone(primitives), modified: 1}
	g.noCopy.Init()
	return g
}

func (g *Geom) Name() string { return g.name }

func (g *Geom) VertexData() *VertexData {
	g.mtx.RLock()
	defer g.mtx.RUnlock()
	return g.data
}

func (g *Geom) Primitives() []*Primitive {
	g.mtx.RLock()
	defer g.mtx.RUnlock()
	return slices.Clone(g.primitives)
}

func (g *Geom) AddPrimitive(p *Primitive) {
	g.noCopy.Check()
	g.mtx.Lock()
	defer g.mtx.Unlock()
	g.primitives = append(g.primitives, p)
	g.modified++
}

func (g *Geom) Modified() uint64 {
	g.mtx.RLock()
	defer g.mtx.RUnlock()
	return g.modified
}

func (g *Geom) String() string {
	return g.name
}

func (c Contents) Valid() bool      { return c <= ContentsOther }
func (n NumericType) Valid() bool   { return n <= NumericPackedABGR }
func (u UsageHint) Valid() bool     { return u <= UsageStream }
func (k PrimitiveKind) Valid() bool { return k <= PrimitivePoints }
func (t IndexType) Valid() bool     { return t <= IndexU32 }
