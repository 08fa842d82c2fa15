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

package gsg

import (
	"encoding/binary"
	"math"

	"goarrg.com/rhi/gsg/internal/util"
	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// drawState is the vertex source set up by BeginDrawPrimitives. Only
// projection outlives a batch.
type drawState struct {
	projection *state.TransformState

	active bool
	data   *resource.VertexData
	format resource.ArrayFormat
	vbc    *VertexBufferContext
	// client is the vertex memory arrays point into when vbc is nil.
	client []byte

	clipSpace   bool
	stacked     bool
	scaledColor bool
	arrays      arraySetup

	replaying *GeomContext
	compiling *GeomContext
}

// arraySetup is the part of the array configuration that depends on render
// state. A display list bakes in whatever arrays were enabled when it was
// compiled, so it is only replayed under the same setup.
type arraySetup struct {
	color bool
	// texcoord is the column bound to each unit, empty when none is.
	texcoord [state.MaxTextureStages]string
}

/*
BeginDrawPrimitives sets up the vertex arrays of data, or of geom's vertex
data when data is nil, for the Draw* calls that follow. It must be paired with
EndDrawPrimitives when it returns true, and returns false if the batch cannot
be drawn.

Vertices marked as already transformed are drawn with identity projection and
modelview, the previous matrices are restored by EndDrawPrimitives.
*/
func (g *GraphicsStateGuardian) BeginDrawPrimitives(geom *resource.Geom, data *resource.VertexData) bool {
	g.noCopy.Check()
	if !g.functional {
		return false
	}
	if !g.frame.inScene {
		g.misuse("BeginDrawPrimitives called outside a scene")
		return false
	}
	if g.draw.active {
		g.misuse("BeginDrawPrimitives called inside BeginDrawPrimitives")
		g.EndDrawPrimitives()
	}
	if data == nil && geom != nil {
		data = geom.VertexData()
	}
	if data == nil {
		g.errorf("BeginDrawPrimitives called without vertex data")
		return false
	}

	d := &g.draw
	d.data = data
	d.format = data.Format()
	if !g.setupVertexSource() {
		g.errorf("Failed to set up vertices of %q", data.Name())
		g.draw = drawState{projection: d.projection}
		return false
	}
	d.active = true

	if data.AlreadyTransformed() {
		g.beginClipSpace()
	}
	g.setupArrays(g.target)
	if geom != nil && geom.VertexData() == data {
		g.beginDisplayList(geom)
	}
	return true
}

func (g *GraphicsStateGuardian) setupVertexSource() bool {
	d := &g.draw
	if vbc := g.PrepareVertexBuffer(d.data); vbc != nil {
		if !g.ApplyVertexBuffer(vbc) {
			return false
		}
		d.vbc = vbc
		return true
	}
	if g.buffersEnabled() {
		// the buffer could not be created, draw from client memory
		g.bindBuffer(native.BufferVertex, 0)
	}
	d.client, _ = d.data.Data()
	return true
}

func (g *GraphicsStateGuardian) arrayPointer(k native.ArrayKind, c resource.Column) {
	size := c.Components
	if c.Type == resource.NumericPackedABGR {
		size = 4
	}
	typ := translate(g, g.device.NumericType, c.Type, resource.NumericF32)
	g.device.ArrayPointer(k, size, typ, g.draw.format.Stride, g.draw.client, int(c.Offset))
}

// setupArrays points every client array the batch needs at its column and
// disables the rest.
func (g *GraphicsStateGuardian) setupArrays(target *state.RenderState) {
	d := &g.draw
	f := &d.format
	d.arrays = arraySetup{}

	v, _ := f.Column("vertex")
	g.enableArray(native.ArrayVertex, true)
	g.arrayPointer(native.ArrayVertex, v)

	if n, ok := f.Column("normal"); ok {
		g.enableArray(native.ArrayNormal, true)
		g.arrayPointer(native.ArrayNormal, n)
	} else {
		g.enableArray(native.ArrayNormal, false)
	}

	c, hasColor := f.Column("color")
	if hasColor && target.Color().Kind == state.ColorVertex {
		g.enableArray(native.ArrayColor, true)
		if scale := target.ColorScale(); scale.IsIdentity() {
			g.arrayPointer(native.ArrayColor, c)
		} else {
			bytes, _ := d.data.Data()
			scaled := scaleColors(bytes, f, c, scale.Scale)
			ft := translate(g, g.device.NumericType, resource.NumericF32, resource.NumericF32)
			g.device.ArrayPointer(native.ArrayColor, 4, ft, 16, scaled, 0)
			d.scaledColor = true
		}
		d.arrays.color = true
	} else {
		g.enableArray(native.ArrayColor, false)
		g.setColor(currentColor(target))
	}

	maxStages := min(state.MaxTextureStages, int(g.caps.MaxTextureStages))
	for unit := 0; unit < maxStages; unit++ {
		col, ok := resource.Column{}, false
		if unit < g.units.numStages && g.units.stages[unit] != nil {
			col, ok = f.Column(g.units.texcoordNames[g.units.texcoord[unit]])
		}
		if !ok {
			if g.enables.arrays[int(native.ArrayTexcoord)+unit] != off {
				g.selectClientUnit(unit)
				g.enableArray(native.ArrayTexcoord, false)
			}
			continue
		}
		g.selectClientUnit(unit)
		g.enableArray(native.ArrayTexcoord, true)
		g.arrayPointer(native.ArrayTexcoord, col)
		d.arrays.texcoord[unit] = col.Name
	}
}

// scaleColors returns the color column of every row multiplied by scale, as
// tightly packed float32 RGBA.
func scaleColors(data []byte, f *resource.ArrayFormat, c resource.Column, scale state.Vec4) []byte {
	rows := len(data) / int(f.Stride)
	out := make([]float32, rows*4)
	for i := 0; i < rows; i++ {
		rgba := decodeColor(data[i*int(f.Stride)+int(c.Offset):], c)
		for j := range rgba {
			out[i*4+j] = rgba[j] * scale[j]
		}
	}
	return util.SliceBytes(out)
}

func decodeColor(b []byte, c resource.Column) state.Vec4 {
	ret := state.Vec4{0, 0, 0, 1}
	if c.Type == resource.NumericPackedABGR {
		x := binary.NativeEndian.Uint32(b)
		for j := range ret {
			ret[j] = float32((x>>(8*j))&0xFF) / 255
		}
		return ret
	}
	for j := 0; j < int(min(c.Components, 4)); j++ {
		switch c.Type {
		case resource.NumericF32:
			ret[j] = math.Float32frombits(binary.NativeEndian.Uint32(b[j*4:]))
		case resource.NumericU8:
			ret[j] = float32(b[j]) / math.MaxUint8
		case resource.NumericU16:
			ret[j] = float32(binary.NativeEndian.Uint16(b[j*2:])) / math.MaxUint16
		case resource.NumericU32:
			ret[j] = float32(float64(binary.NativeEndian.Uint32(b[j*4:])) / math.MaxUint32)
		}
	}
	return ret
}

// beginClipSpace loads identity projection and modelview, saving both on the
// matrix stacks when they have room.
func (g *GraphicsStateGuardian) beginClipSpace() {
	d := &g.draw
	d.clipSpace = true
	d.stacked = g.caps.MaxProjectionStackDepth > 1 && g.caps.MaxModelviewStackDepth > 1

	identity := state.IdentityMat4()
	for _, m := range []native.MatrixMode{native.MatrixProjection, native.MatrixModelview} {
		g.device.MatrixMode(m)
		if d.stacked {
			g.device.PushMatrix()
		}
		g.device.LoadMatrix(identity)
	}
}

func (g *GraphicsStateGuardian) endClipSpace() {
	d := &g.draw
	if d.stacked {
		g.device.MatrixMode(native.MatrixProjection)
		g.device.PopMatrix()
		g.device.MatrixMode(native.MatrixModelview)
		g.device.PopMatrix()
		return
	}

	projection, modelview := state.IdentityMat4(), state.IdentityMat4()
	if d.projection != nil {
		projection = d.projection.Mat()
	}
	if g.transform != nil {
		modelview = g.transform.Mat()
	}
	g.device.MatrixMode(native.MatrixProjection)
	g.device.LoadMatrix(projection)
	g.device.MatrixMode(native.MatrixModelview)
	g.device.LoadMatrix(modelview)
}

// beginDisplayList replays geom's display list when it is current, or
// compiles one around the draws that follow.
func (g *GraphicsStateGuardian) beginDisplayList(geom *resource.Geom) {
	d := &g.draw
	if !g.caps.SupportsDisplayLists || d.data.Usage() != resource.UsageStatic || d.scaledColor {
		return
	}
	gc := g.PrepareGeom(geom)
	if gc == nil {
		return
	}

	key := geomKey(geom)
	if gc.list != 0 && gc.listKey == key && gc.listArrays == d.arrays {
		g.device.CallList(gc.list)
		d.replaying = gc
		return
	}
	if gc.list == 0 {
		h, err := g.device.GenList()
		if err != nil {
			g.errorf("Failed to create display list for %q: %s", geom.Name(), err)
			return
		}
		gc.list = h
	}
	gc.listKey, gc.listArrays = key, d.arrays
	g.logger.VPrintf("Compiling display list for %q", geom.Name())
	g.device.NewList(gc.list)
	d.compiling = gc
}

func (g *GraphicsStateGuardian) DrawTriangles(p *resource.Primitive) bool {
	return g.drawPrimitive(resource.PrimitiveTriangles, p)
}

func (g *GraphicsStateGuardian) DrawTristrips(p *resource.Primitive) bool {
	return g.drawPrimitive(resource.PrimitiveTristrips, p)
}

func (g *GraphicsStateGuardian) DrawTrifans(p *resource.Primitive) bool {
	return g.drawPrimitive(resource.PrimitiveTrifans, p)
}

func (g *GraphicsStateGuardian) DrawLines(p *resource.Primitive) bool {
	return g.drawPrimitive(resource.PrimitiveLines, p)
}

func (g *GraphicsStateGuardian) DrawLinestrips(p *resource.Primitive) bool {
	return g.drawPrimitive(resource.PrimitiveLinestrips, p)
}

func (g *GraphicsStateGuardian) DrawPoints(p *resource.Primitive) bool {
	return g.drawPrimitive(resource.PrimitivePoints, p)
}

func (g *GraphicsStateGuardian) drawPrimitive(kind resource.PrimitiveKind, p *resource.Primitive) bool {
	g.noCopy.Check()
	if !g.functional {
		return false
	}
	if !g.draw.active {
		g.errorf("Draw%s called outside BeginDrawPrimitives", kind)
		return false
	}
	if p == nil {
		return false
	}
	snap := p.Snapshot()
	if snap.Kind != kind {
		g.errorf("Draw%s called with %s", kind, p)
		return false
	}
	if g.draw.replaying != nil || snap.Count == 0 {
		return true
	}

	mode := translate(g, g.device.PrimitiveKind, kind, resource.PrimitiveTriangles)
	if snap.Indices == nil {
		g.device.DrawArrays(mode, snap.First, snap.Count)
		return true
	}

	typ := translate(g, g.device.IndexType, snap.IndexType, resource.IndexU16)
	indices := snap.Indices
	if ibc := g.PrepareIndexBuffer(p); ibc != nil && g.ApplyIndexBuffer(ibc) {
		indices = nil
	} else {
		g.bindBuffer(native.BufferIndex, 0)
	}
	if g.caps.SupportsDrawRangeElements {
		g.device.DrawRangeElements(mode, snap.MinIndex, snap.MaxIndex, snap.Count, typ, indices, 0)
	} else {
		g.device.DrawElements(mode, snap.Count, typ, indices, 0)
	}
	return true
}

// EndDrawPrimitives finishes the batch started by BeginDrawPrimitives.
func (g *GraphicsStateGuardian) EndDrawPrimitives() {
	g.noCopy.Check()
	if !g.draw.active {
		return
	}
	d := &g.draw
	if d.compiling != nil {
		g.device.EndList()
	}
	if d.clipSpace {
		g.endClipSpace()
	}
	if d.arrays.color {
		// the current color is undefined after drawing from a color array
		g.params.color = cached[[4]float32]{}
	}
	g.draw = drawState{projection: d.projection}
}
