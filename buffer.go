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
	"sync/atomic"

	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
)

type bufferContext struct {
	handle   native.Handle
	target   native.BufferTarget
	size     int
	modified uint64
	released atomic.Bool
}

func (b *bufferContext) Handle() native.Handle {
	return b.handle
}

// Size is the number of bytes last uploaded.
func (b *bufferContext) Size() int {
	return b.size
}

// VertexBufferContext is a vertex array uploaded to a buffer object.
type VertexBufferContext struct {
	bufferContext
	data *resource.VertexData
}

func (vbc *VertexBufferContext) VertexData() *resource.VertexData {
	return vbc.data
}

// IndexBufferContext is a primitive's index array uploaded to a buffer object.
type IndexBufferContext struct {
	bufferContext
	primitive *resource.Primitive
}

func (ibc *IndexBufferContext) Primitive() *resource.Primitive {
	return ibc.primitive
}

// buffersEnabled reports whether geometry goes through buffer objects rather
// than client arrays.
func (g *GraphicsStateGuardian) buffersEnabled() bool {
	return g.caps.SupportsBufferObjects && g.config.VertexBuffers
}

func (g *GraphicsStateGuardian) validateVertexBuffer(data *resource.VertexData) error {
	if rows := data.NumRows(); g.caps.MaxVertices > 0 && rows > int(g.caps.MaxVertices) {
		return debug.Errorf("Vertex count [%d] is larger than Capabilities.MaxVertices [%d]", rows, g.caps.MaxVertices)
	}
	return nil
}

func (g *GraphicsStateGuardian) validateIndexBuffer(snap *resource.PrimitiveSnapshot) error {
	if g.caps.MaxIndices > 0 && snap.Count > g.caps.MaxIndices {
		return debug.Errorf("Index count [%d] is larger than Capabilities.MaxIndices [%d]", snap.Count, g.caps.MaxIndices)
	}
	return nil
}

func (g *GraphicsStateGuardian) genBuffer(b *bufferContext, name string) bool {
	h, err := g.device.GenBuffer()
	if err != nil {
		g.errorf("Failed to create %s buffer for %q: %s", b.target, name, err)
		return false
	}
	b.handle = h
	return true
}

/*
PrepareVertexBuffer returns data's buffer context, creating the buffer object
on first use. It returns nil when the vertices should be drawn from client
memory instead.
*/
func (g *GraphicsStateGuardian) PrepareVertexBuffer(data *resource.VertexData) *VertexBufferContext {
	g.noCopy.Check()
	if !g.functional || data == nil || !g.buffersEnabled() {
		return nil
	}
	if vbc, ok := g.prepared.vertexBuffers[data]; ok && !vbc.released.Load() {
		return vbc
	}
	if err := g.validateVertexBuffer(data); err != nil {
		g.errorf("Vertex buffer %q: %s", data.Name(), err)
		return nil
	}

	vbc := &VertexBufferContext{data: data}
	vbc.target = native.BufferVertex
	if !g.genBuffer(&vbc.bufferContext, data.Name()) {
		return nil
	}
	g.prepared.vertexBuffers[data] = vbc
	g.logger.VPrintf("Prepared vertex buffer %q", data.Name())
	return vbc
}

// ApplyVertexBuffer binds vbc and uploads its vertices if they changed.
func (g *GraphicsStateGuardian) ApplyVertexBuffer(vbc *VertexBufferContext) bool {
	g.noCopy.Check()
	if !g.functional || vbc == nil || vbc.handle == 0 {
		return false
	}
	g.bindBuffer(native.BufferVertex, vbc.handle)
	bytes, modified := vbc.data.Data()
	if vbc.modified == modified {
		return true
	}
	return g.uploadBuffer(&vbc.bufferContext, vbc.data.Name(), bytes, modified, vbc.data.Usage())
}

// PrepareIndexBuffer returns p's buffer context. It returns nil for a
// primitive without indices and when client memory is used.
func (g *GraphicsStateGuardian) PrepareIndexBuffer(p *resource.Primitive) *IndexBufferContext {
	g.noCopy.Check()
	if !g.functional || p == nil || !g.buffersEnabled() || !p.IsIndexed() {
		return nil
	}
	if ibc, ok := g.prepared.indexBuffers[p]; ok && !ibc.released.Load() {
		return ibc
	}
	snap := p.Snapshot()
	if err := g.validateIndexBuffer(&snap); err != nil {
		g.errorf("Index buffer %s: %s", p, err)
		return nil
	}

	ibc := &IndexBufferContext{primitive: p}
	ibc.target = native.BufferIndex
	if !g.genBuffer(&ibc.bufferContext, p.String()) {
		return nil
	}
	g.prepared.indexBuffers[p] = ibc
	return ibc
}

func (g *GraphicsStateGuardian) ApplyIndexBuffer(ibc *IndexBufferContext) bool {
	g.noCopy.Check()
	if !g.functional || ibc == nil || ibc.handle == 0 {
		return false
	}
	g.bindBuffer(native.BufferIndex, ibc.handle)
	snap := ibc.primitive.Snapshot()
	if ibc.modified == snap.Modified {
		return true
	}
	usage := resource.UsageStatic
	if snap.Modified > 1 {
		usage = resource.UsageDynamic
	}
	return g.uploadBuffer(&ibc.bufferContext, ibc.primitive.String(), snap.Indices, snap.Modified, usage)
}

// uploadBuffer replaces the bound buffer's contents, in place when the size
// did not change.
func (g *GraphicsStateGuardian) uploadBuffer(b *bufferContext, name string, data []byte, modified uint64, usage resource.UsageHint) bool {
	if b.size > 0 && b.size == len(data) {
		g.logger.VPrintf("Updating %s buffer %q: %d bytes", b.target, name, len(data))
		g.device.BufferSubData(b.target, 0, data)
	} else {
		g.logger.VPrintf("Uploading %s buffer %q: %d bytes", b.target, name, len(data))
		hint := translate(g, g.device.UsageHint, usage, resource.UsageStatic)
		if err := g.device.BufferData(b.target, data, hint); err != nil {
			g.errorf("Failed to upload %s buffer %q: %s", b.target, name, err)
			b.size, b.modified = 0, 0
			return false
		}
	}
	b.size, b.modified = len(data), modified
	return true
}

// ReleaseVertexBuffer schedules vbc for destruction at the next BeginFrame.
// Safe to call from any goroutine.
func (g *GraphicsStateGuardian) ReleaseVertexBuffer(vbc *VertexBufferContext) {
	if vbc == nil || vbc.released.Swap(true) {
		return
	}
	g.queueRelease(func(q *releaseQueue) {
		q.vertexBuffers = append(q.vertexBuffers, vbc)
	})
}

// ReleaseIndexBuffer schedules ibc for destruction at the next BeginFrame.
// Safe to call from any goroutine.
func (g *GraphicsStateGuardian) ReleaseIndexBuffer(ibc *IndexBufferContext) {
	if ibc == nil || ibc.released.Swap(true) {
		return
	}
	g.queueRelease(func(q *releaseQueue) {
		q.indexBuffers = append(q.indexBuffers, ibc)
	})
}

func (g *GraphicsStateGuardian) deleteBuffer(b *bufferContext) {
	if b.handle == 0 {
		return
	}
	if c := &g.params.buffers[b.target]; c.valid && c.v == b.handle {
		*c = cached[native.Handle]{}
	}
	g.device.DeleteBuffer(b.handle)
	b.handle, b.size, b.modified = 0, 0, 0
}

func (g *GraphicsStateGuardian) destroyVertexBuffer(vbc *VertexBufferContext) {
	g.deleteBuffer(&vbc.bufferContext)
	if g.prepared.vertexBuffers[vbc.data] == vbc {
		delete(g.prepared.vertexBuffers, vbc.data)
	}
}

func (g *GraphicsStateGuardian) destroyIndexBuffer(ibc *IndexBufferContext) {
	g.deleteBuffer(&ibc.bufferContext)
	if g.prepared.indexBuffers[ibc.primitive] == ibc {
		delete(g.prepared.indexBuffers, ibc.primitive)
	}
}
