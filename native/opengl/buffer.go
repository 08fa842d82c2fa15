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

package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/native"
)

func (d *Device) GenBuffer() (native.Handle, error) {
	var h uint32
	gl.GenBuffers(1, &h)
	if h == 0 {
		return 0, debug.ErrorWrapf(d.errorOr(native.ErrOutOfMemory), "glGenBuffers failed")
	}
	return native.Handle(h), nil
}

func (d *Device) DeleteBuffer(h native.Handle) {
	b := uint32(h)
	gl.DeleteBuffers(1, &b)
}

func (d *Device) BindBuffer(t native.BufferTarget, h native.Handle) {
	gl.BindBuffer(bufferTargets[t], uint32(h))
}

func (d *Device) BufferData(t native.BufferTarget, data []byte, usage native.Enum) error {
	gl.BufferData(bufferTargets[t], len(data), ptr(data), uint32(usage))
	if err := d.Error(); err != nil {
		return debug.ErrorWrapf(err, "glBufferData(%s, %d bytes) failed", t, len(data))
	}
	return nil
}

func (d *Device) BufferSubData(t native.BufferTarget, offset int, data []byte) {
	gl.BufferSubData(bufferTargets[t], offset, len(data), ptr(data))
}

// source is client memory at data[offset:], or offset into the bound buffer
// when data is nil.
func source(data []byte, offset int) unsafe.Pointer {
	if data == nil {
		return gl.PtrOffset(offset)
	}
	return ptr(data[offset:])
}

func (d *Device) ArrayPointer(k native.ArrayKind, size int32, typ native.Enum, stride int32, data []byte, offset int) {
	p := source(data, offset)
	switch k {
	case native.ArrayVertex:
		gl.VertexPointer(size, uint32(typ), stride, p)
	case native.ArrayNormal:
		gl.NormalPointer(uint32(typ), stride, p)
	case native.ArrayColor:
		gl.ColorPointer(size, uint32(typ), stride, p)
	case native.ArrayTexcoord:
		gl.TexCoordPointer(size, uint32(typ), stride, p)
	}
}

func (d *Device) DrawArrays(mode native.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (d *Device) DrawElements(mode native.Enum, count int32, typ native.Enum, data []byte, offset int) {
	gl.DrawElements(uint32(mode), count, uint32(typ), source(data, offset))
}

func (d *Device) DrawRangeElements(mode native.Enum, start, end uint32, count int32, typ native.Enum, data []byte, offset int) {
	if d.entryPoints[native.FeatureDrawRangeElements] == native.VariantEXT {
		gl.DrawRangeElementsEXT(uint32(mode), start, end, count, uint32(typ), source(data, offset))
		return
	}
	gl.DrawRangeElements(uint32(mode), start, end, count, uint32(typ), source(data, offset))
}

func (d *Device) GenList() (native.Handle, error) {
	h := gl.GenLists(1)
	if h == 0 {
		return 0, debug.ErrorWrapf(d.errorOr(native.ErrOutOfMemory), "glGenLists failed")
	}
	return native.Handle(h), nil
}

func (d *Device) DeleteList(h native.Handle) { gl.DeleteLists(uint32(h), 1) }

// NewList compiles and executes, the draws that fill the list are also the
// first draw of it.
func (d *Device) NewList(h native.Handle)  { gl.NewList(uint32(h), gl.COMPILE_AND_EXECUTE) }
func (d *Device) EndList()                 { gl.EndList() }
func (d *Device) CallList(h native.Handle) { gl.CallList(uint32(h)) }
