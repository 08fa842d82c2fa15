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
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
)

// maxPendingErrors bounds the glGetError loop, a lost context can report an
// error forever.
const maxPendingErrors = 8

func (d *Device) ClearColor(c [4]float32) { gl.ClearColor(c[0], c[1], c[2], c[3]) }
func (d *Device) ClearDepth(v float64)    { gl.ClearDepth(v) }
func (d *Device) ClearStencil(s int32)    { gl.ClearStencil(s) }

func (d *Device) Clear(mask native.ClearMask) {
	bits := uint32(0)
	if mask&native.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&native.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&native.ClearStencil != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

// GL has no scene bracket, errors left by the frame are only logged.
func (d *Device) BeginScene() error {
	d.logPending("BeginScene")
	return nil
}

func (d *Device) EndScene() error {
	d.logPending("EndScene")
	return nil
}

func (d *Device) Present() error {
	if d.surface != nil {
		d.surface.SwapBuffers()
	}
	return nil
}

func (d *Device) logPending(where string) {
	for i := 0; i < maxPendingErrors; i++ {
		err := d.Error()
		if err == nil {
			return
		}
		logger.WPrintf("%s: %v", where, err)
	}
}

func (d *Device) Flush()  { gl.Flush() }
func (d *Device) Finish() { gl.Finish() }

func (d *Device) ReadPixel(x, y int32) [4]byte {
	var px [4]byte
	gl.ReadPixels(x, y, 1, 1, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&px[0]))
	return px
}

func (d *Device) ReadPixels(r gmath.Recti32, format, typ native.Enum, out []byte) error {
	if r.W <= 0 || r.H <= 0 {
		return nil
	}
	gl.ReadPixels(r.X, r.Y, r.W, r.H, uint32(format), uint32(typ), ptr(out))
	if err := d.Error(); err != nil {
		return debug.ErrorWrapf(err, "glReadPixels(%v) failed", r)
	}
	return nil
}

func (d *Device) Error() error {
	switch e := gl.GetError(); e {
	case gl.NO_ERROR:
		return nil
	case gl.OUT_OF_MEMORY:
		return debug.ErrorWrapf(native.ErrOutOfMemory, "GL_OUT_OF_MEMORY")
	case gl.INVALID_ENUM:
		return debug.Errorf("GL_INVALID_ENUM")
	case gl.INVALID_VALUE:
		return debug.Errorf("GL_INVALID_VALUE")
	case gl.INVALID_OPERATION:
		return debug.Errorf("GL_INVALID_OPERATION")
	case gl.STACK_OVERFLOW:
		return debug.Errorf("GL_STACK_OVERFLOW")
	case gl.STACK_UNDERFLOW:
		return debug.Errorf("GL_STACK_UNDERFLOW")
	default:
		return debug.Errorf("GL error 0x%X", e)
	}
}

// errorOr returns the pending GL error, or fallback when there is none.
func (d *Device) errorOr(fallback error) error {
	if err := d.Error(); err != nil {
		return err
	}
	return fallback
}
