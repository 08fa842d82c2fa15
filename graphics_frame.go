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
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/state"
)

type frameState struct {
	number  uint64
	inFrame bool
	inScene bool
	lost    bool
	query   *QueryContext
}

type displayRegion struct {
	viewport gmath.Recti32
	scissor  gmath.Recti32
	valid    bool
}

// misuse reports a call made out of order, aborting in strict mode.
func (g *GraphicsStateGuardian) misuse(fmt string, args ...any) {
	if g.config.Strict {
		abort(fmt, args...)
	}
	g.errorf(fmt, args...)
}

// FrameNumber is the number of frames begun since New.
func (g *GraphicsStateGuardian) FrameNumber() uint64 {
	return g.frame.number
}

/*
BeginFrame starts a frame. It destroys everything released since the last
frame, prepares enqueued resources, evicts textures over the memory limit and
forces the next state change to be issued in full.

It returns false when the frame should be skipped: the GSG is not functional
or the device's surfaces are lost. Lost surfaces are polled on every call.
*/
func (g *GraphicsStateGuardian) BeginFrame() (bool, error) {
	g.noCopy.Check()
	if !g.functional {
		return false, nil
	}
	if g.frame.inFrame {
		abort("BeginFrame called when there's an active frame")
	}
	if g.frame.lost {
		if ok, err := g.checkCooperativeLevel(); !ok || err != nil {
			return false, err
		}
	}

	g.drainReleased()
	g.loader.Pump()
	g.prepareEnqueued()
	g.evictTextures()

	g.slotMask = 0
	g.frame.inFrame = true
	g.frame.number++
	g.logger.VPrintf("Frame %d", g.frame.number)
	return true, nil
}

// BeginScene must follow BeginFrame before anything is drawn. It returns
// false if the scene should be skipped.
func (g *GraphicsStateGuardian) BeginScene() (bool, error) {
	g.noCopy.Check()
	if !g.functional {
		return false, nil
	}
	if !g.frame.inFrame {
		g.misuse("BeginScene called without an active frame")
		return false, nil
	}
	if g.frame.inScene {
		g.misuse("BeginScene called when there's an active scene")
		return true, nil
	}
	if g.frame.lost {
		return false, nil
	}

	if err := g.device.BeginScene(); err != nil {
		return false, g.handleSurfaceError(err)
	}
	g.frame.inScene = true
	return true, nil
}

func (g *GraphicsStateGuardian) EndScene() error {
	g.noCopy.Check()
	if !g.functional {
		return nil
	}
	if !g.frame.inScene {
		g.misuse("EndScene called without an active scene")
		return nil
	}
	if g.draw.active {
		g.misuse("EndScene called inside BeginDrawPrimitives")
		g.EndDrawPrimitives()
	}
	g.frame.inScene = false
	return g.handleSurfaceError(g.device.EndScene())
}

// EndFrame presents the frame.
func (g *GraphicsStateGuardian) EndFrame() error {
	g.noCopy.Check()
	if !g.frame.inFrame {
		if g.functional {
			g.misuse("EndFrame called without an active frame")
		}
		return nil
	}
	if g.frame.inScene {
		g.misuse("EndFrame called with an active scene")
		if err := g.EndScene(); err != nil {
			g.frame.inFrame = false
			return err
		}
	}
	g.frame.inFrame = false
	if !g.functional || g.frame.lost {
		return nil
	}
	return g.handleSurfaceError(g.device.Present())
}

// Finish blocks until every issued command has completed.
func (g *GraphicsStateGuardian) Finish() {
	g.noCopy.Check()
	if !g.functional {
		return
	}
	g.device.Finish()
	// ReadPixel cannot return before the pipeline drains
	g.device.ReadPixel(0, 0)
}

type ClearRequest struct {
	Color        bool
	ColorValue   state.Vec4
	Depth        bool
	DepthValue   float64
	Stencil      bool
	StencilValue int32
}

/*
Clear clears the requested buffers of the current display region. Color and
depth writes are forced on for the clear and restored afterwards, clear
values are only sent when they change.
*/
func (g *GraphicsStateGuardian) Clear(r ClearRequest) {
	g.noCopy.Check()
	if !g.functional {
		return
	}

	mask := native.ClearMask(0)
	colorMask := g.params.colorMask
	depthMask := g.params.depthMask

	if r.Color {
		if g.params.clearColor.update(r.ColorValue) {
			g.device.ClearColor(r.ColorValue)
		}
		g.setColorMask(state.ColorWriteAll)
		mask |= native.ClearColor
	}
	if r.Depth {
		if g.params.clearDepth.update(r.DepthValue) {
			g.device.ClearDepth(r.DepthValue)
		}
		g.setDepthMask(true)
		mask |= native.ClearDepth
	}
	if r.Stencil {
		if g.params.clearStencil.update(r.StencilValue) {
			g.device.ClearStencil(r.StencilValue)
		}
		mask |= native.ClearStencil
	}
	if mask == 0 {
		return
	}

	g.device.Clear(mask)

	if r.Color && colorMask.valid {
		g.setColorMask(colorMask.v)
	}
	if r.Depth && depthMask.valid {
		g.setDepthMask(depthMask.v)
	}
}

// PrepareDisplayRegion makes viewport the drawing area and scissors to
// scissor.
func (g *GraphicsStateGuardian) PrepareDisplayRegion(viewport, scissor gmath.Recti32) {
	g.noCopy.Check()
	if !g.functional {
		return
	}
	if viewport.W < 0 || viewport.H < 0 {
		g.errorf("Invalid display region: %v", viewport)
		g.enable(native.CapScissorTest, false)
		g.region = displayRegion{}
		return
	}

	g.region = displayRegion{viewport: viewport, scissor: scissor, valid: true}
	g.setViewport(viewport)
	g.setScissor(scissor)
	g.enable(native.CapScissorTest, true)
	// a scissor attrib is relative to the region
	g.slotMask.Clear(state.MaskOf(state.SlotScissor))
}
