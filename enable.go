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

type tristate uint8

const (
	unknown tristate = iota
	off
	on
)

func toTristate(b bool) tristate {
	if b {
		return on
	}
	return off
}

const numUnitCapabilities = native.NumCapabilities - native.CapTexture1D

// enableCache mirrors every enable flag so a redundant toggle is never sent.
type enableCache struct {
	global     [native.CapTexture1D]tristate
	unit       [state.MaxTextureStages][numUnitCapabilities]tristate
	lights     [state.MaxLights]tristate
	clipPlanes [state.MaxClipPlanes]tristate
	arrays     [native.ArrayTexcoord + state.MaxTextureStages]tristate
}

func (c *enableCache) reset() {
	*c = enableCache{}
}

func (g *GraphicsStateGuardian) enable(c native.Capability, b bool) {
	var slot *tristate
	if c.PerTextureUnit() {
		if !g.units.activeValid {
			g.selectUnit(g.units.active)
		}
		slot = &g.enables.unit[g.units.active][c-native.CapTexture1D]
	} else {
		slot = &g.enables.global[c]
	}
	if *slot == toTristate(b) {
		return
	}
	*slot = toTristate(b)
	g.device.Enable(c, b)
}

func (g *GraphicsStateGuardian) enableLight(i int, b bool) {
	if g.enables.lights[i] == toTristate(b) {
		return
	}
	g.enables.lights[i] = toTristate(b)
	g.device.EnableLight(i, b)
}

func (g *GraphicsStateGuardian) enableClipPlane(i int, b bool) {
	if g.enables.clipPlanes[i] == toTristate(b) {
		return
	}
	g.enables.clipPlanes[i] = toTristate(b)
	g.device.EnableClipPlane(i, b)
}

// enableArray toggles a client array, texcoord arrays are tracked per
// client active unit.
func (g *GraphicsStateGuardian) enableArray(k native.ArrayKind, b bool) {
	i := int(k)
	if k == native.ArrayTexcoord {
		if !g.units.clientActiveValid {
			g.selectClientUnit(g.units.clientActive)
		}
		i += g.units.clientActive
	}
	if g.enables.arrays[i] == toTristate(b) {
		return
	}
	g.enables.arrays[i] = toTristate(b)
	g.device.EnableArray(k, b)
}

type cached[T comparable] struct {
	v     T
	valid bool
}

// update stores v and reports whether it differs from the cached value.
func (c *cached[T]) update(v T) bool {
	if c.valid && c.v == v {
		return false
	}
	c.v, c.valid = v, true
	return true
}

type lightModel struct {
	ambient     [4]float32
	localViewer bool
	twoSided    bool
}

// paramCache mirrors parameters that more than one routine issues.
type paramCache struct {
	colorMask     cached[state.ColorWriteChannels]
	blendFunc     cached[[2]native.Enum]
	blendEquation cached[native.Enum]
	blendColor    cached[[4]float32]
	depthMask     cached[bool]
	color         cached[[4]float32]
	lineWidth     cached[float32]
	pointSize     cached[float32]
	lightModel    cached[lightModel]
	viewport      cached[gmath.Recti32]
	scissor       cached[gmath.Recti32]
	clearColor    cached[[4]float32]
	clearDepth    cached[float64]
	clearStencil  cached[int32]
	program       cached[native.Handle]
	buffers       [native.BufferIndex + 1]cached[native.Handle]
}

func (c *paramCache) reset() {
	*c = paramCache{}
}

func (g *GraphicsStateGuardian) setColorMask(c state.ColorWriteChannels) {
	if g.params.colorMask.update(c) {
		g.device.ColorMask(hasBits(c, state.ColorWriteRed), hasBits(c, state.ColorWriteGreen),
			hasBits(c, state.ColorWriteBlue), hasBits(c, state.ColorWriteAlpha))
	}
}

func (g *GraphicsStateGuardian) setDepthMask(b bool) {
	if g.params.depthMask.update(b) {
		g.device.DepthMask(b)
	}
}

func (g *GraphicsStateGuardian) setColor(c [4]float32) {
	if g.params.color.update(c) {
		g.device.Color(c)
	}
}

func (g *GraphicsStateGuardian) setLineWidth(w float32) {
	if g.params.lineWidth.update(w) {
		g.device.LineWidth(w)
	}
}

func (g *GraphicsStateGuardian) setPointSize(s float32) {
	if g.params.pointSize.update(s) {
		g.device.PointSize(s)
	}
}

func (g *GraphicsStateGuardian) setLightModel(m lightModel) {
	if g.params.lightModel.update(m) {
		g.device.LightModel(m.ambient, m.localViewer, m.twoSided)
	}
}

func (g *GraphicsStateGuardian) setViewport(r gmath.Recti32) {
	if g.params.viewport.update(r) {
		g.device.Viewport(r)
	}
}

func (g *GraphicsStateGuardian) setScissor(r gmath.Recti32) {
	if g.params.scissor.update(r) {
		g.device.Scissor(r)
	}
}

// bindBuffer binds h to t, zero unbinds and makes t source client memory.
func (g *GraphicsStateGuardian) bindBuffer(t native.BufferTarget, h native.Handle) {
	if !g.caps.SupportsBufferObjects {
		return
	}
	if g.params.buffers[t].update(h) {
		g.device.BindBuffer(t, h)
	}
}
