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
	"fmt"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/state"
)

type issueRoutine struct {
	name  string
	slots state.SlotMask
	issue func(target *state.RenderState)
	// invalidates lists slots whose routines must rerun after this one.
	invalidates state.SlotMask
}

/*
initRoutines builds the issue order. Shader runs before texture because a
shader change rebinds textures, blending runs before color, material and
light, and texture runs before texgen and texmatrix which are per stage.
*/
func (g *GraphicsStateGuardian) initRoutines() {
	g.routines = []issueRoutine{
		{name: "shader", slots: state.MaskOf(state.SlotShader), issue: g.issueShader, invalidates: state.MaskOf(state.SlotTexture)},
		{name: "blending", slots: state.MaskOf(state.SlotTransparency, state.SlotColorWrite, state.SlotColorBlend), issue: g.issueBlending},
		{name: "alpha test", slots: state.MaskOf(state.SlotAlphaTest), issue: g.issueAlphaTest},
		{name: "color", slots: state.MaskOf(state.SlotColor, state.SlotColorScale), issue: g.issueColor},
		{name: "material", slots: state.MaskOf(state.SlotMaterial), issue: g.issueMaterial},
		{name: "light", slots: state.MaskOf(state.SlotLight), issue: g.issueLight},
		{name: "texture", slots: state.MaskOf(state.SlotTexture), issue: g.issueTexture, invalidates: state.MaskOf(state.SlotTexGen, state.SlotTexMatrix)},
		{name: "tex gen", slots: state.MaskOf(state.SlotTexGen), issue: g.issueTexGen},
		{name: "tex matrix", slots: state.MaskOf(state.SlotTexMatrix), issue: g.issueTexMatrix},
		{name: "clip plane", slots: state.MaskOf(state.SlotClipPlane), issue: g.issueClipPlane},
		{name: "fog", slots: state.MaskOf(state.SlotFog), issue: g.issueFog},
		{name: "render mode", slots: state.MaskOf(state.SlotRenderMode), issue: g.issueRenderMode},
		{name: "rescale normal", slots: state.MaskOf(state.SlotRescaleNormal), issue: g.issueRescaleNormal},
		{name: "shade model", slots: state.MaskOf(state.SlotShadeModel), issue: g.issueShadeModel},
		{name: "cull face", slots: state.MaskOf(state.SlotCullFace), issue: g.issueCullFace},
		{name: "depth test", slots: state.MaskOf(state.SlotDepthTest), issue: g.issueDepthTest},
		{name: "depth write", slots: state.MaskOf(state.SlotDepthWrite), issue: g.issueDepthWrite},
		{name: "depth offset", slots: state.MaskOf(state.SlotDepthOffset), issue: g.issueDepthOffset},
		{name: "scissor", slots: state.MaskOf(state.SlotScissor), issue: g.issueScissor},
		{name: "stencil", slots: state.MaskOf(state.SlotStencil), issue: g.issueStencil},
		{name: "logic op", slots: state.MaskOf(state.SlotLogicOp), issue: g.issueLogicOp},
		{name: "antialias", slots: state.MaskOf(state.SlotAntialias), issue: g.issueAntialias},
	}

	owned := state.SlotMask(0)
	for _, r := range g.routines {
		if owned&r.slots != 0 {
			abort("Slots %s claimed by more than one issue routine", owned&r.slots)
		}
		owned.Set(r.slots)
	}
	if owned != state.AllSlots {
		abort("Slots %s have no issue routine", state.AllSlots&^owned)
	}
}

func (g *GraphicsStateGuardian) routineNeeded(r *issueRoutine, target *state.RenderState) bool {
	if !g.slotMask.HasAll(r.slots) {
		return true
	}
	for s := state.Slot(0); s < state.NumSlots; s++ {
		if r.slots.Has(s) && g.applied[s] != target.Get(s) {
			return true
		}
	}
	return false
}

/*
SetStateAndTransform makes target and transform current, issuing only the
native calls needed to get there from the applied state. A nil argument
keeps the current value.
*/
func (g *GraphicsStateGuardian) SetStateAndTransform(target *state.RenderState, transform *state.TransformState) {
	g.noCopy.Check()
	if !g.functional {
		return
	}
	if target == nil {
		target = g.target
	}
	if transform == nil {
		transform = g.transform
	}

	if transform != nil && transform != g.transform {
		g.issueTransform(transform)
	}

	if target == g.target && g.slotMask == state.AllSlots {
		return
	}

	for i := range g.routines {
		r := &g.routines[i]
		if !g.routineNeeded(r, target) {
			continue
		}
		g.logger.VPrintf("issue %s", r.name)
		r.issue(target)
		for s := state.Slot(0); s < state.NumSlots; s++ {
			if r.slots.Has(s) {
				g.applied[s] = target.Get(s)
			}
		}
		g.slotMask.Set(r.slots)
		g.slotMask.Clear(r.invalidates)
	}
	g.target = target
}

// ClearStateAndTransform forgets the applied state so the next
// SetStateAndTransform issues every slot and the transform.
func (g *GraphicsStateGuardian) ClearStateAndTransform() {
	g.noCopy.Check()
	g.slotMask = 0
	g.transform = nil
}

// SetViewTransform sets the world to eye transform that lights, clip planes
// and eye linear texgen planes are specified under.
func (g *GraphicsStateGuardian) SetViewTransform(view *state.TransformState) {
	g.noCopy.Check()
	if view == nil {
		view = state.IdentityTransform()
	}
	if view == g.view {
		return
	}
	g.view = view
	g.slotMask.Clear(state.MaskOf(state.SlotLight, state.SlotClipPlane, state.SlotTexGen))
}

// SetProjection loads the projection matrix.
func (g *GraphicsStateGuardian) SetProjection(projection *state.TransformState) {
	g.noCopy.Check()
	if !g.functional || projection == nil {
		return
	}
	g.device.MatrixMode(native.MatrixProjection)
	g.device.LoadMatrix(projection.Mat())
	g.device.MatrixMode(native.MatrixModelview)
	g.draw.projection = projection
}

func (g *GraphicsStateGuardian) issueTransform(transform *state.TransformState) {
	g.device.MatrixMode(native.MatrixModelview)
	g.device.LoadMatrix(transform.Mat())
	g.transform = transform

	// rescale normal depends on whether the transform scales uniformly
	if g.slotMask.Has(state.SlotRescaleNormal) {
		g.updateNormalize(g.applied[state.SlotRescaleNormal].(*state.RescaleNormalAttrib).Mode)
	}
}

// withView runs f with the view transform as modelview.
func (g *GraphicsStateGuardian) withView(f func()) {
	g.withModelview(g.view.Mat(), f)
}

func (g *GraphicsStateGuardian) withModelview(m state.Mat4, f func()) {
	g.device.MatrixMode(native.MatrixModelview)
	g.device.PushMatrix()
	g.device.LoadMatrix(m)
	f()
	g.device.PopMatrix()
}

// translate maps v through f, logging and substituting fallback when the
// device cannot represent it.
func translate[E fmt.Stringer](g *GraphicsStateGuardian, f func(E) (native.Enum, bool), v, fallback E) native.Enum {
	if e, ok := f(v); ok {
		return e
	}
	g.errorf("Invalid %T: %s, using %s", v, v, fallback)
	e, _ := f(fallback)
	return e
}
