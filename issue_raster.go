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
	"github.com/chewxy/math32"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/state"
)

func (g *GraphicsStateGuardian) issueRenderMode(target *state.RenderState) {
	r := target.RenderMode()
	g.device.PolygonMode(translate(g, g.device.RenderMode, r.Mode, state.RenderModeFilled))

	thickness := r.Thickness
	if !(thickness > 0) {
		thickness = 1
	}
	g.setLineWidth(thickness)
	g.setPointSize(thickness)
}

func (g *GraphicsStateGuardian) issueShadeModel(target *state.RenderState) {
	g.device.ShadeModel(translate(g, g.device.ShadeModelKind, target.ShadeModel().Model, state.ShadeSmooth))
}

func (g *GraphicsStateGuardian) issueRescaleNormal(target *state.RenderState) {
	g.updateNormalize(target.RescaleNormal().Mode)
}

// updateNormalize picks between full normalization and rescaling for the
// current transform. Auto only pays for rescaling when the transform scales.
func (g *GraphicsStateGuardian) updateNormalize(mode state.RescaleNormalMode) {
	normalize, rescale := false, false
	switch mode {
	case state.RescaleNone:
	case state.RescaleNormalize:
		normalize = true
	case state.RescaleRescale:
		rescale = true
	case state.RescaleAuto:
		if g.config.AutoNormalizeLighting {
			normalize = true
			break
		}
		if g.transform == nil {
			break
		}
		scale, uniform := g.transform.Mat().UniformScale()
		switch {
		case !uniform:
			normalize = true
		case math32.Abs(scale-1) > 1e-4:
			rescale = true
		}
	default:
		g.errorf("Invalid rescale normal mode: %s", mode)
		normalize = true
	}

	if rescale && !g.caps.SupportsRescaleNormal {
		g.warnOnce("rescale normal", "Rescale normal unsupported, normalizing instead")
		normalize, rescale = true, false
	}
	g.enable(native.CapNormalize, normalize)
	if g.caps.SupportsRescaleNormal {
		g.enable(native.CapRescaleNormal, rescale)
	}
}

func (g *GraphicsStateGuardian) issueCullFace(target *state.RenderState) {
	mode := target.CullFace().EffectiveMode()
	switch mode {
	case state.CullNone:
		g.enable(native.CapCullFace, false)
	case state.CullClockwise, state.CullCounterClockwise:
		g.enable(native.CapCullFace, true)
		g.device.CullFace(mode == state.CullCounterClockwise)
	default:
		g.errorf("Invalid cull face mode: %s", mode)
		g.enable(native.CapCullFace, false)
	}
}

func (g *GraphicsStateGuardian) issueDepthTest(target *state.RenderState) {
	f := target.DepthTest().Func
	if f == state.CompareNone {
		g.enable(native.CapDepthTest, false)
		return
	}
	g.enable(native.CapDepthTest, true)
	g.device.DepthFunc(translate(g, g.device.CompareFunc, f, state.CompareLess))
}

func (g *GraphicsStateGuardian) issueDepthWrite(target *state.RenderState) {
	g.setDepthMask(target.DepthWrite().Enabled)
}

func (g *GraphicsStateGuardian) issueDepthOffset(target *state.RenderState) {
	o := target.DepthOffset().Offset
	if o == 0 {
		g.enable(native.CapPolygonOffsetFill, false)
		return
	}
	g.enable(native.CapPolygonOffsetFill, true)
	g.device.PolygonOffset(-float32(o), -float32(o))
}

// issueScissor maps the fractional frame onto the current display region. A
// disabled scissor falls back to the region's own scissor.
func (g *GraphicsStateGuardian) issueScissor(target *state.RenderState) {
	s := target.Scissor()
	if !s.Enabled {
		if g.region.valid {
			g.setScissor(g.region.scissor)
			g.enable(native.CapScissorTest, true)
		} else {
			g.enable(native.CapScissorTest, false)
		}
		return
	}

	vp := g.region.viewport
	x0 := vp.X + int32(math32.Round(float32(vp.W)*clamp(s.Frame[0], 0, 1)))
	x1 := vp.X + int32(math32.Round(float32(vp.W)*clamp(s.Frame[1], 0, 1)))
	y0 := vp.Y + int32(math32.Round(float32(vp.H)*clamp(s.Frame[2], 0, 1)))
	y1 := vp.Y + int32(math32.Round(float32(vp.H)*clamp(s.Frame[3], 0, 1)))
	g.setScissor(gmath.Recti32{X: x0, Y: y0, W: max(0, x1-x0), H: max(0, y1-y0)})
	g.enable(native.CapScissorTest, true)
}

func (g *GraphicsStateGuardian) issueStencil(target *state.RenderState) {
	st := target.Stencil()
	ext := g.caps.EntryPoints[native.FeatureTwoSidedStencil] == native.VariantEXT

	g.enable(native.CapStencilTest, st.Enabled)
	if !st.Enabled {
		if ext {
			g.enable(native.CapStencilTestTwoSide, false)
		}
		return
	}

	twoSided := st.TwoSided
	if twoSided && !g.caps.SupportsTwoSidedStencil {
		g.warnOnce("two sided stencil", "Two sided stencil unsupported, using front face settings for both")
		twoSided = false
	}
	if ext {
		g.enable(native.CapStencilTestTwoSide, twoSided)
	}

	if twoSided {
		g.issueStencilFace(native.StencilFront, &st.Front)
		g.issueStencilFace(native.StencilBack, &st.Back)
	} else {
		g.issueStencilFace(native.StencilFrontAndBack, &st.Front)
	}
}

func (g *GraphicsStateGuardian) stencilOp(op state.StencilOp) native.Enum {
	if !g.caps.SupportsStencilWrap {
		switch op {
		case state.StencilIncrementWrap:
			g.warnOnce("stencil wrap", "Stencil wrap unsupported, using saturating ops")
			op = state.StencilIncrement
		case state.StencilDecrementWrap:
			g.warnOnce("stencil wrap", "Stencil wrap unsupported, using saturating ops")
			op = state.StencilDecrement
		}
	}
	return translate(g, g.device.StencilOperation, op, state.StencilKeep)
}

func (g *GraphicsStateGuardian) issueStencilFace(face native.StencilFace, f *state.StencilFace) {
	g.device.StencilFunc(face, translate(g, g.device.CompareFunc, f.Func, state.CompareAlways), f.Ref, f.ReadMask)
	g.device.StencilOp(face, g.stencilOp(f.FailOp), g.stencilOp(f.DepthFailOp), g.stencilOp(f.PassOp))
	g.device.StencilMask(face, f.WriteMask)
}

func (g *GraphicsStateGuardian) issueAntialias(target *state.RenderState) {
	mode := target.Antialias().Mode
	if !mode.Valid() {
		g.errorf("Invalid antialias mode: %s", mode)
		mode = state.AntialiasNone
	}

	multisample := false
	smooth := mode & (state.AntialiasPoint | state.AntialiasLine | state.AntialiasPolygon)
	switch {
	case hasBits(mode, state.AntialiasAuto):
		if g.caps.SupportsMultisample {
			multisample = true
		} else {
			smooth |= state.AntialiasPoint | state.AntialiasLine
		}
	case hasBits(mode, state.AntialiasMultisample):
		if g.caps.SupportsMultisample {
			multisample = true
		} else {
			g.warnOnce("multisample", "Multisample unsupported, using smoothing")
			smooth |= state.AntialiasPoint | state.AntialiasLine | state.AntialiasPolygon
		}
	}

	if g.caps.SupportsMultisample {
		g.enable(native.CapMultisample, multisample)
	}
	g.enable(native.CapPointSmooth, hasBits(smooth, state.AntialiasPoint))
	g.enable(native.CapLineSmooth, hasBits(smooth, state.AntialiasLine))
	g.enable(native.CapPolygonSmooth, hasBits(smooth, state.AntialiasPolygon))
}
