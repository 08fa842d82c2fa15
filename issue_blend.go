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
	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/state"
)

func (g *GraphicsStateGuardian) issueBlending(target *state.RenderState) {
	transparency := target.Transparency().Mode
	blend := target.ColorBlend()

	g.setColorMask(target.ColorWrite().Channels)

	if g.caps.SupportsMultisample {
		g.enable(native.CapSampleAlphaToCoverage,
			transparency == state.TransparencyMultisample || transparency == state.TransparencyMultisampleMask)
		g.enable(native.CapSampleAlphaToOne, transparency == state.TransparencyMultisample)
	}

	g.scaleUsers.Clear(state.MaskOf(state.SlotColorBlend))
	if blend.Mode != state.BlendNone {
		src, dst, color := blend.Src, blend.Dst, blend.Color
		if src.UsesColorScale() || dst.UsesColorScale() {
			if src.UsesConstant() || dst.UsesConstant() {
				g.warnOnce("blend color scale", "Blend %s/%s reads both the constant color and the color scale, using the color scale", src, dst)
			}
			src, dst, color = src.Constant(), dst.Constant(), target.ColorScale().Scale
			g.scaleUsers.Set(state.MaskOf(state.SlotColorBlend))
		}
		g.enable(native.CapBlend, true)
		g.setBlendEquation(blend.Mode)
		g.setBlendFunc(src, dst)
		if g.caps.SupportsBlendColor && (src.UsesConstant() || dst.UsesConstant()) {
			g.setBlendColor(color)
		}
		return
	}

	switch transparency {
	case state.TransparencyAlpha, state.TransparencyDual:
		g.enable(native.CapBlend, true)
		g.setBlendEquation(state.BlendAdd)
		g.setBlendFunc(state.OperandIncomingAlpha, state.OperandOneMinusIncomingAlpha)
	case state.TransparencyPremultipliedAlpha:
		g.enable(native.CapBlend, true)
		g.setBlendEquation(state.BlendAdd)
		g.setBlendFunc(state.OperandOne, state.OperandOneMinusIncomingAlpha)
	case state.TransparencyNone, state.TransparencyMultisample,
		state.TransparencyMultisampleMask, state.TransparencyBinary:
		g.enable(native.CapBlend, false)
	default:
		g.errorf("Invalid transparency mode: %s", transparency)
		g.enable(native.CapBlend, false)
	}
}

func (g *GraphicsStateGuardian) setBlendEquation(mode state.BlendMode) {
	if mode != state.BlendAdd && !g.caps.SupportsBlendEquation {
		g.warnOnce("blend equation", "Blend equation %s unsupported, using Add", mode)
		mode = state.BlendAdd
	}
	if !g.caps.SupportsBlendEquation {
		// add is the fixed function default, there is no call to make
		return
	}
	eq := translate(g, g.device.BlendMode, mode, state.BlendAdd)
	if g.params.blendEquation.update(eq) {
		g.device.BlendEquation(eq)
	}
}

func (g *GraphicsStateGuardian) setBlendFunc(src, dst state.BlendOperand) {
	if !g.caps.SupportsBlendColor {
		if src.UsesConstant() {
			g.warnOnce("blend color", "Blend operand %s unsupported, using One", src)
			src = state.OperandOne
		}
		if dst.UsesConstant() {
			g.warnOnce("blend color", "Blend operand %s unsupported, using One", dst)
			dst = state.OperandOne
		}
	}
	f := [2]native.Enum{
		translate(g, g.device.BlendOperand, src, state.OperandOne),
		translate(g, g.device.BlendOperand, dst, state.OperandZero),
	}
	if g.params.blendFunc.update(f) {
		g.device.BlendFunc(f[0], f[1])
	}
}

func (g *GraphicsStateGuardian) setBlendColor(c state.Vec4) {
	if g.params.blendColor.update(c) {
		g.device.BlendColor(c)
	}
}

func (g *GraphicsStateGuardian) issueAlphaTest(target *state.RenderState) {
	a := target.AlphaTest()
	if a.Func == state.CompareNone {
		g.enable(native.CapAlphaTest, false)
		return
	}
	g.enable(native.CapAlphaTest, true)
	g.device.AlphaFunc(translate(g, g.device.CompareFunc, a.Func, state.CompareAlways), a.Ref)
}

// currentColor is the color vertices without a color column are drawn with.
func currentColor(target *state.RenderState) state.Vec4 {
	c := target.Color()
	scale := target.ColorScale().Scale
	base := state.Vec4{1, 1, 1, 1}
	if c.Kind == state.ColorFlat {
		base = c.Color
	}
	return state.Vec4{base[0] * scale[0], base[1] * scale[1], base[2] * scale[2], base[3] * scale[3]}
}

func (g *GraphicsStateGuardian) issueColor(target *state.RenderState) {
	if k := target.Color().Kind; !k.Valid() {
		g.errorf("Invalid color kind: %s", k)
	}
	g.setColor(currentColor(target))

	if g.applied[state.SlotColorScale] == target.Get(state.SlotColorScale) {
		return
	}
	if g.scaleUsers.Has(state.SlotColorBlend) && g.caps.SupportsBlendColor {
		g.setBlendColor(target.ColorScale().Scale)
	}
	// texture and material run after color and pick up the new scale
	g.slotMask.Clear(g.scaleUsers & state.MaskOf(state.SlotTexture, state.SlotMaterial))
}

func (g *GraphicsStateGuardian) issueLogicOp(target *state.RenderState) {
	op := target.LogicOp().Op
	if op == state.LogicOpNone {
		if g.caps.SupportsLogicOp {
			g.enable(native.CapColorLogicOp, false)
		}
		return
	}
	if !g.caps.SupportsLogicOp {
		g.warnOnce("logic op", "Logic op %s unsupported, ignoring", op)
		return
	}
	g.enable(native.CapColorLogicOp, true)
	g.device.LogicOp(translate(g, g.device.LogicOpKind, op, state.LogicOpCopy))
}
