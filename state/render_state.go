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

package state

import (
	"fmt"
	"strings"
)

// RenderState is an interned set of attribs, at most one per slot. Two states
// with the same attribs are the same pointer.
type RenderState struct {
	slots [NumSlots]Attrib
}

var (
	renderStates internTable[RenderState]
	emptyState   = renderStates.intern(RenderState{})
)

func EmptyState() *RenderState {
	return emptyState
}

// MakeState builds a state from attribs, a later attrib for the same slot
// replaces an earlier one. Nil attribs are ignored.
func MakeState(attribs ...Attrib) *RenderState {
	s := RenderState{}
	for _, a := range attribs {
		if a == nil {
			continue
		}
		s.slots[a.Slot()] = a
	}
	return renderStates.intern(s)
}

func (s *RenderState) With(a Attrib) *RenderState {
	if a == nil || s.slots[a.Slot()] == a {
		return s
	}
	n := *s
	n.slots[a.Slot()] = a
	return renderStates.intern(n)
}

func (s *RenderState) Without(slot Slot) *RenderState {
	if s.slots[slot] == nil {
		return s
	}
	n := *s
	n.slots[slot] = nil
	return renderStates.intern(n)
}

// Compose layers other on top of s, slots other specifies win.
func (s *RenderState) Compose(other *RenderState) *RenderState {
	if other == nil || other == emptyState {
		return s
	}
	if s == emptyState {
		return other
	}
	n := *s
	for i, a := range other.slots {
		if a != nil {
			n.slots[i] = a
		}
	}
	return renderStates.intern(n)
}

func (s *RenderState) IsEmpty() bool {
	return s == emptyState
}

func (s *RenderState) Has(slot Slot) bool {
	return s.slots[slot] != nil
}

// Attrib returns the slot's attrib or nil if unspecified.
func (s *RenderState) Attrib(slot Slot) Attrib {
	return s.slots[slot]
}

// Get returns the slot's attrib, or its default if unspecified.
func (s *RenderState) Get(slot Slot) Attrib {
	if a := s.slots[slot]; a != nil {
		return a
	}
	return defaultAttribs[slot]
}

func get[T Attrib](s *RenderState, slot Slot) T {
	return s.Get(slot).(T)
}

func (s *RenderState) Color() *ColorAttrib { return get[*ColorAttrib](s, SlotColor) }
func (s *RenderState) ColorScale() *ColorScaleAttrib {
	return get[*ColorScaleAttrib](s, SlotColorScale)
}
func (s *RenderState) AlphaTest() *AlphaTestAttrib { return get[*AlphaTestAttrib](s, SlotAlphaTest) }
func (s *RenderState) Antialias() *AntialiasAttrib { return get[*AntialiasAttrib](s, SlotAntialias) }
func (s *RenderState) ClipPlane() *ClipPlaneAttrib { return get[*ClipPlaneAttrib](s, SlotClipPlane) }
func (s *RenderState) ColorBlend() *ColorBlendAttrib {
	return get[*ColorBlendAttrib](s, SlotColorBlend)
}
func (s *RenderState) ColorWrite() *ColorWriteAttrib {
	return get[*ColorWriteAttrib](s, SlotColorWrite)
}
func (s *RenderState) CullFace() *CullFaceAttrib { return get[*CullFaceAttrib](s, SlotCullFace) }
func (s *RenderState) DepthOffset() *DepthOffsetAttrib {
	return get[*DepthOffsetAttrib](s, SlotDepthOffset)
}
func (s *RenderState) DepthTest() *DepthTestAttrib { return get[*DepthTestAttrib](s, SlotDepthTest) }
func (s *RenderState) DepthWrite() *DepthWriteAttrib {
	return get[*DepthWriteAttrib](s, SlotDepthWrite)
}
func (s *RenderState) Fog() *FogAttrib           { return get[*FogAttrib](s, SlotFog) }
func (s *RenderState) Light() *LightAttrib       { return get[*LightAttrib](s, SlotLight) }
func (s *RenderState) LogicOp() *LogicOpAttrib   { return get[*LogicOpAttrib](s, SlotLogicOp) }
func (s *RenderState) Material() *MaterialAttrib { return get[*MaterialAttrib](s, SlotMaterial) }
func (s *RenderState) RenderMode() *RenderModeAttrib {
	return get[*RenderModeAttrib](s, SlotRenderMode)
}
func (s *RenderState) RescaleNormal() *RescaleNormalAttrib {
	return get[*RescaleNormalAttrib](s, SlotRescaleNormal)
}
func (s *RenderState) Scissor() *ScissorAttrib { return get[*ScissorAttrib](s, SlotScissor) }
func (s *RenderState) ShadeModel() *ShadeModelAttrib {
	return get[*ShadeModelAttrib](s, SlotShadeModel)
}
func (s *RenderState) Shader() *ShaderAttrib       { return get[*ShaderAttrib](s, SlotShader) }
func (s *RenderState) Stencil() *StencilAttrib     { return get[*StencilAttrib](s, SlotStencil) }
func (s *RenderState) TexGen() *TexGenAttrib       { return get[*TexGenAttrib](s, SlotTexGen) }
func (s *RenderState) TexMatrix() *TexMatrixAttrib { return get[*TexMatrixAttrib](s, SlotTexMatrix) }
func (s *RenderState) Texture() *TextureAttrib     { return get[*TextureAttrib](s, SlotTexture) }
func (s *RenderState) Transparency() *TransparencyAttrib {
	return get[*TransparencyAttrib](s, SlotTransparency)
}

func (s *RenderState) String() string {
	parts := []string{}
	for _, a := range s.slots {
		if a != nil {
			parts = append(parts, a.String())
		}
	}
	return fmt.Sprintf("S:{%s}", strings.Join(parts, " "))
}

// NumLiveStates is the number of interned render states still referenced.
func NumLiveStates() int {
	return renderStates.len()
}
