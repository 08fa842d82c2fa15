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
	"math/bits"
	"strings"
)

type Slot uint8

const (
	SlotColor Slot = iota
	SlotColorScale
	SlotAlphaTest
	SlotAntialias
	SlotClipPlane
	SlotColorBlend
	SlotColorWrite
	SlotCullFace
	SlotDepthOffset
	SlotDepthTest
	SlotDepthWrite
	SlotFog
	SlotLight
	SlotLogicOp
	SlotMaterial
	SlotRenderMode
	SlotRescaleNormal
	SlotScissor
	SlotShadeModel
	SlotShader
	SlotStencil
	SlotTexGen
	SlotTexMatrix
	SlotTexture
	SlotTransparency
	NumSlots
)

var slotNames = []string{
	"Color", "ColorScale", "AlphaTest", "Antialias", "ClipPlane", "ColorBlend", "ColorWrite", "CullFace",
	"DepthOffset", "DepthTest", "DepthWrite", "Fog", "Light", "LogicOp", "Material", "RenderMode",
	"RescaleNormal", "Scissor", "ShadeModel", "Shader", "Stencil", "TexGen", "TexMatrix", "Texture", "Transparency",
}

func (s Slot) Valid() bool    { return s < NumSlots }
func (s Slot) String() string { return enumString("Slot", s, slotNames) }

// SlotMask is a set of slots, bit i for Slot(i).
type SlotMask uint32

const AllSlots SlotMask = 1<<NumSlots - 1

func MaskOf(slots ...Slot) SlotMask {
	m := SlotMask(0)
	for _, s := range slots {
		m |= 1 << s
	}
	return m
}

func (m SlotMask) Has(s Slot) bool {
	return m&(1<<s) != 0
}

func (m SlotMask) HasAll(o SlotMask) bool {
	return m&o == o
}

func (m *SlotMask) Set(o SlotMask) {
	*m |= o
}

func (m *SlotMask) Clear(o SlotMask) {
	*m &^= o
}

func (m SlotMask) Len() int {
	return bits.OnesCount32(uint32(m))
}

func (m SlotMask) String() string {
	if m == 0 {
		return "{}"
	}
	parts := []string{}
	for s := Slot(0); s < NumSlots; s++ {
		if m.Has(s) {
			parts = append(parts, s.String())
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
