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

package record

import (
	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// Translated enums are Base + value so tests can decode what was issued.
const (
	BaseCompareFunc    native.Enum = 0x0200
	BaseBlendOperand   native.Enum = 0x0300
	BaseBlendEquation  native.Enum = 0x0400
	BaseStencilOp      native.Enum = 0x0500
	BaseLogicOp        native.Enum = 0x0600
	BaseFogMode        native.Enum = 0x0700
	BasePolygonMode    native.Enum = 0x0800
	BaseShadeModel     native.Enum = 0x0900
	BaseTexEnvMode     native.Enum = 0x0A00
	BaseCombineMode    native.Enum = 0x0B00
	BaseCombineSource  native.Enum = 0x0C00
	BaseCombineOperand native.Enum = 0x0D00
	BaseTexGenMode     native.Enum = 0x0E00
	BaseWrapMode       native.Enum = 0x1000
	BaseFilterMode     native.Enum = 0x1100
	BaseTextureTarget  native.Enum = 0x1200
	BaseCubeFace       native.Enum = 0x1300
	BaseExternalFormat native.Enum = 0x1400
	BaseComponentType  native.Enum = 0x1500
	BasePrimitiveKind  native.Enum = 0x1600
	BaseIndexType      native.Enum = 0x1700
	BaseNumericType    native.Enum = 0x1800
	BaseUsageHint      native.Enum = 0x1900
	BaseInternalFormat native.Enum = 0x10000
)

type enum interface {
	~uint8
	Valid() bool
}

func translate[E enum](base native.Enum, e E) (native.Enum, bool) {
	if !e.Valid() {
		return 0, false
	}
	return base + native.Enum(e), true
}

func (*Device) CompareFunc(f state.CompareFunc) (native.Enum, bool) {
	return translate(BaseCompareFunc, f)
}

func (*Device) BlendOperand(o state.BlendOperand) (native.Enum, bool) {
	return translate(BaseBlendOperand, o)
}

func (*Device) BlendMode(m state.BlendMode) (native.Enum, bool) {
	return translate(BaseBlendEquation, m)
}

func (*Device) StencilOperation(o state.StencilOp) (native.Enum, bool) {
	return translate(BaseStencilOp, o)
}

func (*Device) LogicOpKind(o state.LogicOpKind) (native.Enum, bool) {
	return translate(BaseLogicOp, o)
}

func (*Device) FogMode(m state.FogMode) (native.Enum, bool) {
	return translate(BaseFogMode, m)
}

func (*Device) RenderMode(m state.RenderModeKind) (native.Enum, bool) {
	return translate(BasePolygonMode, m)
}

func (*Device) ShadeModelKind(m state.ShadeModelKind) (native.Enum, bool) {
	return translate(BaseShadeModel, m)
}

func (*Device) TextureStageMode(m state.TextureStageMode) (native.Enum, bool) {
	return translate(BaseTexEnvMode, m)
}

func (*Device) CombineMode(m state.CombineMode) (native.Enum, bool) {
	return translate(BaseCombineMode, m)
}

func (*Device) CombineSource(s state.CombineSource) (native.Enum, bool) {
	return translate(BaseCombineSource, s)
}

func (*Device) CombineOperand(o state.CombineOperand) (native.Enum, bool) {
	return translate(BaseCombineOperand, o)
}

func (*Device) TexGenMode(m state.TexGenMode) (native.Enum, bool) {
	return translate(BaseTexGenMode, m)
}

func (*Device) WrapMode(w resource.WrapMode) (native.Enum, bool) {
	return translate(BaseWrapMode, w)
}

func (*Device) FilterMode(f resource.FilterMode) (native.Enum, bool) {
	return translate(BaseFilterMode, f)
}

func (*Device) TextureTarget(t resource.TextureType) (native.Enum, bool) {
	return translate(BaseTextureTarget, t)
}

func (*Device) CubeFaceTarget(face int) (native.Enum, bool) {
	if face < 0 || face >= 6 {
		return 0, false
	}
	return BaseCubeFace + native.Enum(face), true
}

func (*Device) ExternalFormat(f resource.Format) (native.Enum, bool) {
	return translate(BaseExternalFormat, f)
}

// InternalFormat packs format, component type and compression into one value.
func (*Device) InternalFormat(f resource.Format, c resource.ComponentType, comp resource.Compression) (native.Enum, bool) {
	if !f.Valid() || !c.Valid() || !comp.Valid() {
		return 0, false
	}
	return BaseInternalFormat | native.Enum(f)<<8 | native.Enum(c)<<4 | native.Enum(comp), true
}

func (*Device) ComponentType(c resource.ComponentType) (native.Enum, bool) {
	return translate(BaseComponentType, c)
}

func (*Device) PrimitiveKind(k resource.PrimitiveKind) (native.Enum, bool) {
	return translate(BasePrimitiveKind, k)
}

func (*Device) IndexType(t resource.IndexType) (native.Enum, bool) {
	return translate(BaseIndexType, t)
}

func (*Device) NumericType(n resource.NumericType) (native.Enum, bool) {
	return translate(BaseNumericType, n)
}

func (*Device) UsageHint(u resource.UsageHint) (native.Enum, bool) {
	return translate(BaseUsageHint, u)
}
