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

	"goarrg.com/rhi/gsg/resource"
)

const (
	MaxClipPlanes    = 8
	MaxLights        = 8
	MaxTextureStages = 16
)

// Attrib is the value held by one slot of a RenderState. Every attrib is
// returned by a Make* constructor that interns it, so two attribs of the same
// slot are equal iff their pointers are. Attribs are shared and must be treated
// as read-only.
type Attrib interface {
	Slot() Slot
	String() string
}

var (
	colorAttribs         internTable[ColorAttrib]
	colorScaleAttribs    internTable[ColorScaleAttrib]
	alphaTestAttribs     internTable[AlphaTestAttrib]
	antialiasAttribs     internTable[AntialiasAttrib]
	clipPlaneAttribs     internTable[ClipPlaneAttrib]
	colorBlendAttribs    internTable[ColorBlendAttrib]
	colorWriteAttribs    internTable[ColorWriteAttrib]
	cullFaceAttribs      internTable[CullFaceAttrib]
	depthOffsetAttribs   internTable[DepthOffsetAttrib]
	depthTestAttribs     internTable[DepthTestAttrib]
	depthWriteAttribs    internTable[DepthWriteAttrib]
	fogAttribs           internTable[FogAttrib]
	lightAttribs         internTable[LightAttrib]
	logicOpAttribs       internTable[LogicOpAttrib]
	materialAttribs      internTable[MaterialAttrib]
	renderModeAttribs    internTable[RenderModeAttrib]
	rescaleNormalAttribs internTable[RescaleNormalAttrib]
	scissorAttribs       internTable[ScissorAttrib]
	shadeModelAttribs    internTable[ShadeModelAttrib]
	shaderAttribs        internTable[ShaderAttrib]
	stencilAttribs       internTable[StencilAttrib]
	texGenAttribs        internTable[TexGenAttrib]
	texMatrixAttribs     internTable[TexMatrixAttrib]
	textureAttribs       internTable[TextureAttrib]
	transparencyAttribs  internTable[TransparencyAttrib]
)

type ColorAttrib struct {
	Kind  ColorKind
	Color Vec4
}

func MakeVertexColor() *ColorAttrib {
	return colorAttribs.intern(ColorAttrib{Kind: ColorVertex})
}

func MakeFlatColor(c Vec4) *ColorAttrib {
	return colorAttribs.intern(ColorAttrib{Kind: ColorFlat, Color: c})
}

func MakeColorOff() *ColorAttrib {
	return colorAttribs.intern(ColorAttrib{Kind: ColorOff})
}

func (*ColorAttrib) Slot() Slot { return SlotColor }
func (a *ColorAttrib) String() string {
	if a.Kind == ColorFlat {
		return fmt.Sprintf("Color{Flat %v}", a.Color)
	}
	return fmt.Sprintf("Color{%s}", a.Kind)
}

type ColorScaleAttrib struct {
	Scale Vec4
}

func MakeColorScale(scale Vec4) *ColorScaleAttrib {
	return colorScaleAttribs.intern(ColorScaleAttrib{Scale: scale})
}

func (*ColorScaleAttrib) Slot() Slot { return SlotColorScale }
func (a *ColorScaleAttrib) String() string {
	return fmt.Sprintf("ColorScale{%v}", a.Scale)
}

func (a *ColorScaleAttrib) IsIdentity() bool {
	return a.Scale == Vec4{1, 1, 1, 1}
}

func (a *ColorScaleAttrib) HasAlphaScale() bool {
	return a.Scale[3] != 1
}

type AlphaTestAttrib struct {
	Func CompareFunc
	Ref  float32
}

func MakeAlphaTest(f CompareFunc, ref float32) *AlphaTestAttrib {
	return alphaTestAttribs.intern(AlphaTestAttrib{Func: f, Ref: ref})
}

func (*AlphaTestAttrib) Slot() Slot { return SlotAlphaTest }
func (a *AlphaTestAttrib) String() string {
	return fmt.Sprintf("AlphaTest{%s %g}", a.Func, a.Ref)
}

type AntialiasAttrib struct {
	Mode AntialiasMode
}

func MakeAntialias(mode AntialiasMode) *AntialiasAttrib {
	return antialiasAttribs.intern(AntialiasAttrib{Mode: mode})
}

func (*AntialiasAttrib) Slot() Slot { return SlotAntialias }
func (a *AntialiasAttrib) String() string {
	return fmt.Sprintf("Antialias{%s}", a.Mode)
}

// ClipPlaneAttrib holds plane equations (a, b, c, d) in world space.
type ClipPlaneAttrib struct {
	Planes [MaxClipPlanes]Vec4
	Num    uint8
}

// MakeClipPlanes truncates to MaxClipPlanes.
func MakeClipPlanes(planes ...Vec4) *ClipPlaneAttrib {
	a := ClipPlaneAttrib{}
	a.Num = uint8(copy(a.Planes[:], planes))
	return clipPlaneAttribs.intern(a)
}

func (*ClipPlaneAttrib) Slot() Slot { return SlotClipPlane }
func (a *ClipPlaneAttrib) String() string {
	return fmt.Sprintf("ClipPlane{%v}", a.Planes[:a.Num])
}

type ColorBlendAttrib struct {
	Mode  BlendMode
	Src   BlendOperand
	Dst   BlendOperand
	Color Vec4
}

func MakeColorBlendOff() *ColorBlendAttrib {
	return colorBlendAttribs.intern(ColorBlendAttrib{Mode: BlendNone, Src: OperandOne, Dst: OperandZero})
}

func MakeColorBlend(mode BlendMode, src, dst BlendOperand, color Vec4) *ColorBlendAttrib {
	return colorBlendAttribs.intern(ColorBlendAttrib{Mode: mode, Src: src, Dst: dst, Color: color})
}

func (*ColorBlendAttrib) Slot() Slot { return SlotColorBlend }
func (a *ColorBlendAttrib) String() string {
	if a.Mode == BlendNone {
		return "ColorBlend{None}"
	}
	return fmt.Sprintf("ColorBlend{%s %s %s %v}", a.Mode, a.Src, a.Dst, a.Color)
}

type ColorWriteAttrib struct {
	Channels ColorWriteChannels
}

func MakeColorWrite(c ColorWriteChannels) *ColorWriteAttrib {
	return colorWriteAttribs.intern(ColorWriteAttrib{Channels: c})
}

func (*ColorWriteAttrib) Slot() Slot { return SlotColorWrite }
func (a *ColorWriteAttrib) String() string {
	return fmt.Sprintf("ColorWrite{%s}", a.Channels)
}

type CullFaceAttrib struct {
	Mode CullFaceMode
	// Reverse flips the winding, for mirrored transforms.
	Reverse bool
}

func MakeCullFace(mode CullFaceMode) *CullFaceAttrib {
	return cullFaceAttribs.intern(CullFaceAttrib{Mode: mode})
}

func MakeCullFaceReverse(mode CullFaceMode) *CullFaceAttrib {
	return cullFaceAttribs.intern(CullFaceAttrib{Mode: mode, Reverse: true})
}

func (*CullFaceAttrib) Slot() Slot { return SlotCullFace }
func (a *CullFaceAttrib) String() string {
	if a.Reverse {
		return fmt.Sprintf("CullFace{%s reversed}", a.Mode)
	}
	return fmt.Sprintf("CullFace{%s}", a.Mode)
}

// EffectiveMode resolves Reverse into a plain mode.
func (a *CullFaceAttrib) EffectiveMode() CullFaceMode {
	if !a.Reverse {
		return a.Mode
	}
	switch a.Mode {
	case CullClockwise:
		return CullCounterClockwise
	case CullCounterClockwise:
		return CullClockwise
	}
	return a.Mode
}

type DepthOffsetAttrib struct {
	Offset int32
}

func MakeDepthOffset(offset int32) *DepthOffsetAttrib {
	return depthOffsetAttribs.intern(DepthOffsetAttrib{Offset: offset})
}

func (*DepthOffsetAttrib) Slot() Slot { return SlotDepthOffset }
func (a *DepthOffsetAttrib) String() string {
	return fmt.Sprintf("DepthOffset{%d}", a.Offset)
}

type DepthTestAttrib struct {
	Func CompareFunc
}

func MakeDepthTest(f CompareFunc) *DepthTestAttrib {
	return depthTestAttribs.intern(DepthTestAttrib{Func: f})
}

func (*DepthTestAttrib) Slot() Slot { return SlotDepthTest }
func (a *DepthTestAttrib) String() string {
	return fmt.Sprintf("DepthTest{%s}", a.Func)
}

type DepthWriteAttrib struct {
	Enabled bool
}

func MakeDepthWrite(enabled bool) *DepthWriteAttrib {
	return depthWriteAttribs.intern(DepthWriteAttrib{Enabled: enabled})
}

func (*DepthWriteAttrib) Slot() Slot { return SlotDepthWrite }
func (a *DepthWriteAttrib) String() string {
	return fmt.Sprintf("DepthWrite{%t}", a.Enabled)
}

type FogAttrib struct {
	Enabled bool
	Mode    FogMode
	Color   Vec4
	Start   float32
	End     float32
	Density float32
}

func MakeFogOff() *FogAttrib {
	return fogAttribs.intern(FogAttrib{})
}

func MakeLinearFog(color Vec4, start, end float32) *FogAttrib {
	return fogAttribs.intern(FogAttrib{Enabled: true, Mode: FogLinear, Color: color, Start: start, End: end})
}

func MakeExpFog(mode FogMode, color Vec4, density float32) *FogAttrib {
	return fogAttribs.intern(FogAttrib{Enabled: true, Mode: mode, Color: color, Density: density})
}

func (*FogAttrib) Slot() Slot { return SlotFog }
func (a *FogAttrib) String() string {
	if !a.Enabled {
		return "Fog{Off}"
	}
	if a.Mode == FogLinear {
		return fmt.Sprintf("Fog{%s %v %g-%g}", a.Mode, a.Color, a.Start, a.End)
	}
	return fmt.Sprintf("Fog{%s %v %g}", a.Mode, a.Color, a.Density)
}

type LightAttrib struct {
	Lights [MaxLights]*Light
	Num    uint8
}

// MakeLights truncates to MaxLights, nil entries are dropped.
func MakeLights(lights ...*Light) *LightAttrib {
	a := LightAttrib{}
	for _, l := range lights {
		if l == nil || int(a.Num) == MaxLights {
			continue
		}
		a.Lights[a.Num] = l
		a.Num++
	}
	return lightAttribs.intern(a)
}

func (*LightAttrib) Slot() Slot { return SlotLight }
func (a *LightAttrib) String() string {
	return fmt.Sprintf("Light{%v}", a.Lights[:a.Num])
}

func (a *LightAttrib) Enabled() bool {
	return a.Num > 0
}

type LogicOpAttrib struct {
	Op LogicOpKind
}

func MakeLogicOp(op LogicOpKind) *LogicOpAttrib {
	return logicOpAttribs.intern(LogicOpAttrib{Op: op})
}

func (*LogicOpAttrib) Slot() Slot { return SlotLogicOp }
func (a *LogicOpAttrib) String() string {
	return fmt.Sprintf("LogicOp{%s}", a.Op)
}

type MaterialAttrib struct {
	Material *Material
}

func MakeMaterial(m *Material) *MaterialAttrib {
	return materialAttribs.intern(MaterialAttrib{Material: m})
}

func (*MaterialAttrib) Slot() Slot { return SlotMaterial }
func (a *MaterialAttrib) String() string {
	if a.Material == nil {
		return "Material{None}"
	}
	return fmt.Sprintf("Material{%v}", a.Material)
}

type RenderModeAttrib struct {
	Mode      RenderModeKind
	Thickness float32
	// Perspective scales point thickness with distance.
	Perspective bool
}

func MakeRenderMode(mode RenderModeKind, thickness float32) *RenderModeAttrib {
	return renderModeAttribs.intern(RenderModeAttrib{Mode: mode, Thickness: thickness})
}

func (*RenderModeAttrib) Slot() Slot { return SlotRenderMode }
func (a *RenderModeAttrib) String() string {
	return fmt.Sprintf("RenderMode{%s %g}", a.Mode, a.Thickness)
}

type RescaleNormalAttrib struct {
	Mode RescaleNormalMode
}

func MakeRescaleNormal(mode RescaleNormalMode) *RescaleNormalAttrib {
	return rescaleNormalAttribs.intern(RescaleNormalAttrib{Mode: mode})
}

func (*RescaleNormalAttrib) Slot() Slot { return SlotRescaleNormal }
func (a *RescaleNormalAttrib) String() string {
	return fmt.Sprintf("RescaleNormal{%s}", a.Mode)
}

// ScissorAttrib holds the scissor region as fractions of the display region,
// left, right, bottom, top.
type ScissorAttrib struct {
	Enabled bool
	Frame   Vec4
}

func MakeScissorOff() *ScissorAttrib {
	return scissorAttribs.intern(ScissorAttrib{Frame: Vec4{0, 1, 0, 1}})
}

func MakeScissor(left, right, bottom, top float32) *ScissorAttrib {
	return scissorAttribs.intern(ScissorAttrib{Enabled: true, Frame: Vec4{left, right, bottom, top}})
}

func (*ScissorAttrib) Slot() Slot { return SlotScissor }
func (a *ScissorAttrib) String() string {
	if !a.Enabled {
		return "Scissor{Off}"
	}
	return fmt.Sprintf("Scissor{%v}", a.Frame)
}

type ShadeModelAttrib struct {
	Model ShadeModelKind
}

func MakeShadeModel(m ShadeModelKind) *ShadeModelAttrib {
	return shadeModelAttribs.intern(ShadeModelAttrib{Model: m})
}

func (*ShadeModelAttrib) Slot() Slot { return SlotShadeModel }
func (a *ShadeModelAttrib) String() string {
	return fmt.Sprintf("ShadeModel{%s}", a.Model)
}

type ShaderAttrib struct {
	Shader *resource.Shader
}

func MakeShader(s *resource.Shader) *ShaderAttrib {
	return shaderAttribs.intern(ShaderAttrib{Shader: s})
}

func MakeShaderOff() *ShaderAttrib {
	return shaderAttribs.intern(ShaderAttrib{})
}

func (*ShaderAttrib) Slot() Slot { return SlotShader }
func (a *ShaderAttrib) String() string {
	if a.Shader == nil {
		return "Shader{None}"
	}
	return fmt.Sprintf("Shader{%s}", a.Shader.Name())
}

type StencilFace struct {
	Func        CompareFunc
	Ref         uint32
	ReadMask    uint32
	WriteMask   uint32
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
}

type StencilAttrib struct {
	Enabled  bool
	TwoSided bool
	Front    StencilFace
	// Back is used only when TwoSided is set.
	Back StencilFace
}

func MakeStencilOff() *StencilAttrib {
	return stencilAttribs.intern(StencilAttrib{})
}

func MakeStencil(front StencilFace) *StencilAttrib {
	return stencilAttribs.intern(StencilAttrib{Enabled: true, Front: front})
}

func MakeStencilTwoSided(front, back StencilFace) *StencilAttrib {
	return stencilAttribs.intern(StencilAttrib{Enabled: true, TwoSided: true, Front: front, Back: back})
}

func (*StencilAttrib) Slot() Slot { return SlotStencil }
func (a *StencilAttrib) String() string {
	if !a.Enabled {
		return "Stencil{Off}"
	}
	if a.TwoSided {
		return fmt.Sprintf("Stencil{%+v %+v}", a.Front, a.Back)
	}
	return fmt.Sprintf("Stencil{%+v}", a.Front)
}

type TexGenEntry struct {
	Stage *TextureStage
	Mode  TexGenMode
}

type TexGenAttrib struct {
	Entries [MaxTextureStages]TexGenEntry
	Num     uint8
}

// MakeTexGen drops entries with TexGenOff or a nil stage.
func MakeTexGen(entries ...TexGenEntry) *TexGenAttrib {
	a := TexGenAttrib{}
	for _, e := range entries {
		if e.Stage == nil || e.Mode == TexGenOff || int(a.Num) == MaxTextureStages {
			continue
		}
		a.Entries[a.Num] = e
		a.Num++
	}
	return texGenAttribs.intern(a)
}

func (*TexGenAttrib) Slot() Slot { return SlotTexGen }
func (a *TexGenAttrib) String() string {
	return fmt.Sprintf("TexGen{%v}", a.Entries[:a.Num])
}

func (a *TexGenAttrib) Mode(stage *TextureStage) TexGenMode {
	for _, e := range a.Entries[:a.Num] {
		if e.Stage == stage {
			return e.Mode
		}
	}
	return TexGenOff
}

type TexMatrixEntry struct {
	Stage     *TextureStage
	Transform *TransformState
}

type TexMatrixAttrib struct {
	Entries [MaxTextureStages]TexMatrixEntry
	Num     uint8
}

// MakeTexMatrix drops entries with a nil stage or an identity transform.
func MakeTexMatrix(entries ...TexMatrixEntry) *TexMatrixAttrib {
	a := TexMatrixAttrib{}
	for _, e := range entries {
		if e.Stage == nil || e.Transform == nil || e.Transform.IsIdentity() || int(a.Num) == MaxTextureStages {
			continue
		}
		a.Entries[a.Num] = e
		a.Num++
	}
	return texMatrixAttribs.intern(a)
}

func (*TexMatrixAttrib) Slot() Slot { return SlotTexMatrix }
func (a *TexMatrixAttrib) String() string {
	return fmt.Sprintf("TexMatrix{%v}", a.Entries[:a.Num])
}

func (a *TexMatrixAttrib) Transform(stage *TextureStage) *TransformState {
	for _, e := range a.Entries[:a.Num] {
		if e.Stage == stage {
			return e.Transform
		}
	}
	return IdentityTransform()
}

type TextureEntry struct {
	Stage   *TextureStage
	Texture *resource.Texture
}

// TextureAttrib lists the active stages in sort order.
type TextureAttrib struct {
	Entries [MaxTextureStages]TextureEntry
	Num     uint8
}

// MakeTexture sorts entries by stage sort then priority, keeping the first
// entry for a repeated stage. Entries beyond MaxTextureStages are dropped.
func MakeTexture(entries ...TextureEntry) *TextureAttrib {
	a := TextureAttrib{}
	for _, e := range entries {
		if e.Stage == nil || e.Texture == nil || int(a.Num) == MaxTextureStages {
			continue
		}
		dup := false
		for _, o := range a.Entries[:a.Num] {
			if o.Stage == e.Stage {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		// insertion sort, stable on equal keys
		i := int(a.Num)
		for i > 0 && stageLess(e.Stage, a.Entries[i-1].Stage) {
			a.Entries[i] = a.Entries[i-1]
			i--
		}
		a.Entries[i] = e
		a.Num++
	}
	return textureAttribs.intern(a)
}

func MakeTextureOff() *TextureAttrib {
	return textureAttribs.intern(TextureAttrib{})
}

func (*TextureAttrib) Slot() Slot { return SlotTexture }
func (a *TextureAttrib) String() string {
	if a.Num == 0 {
		return "Texture{Off}"
	}
	s := "Texture{"
	for i, e := range a.Entries[:a.Num] {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s:%s", e.Stage.Name, e.Texture.Name())
	}
	return s + "}"
}

func (a *TextureAttrib) Texture(stage *TextureStage) *resource.Texture {
	for _, e := range a.Entries[:a.Num] {
		if e.Stage == stage {
			return e.Texture
		}
	}
	return nil
}

type TransparencyAttrib struct {
	Mode TransparencyMode
}

func MakeTransparency(mode TransparencyMode) *TransparencyAttrib {
	return transparencyAttribs.intern(TransparencyAttrib{Mode: mode})
}

func (*TransparencyAttrib) Slot() Slot { return SlotTransparency }
func (a *TransparencyAttrib) String() string {
	return fmt.Sprintf("Transparency{%s}", a.Mode)
}

var defaultAttribs [NumSlots]Attrib

func init() {
	for s := Slot(0); s < NumSlots; s++ {
		defaultAttribs[s] = makeDefaultAttrib(s)
	}
}

// DefaultAttrib returns the attrib an unspecified slot resolves to.
func DefaultAttrib(s Slot) Attrib {
	if !s.Valid() {
		panic(fmt.Sprintf("Invalid slot: %s", s))
	}
	return defaultAttribs[s]
}

func makeDefaultAttrib(s Slot) Attrib {
	switch s {
	case SlotColor:
		return MakeVertexColor()
	case SlotColorScale:
		return MakeColorScale(Vec4{1, 1, 1, 1})
	case SlotAlphaTest:
		return MakeAlphaTest(CompareNone, 0)
	case SlotAntialias:
		return MakeAntialias(AntialiasNone)
	case SlotClipPlane:
		return MakeClipPlanes()
	case SlotColorBlend:
		return MakeColorBlendOff()
	case SlotColorWrite:
		return MakeColorWrite(ColorWriteAll)
	case SlotCullFace:
		return MakeCullFace(CullClockwise)
	case SlotDepthOffset:
		return MakeDepthOffset(0)
	case SlotDepthTest:
		return MakeDepthTest(CompareLess)
	case SlotDepthWrite:
		return MakeDepthWrite(true)
	case SlotFog:
		return MakeFogOff()
	case SlotLight:
		return MakeLights()
	case SlotLogicOp:
		return MakeLogicOp(LogicOpNone)
	case SlotMaterial:
		return MakeMaterial(nil)
	case SlotRenderMode:
		return MakeRenderMode(RenderModeFilled, 1)
	case SlotRescaleNormal:
		return MakeRescaleNormal(RescaleAuto)
	case SlotScissor:
		return MakeScissorOff()
	case SlotShadeModel:
		return MakeShadeModel(ShadeSmooth)
	case SlotShader:
		return MakeShaderOff()
	case SlotStencil:
		return MakeStencilOff()
	case SlotTexGen:
		return MakeTexGen()
	case SlotTexMatrix:
		return MakeTexMatrix()
	case SlotTexture:
		return MakeTextureOff()
	case SlotTransparency:
		return MakeTransparency(TransparencyNone)
	}
	panic(fmt.Sprintf("Invalid slot: %s", s))
}
