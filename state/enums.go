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

func enumString[E ~uint8 | ~uint16 | ~uint32](kind string, e E, names []string) string {
	if int(e) < len(names) {
		return names[e]
	}
	return fmt.Sprintf("%s(%d)", kind, e)
}

type CompareFunc uint8

const (
	// CompareNone disables the test entirely.
	CompareNone CompareFunc = iota
	CompareNever
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
	compareFuncCount
)

var compareFuncNames = []string{"None", "Never", "Less", "Equal", "LessEqual", "Greater", "NotEqual", "GreaterEqual", "Always"}

func (c CompareFunc) Valid() bool    { return c < compareFuncCount }
func (c CompareFunc) String() string { return enumString("CompareFunc", c, compareFuncNames) }

type CullFaceMode uint8

const (
	CullNone CullFaceMode = iota
	CullClockwise
	CullCounterClockwise
	cullFaceModeCount
)

var cullFaceModeNames = []string{"None", "Clockwise", "CounterClockwise"}

func (m CullFaceMode) Valid() bool    { return m < cullFaceModeCount }
func (m CullFaceMode) String() string { return enumString("CullFaceMode", m, cullFaceModeNames) }

type RenderModeKind uint8

const (
	RenderModeFilled RenderModeKind = iota
	RenderModeWireframe
	RenderModePoint
	renderModeKindCount
)

var renderModeKindNames = []string{"Filled", "Wireframe", "Point"}

func (m RenderModeKind) Valid() bool    { return m < renderModeKindCount }
func (m RenderModeKind) String() string { return enumString("RenderMode", m, renderModeKindNames) }

type ShadeModelKind uint8

const (
	ShadeSmooth ShadeModelKind = iota
	ShadeFlat
	shadeModelKindCount
)

var shadeModelKindNames = []string{"Smooth", "Flat"}

func (m ShadeModelKind) Valid() bool    { return m < shadeModelKindCount }
func (m ShadeModelKind) String() string { return enumString("ShadeModel", m, shadeModelKindNames) }

type TransparencyMode uint8

const (
	TransparencyNone TransparencyMode = iota
	TransparencyAlpha
	TransparencyPremultipliedAlpha
	TransparencyMultisample
	TransparencyMultisampleMask
	// TransparencyBinary disables blending; the cutoff comes from the state's alpha test.
	TransparencyBinary
	TransparencyDual
	transparencyModeCount
)

var transparencyModeNames = []string{"None", "Alpha", "PremultipliedAlpha", "Multisample", "MultisampleMask", "Binary", "Dual"}

func (m TransparencyMode) Valid() bool    { return m < transparencyModeCount }
func (m TransparencyMode) String() string { return enumString("Transparency", m, transparencyModeNames) }

type BlendMode uint8

const (
	BlendNone BlendMode = iota
	BlendAdd
	BlendSubtract
	BlendInvSubtract
	BlendMin
	BlendMax
	blendModeCount
)

var blendModeNames = []string{"None", "Add", "Subtract", "InvSubtract", "Min", "Max"}

func (m BlendMode) Valid() bool    { return m < blendModeCount }
func (m BlendMode) String() string { return enumString("BlendMode", m, blendModeNames) }

type BlendOperand uint8

const (
	OperandZero BlendOperand = iota
	OperandOne
	OperandIncomingColor
	OperandOneMinusIncomingColor
	OperandFbufferColor
	OperandOneMinusFbufferColor
	OperandIncomingAlpha
	OperandOneMinusIncomingAlpha
	OperandFbufferAlpha
	OperandOneMinusFbufferAlpha
	OperandConstantColor
	OperandOneMinusConstantColor
	OperandConstantAlpha
	OperandOneMinusConstantAlpha
	OperandIncomingColorSaturate
	OperandColorScale
	OperandOneMinusColorScale
	OperandAlphaScale
	OperandOneMinusAlphaScale
	blendOperandCount
)

var blendOperandNames = []string{
	"Zero", "One", "IncomingColor", "OneMinusIncomingColor", "FbufferColor", "OneMinusFbufferColor",
	"IncomingAlpha", "OneMinusIncomingAlpha", "FbufferAlpha", "OneMinusFbufferAlpha",
	"ConstantColor", "OneMinusConstantColor", "ConstantAlpha", "OneMinusConstantAlpha", "IncomingColorSaturate",
	"ColorScale", "OneMinusColorScale", "AlphaScale", "OneMinusAlphaScale",
}

func (o BlendOperand) Valid() bool    { return o < blendOperandCount }
func (o BlendOperand) String() string { return enumString("BlendOperand", o, blendOperandNames) }

// UsesConstant reports whether the operand reads the blend constant color.
func (o BlendOperand) UsesConstant() bool {
	switch o {
	case OperandConstantColor, OperandOneMinusConstantColor, OperandConstantAlpha, OperandOneMinusConstantAlpha:
		return true
	}
	return false
}

// UsesColorScale reports whether the operand reads the color scale. These
// are issued through the blend constant color.
func (o BlendOperand) UsesColorScale() bool {
	return o >= OperandColorScale && o <= OperandOneMinusAlphaScale
}

// Constant maps a color scale operand to the constant operand that reads the
// same channels, other operands are returned unchanged.
func (o BlendOperand) Constant() BlendOperand {
	switch o {
	case OperandColorScale:
		return OperandConstantColor
	case OperandOneMinusColorScale:
		return OperandOneMinusConstantColor
	case OperandAlphaScale:
		return OperandConstantAlpha
	case OperandOneMinusAlphaScale:
		return OperandOneMinusConstantAlpha
	}
	return o
}

type ColorWriteChannels uint8

const (
	ColorWriteRed ColorWriteChannels = 1 << iota
	ColorWriteGreen
	ColorWriteBlue
	ColorWriteAlpha

	ColorWriteOff ColorWriteChannels = 0
	ColorWriteRGB                    = ColorWriteRed | ColorWriteGreen | ColorWriteBlue
	ColorWriteAll                    = ColorWriteRGB | ColorWriteAlpha
)

func (c ColorWriteChannels) Valid() bool { return c <= ColorWriteAll }

func (c ColorWriteChannels) String() string {
	if c == ColorWriteOff {
		return "Off"
	}
	if !c.Valid() {
		return fmt.Sprintf("ColorWriteChannels(%d)", uint8(c))
	}
	sb := strings.Builder{}
	for i, n := range []string{"R", "G", "B", "A"} {
		if c&(1<<i) != 0 {
			sb.WriteString(n)
		}
	}
	return sb.String()
}

type FogMode uint8

const (
	FogLinear FogMode = iota
	FogExponential
	FogExponentialSquared
	fogModeCount
)

var fogModeNames = []string{"Linear", "Exponential", "ExponentialSquared"}

func (m FogMode) Valid() bool    { return m < fogModeCount }
func (m FogMode) String() string { return enumString("FogMode", m, fogModeNames) }

type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
	StencilIncrementWrap
	StencilDecrementWrap
	stencilOpCount
)

var stencilOpNames = []string{"Keep", "Zero", "Replace", "Increment", "Decrement", "Invert", "IncrementWrap", "DecrementWrap"}

func (o StencilOp) Valid() bool    { return o < stencilOpCount }
func (o StencilOp) String() string { return enumString("StencilOp", o, stencilOpNames) }

type AntialiasMode uint8

const (
	AntialiasPoint AntialiasMode = 1 << iota
	AntialiasLine
	AntialiasPolygon
	AntialiasMultisample
	AntialiasAuto

	AntialiasNone AntialiasMode = 0
	antialiasMask               = AntialiasPoint | AntialiasLine | AntialiasPolygon | AntialiasMultisample | AntialiasAuto
)

func (m AntialiasMode) Valid() bool { return m&^antialiasMask == 0 }

func (m AntialiasMode) String() string {
	if m == AntialiasNone {
		return "None"
	}
	if !m.Valid() {
		return fmt.Sprintf("AntialiasMode(%d)", uint8(m))
	}
	parts := []string{}
	for i, n := range []string{"Point", "Line", "Polygon", "Multisample", "Auto"} {
		if m&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

type LogicOpKind uint8

const (
	LogicOpNone LogicOpKind = iota
	LogicOpClear
	LogicOpAnd
	LogicOpAndReverse
	LogicOpCopy
	LogicOpAndInverted
	LogicOpNoop
	LogicOpXor
	LogicOpOr
	LogicOpNor
	LogicOpEquivalent
	LogicOpInvert
	LogicOpOrReverse
	LogicOpCopyInverted
	LogicOpOrInverted
	LogicOpNand
	LogicOpSet
	logicOpKindCount
)

var logicOpKindNames = []string{
	"None", "Clear", "And", "AndReverse", "Copy", "AndInverted", "Noop", "Xor", "Or", "Nor",
	"Equivalent", "Invert", "OrReverse", "CopyInverted", "OrInverted", "Nand", "Set",
}

func (o LogicOpKind) Valid() bool    { return o < logicOpKindCount }
func (o LogicOpKind) String() string { return enumString("LogicOp", o, logicOpKindNames) }

type TexGenMode uint8

const (
	TexGenOff TexGenMode = iota
	TexGenEyeSphereMap
	TexGenWorldNormal
	TexGenEyeNormal
	TexGenWorldPosition
	TexGenEyePosition
	TexGenWorldCubeMap
	TexGenEyeCubeMap
	TexGenPointSprite
	texGenModeCount
)

var texGenModeNames = []string{
	"Off", "EyeSphereMap", "WorldNormal", "EyeNormal", "WorldPosition", "EyePosition",
	"WorldCubeMap", "EyeCubeMap", "PointSprite",
}

func (m TexGenMode) Valid() bool    { return m < texGenModeCount }
func (m TexGenMode) String() string { return enumString("TexGenMode", m, texGenModeNames) }

// NeedsCubeMap reports whether the mode generates reflection-vector coordinates.
func (m TexGenMode) NeedsCubeMap() bool {
	return m == TexGenWorldCubeMap || m == TexGenEyeCubeMap
}

type TextureStageMode uint8

const (
	StageModulate TextureStageMode = iota
	StageDecal
	StageBlend
	StageReplace
	StageAdd
	StageCombine
	StageBlendColorScale
	StageModulateGlow
	StageModulateGloss
	StageNormal
	textureStageModeCount
)

var textureStageModeNames = []string{
	"Modulate", "Decal", "Blend", "Replace", "Add", "Combine", "BlendColorScale",
	"ModulateGlow", "ModulateGloss", "Normal",
}

func (m TextureStageMode) Valid() bool { return m < textureStageModeCount }
func (m TextureStageMode) String() string {
	return enumString("TextureStageMode", m, textureStageModeNames)
}

type CombineMode uint8

const (
	CombineUndefined CombineMode = iota
	CombineReplace
	CombineModulate
	CombineAdd
	CombineAddSigned
	CombineInterpolate
	CombineSubtract
	CombineDot3RGB
	CombineDot3RGBA
	combineModeCount
)

var combineModeNames = []string{
	"Undefined", "Replace", "Modulate", "Add", "AddSigned", "Interpolate", "Subtract", "Dot3RGB", "Dot3RGBA",
}

func (m CombineMode) Valid() bool    { return m < combineModeCount }
func (m CombineMode) String() string { return enumString("CombineMode", m, combineModeNames) }

// Operands returns how many source/operand pairs the mode consumes.
func (m CombineMode) Operands() int {
	switch m {
	case CombineReplace:
		return 1
	case CombineInterpolate:
		return 3
	case CombineUndefined:
		return 0
	}
	return 2
}

type CombineSource uint8

const (
	SourceUndefined CombineSource = iota
	SourceTexture
	SourceConstant
	SourcePrimaryColor
	SourcePrevious
	SourceConstantColorScale
	SourceLastSavedResult
	combineSourceCount
)

var combineSourceNames = []string{
	"Undefined", "Texture", "Constant", "PrimaryColor", "Previous", "ConstantColorScale", "LastSavedResult",
}

func (s CombineSource) Valid() bool    { return s < combineSourceCount }
func (s CombineSource) String() string { return enumString("CombineSource", s, combineSourceNames) }

type CombineOperand uint8

const (
	OperandUndefined CombineOperand = iota
	OperandSrcColor
	OperandOneMinusSrcColor
	OperandSrcAlpha
	OperandOneMinusSrcAlpha
	combineOperandCount
)

var combineOperandNames = []string{"Undefined", "SrcColor", "OneMinusSrcColor", "SrcAlpha", "OneMinusSrcAlpha"}

func (o CombineOperand) Valid() bool    { return o < combineOperandCount }
func (o CombineOperand) String() string { return enumString("CombineOperand", o, combineOperandNames) }

type RescaleNormalMode uint8

const (
	RescaleNone RescaleNormalMode = iota
	RescaleRescale
	RescaleNormalize
	// RescaleAuto rescales when the transform has uniform scale.
	RescaleAuto
	rescaleNormalModeCount
)

var rescaleNormalModeNames = []string{"None", "Rescale", "Normalize", "Auto"}

func (m RescaleNormalMode) Valid() bool { return m < rescaleNormalModeCount }
func (m RescaleNormalMode) String() string {
	return enumString("RescaleNormal", m, rescaleNormalModeNames)
}

type ColorKind uint8

const (
	ColorVertex ColorKind = iota
	ColorFlat
	ColorOff
	colorKindCount
)

var colorKindNames = []string{"Vertex", "Flat", "Off"}

func (k ColorKind) Valid() bool    { return k < colorKindCount }
func (k ColorKind) String() string { return enumString("ColorKind", k, colorKindNames) }

type LightKind uint8

const (
	LightAmbient LightKind = iota
	LightDirectional
	LightPoint
	LightSpot
	lightKindCount
)

var lightKindNames = []string{"Ambient", "Directional", "Point", "Spot"}

func (k LightKind) Valid() bool    { return k < lightKindCount }
func (k LightKind) String() string { return enumString("LightKind", k, lightKindNames) }
