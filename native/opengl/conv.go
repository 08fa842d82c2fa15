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

package opengl

import (
	"github.com/go-gl/gl/v2.1/gl"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// Extension tokens that are not part of the 2.1 core profile.
const (
	glMirrorClampEXT              = 0x8742
	glDepthStencilEXT             = 0x84F9
	glUnsignedInt248EXT           = 0x84FA
	glDepth24Stencil8EXT          = 0x88F0
	glRGBA32F                     = 0x8814
	glRGB32F                      = 0x8815
	glCompressedRGBS3TCDXT1       = 0x83F0
	glCompressedRGBAS3TCDXT1      = 0x83F1
	glCompressedRGBAS3TCDXT3      = 0x83F2
	glCompressedRGBAS3TCDXT5      = 0x83F3
	glTextureMaxAnisotropyEXT     = 0x84FE
	glMaxTextureMaxAnisotropyEXT  = 0x84FF
	glStencilTestTwoSideEXT       = 0x8910
)

// invalid marks a value in a lookup table with no GL equivalent.
const invalid = ^native.Enum(0)

type enum interface {
	~uint8
	Valid() bool
}

func lookup[E enum](table []native.Enum, e E) (native.Enum, bool) {
	if !e.Valid() || int(e) >= len(table) || table[e] == invalid {
		return 0, false
	}
	return table[e], true
}

var compareFuncs = []native.Enum{
	state.CompareNone:         gl.ALWAYS,
	state.CompareNever:        gl.NEVER,
	state.CompareLess:         gl.LESS,
	state.CompareEqual:        gl.EQUAL,
	state.CompareLessEqual:    gl.LEQUAL,
	state.CompareGreater:      gl.GREATER,
	state.CompareNotEqual:     gl.NOTEQUAL,
	state.CompareGreaterEqual: gl.GEQUAL,
	state.CompareAlways:       gl.ALWAYS,
}

var blendOperands = []native.Enum{
	state.OperandZero:                  gl.ZERO,
	state.OperandOne:                   gl.ONE,
	state.OperandIncomingColor:         gl.SRC_COLOR,
	state.OperandOneMinusIncomingColor: gl.ONE_MINUS_SRC_COLOR,
	state.OperandFbufferColor:          gl.DST_COLOR,
	state.OperandOneMinusFbufferColor:  gl.ONE_MINUS_DST_COLOR,
	state.OperandIncomingAlpha:         gl.SRC_ALPHA,
	state.OperandOneMinusIncomingAlpha: gl.ONE_MINUS_SRC_ALPHA,
	state.OperandFbufferAlpha:          gl.DST_ALPHA,
	state.OperandOneMinusFbufferAlpha:  gl.ONE_MINUS_DST_ALPHA,
	state.OperandConstantColor:         gl.CONSTANT_COLOR,
	state.OperandOneMinusConstantColor: gl.ONE_MINUS_CONSTANT_COLOR,
	state.OperandConstantAlpha:         gl.CONSTANT_ALPHA,
	state.OperandOneMinusConstantAlpha: gl.ONE_MINUS_CONSTANT_ALPHA,
	state.OperandIncomingColorSaturate: gl.SRC_ALPHA_SATURATE,
	state.OperandColorScale:            gl.CONSTANT_COLOR,
	state.OperandOneMinusColorScale:    gl.ONE_MINUS_CONSTANT_COLOR,
	state.OperandAlphaScale:            gl.CONSTANT_ALPHA,
	state.OperandOneMinusAlphaScale:    gl.ONE_MINUS_CONSTANT_ALPHA,
}

var blendModes = []native.Enum{
	state.BlendNone:        gl.FUNC_ADD,
	state.BlendAdd:         gl.FUNC_ADD,
	state.BlendSubtract:    gl.FUNC_SUBTRACT,
	state.BlendInvSubtract: gl.FUNC_REVERSE_SUBTRACT,
	state.BlendMin:         gl.MIN,
	state.BlendMax:         gl.MAX,
}

var stencilOps = []native.Enum{
	state.StencilKeep:          gl.KEEP,
	state.StencilZero:          gl.ZERO,
	state.StencilReplace:       gl.REPLACE,
	state.StencilIncrement:     gl.INCR,
	state.StencilDecrement:     gl.DECR,
	state.StencilInvert:        gl.INVERT,
	state.StencilIncrementWrap: gl.INCR_WRAP,
	state.StencilDecrementWrap: gl.DECR_WRAP,
}

var logicOps = []native.Enum{
	state.LogicOpNone:         gl.COPY,
	state.LogicOpClear:        gl.CLEAR,
	state.LogicOpAnd:          gl.AND,
	state.LogicOpAndReverse:   gl.AND_REVERSE,
	state.LogicOpCopy:         gl.COPY,
	state.LogicOpAndInverted:  gl.AND_INVERTED,
	state.LogicOpNoop:         gl.NOOP,
	state.LogicOpXor:          gl.XOR,
	state.LogicOpOr:           gl.OR,
	state.LogicOpNor:          gl.NOR,
	state.LogicOpEquivalent:   gl.EQUIV,
	state.LogicOpInvert:       gl.INVERT,
	state.LogicOpOrReverse:    gl.OR_REVERSE,
	state.LogicOpCopyInverted: gl.COPY_INVERTED,
	state.LogicOpOrInverted:   gl.OR_INVERTED,
	state.LogicOpNand:         gl.NAND,
	state.LogicOpSet:          gl.SET,
}

var fogModes = []native.Enum{
	state.FogLinear:             gl.LINEAR,
	state.FogExponential:        gl.EXP,
	state.FogExponentialSquared: gl.EXP2,
}

var renderModes = []native.Enum{
	state.RenderModeFilled:    gl.FILL,
	state.RenderModeWireframe: gl.LINE,
	state.RenderModePoint:     gl.POINT,
}

var shadeModels = []native.Enum{
	state.ShadeSmooth: gl.SMOOTH,
	state.ShadeFlat:   gl.FLAT,
}

// Stage modes past Combine are resolved to one of these by the caller.
var textureStageModes = []native.Enum{
	state.StageModulate:        gl.MODULATE,
	state.StageDecal:           gl.DECAL,
	state.StageBlend:           gl.BLEND,
	state.StageReplace:         gl.REPLACE,
	state.StageAdd:             gl.ADD,
	state.StageCombine:         gl.COMBINE,
	state.StageBlendColorScale: invalid,
	state.StageModulateGlow:    invalid,
	state.StageModulateGloss:   invalid,
	state.StageNormal:          invalid,
}

var combineModes = []native.Enum{
	state.CombineUndefined:   invalid,
	state.CombineReplace:     gl.REPLACE,
	state.CombineModulate:    gl.MODULATE,
	state.CombineAdd:         gl.ADD,
	state.CombineAddSigned:   gl.ADD_SIGNED,
	state.CombineInterpolate: gl.INTERPOLATE,
	state.CombineSubtract:    gl.SUBTRACT,
	state.CombineDot3RGB:     gl.DOT3_RGB,
	state.CombineDot3RGBA:    gl.DOT3_RGBA,
}

var combineSources = []native.Enum{
	state.SourceUndefined:          invalid,
	state.SourceTexture:            gl.TEXTURE,
	state.SourceConstant:           gl.CONSTANT,
	state.SourcePrimaryColor:       gl.PRIMARY_COLOR,
	state.SourcePrevious:           gl.PREVIOUS,
	state.SourceConstantColorScale: invalid,
	state.SourceLastSavedResult:    invalid,
}

var combineOperands = []native.Enum{
	state.OperandUndefined:        invalid,
	state.OperandSrcColor:         gl.SRC_COLOR,
	state.OperandOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	state.OperandSrcAlpha:         gl.SRC_ALPHA,
	state.OperandOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
}

// World and eye variants share a GL mode, the caller loads the matrix that
// tells them apart.
var texGenModes = []native.Enum{
	state.TexGenOff:           invalid,
	state.TexGenEyeSphereMap:  gl.SPHERE_MAP,
	state.TexGenWorldNormal:   gl.NORMAL_MAP,
	state.TexGenEyeNormal:     gl.NORMAL_MAP,
	state.TexGenWorldPosition: gl.EYE_LINEAR,
	state.TexGenEyePosition:   gl.EYE_LINEAR,
	state.TexGenWorldCubeMap:  gl.REFLECTION_MAP,
	state.TexGenEyeCubeMap:    gl.REFLECTION_MAP,
	state.TexGenPointSprite:   invalid,
}

var wrapModes = []native.Enum{
	resource.WrapClamp:       gl.CLAMP_TO_EDGE,
	resource.WrapRepeat:      gl.REPEAT,
	resource.WrapMirror:      gl.MIRRORED_REPEAT,
	resource.WrapMirrorOnce:  glMirrorClampEXT,
	resource.WrapBorderColor: gl.CLAMP_TO_BORDER,
}

var filterModes = []native.Enum{
	resource.FilterNearest:              gl.NEAREST,
	resource.FilterLinear:               gl.LINEAR,
	resource.FilterNearestMipmapNearest: gl.NEAREST_MIPMAP_NEAREST,
	resource.FilterLinearMipmapNearest:  gl.LINEAR_MIPMAP_NEAREST,
	resource.FilterNearestMipmapLinear:  gl.NEAREST_MIPMAP_LINEAR,
	resource.FilterLinearMipmapLinear:   gl.LINEAR_MIPMAP_LINEAR,
}

var textureTargets = []native.Enum{
	resource.Texture1D:      gl.TEXTURE_1D,
	resource.Texture2D:      gl.TEXTURE_2D,
	resource.Texture3D:      gl.TEXTURE_3D,
	resource.TextureCubeMap: gl.TEXTURE_CUBE_MAP,
}

var externalFormats = []native.Enum{
	resource.FormatRGBA:           gl.RGBA,
	resource.FormatRGB:            gl.RGB,
	resource.FormatAlpha:          gl.ALPHA,
	resource.FormatLuminance:      gl.LUMINANCE,
	resource.FormatLuminanceAlpha: gl.LUMINANCE_ALPHA,
	resource.FormatRed:            gl.RED,
	resource.FormatGreen:          gl.GREEN,
	resource.FormatBlue:           gl.BLUE,
	resource.FormatDepth:          gl.DEPTH_COMPONENT,
	resource.FormatDepthStencil:   glDepthStencilEXT,
	resource.FormatBGRA:           gl.BGRA,
	resource.FormatBGR:            gl.BGR,
}

var componentTypes = []native.Enum{
	resource.ComponentU8:    gl.UNSIGNED_BYTE,
	resource.ComponentU16:   gl.UNSIGNED_SHORT,
	resource.ComponentF32:   gl.FLOAT,
	resource.ComponentU24S8: glUnsignedInt248EXT,
}

var primitiveKinds = []native.Enum{
	resource.PrimitiveTriangles:  gl.TRIANGLES,
	resource.PrimitiveTristrips:  gl.TRIANGLE_STRIP,
	resource.PrimitiveTrifans:    gl.TRIANGLE_FAN,
	resource.PrimitiveLines:      gl.LINES,
	resource.PrimitiveLinestrips: gl.LINE_STRIP,
	resource.PrimitivePoints:     gl.POINTS,
}

var indexTypes = []native.Enum{
	resource.IndexU8:  gl.UNSIGNED_BYTE,
	resource.IndexU16: gl.UNSIGNED_SHORT,
	resource.IndexU32: gl.UNSIGNED_INT,
}

// Packed colors are read as four unsigned bytes.
var numericTypes = []native.Enum{
	resource.NumericF32:        gl.FLOAT,
	resource.NumericU8:         gl.UNSIGNED_BYTE,
	resource.NumericU16:        gl.UNSIGNED_SHORT,
	resource.NumericU32:        gl.UNSIGNED_INT,
	resource.NumericPackedABGR: gl.UNSIGNED_BYTE,
}

var usageHints = []native.Enum{
	resource.UsageStatic:  gl.STATIC_DRAW,
	resource.UsageDynamic: gl.DYNAMIC_DRAW,
	resource.UsageStream:  gl.STREAM_DRAW,
}

func (*Device) CompareFunc(f state.CompareFunc) (native.Enum, bool) {
	return lookup(compareFuncs, f)
}

func (*Device) BlendOperand(o state.BlendOperand) (native.Enum, bool) {
	return lookup(blendOperands, o)
}

func (*Device) BlendMode(m state.BlendMode) (native.Enum, bool) {
	return lookup(blendModes, m)
}

func (*Device) StencilOperation(o state.StencilOp) (native.Enum, bool) {
	return lookup(stencilOps, o)
}

func (*Device) LogicOpKind(o state.LogicOpKind) (native.Enum, bool) {
	return lookup(logicOps, o)
}

func (*Device) FogMode(m state.FogMode) (native.Enum, bool) {
	return lookup(fogModes, m)
}

func (*Device) RenderMode(m state.RenderModeKind) (native.Enum, bool) {
	return lookup(renderModes, m)
}

func (*Device) ShadeModelKind(m state.ShadeModelKind) (native.Enum, bool) {
	return lookup(shadeModels, m)
}

func (*Device) TextureStageMode(m state.TextureStageMode) (native.Enum, bool) {
	return lookup(textureStageModes, m)
}

func (*Device) CombineMode(m state.CombineMode) (native.Enum, bool) {
	return lookup(combineModes, m)
}

func (*Device) CombineSource(s state.CombineSource) (native.Enum, bool) {
	return lookup(combineSources, s)
}

func (*Device) CombineOperand(o state.CombineOperand) (native.Enum, bool) {
	return lookup(combineOperands, o)
}

func (*Device) TexGenMode(m state.TexGenMode) (native.Enum, bool) {
	return lookup(texGenModes, m)
}

func (*Device) WrapMode(w resource.WrapMode) (native.Enum, bool) {
	return lookup(wrapModes, w)
}

func (*Device) FilterMode(f resource.FilterMode) (native.Enum, bool) {
	return lookup(filterModes, f)
}

func (*Device) TextureTarget(t resource.TextureType) (native.Enum, bool) {
	return lookup(textureTargets, t)
}

func (*Device) CubeFaceTarget(face int) (native.Enum, bool) {
	if face < 0 || face >= 6 {
		return 0, false
	}
	return native.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X + face), true
}

func (*Device) ExternalFormat(f resource.Format) (native.Enum, bool) {
	return lookup(externalFormats, f)
}

func (*Device) ComponentType(c resource.ComponentType) (native.Enum, bool) {
	return lookup(componentTypes, c)
}

/*
InternalFormat picks a sized internal format. Red, green and blue only
textures are stored as RGB since 2.1 has no single channel color format.
*/
func (*Device) InternalFormat(f resource.Format, c resource.ComponentType, comp resource.Compression) (native.Enum, bool) {
	if !f.Valid() || !c.Valid() || !comp.Valid() {
		return 0, false
	}

	switch comp {
	case resource.CompressionDXT1:
		if f == resource.FormatRGB || f == resource.FormatBGR {
			return glCompressedRGBS3TCDXT1, true
		}
		return glCompressedRGBAS3TCDXT1, true
	case resource.CompressionDXT3:
		return glCompressedRGBAS3TCDXT3, true
	case resource.CompressionDXT5:
		return glCompressedRGBAS3TCDXT5, true
	}

	if c == resource.ComponentU24S8 && f != resource.FormatDepth && f != resource.FormatDepthStencil {
		return 0, false
	}

	switch f {
	case resource.FormatRGBA, resource.FormatBGRA:
		return sized(c, gl.RGBA8, gl.RGBA16, glRGBA32F)
	case resource.FormatRGB, resource.FormatBGR, resource.FormatRed, resource.FormatGreen, resource.FormatBlue:
		return sized(c, gl.RGB8, gl.RGB16, glRGB32F)
	case resource.FormatAlpha:
		return sized(c, gl.ALPHA8, gl.ALPHA16, invalid)
	case resource.FormatLuminance:
		return sized(c, gl.LUMINANCE8, gl.LUMINANCE16, invalid)
	case resource.FormatLuminanceAlpha:
		return sized(c, gl.LUMINANCE8_ALPHA8, gl.LUMINANCE16_ALPHA16, invalid)
	case resource.FormatDepth:
		switch c {
		case resource.ComponentU16:
			return gl.DEPTH_COMPONENT16, true
		case resource.ComponentU24S8:
			return gl.DEPTH_COMPONENT24, true
		case resource.ComponentF32:
			return gl.DEPTH_COMPONENT32, true
		}
		return gl.DEPTH_COMPONENT, true
	case resource.FormatDepthStencil:
		if c != resource.ComponentU24S8 {
			return 0, false
		}
		return glDepth24Stencil8EXT, true
	}
	return 0, false
}

func sized(c resource.ComponentType, u8, u16, f32 native.Enum) (native.Enum, bool) {
	ret := invalid
	switch c {
	case resource.ComponentU8:
		ret = u8
	case resource.ComponentU16:
		ret = u16
	case resource.ComponentF32:
		ret = f32
	}
	return ret, ret != invalid
}

func (*Device) PrimitiveKind(k resource.PrimitiveKind) (native.Enum, bool) {
	return lookup(primitiveKinds, k)
}

func (*Device) IndexType(t resource.IndexType) (native.Enum, bool) {
	return lookup(indexTypes, t)
}

func (*Device) NumericType(n resource.NumericType) (native.Enum, bool) {
	return lookup(numericTypes, n)
}

func (*Device) UsageHint(u resource.UsageHint) (native.Enum, bool) {
	return lookup(usageHints, u)
}

var capabilities = [native.NumCapabilities]uint32{
	native.CapAlphaTest:             gl.ALPHA_TEST,
	native.CapBlend:                 gl.BLEND,
	native.CapColorLogicOp:          gl.COLOR_LOGIC_OP,
	native.CapColorMaterial:         gl.COLOR_MATERIAL,
	native.CapCullFace:              gl.CULL_FACE,
	native.CapDepthTest:             gl.DEPTH_TEST,
	native.CapDither:                gl.DITHER,
	native.CapFog:                   gl.FOG,
	native.CapLighting:              gl.LIGHTING,
	native.CapLineSmooth:            gl.LINE_SMOOTH,
	native.CapPointSmooth:           gl.POINT_SMOOTH,
	native.CapPolygonSmooth:         gl.POLYGON_SMOOTH,
	native.CapPolygonOffsetFill:     gl.POLYGON_OFFSET_FILL,
	native.CapMultisample:           gl.MULTISAMPLE,
	native.CapSampleAlphaToCoverage: gl.SAMPLE_ALPHA_TO_COVERAGE,
	native.CapSampleAlphaToOne:      gl.SAMPLE_ALPHA_TO_ONE,
	native.CapNormalize:             gl.NORMALIZE,
	native.CapRescaleNormal:         gl.RESCALE_NORMAL,
	native.CapScissorTest:           gl.SCISSOR_TEST,
	native.CapStencilTest:           gl.STENCIL_TEST,
	native.CapStencilTestTwoSide:    glStencilTestTwoSideEXT,
	native.CapPointSprite:           gl.POINT_SPRITE,
	native.CapTexture1D:             gl.TEXTURE_1D,
	native.CapTexture2D:             gl.TEXTURE_2D,
	native.CapTexture3D:             gl.TEXTURE_3D,
	native.CapTextureCubeMap:        gl.TEXTURE_CUBE_MAP,
	native.CapTexGenS:               gl.TEXTURE_GEN_S,
	native.CapTexGenT:               gl.TEXTURE_GEN_T,
	native.CapTexGenR:               gl.TEXTURE_GEN_R,
	native.CapTexGenQ:               gl.TEXTURE_GEN_Q,
}

var arrays = [...]uint32{
	native.ArrayVertex:   gl.VERTEX_ARRAY,
	native.ArrayNormal:   gl.NORMAL_ARRAY,
	native.ArrayColor:    gl.COLOR_ARRAY,
	native.ArrayTexcoord: gl.TEXTURE_COORD_ARRAY,
}

var matrixModes = [...]uint32{
	native.MatrixModelview:  gl.MODELVIEW,
	native.MatrixProjection: gl.PROJECTION,
	native.MatrixTexture:    gl.TEXTURE,
}

var stencilFaces = [...]uint32{
	native.StencilFront:        gl.FRONT,
	native.StencilBack:         gl.BACK,
	native.StencilFrontAndBack: gl.FRONT_AND_BACK,
}

var bufferTargets = [...]uint32{
	native.BufferVertex: gl.ARRAY_BUFFER,
	native.BufferIndex:  gl.ELEMENT_ARRAY_BUFFER,
}

var hintTargets = [...]uint32{
	native.HintPerspectiveCorrection: gl.PERSPECTIVE_CORRECTION_HINT,
	native.HintFog:                   gl.FOG_HINT,
	native.HintGenerateMipmap:        gl.GENERATE_MIPMAP_HINT,
	native.HintPointSmooth:           gl.POINT_SMOOTH_HINT,
	native.HintLineSmooth:            gl.LINE_SMOOTH_HINT,
	native.HintPolygonSmooth:         gl.POLYGON_SMOOTH_HINT,
}

var hintModes = [...]uint32{
	native.HintDontCare: gl.DONT_CARE,
	native.HintFastest:  gl.FASTEST,
	native.HintNicest:   gl.NICEST,
}

var texCoords = [...]uint32{
	native.TexCoordS: gl.S,
	native.TexCoordT: gl.T,
	native.TexCoordR: gl.R,
	native.TexCoordQ: gl.Q,
}
