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

// Package native defines the driver facing side of the state guardian: the
// calls a backend must implement and the value types passed through them.
package native

import (
	"errors"
	"strings"

	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// Handle names a driver object. Zero is never a valid object.
type Handle uint32

// Enum is a backend specific constant produced by a Translator.
type Enum uint32

type API uint8

const (
	APIOpenGL API = iota
	APIOpenGLES
	APIDirect3D
)

func (a API) String() string {
	switch a {
	case APIOpenGL:
		return "OpenGL"
	case APIOpenGLES:
		return "OpenGLES"
	case APIDirect3D:
		return "Direct3D"
	}
	return "Invalid"
}

var (
	ErrSurfaceLost = errors.New("Surface lost")
	ErrSurfaceBusy = errors.New("Surface busy")
	ErrOutOfMemory = errors.New("Out of memory")
)

type Limits struct {
	MaxTextureStages        int32
	MaxTextureDimension     int32
	Max3DTextureDimension   int32
	MaxCubeMapDimension     int32
	MaxLights               int32
	MaxClipPlanes           int32
	MaxVertices             int32
	MaxIndices              int32
	MaxAnisotropy           float32
	RedBits                 int32
	StencilBits             int32
	Samples                 int32
	MaxModelviewStackDepth  int32
	MaxProjectionStackDepth int32
}

// DriverInfo is everything QueryInfo can learn about the current context.
type DriverInfo struct {
	API                    API
	Vendor                 string
	Renderer               string
	Version                string
	ShadingLanguageVersion string
	Extensions             []string
	Limits                 Limits
}

func (d *DriverInfo) ExtensionString() string {
	return strings.Join(d.Extensions, " ")
}

// Feature is a group of entry points that may come from core or an extension.
type Feature uint8

const (
	FeatureMultitexture Feature = iota
	FeatureBufferObjects
	FeatureGenerateMipmap
	FeatureCompressedTexture
	FeatureBlendEquation
	FeatureBlendColor
	FeatureTexture3D
	FeatureDrawRangeElements
	FeatureGLSL
	FeatureTwoSidedStencil
	FeatureOcclusionQuery
	NumFeatures
)

func (f Feature) String() string {
	switch f {
	case FeatureMultitexture:
		return "Multitexture"
	case FeatureBufferObjects:
		return "BufferObjects"
	case FeatureGenerateMipmap:
		return "GenerateMipmap"
	case FeatureCompressedTexture:
		return "CompressedTexture"
	case FeatureBlendEquation:
		return "BlendEquation"
	case FeatureBlendColor:
		return "BlendColor"
	case FeatureTexture3D:
		return "Texture3D"
	case FeatureDrawRangeElements:
		return "DrawRangeElements"
	case FeatureGLSL:
		return "GLSL"
	case FeatureTwoSidedStencil:
		return "TwoSidedStencil"
	case FeatureOcclusionQuery:
		return "OcclusionQuery"
	}
	return "Invalid"
}

// Variant says which flavor of a feature's entry points the backend must call.
type Variant uint8

const (
	VariantNone Variant = iota
	VariantCore
	VariantARB
	VariantEXT
)

func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "None"
	case VariantCore:
		return "Core"
	case VariantARB:
		return "ARB"
	case VariantEXT:
		return "EXT"
	}
	return "Invalid"
}

type EntryPoints [NumFeatures]Variant

type Capability uint8

const (
	CapAlphaTest Capability = iota
	CapBlend
	CapColorLogicOp
	CapColorMaterial
	CapCullFace
	CapDepthTest
	CapDither
	CapFog
	CapLighting
	CapLineSmooth
	CapPointSmooth
	CapPolygonSmooth
	CapPolygonOffsetFill
	CapMultisample
	CapSampleAlphaToCoverage
	CapSampleAlphaToOne
	CapNormalize
	CapRescaleNormal
	CapScissorTest
	CapStencilTest
	CapStencilTestTwoSide
	CapPointSprite
	// The remaining capabilities apply to the active texture unit.
	CapTexture1D
	CapTexture2D
	CapTexture3D
	CapTextureCubeMap
	CapTexGenS
	CapTexGenT
	CapTexGenR
	CapTexGenQ
	NumCapabilities
)

var capabilityNames = [...]string{
	"AlphaTest", "Blend", "ColorLogicOp", "ColorMaterial", "CullFace", "DepthTest", "Dither", "Fog",
	"Lighting", "LineSmooth", "PointSmooth", "PolygonSmooth", "PolygonOffsetFill", "Multisample",
	"SampleAlphaToCoverage", "SampleAlphaToOne", "Normalize", "RescaleNormal", "ScissorTest",
	"StencilTest", "StencilTestTwoSide", "PointSprite", "Texture1D", "Texture2D", "Texture3D",
	"TextureCubeMap", "TexGenS", "TexGenT", "TexGenR", "TexGenQ",
}

func (c Capability) String() string {
	if c < NumCapabilities {
		return capabilityNames[c]
	}
	return "Invalid"
}

// PerTextureUnit reports whether the capability is scoped to the active unit.
func (c Capability) PerTextureUnit() bool {
	return c >= CapTexture1D && c < NumCapabilities
}

type MatrixMode uint8

const (
	MatrixModelview MatrixMode = iota
	MatrixProjection
	MatrixTexture
)

func (m MatrixMode) String() string {
	switch m {
	case MatrixModelview:
		return "Modelview"
	case MatrixProjection:
		return "Projection"
	case MatrixTexture:
		return "Texture"
	}
	return "Invalid"
}

type StencilFace uint8

const (
	StencilFront StencilFace = iota
	StencilBack
	StencilFrontAndBack
)

type ArrayKind uint8

const (
	ArrayVertex ArrayKind = iota
	ArrayNormal
	ArrayColor
	// ArrayTexcoord applies to the client active texture unit.
	ArrayTexcoord
)

func (k ArrayKind) String() string {
	switch k {
	case ArrayVertex:
		return "Vertex"
	case ArrayNormal:
		return "Normal"
	case ArrayColor:
		return "Color"
	case ArrayTexcoord:
		return "Texcoord"
	}
	return "Invalid"
}

type BufferTarget uint8

const (
	BufferVertex BufferTarget = iota
	BufferIndex
)

func (t BufferTarget) String() string {
	switch t {
	case BufferVertex:
		return "Vertex"
	case BufferIndex:
		return "Index"
	}
	return "Invalid"
}

type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil
)

type HintTarget uint8

const (
	HintPerspectiveCorrection HintTarget = iota
	HintFog
	HintGenerateMipmap
	HintPointSmooth
	HintLineSmooth
	HintPolygonSmooth
)

type HintMode uint8

const (
	HintDontCare HintMode = iota
	HintFastest
	HintNicest
)

// TexCoord selects one generated texture coordinate.
type TexCoord uint8

const (
	TexCoordS TexCoord = iota
	TexCoordT
	TexCoordR
	TexCoordQ
)

type CooperativeLevel uint8

const (
	CooperativeOK CooperativeLevel = iota
	// CooperativeLostExclusive means another application holds exclusive mode.
	CooperativeLostExclusive
	CooperativeExclusiveAlreadySet
	// CooperativeWrongMode means the desktop display mode changed under us.
	CooperativeWrongMode
)

func (c CooperativeLevel) String() string {
	switch c {
	case CooperativeOK:
		return "OK"
	case CooperativeLostExclusive:
		return "LostExclusive"
	case CooperativeExclusiveAlreadySet:
		return "ExclusiveAlreadySet"
	case CooperativeWrongMode:
		return "WrongMode"
	}
	return "Invalid"
}

// SurfaceOwner is implemented by devices that can lose their surfaces, the
// Direct3D style exclusive mode model.
type SurfaceOwner interface {
	TestCooperativeLevel() CooperativeLevel
	RestoreSurfaces() error
}

type FogParams struct {
	Mode    Enum
	Color   [4]float32
	Start   float32
	End     float32
	Density float32
}

type LightParams struct {
	Ambient       [4]float32
	Diffuse       [4]float32
	Specular      [4]float32
	Position      [4]float32
	SpotDirection [3]float32
	SpotExponent  float32
	SpotCutoff    float32
	Attenuation   [3]float32
}

type MaterialParams struct {
	Ambient   [4]float32
	Diffuse   [4]float32
	Specular  [4]float32
	Emission  [4]float32
	Shininess float32
	TwoSided  bool
}

type SamplerParams struct {
	WrapS       Enum
	WrapT       Enum
	WrapR       Enum
	MinFilter   Enum
	MagFilter   Enum
	Anisotropy  float32
	BorderColor [4]float32
	// BaseLevel and MaxLevel bound the uploaded mip chain.
	BaseLevel int32
	MaxLevel  int32
	// AutoMipmap asks the driver to regenerate mipmaps on every level 0 upload.
	AutoMipmap bool
}

type TexImageDesc struct {
	// Target is the bind target, or the face target for a cube map face.
	Target         Enum
	Level          int32
	InternalFormat Enum
	Format         Enum
	Type           Enum
	Size           gmath.Extent3i32
}

type CombineParams struct {
	RGBMode       Enum
	AlphaMode     Enum
	RGBSources    [3]Enum
	RGBOperands   [3]Enum
	AlphaSources  [3]Enum
	AlphaOperands [3]Enum
	RGBScale      float32
	AlphaScale    float32
}

// Translator maps engine enumerations to backend constants. Every method is
// pure and reports false for a value the backend cannot represent.
type Translator interface {
	CompareFunc(state.CompareFunc) (Enum, bool)
	BlendOperand(state.BlendOperand) (Enum, bool)
	BlendMode(state.BlendMode) (Enum, bool)
	StencilOperation(state.StencilOp) (Enum, bool)
	LogicOpKind(state.LogicOpKind) (Enum, bool)
	FogMode(state.FogMode) (Enum, bool)
	RenderMode(state.RenderModeKind) (Enum, bool)
	ShadeModelKind(state.ShadeModelKind) (Enum, bool)
	TextureStageMode(state.TextureStageMode) (Enum, bool)
	CombineMode(state.CombineMode) (Enum, bool)
	CombineSource(state.CombineSource) (Enum, bool)
	CombineOperand(state.CombineOperand) (Enum, bool)
	TexGenMode(state.TexGenMode) (Enum, bool)

	WrapMode(resource.WrapMode) (Enum, bool)
	FilterMode(resource.FilterMode) (Enum, bool)
	TextureTarget(resource.TextureType) (Enum, bool)
	// CubeFaceTarget is the upload target of face i of a cube map.
	CubeFaceTarget(face int) (Enum, bool)
	ExternalFormat(resource.Format) (Enum, bool)
	InternalFormat(resource.Format, resource.ComponentType, resource.Compression) (Enum, bool)
	ComponentType(resource.ComponentType) (Enum, bool)
	PrimitiveKind(resource.PrimitiveKind) (Enum, bool)
	IndexType(resource.IndexType) (Enum, bool)
	NumericType(resource.NumericType) (Enum, bool)
	UsageHint(resource.UsageHint) (Enum, bool)
}

type InfoQuerier interface {
	// QueryInfo reads the current context. It fails if the context cannot be
	// queried at all.
	QueryInfo() (DriverInfo, error)
	HasEntryPoint(name string) bool
	BindEntryPoints(EntryPoints)
}

// Device is one native graphics context. All methods must be called from the
// goroutine that owns the context.
type Device interface {
	InfoQuerier
	Translator

	Enable(c Capability, on bool)
	EnableLight(i int, on bool)
	EnableClipPlane(i int, on bool)
	EnableArray(k ArrayKind, on bool)
	Hint(t HintTarget, m HintMode)

	AlphaFunc(fn Enum, ref float32)
	BlendFunc(src, dst Enum)
	BlendEquation(eq Enum)
	BlendColor(c [4]float32)
	ColorMask(r, g, b, a bool)
	// CullFace culls front faces when front is set, back faces otherwise.
	CullFace(front bool)
	DepthFunc(fn Enum)
	DepthMask(on bool)
	PolygonOffset(factor, units float32)
	Fog(p FogParams)
	LightModel(ambient [4]float32, localViewer, twoSided bool)
	Light(i int, p LightParams)
	Material(p MaterialParams)
	ColorMaterial(ambient, diffuse bool)
	ClipPlane(i int, eq [4]float64)
	LogicOp(op Enum)
	PolygonMode(mode Enum)
	PointSize(size float32)
	LineWidth(width float32)
	ShadeModel(model Enum)
	Scissor(r gmath.Recti32)
	Viewport(r gmath.Recti32)
	StencilFunc(face StencilFace, fn Enum, ref, mask uint32)
	StencilOp(face StencilFace, fail, zfail, zpass Enum)
	StencilMask(face StencilFace, mask uint32)
	Color(c [4]float32)

	MatrixMode(m MatrixMode)
	LoadMatrix(m state.Mat4)
	PushMatrix()
	PopMatrix()

	ActiveTexture(unit int)
	ClientActiveTexture(unit int)
	TexEnvMode(mode Enum)
	TexEnvColor(c [4]float32)
	TexEnvCombine(p CombineParams)
	TexGen(coord TexCoord, mode Enum, plane [4]float32)

	GenTexture() (Handle, error)
	DeleteTexture(h Handle)
	BindTexture(target Enum, h Handle)
	TexParameters(target Enum, p SamplerParams)
	TexImage(desc TexImageDesc, data []byte) error
	TexSubImage(desc TexImageDesc, data []byte) error
	CompressedTexImage(desc TexImageDesc, data []byte) error
	CompressedTexSubImage(desc TexImageDesc, data []byte) error
	// CopyTexImage defines desc's level from the framebuffer rectangle at x, y.
	CopyTexImage(desc TexImageDesc, x, y int32) error
	// CopyTexSubImage overwrites desc's existing storage from the framebuffer.
	CopyTexSubImage(desc TexImageDesc, x, y int32) error
	GenerateMipmap(target Enum)

	GenBuffer() (Handle, error)
	DeleteBuffer(h Handle)
	BindBuffer(t BufferTarget, h Handle)
	BufferData(t BufferTarget, data []byte, usage Enum) error
	BufferSubData(t BufferTarget, offset int, data []byte)

	// ArrayPointer sources k from client memory when data is non nil, and from
	// offset into the bound vertex buffer otherwise.
	ArrayPointer(k ArrayKind, size int32, typ Enum, stride int32, data []byte, offset int)
	DrawArrays(mode Enum, first, count int32)
	DrawElements(mode Enum, count int32, typ Enum, data []byte, offset int)
	DrawRangeElements(mode Enum, start, end uint32, count int32, typ Enum, data []byte, offset int)

	GenList() (Handle, error)
	DeleteList(h Handle)
	NewList(h Handle)
	EndList()
	CallList(h Handle)

	GenQuery() (Handle, error)
	DeleteQuery(h Handle)
	BeginQuery(h Handle)
	EndQuery()
	QueryResult(h Handle) (uint32, bool)

	CreateProgram(vertex, fragment string) (Handle, error)
	DeleteProgram(h Handle)
	UseProgram(h Handle)

	ClearColor(c [4]float32)
	ClearDepth(d float64)
	ClearStencil(s int32)
	Clear(mask ClearMask)
	BeginScene() error
	EndScene() error
	Present() error
	Flush()
	Finish()
	ReadPixel(x, y int32) [4]byte
	// ReadPixels reads r into out with rows tightly packed, bottom row first.
	ReadPixels(r gmath.Recti32, format, typ Enum, out []byte) error
	// Error returns and clears the oldest pending driver error.
	Error() error
}
