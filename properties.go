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
	"bytes"
	"fmt"
	"slices"

	"goarrg.com/debug"
	"golang.org/x/exp/maps"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// Capabilities is what Reset learned about the device. Limits are already
// clamped by Config and by the engine's own array sizes.
type Capabilities struct {
	API                    native.API
	Vendor                 string
	Renderer               string
	VersionString          string
	Version                Version
	ShadingLanguageVersion string
	Extensions             []string
	EntryPoints            native.EntryPoints

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

	SupportsMultitexture      bool
	SupportsTextureCombine    bool
	SupportsTextureDot3       bool
	SupportsCompressedTexture bool
	CompressionModes          map[resource.Compression]bool
	SupportsNPOT              bool
	SupportsDepthTexture      bool
	SupportsDepthStencil      bool
	SupportsGenerateMipmap    bool
	// SupportsAutoMipmap means mipmaps can be regenerated by a texture
	// parameter rather than an explicit call.
	SupportsAutoMipmap        bool
	SupportsBufferObjects     bool
	SupportsRescaleNormal     bool
	SupportsMultisample       bool
	SupportsBlendEquation     bool
	SupportsBlendColor        bool
	SupportsStencilWrap       bool
	SupportsTwoSidedStencil   bool
	SupportsTexture3D         bool
	SupportsCubeMap           bool
	SupportsGLSL              bool
	SupportsDisplayLists      bool
	SupportsOcclusionQuery    bool
	SupportsBGR               bool
	SupportsDrawRangeElements bool
	SupportsBorderClamp       bool
	SupportsMirror            bool
	SupportsMirrorOnce        bool
	SupportsAnisotropy        bool
	SupportsPointSprite       bool
	SupportsLogicOp           bool

	extensions map[string]struct{}
}

func (c *Capabilities) HasExtension(name string) bool {
	_, ok := c.extensions[name]
	return ok
}

// SupportsCompression reports whether images compressed with mode can be
// uploaded as is.
func (c *Capabilities) SupportsCompression(mode resource.Compression) bool {
	if mode == resource.CompressionNone {
		return true
	}
	return c.SupportsCompressedTexture && c.CompressionModes[mode]
}

func (c *Capabilities) clone() Capabilities {
	ret := *c
	ret.Extensions = slices.Clone(c.Extensions)
	ret.CompressionModes = maps.Clone(c.CompressionModes)
	ret.extensions = maps.Clone(c.extensions)
	return ret
}

func (c *Capabilities) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	buff.WriteString(fmt.Sprintf("\"API\": %q,", c.API.String()))
	buff.WriteString(fmt.Sprintf("\"Vendor\": %q,", c.Vendor))
	buff.WriteString(fmt.Sprintf("\"Renderer\": %q,", c.Renderer))
	buff.WriteString(fmt.Sprintf("\"VersionString\": %q,", c.VersionString))
	buff.WriteString(fmt.Sprintf("\"Version\": %q,", c.Version.String()))
	buff.WriteString(fmt.Sprintf("\"ShadingLanguageVersion\": %q,", c.ShadingLanguageVersion))
	buff.WriteString(fmt.Sprintf("\"Extensions\": %s,", jsonString(c.Extensions)))

	{
		buff.WriteString("\"EntryPoints\": {")
		for f := native.Feature(0); f < native.NumFeatures; f++ {
			buff.WriteString(fmt.Sprintf("%q: %q,", f.String(), c.EntryPoints[f].String()))
		}
		buff.Truncate(buff.Len() - 1)
		buff.WriteString("},")
	}

	buff.WriteString(fmt.Sprintf("\"MaxTextureStages\": %d,", c.MaxTextureStages))
	buff.WriteString(fmt.Sprintf("\"MaxTextureDimension\": %d,", c.MaxTextureDimension))
	buff.WriteString(fmt.Sprintf("\"Max3DTextureDimension\": %d,", c.Max3DTextureDimension))
	buff.WriteString(fmt.Sprintf("\"MaxCubeMapDimension\": %d,", c.MaxCubeMapDimension))
	buff.WriteString(fmt.Sprintf("\"MaxLights\": %d,", c.MaxLights))
	buff.WriteString(fmt.Sprintf("\"MaxClipPlanes\": %d,", c.MaxClipPlanes))
	buff.WriteString(fmt.Sprintf("\"MaxVertices\": %d,", c.MaxVertices))
	buff.WriteString(fmt.Sprintf("\"MaxIndices\": %d,", c.MaxIndices))
	buff.WriteString(fmt.Sprintf("\"MaxAnisotropy\": %g,", c.MaxAnisotropy))
	buff.WriteString(fmt.Sprintf("\"RedBits\": %d,", c.RedBits))
	buff.WriteString(fmt.Sprintf("\"StencilBits\": %d,", c.StencilBits))
	buff.WriteString(fmt.Sprintf("\"Samples\": %d,", c.Samples))
	buff.WriteString(fmt.Sprintf("\"MaxModelviewStackDepth\": %d,", c.MaxModelviewStackDepth))
	buff.WriteString(fmt.Sprintf("\"MaxProjectionStackDepth\": %d,", c.MaxProjectionStackDepth))

	{
		buff.WriteString("\"Supports\": {")
		for _, s := range []struct {
			name string
			v    bool
		}{
			{"Multitexture", c.SupportsMultitexture},
			{"TextureCombine", c.SupportsTextureCombine},
			{"TextureDot3", c.SupportsTextureDot3},
			{"CompressedTexture", c.SupportsCompressedTexture},
			{"NPOT", c.SupportsNPOT},
			{"DepthTexture", c.SupportsDepthTexture},
			{"DepthStencil", c.SupportsDepthStencil},
			{"GenerateMipmap", c.SupportsGenerateMipmap},
			{"AutoMipmap", c.SupportsAutoMipmap},
			{"BufferObjects", c.SupportsBufferObjects},
			{"RescaleNormal", c.SupportsRescaleNormal},
			{"Multisample", c.SupportsMultisample},
			{"BlendEquation", c.SupportsBlendEquation},
			{"BlendColor", c.SupportsBlendColor},
			{"StencilWrap", c.SupportsStencilWrap},
			{"TwoSidedStencil", c.SupportsTwoSidedStencil},
			{"Texture3D", c.SupportsTexture3D},
			{"CubeMap", c.SupportsCubeMap},
			{"GLSL", c.SupportsGLSL},
			{"DisplayLists", c.SupportsDisplayLists},
			{"OcclusionQuery", c.SupportsOcclusionQuery},
			{"BGR", c.SupportsBGR},
			{"DrawRangeElements", c.SupportsDrawRangeElements},
			{"BorderClamp", c.SupportsBorderClamp},
			{"Mirror", c.SupportsMirror},
			{"MirrorOnce", c.SupportsMirrorOnce},
			{"Anisotropy", c.SupportsAnisotropy},
			{"PointSprite", c.SupportsPointSprite},
			{"LogicOp", c.SupportsLogicOp},
		} {
			buff.WriteString(fmt.Sprintf("%q: %t,", s.name, s.v))
		}
		buff.Truncate(buff.Len() - 1)
		buff.WriteString("},")
	}
	{
		buff.WriteString("\"CompressionModes\": {")
		keys := stringSortedKeys(c.CompressionModes)
		for _, k := range keys {
			buff.WriteString(fmt.Sprintf("%q: %t,", k.String(), c.CompressionModes[k]))
		}
		if len(keys) > 0 {
			buff.Truncate(buff.Len() - 1)
		}
		buff.WriteString("},")
	}

	buff.Truncate(buff.Len() - 1)
	buff.WriteString("}")
	return buff.Bytes(), nil
}

/*
Reset queries the device and rebuilds the capability table from scratch. It
also forgets the applied state so the next SetStateAndTransform issues
everything. If the driver's version cannot be determined the GSG becomes non
functional: Reset returns ErrorNotFunctional and every other method is a no-op
until a later Reset succeeds.
*/
func (g *GraphicsStateGuardian) Reset() error {
	g.noCopy.Check()
	g.functional = false
	g.caps = Capabilities{}
	g.resetMirror()
	g.frame = frameState{number: g.frame.number}
	g.region = displayRegion{}

	g.logger.IPrintf("Querying device")
	info, err := g.device.QueryInfo()
	if err != nil {
		g.logger.EPrintf("Failed to query device: %v", err)
		return debug.ErrorWrapf(ErrorDeviceFailure{}, "Failed to query device: %v", err)
	}

	version, err := ParseVersion(info.Version)
	if err != nil {
		g.logger.EPrintf("Unable to determine driver version from %q, GSG is non functional: %v", info.Version, err)
		return debug.ErrorWrapf(ErrorNotFunctional{}, "Unable to determine driver version from %q", info.Version)
	}

	c := &g.caps
	c.API = info.API
	c.Vendor = info.Vendor
	c.Renderer = info.Renderer
	c.VersionString = info.Version
	c.Version = version
	c.ShadingLanguageVersion = info.ShadingLanguageVersion
	c.extensions = make(map[string]struct{}, len(info.Extensions))
	for _, e := range info.Extensions {
		c.extensions[e] = struct{}{}
	}
	c.Extensions = maps.Keys(c.extensions)
	slices.Sort(c.Extensions)

	g.logger.IPrintf("%s %s %s", c.Vendor, c.Renderer, c.VersionString)

	c.EntryPoints = g.resolveEntryPoints()
	g.device.BindEntryPoints(c.EntryPoints)
	g.initFeatures(&info.Limits)
	g.initLimits(&info.Limits)

	g.functional = true
	g.logger.VPrintf("Capabilities: %s", prettyString(c))
	g.initDeviceState()
	g.logger.IPrintf("Reset Completed")
	return nil
}

func (g *GraphicsStateGuardian) initFeatures(limits *native.Limits) {
	c := &g.caps
	ver := func(major, minor int) bool { return c.Version.AtLeast(major, minor) }
	either := func(major, minor int, ext string) bool { return ver(major, minor) || c.HasExtension(ext) }
	resolved := func(f native.Feature) bool { return c.EntryPoints[f] != native.VariantNone }

	c.SupportsMultitexture = resolved(native.FeatureMultitexture)
	c.SupportsTextureCombine = c.SupportsMultitexture && either(1, 3, "GL_ARB_texture_env_combine")
	c.SupportsTextureDot3 = c.SupportsTextureCombine && either(1, 3, "GL_ARB_texture_env_dot3")

	c.SupportsCompressedTexture = resolved(native.FeatureCompressedTexture)
	if c.SupportsCompressedTexture && !g.config.CompressedTextures {
		g.logger.IPrintf("Compressed textures disabled by config")
		c.SupportsCompressedTexture = false
	}
	c.CompressionModes = map[resource.Compression]bool{}
	s3tc := c.SupportsCompressedTexture && c.HasExtension("GL_EXT_texture_compression_s3tc")
	for _, m := range []resource.Compression{resource.CompressionDXT1, resource.CompressionDXT3, resource.CompressionDXT5} {
		c.CompressionModes[m] = s3tc
	}

	c.SupportsNPOT = either(2, 0, "GL_ARB_texture_non_power_of_two")
	c.SupportsDepthTexture = either(1, 4, "GL_ARB_depth_texture")
	c.SupportsDepthStencil = c.SupportsDepthTexture && (ver(3, 0) || c.HasExtension("GL_EXT_packed_depth_stencil"))

	c.SupportsAutoMipmap = either(1, 4, "GL_SGIS_generate_mipmap")
	c.SupportsGenerateMipmap = c.SupportsAutoMipmap || resolved(native.FeatureGenerateMipmap)

	c.SupportsBufferObjects = resolved(native.FeatureBufferObjects)
	c.SupportsRescaleNormal = either(1, 2, "GL_EXT_rescale_normal")
	c.SupportsMultisample = either(1, 3, "GL_ARB_multisample") && limits.Samples > 0
	c.SupportsBlendEquation = resolved(native.FeatureBlendEquation)
	c.SupportsBlendColor = resolved(native.FeatureBlendColor)
	c.SupportsStencilWrap = either(1, 4, "GL_EXT_stencil_wrap")
	c.SupportsTwoSidedStencil = resolved(native.FeatureTwoSidedStencil)
	c.SupportsTexture3D = resolved(native.FeatureTexture3D)
	c.SupportsCubeMap = either(1, 3, "GL_ARB_texture_cube_map")
	c.SupportsGLSL = resolved(native.FeatureGLSL)
	c.SupportsDisplayLists = c.API == native.APIOpenGL && g.config.DisplayLists
	c.SupportsOcclusionQuery = resolved(native.FeatureOcclusionQuery)
	c.SupportsBGR = either(1, 2, "GL_EXT_bgra")
	c.SupportsDrawRangeElements = resolved(native.FeatureDrawRangeElements)
	c.SupportsBorderClamp = either(1, 3, "GL_ARB_texture_border_clamp")
	c.SupportsMirror = either(1, 4, "GL_ARB_texture_mirrored_repeat")
	c.SupportsMirrorOnce = c.HasExtension("GL_ATI_texture_mirror_once") || c.HasExtension("GL_EXT_texture_mirror_clamp")
	c.SupportsAnisotropy = c.HasExtension("GL_EXT_texture_filter_anisotropic") && limits.MaxAnisotropy > 1
	c.SupportsPointSprite = either(2, 0, "GL_ARB_point_sprite")
	c.SupportsLogicOp = c.API != native.APIDirect3D
}

func (g *GraphicsStateGuardian) initLimits(limits *native.Limits) {
	c := &g.caps
	positive := func(v int32) int32 { return max(1, v) }

	c.MaxTextureStages = clamp(positive(limits.MaxTextureStages), 1, state.MaxTextureStages)
	if !c.SupportsMultitexture {
		c.MaxTextureStages = 1
	}
	if g.config.MaxTextureStages > 0 && g.config.MaxTextureStages < c.MaxTextureStages {
		g.logger.IPrintf("Clamping MaxTextureStages from %d to %d", c.MaxTextureStages, g.config.MaxTextureStages)
		c.MaxTextureStages = g.config.MaxTextureStages
	}

	c.MaxTextureDimension = positive(limits.MaxTextureDimension)
	if g.config.MaxTextureDimension > 0 && g.config.MaxTextureDimension < c.MaxTextureDimension {
		g.logger.IPrintf("Clamping MaxTextureDimension from %d to %d", c.MaxTextureDimension, g.config.MaxTextureDimension)
		c.MaxTextureDimension = g.config.MaxTextureDimension
	}
	c.Max3DTextureDimension = min(c.MaxTextureDimension, positive(limits.Max3DTextureDimension))
	c.MaxCubeMapDimension = min(c.MaxTextureDimension, positive(limits.MaxCubeMapDimension))

	c.MaxLights = clamp(limits.MaxLights, 0, state.MaxLights)
	c.MaxClipPlanes = clamp(limits.MaxClipPlanes, 0, state.MaxClipPlanes)
	c.MaxVertices = limits.MaxVertices
	c.MaxIndices = limits.MaxIndices
	c.MaxAnisotropy = 1
	if c.SupportsAnisotropy {
		c.MaxAnisotropy = limits.MaxAnisotropy
	}
	c.RedBits = limits.RedBits
	c.StencilBits = limits.StencilBits
	c.Samples = limits.Samples
	c.MaxModelviewStackDepth = limits.MaxModelviewStackDepth
	c.MaxProjectionStackDepth = limits.MaxProjectionStackDepth
}

/*
initDeviceState brings the device to a known baseline: dithering only for
shallow framebuffers, the texture and fog hints, and normalization when the
config asks for it. Everything else is left unknown and issued by the first
state change.
*/
func (g *GraphicsStateGuardian) initDeviceState() {
	g.enable(native.CapDither, g.caps.RedBits > 0 && g.caps.RedBits < 8)
	if g.caps.RedBits > 0 && g.caps.RedBits < 8 {
		g.logger.VPrintf("Frame buffer depth = %d bits/channel, enabling dithering", g.caps.RedBits)
	}
	if g.config.CheapTextures {
		g.logger.IPrintf("Setting hint for fastest textures")
		g.device.Hint(native.HintPerspectiveCorrection, native.HintFastest)
	}
	g.device.Hint(native.HintFog, native.HintDontCare)
	if g.caps.SupportsMultisample {
		g.enable(native.CapMultisample, true)
	}
}
