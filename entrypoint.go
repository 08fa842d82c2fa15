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
)

type extensionEntryPoint struct {
	extension string
	name      string
	variant   native.Variant
}

type entryPoint struct {
	feature      native.Feature
	coreMajor    int
	coreMinor    int
	coreName     string
	alternatives []extensionEntryPoint
}

var entryPoints = [native.NumFeatures]entryPoint{
	{native.FeatureMultitexture, 1, 3, "glActiveTexture", []extensionEntryPoint{
		{"GL_ARB_multitexture", "glActiveTextureARB", native.VariantARB},
	}},
	{native.FeatureBufferObjects, 1, 5, "glGenBuffers", []extensionEntryPoint{
		{"GL_ARB_vertex_buffer_object", "glGenBuffersARB", native.VariantARB},
	}},
	{native.FeatureGenerateMipmap, 3, 0, "glGenerateMipmap", []extensionEntryPoint{
		{"GL_EXT_framebuffer_object", "glGenerateMipmapEXT", native.VariantEXT},
	}},
	{native.FeatureCompressedTexture, 1, 3, "glCompressedTexImage2D", []extensionEntryPoint{
		{"GL_ARB_texture_compression", "glCompressedTexImage2DARB", native.VariantARB},
	}},
	{native.FeatureBlendEquation, 1, 4, "glBlendEquation", []extensionEntryPoint{
		{"GL_EXT_blend_minmax", "glBlendEquationEXT", native.VariantEXT},
		{"GL_EXT_blend_subtract", "glBlendEquationEXT", native.VariantEXT},
	}},
	{native.FeatureBlendColor, 1, 4, "glBlendColor", []extensionEntryPoint{
		{"GL_EXT_blend_color", "glBlendColorEXT", native.VariantEXT},
	}},
	{native.FeatureTexture3D, 1, 2, "glTexImage3D", []extensionEntryPoint{
		{"GL_EXT_texture3D", "glTexImage3DEXT", native.VariantEXT},
	}},
	{native.FeatureDrawRangeElements, 1, 2, "glDrawRangeElements", []extensionEntryPoint{
		{"GL_EXT_draw_range_elements", "glDrawRangeElementsEXT", native.VariantEXT},
	}},
	{native.FeatureGLSL, 2, 0, "glCreateProgram", []extensionEntryPoint{
		{"GL_ARB_shader_objects", "glCreateProgramObjectARB", native.VariantARB},
	}},
	{native.FeatureTwoSidedStencil, 2, 0, "glStencilFuncSeparate", []extensionEntryPoint{
		{"GL_EXT_stencil_two_side", "glActiveStencilFaceEXT", native.VariantEXT},
	}},
	{native.FeatureOcclusionQuery, 1, 5, "glGenQueries", []extensionEntryPoint{
		{"GL_ARB_occlusion_query", "glGenQueriesARB", native.VariantARB},
	}},
}

/*
resolveEntryPoint picks the variant a feature's calls must use: core when the
driver version includes the feature and the core name resolves, else the
first advertised extension whose suffixed name resolves, else none and the
feature is unavailable.
*/
func (g *GraphicsStateGuardian) resolveEntryPoint(e *entryPoint) native.Variant {
	if g.caps.Version.AtLeast(e.coreMajor, e.coreMinor) {
		if g.device.HasEntryPoint(e.coreName) {
			return native.VariantCore
		}
		g.logger.WPrintf("Driver reports version %s but %s is missing", g.caps.Version, e.coreName)
	}
	for _, alt := range e.alternatives {
		if !g.caps.HasExtension(alt.extension) {
			continue
		}
		if g.device.HasEntryPoint(alt.name) {
			return alt.variant
		}
		g.logger.WPrintf("Driver advertises %s but %s is missing", alt.extension, alt.name)
	}
	return native.VariantNone
}

func (g *GraphicsStateGuardian) resolveEntryPoints() native.EntryPoints {
	ret := native.EntryPoints{}
	for i := range entryPoints {
		e := &entryPoints[i]
		ret[e.feature] = g.resolveEntryPoint(e)
		if ret[e.feature] == native.VariantNone {
			g.logger.WPrintf("%s unavailable", e.feature)
		} else {
			g.logger.VPrintf("%s: %s", e.feature, ret[e.feature])
		}
	}
	return ret
}
