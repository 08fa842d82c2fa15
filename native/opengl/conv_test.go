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
	"testing"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/stretchr/testify/assert"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// complete checks that every valid value up to last translates.
func complete[E enum](t *testing.T, f func(E) (native.Enum, bool), last E) {
	t.Helper()
	for e := E(0); e <= last; e++ {
		_, ok := f(e)
		assert.True(t, ok, "%v", e)
	}
	_, ok := f(last + 1)
	assert.False(t, ok, "%v", last+1)
}

func TestTranslatorsComplete(t *testing.T) {
	d := &Device{}
	complete(t, d.CompareFunc, state.CompareAlways)
	complete(t, d.BlendOperand, state.OperandOneMinusAlphaScale)
	complete(t, d.BlendMode, state.BlendMax)
	complete(t, d.StencilOperation, state.StencilDecrementWrap)
	complete(t, d.LogicOpKind, state.LogicOpSet)
	complete(t, d.FogMode, state.FogExponentialSquared)
	complete(t, d.RenderMode, state.RenderModePoint)
	complete(t, d.ShadeModelKind, state.ShadeFlat)
	complete(t, d.WrapMode, resource.WrapBorderColor)
	complete(t, d.FilterMode, resource.FilterLinearMipmapLinear)
	complete(t, d.TextureTarget, resource.TextureCubeMap)
	complete(t, d.ExternalFormat, resource.FormatBGR)
	complete(t, d.ComponentType, resource.ComponentU24S8)
	complete(t, d.PrimitiveKind, resource.PrimitivePoints)
	complete(t, d.IndexType, resource.IndexU32)
	complete(t, d.NumericType, resource.NumericPackedABGR)
	complete(t, d.UsageHint, resource.UsageStream)
}

func TestTranslatorsPartial(t *testing.T) {
	d := &Device{}

	e, ok := d.TextureStageMode(state.StageCombine)
	assert.True(t, ok)
	assert.Equal(t, native.Enum(gl.COMBINE), e)
	_, ok = d.TextureStageMode(state.StageModulateGlow)
	assert.False(t, ok)

	_, ok = d.CombineSource(state.SourceLastSavedResult)
	assert.False(t, ok)
	_, ok = d.CombineMode(state.CombineUndefined)
	assert.False(t, ok)
	_, ok = d.TexGenMode(state.TexGenPointSprite)
	assert.False(t, ok)

	world, _ := d.TexGenMode(state.TexGenWorldPosition)
	eye, _ := d.TexGenMode(state.TexGenEyePosition)
	assert.Equal(t, eye, world)

	e, ok = d.CubeFaceTarget(5)
	assert.True(t, ok)
	assert.Equal(t, native.Enum(gl.TEXTURE_CUBE_MAP_NEGATIVE_Z), e)
	_, ok = d.CubeFaceTarget(-1)
	assert.False(t, ok)
}

func TestInternalFormat(t *testing.T) {
	d := &Device{}
	for _, c := range []struct {
		format      resource.Format
		component   resource.ComponentType
		compression resource.Compression
		want        native.Enum
		ok          bool
	}{
		{resource.FormatRGBA, resource.ComponentU8, resource.CompressionNone, gl.RGBA8, true},
		{resource.FormatBGRA, resource.ComponentU16, resource.CompressionNone, gl.RGBA16, true},
		{resource.FormatRGB, resource.ComponentF32, resource.CompressionNone, glRGB32F, true},
		{resource.FormatRed, resource.ComponentU8, resource.CompressionNone, gl.RGB8, true},
		{resource.FormatAlpha, resource.ComponentF32, resource.CompressionNone, 0, false},
		{resource.FormatLuminanceAlpha, resource.ComponentU8, resource.CompressionNone, gl.LUMINANCE8_ALPHA8, true},
		{resource.FormatDepth, resource.ComponentU24S8, resource.CompressionNone, gl.DEPTH_COMPONENT24, true},
		{resource.FormatDepthStencil, resource.ComponentU24S8, resource.CompressionNone, glDepth24Stencil8EXT, true},
		{resource.FormatDepthStencil, resource.ComponentU8, resource.CompressionNone, 0, false},
		{resource.FormatRGBA, resource.ComponentU24S8, resource.CompressionNone, 0, false},
		{resource.FormatRGB, resource.ComponentU8, resource.CompressionDXT1, glCompressedRGBS3TCDXT1, true},
		{resource.FormatRGBA, resource.ComponentU8, resource.CompressionDXT1, glCompressedRGBAS3TCDXT1, true},
		{resource.FormatRGBA, resource.ComponentU8, resource.CompressionDXT5, glCompressedRGBAS3TCDXT5, true},
	} {
		got, ok := d.InternalFormat(c.format, c.component, c.compression)
		assert.Equal(t, c.ok, ok, "%v %v %v", c.format, c.component, c.compression)
		if c.ok {
			assert.Equal(t, c.want, got, "%v %v %v", c.format, c.component, c.compression)
		}
	}
}

func TestCapabilitiesMapped(t *testing.T) {
	for c := native.Capability(0); c < native.NumCapabilities; c++ {
		assert.NotZero(t, capabilities[c], "%s", c)
	}
}
