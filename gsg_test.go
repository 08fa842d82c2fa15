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
	"encoding/json"
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/native/record"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

func newGSG(t *testing.T, d native.Device, loader resource.Loader, configure ...func(*Config)) *GraphicsStateGuardian {
	t.Helper()
	c := DefaultConfig()
	for _, f := range configure {
		f(&c)
	}
	g := New(t.Name(), d, loader, c)
	t.Cleanup(g.Close)
	return g
}

func newTestGSG(t *testing.T, d native.Device, configure ...func(*Config)) *GraphicsStateGuardian {
	t.Helper()
	g := newGSG(t, d, nil, configure...)
	require.NoError(t, g.Reset())
	return g
}

// enableCalls returns what was passed to Enable for c, in order.
func enableCalls(d *record.Device, c native.Capability) []bool {
	ret := []bool{}
	for _, call := range d.Find("Enable") {
		if call.Args[0] == c {
			ret = append(ret, call.Args[1].(bool))
		}
	}
	return ret
}

func testTexture(name string, w, h int) *resource.Texture {
	return resource.NewTextureFromImage(name, image.NewNRGBA(image.Rect(0, 0, w, h)))
}

// textureState puts each texture on its own stage, sorted in argument order.
func textureState(textures ...*resource.Texture) *state.RenderState {
	entries := []state.TextureEntry{}
	for i, tex := range textures {
		stage := state.MakeTextureStage(state.TextureStage{Name: fmt.Sprintf("stage%d", i), Sort: int32(i)})
		entries = append(entries, state.TextureEntry{Stage: stage, Texture: tex})
	}
	return state.MakeState(state.MakeTexture(entries...))
}

func TestReset(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	require.True(t, g.IsFunctional())
	caps := g.Capabilities()
	assert.Equal(t, Version{Major: 2, Minor: 1}, caps.Version)
	assert.Equal(t, int32(4), caps.MaxTextureStages)
	assert.True(t, caps.SupportsMultitexture)
	assert.True(t, caps.SupportsBufferObjects)
	assert.True(t, caps.SupportsRescaleNormal)
	assert.True(t, caps.SupportsCompression(resource.CompressionDXT5))
	assert.False(t, caps.SupportsDisplayLists)
	assert.True(t, caps.HasExtension("GL_ARB_multisample"))
	assert.Equal(t, native.VariantCore, caps.EntryPoints[native.FeatureBufferObjects])
	assert.Equal(t, caps.EntryPoints, d.Bound)

	// 8 bit color channels, no dithering
	assert.Equal(t, []bool{false}, enableCalls(d, native.CapDither))
	assert.Equal(t, []bool{true}, enableCalls(d, native.CapMultisample))

	b, err := json.Marshal(&caps)
	require.NoError(t, err)
	assert.True(t, json.Valid(b), string(b))

	// the returned capabilities are a copy
	caps.Extensions[0] = "mutated"
	assert.NotEqual(t, "mutated", g.Capabilities().Extensions[0])
}

func TestResetClampsToConfig(t *testing.T) {
	d := record.New()
	d.Info.Limits.MaxTextureDimension = 8192
	g := newTestGSG(t, d, func(c *Config) {
		c.MaxTextureStages = 1
		c.MaxTextureDimension = 1024
		c.CompressedTextures = false
		c.DisplayLists = true
	})

	caps := g.Capabilities()
	assert.Equal(t, int32(1), caps.MaxTextureStages)
	assert.Equal(t, int32(1024), caps.MaxTextureDimension)
	assert.Equal(t, int32(256), caps.Max3DTextureDimension)
	assert.False(t, caps.SupportsCompressedTexture)
	assert.False(t, caps.SupportsCompression(resource.CompressionDXT1))
	assert.True(t, caps.SupportsCompression(resource.CompressionNone))
	assert.True(t, caps.SupportsDisplayLists)
}

func TestResetWithoutMultitexture(t *testing.T) {
	d := record.New().WithoutExtensions("GL_ARB_multitexture")
	d.Info.Version = "1.2.1"
	g := newTestGSG(t, d)

	caps := g.Capabilities()
	assert.False(t, caps.SupportsMultitexture)
	assert.False(t, caps.SupportsTextureCombine)
	assert.Equal(t, int32(1), caps.MaxTextureStages)
	assert.Equal(t, native.VariantNone, caps.EntryPoints[native.FeatureMultitexture])
}

func TestEntryPoints(t *testing.T) {
	t.Run("core", func(t *testing.T) {
		d := record.New()
		g := newTestGSG(t, d)
		assert.Equal(t, native.VariantCore, g.Capabilities().EntryPoints[native.FeatureGLSL])
	})
	t.Run("core missing", func(t *testing.T) {
		d := record.New()
		d.Missing["glGenBuffers"] = true
		g := newTestGSG(t, d)
		caps := g.Capabilities()
		assert.Equal(t, native.VariantARB, caps.EntryPoints[native.FeatureBufferObjects])
		assert.True(t, caps.SupportsBufferObjects)
	})
	t.Run("extension", func(t *testing.T) {
		d := record.New()
		d.Info.Version = "1.1.0"
		g := newTestGSG(t, d)
		caps := g.Capabilities()
		assert.Equal(t, native.VariantARB, caps.EntryPoints[native.FeatureMultitexture])
		assert.Equal(t, native.VariantEXT, caps.EntryPoints[native.FeatureBlendEquation])
		assert.Equal(t, native.VariantEXT, caps.EntryPoints[native.FeatureTwoSidedStencil])
		// no GL_ARB_shader_objects
		assert.Equal(t, native.VariantNone, caps.EntryPoints[native.FeatureGLSL])
		assert.False(t, caps.SupportsGLSL)
	})
	t.Run("advertised but missing", func(t *testing.T) {
		d := record.New()
		d.Info.Version = "1.1.0"
		d.Missing["glGenQueriesARB"] = true
		g := newTestGSG(t, d)
		caps := g.Capabilities()
		assert.Equal(t, native.VariantNone, caps.EntryPoints[native.FeatureOcclusionQuery])
		assert.False(t, caps.SupportsOcclusionQuery)
	})
	t.Run("neither", func(t *testing.T) {
		d := record.New().WithoutExtensions("GL_ARB_vertex_buffer_object")
		d.Info.Version = "1.4"
		g := newTestGSG(t, d)
		caps := g.Capabilities()
		assert.Equal(t, native.VariantNone, caps.EntryPoints[native.FeatureBufferObjects])
		assert.False(t, caps.SupportsBufferObjects)
	})
}

func TestParseVersion(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Version
	}{
		{"2.1.0 NVIDIA 535.1", Version{2, 1, 0}},
		{"1.4", Version{1, 4, 0}},
		{"  1.2.1  ", Version{1, 2, 1}},
		{"OpenGL ES 2.0 build 7", Version{2, 0, 0}},
		{"OpenGL ES-CM 1.1", Version{1, 1, 0}},
		{"3.3.0-build.4", Version{3, 3, 0}},
		{"4.6.0\tMesa", Version{4, 6, 0}},
	} {
		v, err := ParseVersion(tc.in)
		if assert.NoError(t, err, tc.in) {
			assert.Equal(t, tc.want, v, tc.in)
		}
	}

	for _, in := range []string{"", "garbage", "2", "a.1", "1.b", "-1.0"} {
		_, err := ParseVersion(in)
		assert.Error(t, err, in)
	}

	v := Version{Major: 1, Minor: 5}
	assert.True(t, v.AtLeast(1, 3))
	assert.True(t, v.AtLeast(1, 5))
	assert.False(t, v.AtLeast(1, 6))
	assert.False(t, v.AtLeast(2, 0))
	assert.True(t, v.AtLeast(0, 9))
	assert.Equal(t, "1.5.0", v.String())
}

func TestNonFunctional(t *testing.T) {
	d := record.New()
	d.Info.Version = "garbage"
	g := newGSG(t, d, nil)

	require.Error(t, g.Reset())
	assert.False(t, g.IsFunctional())

	d.ClearCalls()
	tex := testTexture("t", 4, 4)
	g.SetStateAndTransform(textureState(tex), state.IdentityTransform())
	g.SetProjection(state.IdentityTransform())
	assert.Nil(t, g.PrepareTexture(tex))
	assert.Nil(t, g.PrepareShader(resource.NewShader("s", "v", "f")))
	assert.Nil(t, g.BeginOcclusionQuery())
	g.Clear(ClearRequest{Color: true, Depth: true})

	ok, err := g.BeginFrame()
	assert.False(t, ok)
	assert.NoError(t, err)
	ok, err = g.BeginScene()
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, g.EndFrame())
	assert.Empty(t, d.Calls)

	// a later reset against a sane driver recovers
	d.Info = record.FullInfo()
	require.NoError(t, g.Reset())
	assert.True(t, g.IsFunctional())
}

func TestQueryInfoFailure(t *testing.T) {
	d := record.New()
	d.InfoErr = fmt.Errorf("no context")
	g := newGSG(t, d, nil)

	require.Error(t, g.Reset())
	assert.False(t, g.IsFunctional())
	assert.Equal(t, 0, d.Count("BindEntryPoints"))
}

func TestInvalidConfig(t *testing.T) {
	d := record.New()
	for _, f := range []func(*Config){
		func(c *Config) { c.MaxTextureStages = state.MaxTextureStages + 1 },
		func(c *Config) { c.MaxTextureDimension = 1000 },
		func(c *Config) { c.AsyncLoadWorkers = -1 },
		func(c *Config) { c.GraphicsMemoryLimit = -1 },
	} {
		c := DefaultConfig()
		f(&c)
		assert.Panics(t, func() { New(t.Name(), d, nil, c) })
	}
}

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig(strings.NewReader(`
max_texture_stages = 2
max_texture_dimension = 2048
strict = true
incomplete_render = false
graphics_memory_limit = 67108864
`))
	require.NoError(t, err)
	assert.Equal(t, int32(2), c.MaxTextureStages)
	assert.Equal(t, int32(2048), c.MaxTextureDimension)
	assert.Equal(t, int64(64<<20), c.GraphicsMemoryLimit)
	assert.True(t, c.Strict)
	assert.False(t, c.IncompleteRender)
	// untouched keys keep their defaults
	assert.True(t, c.VertexBuffers)
	assert.Equal(t, int32(2), c.AsyncLoadWorkers)

	b, err := json.Marshal(&c)
	require.NoError(t, err)
	assert.True(t, json.Valid(b), string(b))

	_, err = LoadConfig(strings.NewReader(`no_such_key = 1`))
	assert.Error(t, err)
	_, err = LoadConfig(strings.NewReader(`max_texture_dimension = 1000`))
	assert.Error(t, err)
	_, err = LoadConfig(strings.NewReader(`max_texture_stages = "two"`))
	assert.Error(t, err)
}
