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
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/native/record"
	"goarrg.com/rhi/gsg/resource"
)

// fillLoader hands every texture an opaque image of its declared size.
type fillLoader struct {
	loads atomic.Int32
}

func (l *fillLoader) Load(ctx context.Context, t *resource.Texture) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	desc := t.Desc()
	data := make([]byte, resource.ImageSize(&desc, desc.Size))
	for i := range data {
		data[i] = 0xFF
	}
	t.SetRAMImage([]resource.Image{{Size: desc.Size, Data: data}})
	l.loads.Add(1)
	return nil
}

func emptyTexture(name string, w, h int32) *resource.Texture {
	return resource.NewTexture(name, resource.TextureDesc{
		Type: resource.Texture2D, Size: gmath.Extent3i32{X: w, Y: h, Z: 1},
		Format: resource.FormatRGBA, ComponentType: resource.ComponentU8,
		Sampler: resource.DefaultSampler(),
	})
}

func texImageDescs(d *record.Device, name string) []native.TexImageDesc {
	ret := []native.TexImageDesc{}
	for _, c := range d.Find(name) {
		ret = append(ret, c.Args[0].(native.TexImageDesc))
	}
	return ret
}

func TestTextureUpdate(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	tex := testTexture("t", 256, 256)
	tc := g.PrepareTexture(tex)
	require.NotNil(t, tc)
	assert.Same(t, tc, g.PrepareTexture(tex))
	assert.Equal(t, 1, d.Count("GenTexture"))
	handle := tc.Handle()

	require.True(t, g.ApplyTexture(tc))
	require.Len(t, texImageDescs(d, "TexImage"), 1)
	assert.Equal(t, gmath.Extent3i32{X: 256, Y: 256, Z: 1}, texImageDescs(d, "TexImage")[0].Size)
	assert.True(t, tc.IsLoaded())
	assert.Equal(t, int64(256*256*4), g.prepared.textureMemory)

	// nothing changed
	d.ClearCalls()
	require.True(t, g.ApplyTexture(tc))
	assert.Equal(t, []string{"BindTexture"}, d.Names())
	assert.Equal(t, handle, tc.Handle())

	d.ClearCalls()
	tex.SetWrap(resource.WrapClamp, resource.WrapClamp, resource.WrapClamp)
	require.True(t, g.ApplyTexture(tc))
	assert.Equal(t, []string{"BindTexture", "TexParameters"}, d.Names())

	d.ClearCalls()
	tex.Modify(func(levels []resource.Image) { levels[0].Data[0] = 0x7F })
	require.True(t, g.ApplyTexture(tc))
	assert.Equal(t, []string{"BindTexture", "TexParameters", "TexSubImage"}, d.Names())
	assert.Equal(t, handle, tc.Handle())

	// the mip chain changes the layout, so the object is recreated
	d.ClearCalls()
	tex.SetFilter(resource.FilterLinearMipmapLinear, resource.FilterLinear)
	require.True(t, g.ApplyTexture(tc))
	assert.Equal(t, []string{
		"BindTexture", "DeleteTexture", "GenTexture", "BindTexture", "TexParameters", "TexImage", "GenerateMipmap",
	}, d.Names())
	assert.NotEqual(t, handle, tc.Handle())
	assert.Equal(t, int64(256*256*4+256*256*4/3), g.prepared.textureMemory)
}

func TestTextureCPUMipmaps(t *testing.T) {
	d := record.New().WithoutExtensions("GL_SGIS_generate_mipmap", "GL_EXT_framebuffer_object")
	d.Info.Version = "1.1.0"
	g := newTestGSG(t, d)
	require.False(t, g.Capabilities().SupportsGenerateMipmap)

	tex := testTexture("t", 4, 4)
	tex.SetFilter(resource.FilterLinearMipmapNearest, resource.FilterLinear)
	tc := g.PrepareTexture(tex)
	require.True(t, g.ApplyTexture(tc))

	descs := texImageDescs(d, "TexImage")
	require.Len(t, descs, 3)
	for i, want := range []int32{4, 2, 1} {
		assert.Equal(t, int32(i), descs[i].Level)
		assert.Equal(t, gmath.Extent3i32{X: want, Y: want, Z: 1}, descs[i].Size)
	}
	assert.Zero(t, d.Count("GenerateMipmap"))
}

func TestTextureScaledToFit(t *testing.T) {
	d := record.New()
	d.Info.Limits.MaxTextureDimension = 2
	g := newTestGSG(t, d)

	tc := g.PrepareTexture(testTexture("t", 8, 4))
	require.True(t, g.ApplyTexture(tc))
	descs := texImageDescs(d, "TexImage")
	require.Len(t, descs, 1)
	assert.Equal(t, gmath.Extent3i32{X: 2, Y: 1, Z: 1}, descs[0].Size)
}

func TestTextureWithoutImage(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	tc := g.PrepareTexture(emptyTexture("t", 4, 4))
	require.NotNil(t, tc)
	assert.False(t, g.ApplyTexture(tc))
	assert.Zero(t, d.Count("TexImage"))
}

func TestTextureCompressionUnsupported(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d, func(c *Config) { c.CompressedTextures = false })

	tex := emptyTexture("t", 4, 4)
	tex.SetRAMImageFormat([]resource.Image{{Size: gmath.Extent3i32{X: 4, Y: 4, Z: 1}, Data: make([]byte, 8)}},
		resource.FormatRGBA, resource.ComponentU8, resource.CompressionDXT1)
	tc := g.PrepareTexture(tex)
	assert.False(t, g.ApplyTexture(tc))
	assert.Zero(t, d.Count("CompressedTexImage"))

	full := record.New()
	g = newTestGSG(t, full)
	tc = g.PrepareTexture(tex)
	assert.True(t, g.ApplyTexture(tc))
	assert.Equal(t, 1, full.Count("CompressedTexImage"))
}

func TestTexturePlaceholder(t *testing.T) {
	d := record.New()
	loader := &fillLoader{}
	g := newGSG(t, d, loader)
	require.NoError(t, g.Reset())

	tex := emptyTexture("async", 4, 4)
	tc := g.PrepareTexture(tex)
	require.True(t, g.ApplyTexture(tc))
	assert.True(t, tc.IsPlaceholder())
	assert.False(t, tc.IsLoaded())
	descs := texImageDescs(d, "TexImage")
	require.Len(t, descs, 1)
	assert.Equal(t, gmath.Extent3i32{X: 1, Y: 1, Z: 1}, descs[0].Size)

	require.Eventually(t, func() bool { return tex.HasRAMImage() && !g.loader.Pending(tex) },
		5*time.Second, time.Millisecond)
	assert.Equal(t, int32(1), loader.loads.Load())

	d.ClearCalls()
	require.True(t, g.ApplyTexture(tc))
	assert.False(t, tc.IsPlaceholder())
	assert.True(t, tc.IsLoaded())
	assert.Equal(t, 1, d.Count("DeleteTexture"))
	descs = texImageDescs(d, "TexImage")
	require.Len(t, descs, 1)
	assert.Equal(t, gmath.Extent3i32{X: 4, Y: 4, Z: 1}, descs[0].Size)
}

func TestTextureForcedLoad(t *testing.T) {
	d := record.New()
	loader := &fillLoader{}
	g := newGSG(t, d, loader, func(c *Config) { c.IncompleteRender = false })
	require.NoError(t, g.Reset())

	tex := emptyTexture("sync", 4, 4)
	tc := g.PrepareTexture(tex)
	require.True(t, g.ApplyTexture(tc))
	assert.True(t, tc.IsLoaded())
	assert.False(t, tc.IsPlaceholder())
	assert.Equal(t, int32(1), loader.loads.Load())
	descs := texImageDescs(d, "TexImage")
	require.Len(t, descs, 1)
	assert.Equal(t, gmath.Extent3i32{X: 4, Y: 4, Z: 1}, descs[0].Size)
}

func TestTextureEviction(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d, func(c *Config) { c.GraphicsMemoryLimit = 128 })

	textures := []*resource.Texture{testTexture("t0", 4, 4), testTexture("t1", 4, 4), testTexture("t2", 4, 4)}
	for _, tex := range textures {
		g.EnqueueTexture(tex)
	}
	assert.Zero(t, d.Count("GenTexture"))

	ok, err := g.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, d.Count("TexImage"))

	first := g.prepared.textures[textures[0]]
	require.NotNil(t, first)
	deleted := d.Find("DeleteTexture")
	require.Len(t, deleted, 1)
	assert.Equal(t, []any{native.Handle(1)}, deleted[0].Args)
	assert.Zero(t, first.Handle())
	assert.False(t, first.IsLoaded())
	assert.Equal(t, int64(128), g.prepared.textureMemory)
	assert.Equal(t, 2, g.prepared.textureLRU.Len())

	// an evicted texture uploads again on its next use
	d.ClearCalls()
	require.True(t, g.ApplyTexture(first))
	assert.Equal(t, 1, d.Count("GenTexture"))
	assert.Equal(t, 1, d.Count("TexImage"))
	require.NoError(t, g.EndFrame())
}
