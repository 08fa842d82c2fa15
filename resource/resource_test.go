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

package resource

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/gmath"
)

func TestTextureCounters(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	tex := NewTextureFromImage("red", img)

	snap := tex.Snapshot()
	require.True(t, snap.HasRAMImage())
	assert.Equal(t, gmath.Extent3i32{X: 4, Y: 2, Z: 1}, snap.Size)
	assert.Len(t, snap.Levels[0].Data, 4*2*4)
	assert.Equal(t, byte(255), snap.Levels[0].Data[(1*4+1)*4])

	image0, props0 := tex.ImageModified(), tex.PropertiesModified()
	tex.SetWrap(WrapClamp, WrapClamp, WrapClamp)
	assert.Equal(t, image0, tex.ImageModified())
	assert.Equal(t, props0+1, tex.PropertiesModified())

	tex.SetWrap(WrapClamp, WrapClamp, WrapClamp)
	assert.Equal(t, props0+1, tex.PropertiesModified())

	tex.Modify(func(levels []Image) { levels[0].Data[0] = 7 })
	assert.Equal(t, image0+1, tex.ImageModified())

	tex.Close()
	assert.Panics(t, func() { tex.Snapshot() })
}

func TestTextureSizes(t *testing.T) {
	base := gmath.Extent3i32{X: 256, Y: 64, Z: 1}
	assert.Equal(t, 9, NumLevels(base))
	assert.Equal(t, gmath.Extent3i32{X: 32, Y: 8, Z: 1}, LevelSize(base, 3))
	assert.Equal(t, gmath.Extent3i32{X: 1, Y: 1, Z: 1}, LevelSize(base, 8))

	desc := TextureDesc{Type: Texture2D, Format: FormatRGB, ComponentType: ComponentU8}
	assert.Equal(t, 256*64*3, ImageSize(&desc, base))
	desc.Compression = CompressionDXT1
	assert.Equal(t, 64*16*8, ImageSize(&desc, base))
	desc.Type = TextureCubeMap
	desc.Compression = CompressionNone
	assert.Equal(t, 2*2*3*6, ImageSize(&desc, gmath.Extent3i32{X: 2, Y: 2, Z: 1}))
}

func TestIndexedPrimitive(t *testing.T) {
	p := NewIndexedPrimitive(PrimitiveTriangles, []uint32{0, 1, 2, 2, 1, 3})
	snap := p.Snapshot()
	assert.Equal(t, IndexU8, snap.IndexType)
	assert.Equal(t, int32(6), snap.Count)
	assert.Equal(t, uint32(3), snap.MaxIndex)
	assert.Len(t, snap.Indices, 6)

	p.SetIndices([]uint32{0, 300, 70000})
	snap = p.Snapshot()
	assert.Equal(t, IndexU32, snap.IndexType)
	assert.Len(t, snap.Indices, 12)
	assert.Equal(t, uint64(2), snap.Modified)

	p.SetIndices([]uint32{10, 300})
	snap = p.Snapshot()
	assert.Equal(t, IndexU16, snap.IndexType)
	assert.Equal(t, uint32(10), snap.MinIndex)
}

func TestVertexDataValidate(t *testing.T) {
	format := ArrayFormat{
		Columns: []Column{
			{Name: "vertex", Contents: ContentsPoint, Components: 3, Type: NumericF32, Offset: 0},
			{Name: "color", Contents: ContentsColor, Components: 4, Type: NumericU8, Offset: 12},
		},
		Stride: 16,
	}
	v, err := NewVertexData("quad", format, UsageStatic, make([]byte, 64))
	require.NoError(t, err)
	assert.Equal(t, 4, v.NumRows())

	_, err = NewVertexData("bad", format, UsageStatic, make([]byte, 63))
	assert.Error(t, err)

	format.Columns[1].Offset = 14
	_, err = NewVertexData("overlap", format, UsageStatic, make([]byte, 64))
	assert.Error(t, err)

	format.Columns = format.Columns[1:]
	format.Columns[0].Offset = 0
	_, err = NewVertexData("novertex", format, UsageStatic, make([]byte, 64))
	assert.Error(t, err)
}

func TestImageLoader(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, img))

	loader := &ImageLoader{FS: fstest.MapFS{"tex/grass.png": {Data: buf.Bytes()}}}
	tex := NewTexture("grass", TextureDesc{Type: Texture2D, Filename: "tex/grass.png", Sampler: DefaultSampler()})
	require.False(t, tex.HasRAMImage())

	require.NoError(t, loader.Load(context.Background(), tex))
	snap := tex.Snapshot()
	require.True(t, snap.HasRAMImage())
	assert.Equal(t, int32(8), snap.Size.X)
	assert.Equal(t, byte(200), snap.Levels[0].Data[1])

	missing := NewTexture("missing", TextureDesc{Filename: "nope.png"})
	assert.Error(t, loader.Load(context.Background(), missing))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, loader.Load(ctx, tex), context.Canceled)
}
