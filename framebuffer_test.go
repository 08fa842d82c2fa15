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
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/native/record"
)

func TestCopyTexture(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	full := gmath.Recti32{W: 64, H: 32}
	g.PrepareDisplayRegion(full, full)
	tex := emptyTexture("fb", 1, 1)
	d.ClearCalls()

	require.True(t, g.CopyTexture(tex, gmath.Recti32{X: 8, Y: 4, W: 16, H: 16}))
	copies := d.Find("CopyTexImage")
	require.Len(t, copies, 1)
	assert.Equal(t, gmath.Extent3i32{X: 16, Y: 16, Z: 1}, copies[0].Args[0].(native.TexImageDesc).Size)
	assert.Equal(t, []any{int32(8), int32(4)}, copies[0].Args[1:])

	// same size copies into the existing storage
	require.True(t, g.CopyTexture(tex, gmath.Recti32{W: 16, H: 16}))
	assert.Equal(t, 1, d.Count("CopyTexImage"))
	assert.Equal(t, 1, d.Count("CopyTexSubImage"))

	// the copy stands in for the missing RAM image
	tc := g.PrepareTexture(tex)
	assert.True(t, tc.IsLoaded())
	d.ClearCalls()
	assert.True(t, g.ApplyTexture(tc))
	assert.Zero(t, d.Count("TexImage"))

	require.True(t, g.CopyTexture(tex, gmath.Recti32{}))
	copies = d.Find("CopyTexImage")
	require.Len(t, copies, 1)
	assert.Equal(t, gmath.Extent3i32{X: 64, Y: 32, Z: 1}, copies[0].Args[0].(native.TexImageDesc).Size)
}

func TestCopyTextureFailure(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	tex := emptyTexture("fb", 1, 1)
	region := gmath.Recti32{W: 8, H: 8}

	assert.False(t, g.CopyTexture(tex, gmath.Recti32{}))
	assert.False(t, g.CopyTexture(tex, gmath.Recti32{W: -1, H: 4}))
	assert.Zero(t, d.Count("CopyTexImage"))

	d.FailNext("CopyTexImage", errors.New("out of memory"))
	assert.False(t, g.CopyTexture(tex, region))
	assert.False(t, g.PrepareTexture(tex).IsLoaded())

	// nothing was defined, the retry cannot reuse the storage
	require.True(t, g.CopyTexture(tex, region))
	assert.Equal(t, 2, d.Count("CopyTexImage"))
	assert.Zero(t, d.Count("CopyTexSubImage"))
}

func TestCopyTexturePowerOfTwo(t *testing.T) {
	d := record.New().WithoutExtensions("GL_ARB_texture_non_power_of_two")
	d.Info.Version = "1.5.0"
	g := newTestGSG(t, d)
	require.False(t, g.Capabilities().SupportsNPOT)

	require.True(t, g.CopyTexture(emptyTexture("fb", 1, 1), gmath.Recti32{W: 100, H: 60}))
	copies := d.Find("CopyTexImage")
	require.Len(t, copies, 1)
	assert.Equal(t, gmath.Extent3i32{X: 128, Y: 64, Z: 1}, copies[0].Args[0].(native.TexImageDesc).Size)
}

func TestCopyPixels(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	region := gmath.Recti32{X: 2, Y: 3, W: 2, H: 2}

	img, ok := g.CopyPixels(region)
	require.True(t, ok)
	reads := d.Find("ReadPixels")
	require.Len(t, reads, 1)
	assert.Equal(t, region, reads[0].Args[0])
	assert.Equal(t, 16, reads[0].Args[3])

	// top row of the image is the framebuffer's highest row
	assert.Equal(t, color.NRGBA{R: 2, G: 4, A: 0xFF}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 3, G: 4, A: 0xFF}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 2, G: 3, A: 0xFF}, img.NRGBAAt(0, 1))

	d.FailNext("ReadPixels", errors.New("lost"))
	img, ok = g.CopyPixels(region)
	assert.False(t, ok)
	assert.Nil(t, img)

	_, ok = g.CopyPixels(gmath.Recti32{})
	assert.False(t, ok)
	full := gmath.Recti32{W: 4, H: 4}
	g.PrepareDisplayRegion(full, full)
	img, ok = g.CopyPixels(gmath.Recti32{})
	require.True(t, ok)
	assert.Equal(t, 4, img.Bounds().Dx())
}
