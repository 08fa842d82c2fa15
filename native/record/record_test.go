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

package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

func TestTranslate(t *testing.T) {
	d := New()

	e, ok := d.CompareFunc(state.CompareLess)
	assert.True(t, ok)
	assert.Equal(t, BaseCompareFunc+native.Enum(state.CompareLess), e)

	e, ok = d.PrimitiveKind(resource.PrimitivePoints)
	assert.True(t, ok)
	assert.Equal(t, BasePrimitiveKind+native.Enum(resource.PrimitivePoints), e)

	_, ok = d.PrimitiveKind(resource.PrimitiveKind(0xFF))
	assert.False(t, ok)

	_, ok = d.CubeFaceTarget(6)
	assert.False(t, ok)

	a, ok := d.InternalFormat(resource.FormatRGBA, resource.ComponentU8, resource.CompressionNone)
	require.True(t, ok)
	b, ok := d.InternalFormat(resource.FormatRGBA, resource.ComponentU8, resource.CompressionDXT1)
	require.True(t, ok)
	assert.NotEqual(t, a, b)
}

func TestWithoutExtensions(t *testing.T) {
	d := New().WithoutExtensions("GL_ARB_multitexture", "GL_EXT_bgra")
	assert.NotContains(t, d.Info.Extensions, "GL_ARB_multitexture")
	assert.NotContains(t, d.Info.Extensions, "GL_EXT_bgra")
	assert.Contains(t, d.Info.Extensions, "GL_ARB_vertex_buffer_object")

	// FullInfo hands out a fresh slice every time
	assert.Contains(t, FullInfo().Extensions, "GL_ARB_multitexture")
}

func TestFailNext(t *testing.T) {
	d := New()
	d.FailNext("GenTexture", errors.New("out of handles"))

	_, err := d.GenTexture()
	require.Error(t, err)
	h, err := d.GenTexture()
	require.NoError(t, err)
	assert.NotZero(t, h)
	assert.True(t, d.Textures[h])

	d.DeleteTexture(h)
	assert.False(t, d.Textures[h])
	assert.Equal(t, []string{"GenTexture", "GenTexture", "DeleteTexture"}, d.Names())
}

func TestMatrixStack(t *testing.T) {
	d := New()
	m := state.TranslateMat4(1, 2, 3)

	d.MatrixMode(native.MatrixProjection)
	d.LoadMatrix(m)
	d.PushMatrix()
	d.LoadMatrix(state.IdentityMat4())
	assert.Equal(t, 1, d.StackDepth(native.MatrixProjection))
	assert.Zero(t, d.StackDepth(native.MatrixModelview))
	assert.True(t, d.Matrix(native.MatrixProjection).IsIdentity())

	d.PopMatrix()
	assert.Equal(t, m, d.Matrix(native.MatrixProjection))
	assert.Panics(t, d.PopMatrix)
}

func TestCalls(t *testing.T) {
	d := New()
	d.Enable(native.CapBlend, true)
	d.DepthMask(false)
	d.Enable(native.CapBlend, false)

	assert.Equal(t, 2, d.Count("Enable"))
	assert.Equal(t, 1, d.Index("DepthMask"))
	assert.Equal(t, -1, d.Index("Clear"))
	assert.Equal(t, []any{native.CapBlend, false}, d.Find("Enable")[1].Args)
	assert.Equal(t, "DepthMask(false)", d.Calls[1].String())

	d.ClearCalls()
	assert.Empty(t, d.Calls)
}

func TestLosable(t *testing.T) {
	l := NewLosable()
	l.Levels = []native.CooperativeLevel{native.CooperativeLostExclusive}
	assert.Equal(t, native.CooperativeLostExclusive, l.TestCooperativeLevel())
	assert.Equal(t, native.CooperativeOK, l.TestCooperativeLevel())

	l.RestoreErr = errors.New("busy")
	require.Error(t, l.RestoreSurfaces())
	assert.Zero(t, l.Restored)
	l.RestoreErr = nil
	require.NoError(t, l.RestoreSurfaces())
	assert.Equal(t, 1, l.Restored)
}

func TestReadPixels(t *testing.T) {
	d := New()
	out := make([]byte, 8)
	require.NoError(t, d.ReadPixels(gmath.Recti32{X: 5, Y: 7, W: 2, H: 1}, 0, 0, out))
	assert.Equal(t, []byte{5, 7, 0, 0xFF, 6, 7, 0, 0xFF}, out)

	// a short buffer is filled as far as it goes
	short := make([]byte, 6)
	require.NoError(t, d.ReadPixels(gmath.Recti32{W: 2, H: 1}, 0, 0, short))
	assert.Equal(t, []byte{0, 0, 0, 0xFF, 0, 0}, short)
}
