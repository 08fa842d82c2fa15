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

package shapes

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/gmath"
	"goarrg.com/gmath/color"

	"goarrg.com/rhi/gsg"
	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/native/record"
	"goarrg.com/rhi/gsg/resource"
)

func bounds(verts []gmath.Vector2f32) (gmath.Vector2f32, gmath.Vector2f32) {
	lo, hi := verts[0], verts[0]
	for _, v := range verts[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

func place(t Transform2D, verts []gmath.Vector2f32) []gmath.Vector2f32 {
	m := t.modelMatrix(verts)
	for i := range verts {
		verts[i] = m.apply(verts[i])
	}
	return verts
}

func TestTransformPivot(t *testing.T) {
	size := gmath.Vector2f32{X: 10, Y: 20}
	pos := gmath.Point2f32{X: 100, Y: 50}

	for _, c := range []struct {
		pivot  Pivot
		lo, hi gmath.Vector2f32
	}{
		{PivotTopLeft, gmath.Vector2f32{X: 100, Y: 50}, gmath.Vector2f32{X: 110, Y: 70}},
		{PivotTopRight, gmath.Vector2f32{X: 90, Y: 50}, gmath.Vector2f32{X: 100, Y: 70}},
		{PivotBottomRight, gmath.Vector2f32{X: 90, Y: 30}, gmath.Vector2f32{X: 100, Y: 50}},
		{PivotBottomLeft, gmath.Vector2f32{X: 100, Y: 30}, gmath.Vector2f32{X: 110, Y: 50}},
		{PivotCenter, gmath.Vector2f32{X: 95, Y: 40}, gmath.Vector2f32{X: 105, Y: 60}},
	} {
		verts := place(Transform2D{Pos: pos, Size: size, TranslationPivot: c.pivot}, unitSquare())
		lo, hi := bounds(verts)
		assert.InDelta(t, c.lo.X, lo.X, 1e-4, "pivot %d", c.pivot)
		assert.InDelta(t, c.lo.Y, lo.Y, 1e-4, "pivot %d", c.pivot)
		assert.InDelta(t, c.hi.X, hi.X, 1e-4, "pivot %d", c.pivot)
		assert.InDelta(t, c.hi.Y, hi.Y, 1e-4, "pivot %d", c.pivot)
	}
}

func TestTransformRotated(t *testing.T) {
	// a quarter turn swaps the extents before the pivot is found
	verts := place(Transform2D{
		Rot:              math32.Pi / 2,
		Size:             gmath.Vector2f32{X: 10, Y: 20},
		TranslationPivot: PivotTopLeft,
	}, unitSquare())
	lo, hi := bounds(verts)
	assert.InDelta(t, 0, lo.X, 1e-4)
	assert.InDelta(t, 0, lo.Y, 1e-4)
	assert.InDelta(t, 20, hi.X, 1e-4)
	assert.InDelta(t, 10, hi.Y, 1e-4)
}

func TestRegularNGon(t *testing.T) {
	verts := regularNGon(4)
	require.Len(t, verts, 4)
	assert.InDelta(t, 0, verts[0].X, 1e-6)
	assert.InDelta(t, -0.5, verts[0].Y, 1e-6)
	assert.InDelta(t, 0.5, verts[1].X, 1e-6)

	star := regularNGonStar(5, 0.5)
	require.Len(t, star, 10)
	assert.InDelta(t, 0.25, star[0].X*star[0].X+star[0].Y*star[0].Y, 1e-6, "outer radius")
	assert.InDelta(t, 0.0625, star[1].X*star[1].X+star[1].Y*star[1].Y, 1e-6, "inner radius")
}

func newScene(t *testing.T, d *record.Device) *gsg.GraphicsStateGuardian {
	t.Helper()
	g := gsg.New(t.Name(), d, nil, gsg.DefaultConfig())
	t.Cleanup(g.Close)
	require.NoError(t, g.Reset())

	ok, err := g.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = g.BeginScene()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() {
		_ = g.EndScene()
		_ = g.EndFrame()
	})
	return g
}

func TestCommandBuffer2D(t *testing.T) {
	d := record.New()
	g := newScene(t, d)
	white := color.UNorm[uint8]{}
	tr := Transform2D{Pos: gmath.Point2f32{X: 32, Y: 32}, Size: gmath.Vector2f32{X: 16, Y: 16}, TranslationPivot: PivotCenter}

	cb := NewCommandBuffer2D("overlay")
	cb.Begin()
	cb.DrawSquare(tr, white)
	cb.DrawTriangle(tr, white)
	cb.DrawRegularNGon(6, tr, white)
	cb.DrawRegularNGonStar(5, 0.5, tr, white)
	cb.DrawLine(gmath.Point2f32{}, gmath.Point2f32{X: 10}, 2, white)
	cb.DrawLine(gmath.Point2f32{}, gmath.Point2f32{}, 2, white)
	cb.End()
	assert.Equal(t, uint32(5), cb.ObjectCount())

	// square 2, triangle 1, hexagon 4, star 10, line 2
	const vertices = (2 + 1 + 4 + 10 + 2) * 3

	d.ClearCalls()
	require.True(t, cb.Execute(g, gmath.Extent2i32{X: 64, Y: 64}))

	assert.Equal(t, []any{native.BufferVertex, vertices * 12, record.BaseUsageHint + native.Enum(resource.UsageStream)},
		d.Find("BufferData")[0].Args)
	assert.Equal(t, []any{native.ArrayVertex, int32(2), record.BaseNumericType + native.Enum(resource.NumericF32), int32(12), false, 0},
		d.Find("ArrayPointer")[0].Args)
	draws := d.Find("DrawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{record.BasePrimitiveKind + native.Enum(resource.PrimitiveTriangles), int32(0), int32(vertices)}, draws[0].Args)
	assert.NotContains(t, depthTestCalls(d), true)

	// replaying the same recording uploads nothing
	d.ClearCalls()
	require.True(t, cb.Execute(g, gmath.Extent2i32{X: 64, Y: 64}))
	assert.Zero(t, d.Count("BufferData"))
	assert.Equal(t, 1, d.Count("DrawArrays"))

	cb.Begin()
	cb.End()
	d.ClearCalls()
	assert.True(t, cb.Execute(g, gmath.Extent2i32{X: 64, Y: 64}))
	assert.Zero(t, d.Count("DrawArrays"))

	cb.Destroy(g)
}

func depthTestCalls(d *record.Device) []bool {
	ret := []bool{}
	for _, call := range d.Find("Enable") {
		if call.Args[0] == native.CapDepthTest {
			ret = append(ret, call.Args[1].(bool))
		}
	}
	return ret
}

func TestCommandBuffer2DMisuse(t *testing.T) {
	cb := NewCommandBuffer2D("misuse")
	white := color.UNorm[uint8]{}

	assert.Panics(t, func() { cb.DrawSquare(Transform2D{}, white) })
	assert.Panics(t, func() { cb.End() })

	cb.Begin()
	assert.Panics(t, func() { cb.DrawRegularNGon(2, Transform2D{}, white) })
	assert.Panics(t, func() { cb.DrawRegularNGonStar(5, 2, Transform2D{}, white) })
	assert.Panics(t, func() { cb.Begin() })
}
