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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/native/record"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

func beginScene(t *testing.T, g *GraphicsStateGuardian) {
	t.Helper()
	beginFrame(t, g)
	ok, err := g.BeginScene()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() {
		if g.frame.inScene {
			_ = g.EndScene()
		}
	})
}

func triangleData(t *testing.T, usage resource.UsageHint) *resource.VertexData {
	t.Helper()
	vd, err := resource.NewVertexData("triangle", resource.ArrayFormat{
		Columns: []resource.Column{{Name: "vertex", Contents: resource.ContentsPoint, Components: 3, Type: resource.NumericF32}},
		Stride:  12,
	}, usage, make([]byte, 36))
	require.NoError(t, err)
	return vd
}

func TestDrawOutsideBatch(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	vd := triangleData(t, resource.UsageStatic)
	p := resource.NewPrimitive(resource.PrimitiveTriangles, 0, 3)

	assert.False(t, g.BeginDrawPrimitives(nil, vd), "not in a scene")
	assert.False(t, g.DrawTriangles(p))

	beginScene(t, g)
	d.ClearCalls()
	assert.False(t, g.DrawTriangles(p))
	assert.False(t, g.BeginDrawPrimitives(nil, nil))
	assert.Zero(t, d.Count("DrawArrays"))
}

func TestDrawArrays(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	beginScene(t, g)

	vd := triangleData(t, resource.UsageStatic)
	p := resource.NewPrimitive(resource.PrimitiveTriangles, 0, 3)

	d.ClearCalls()
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	assert.False(t, g.DrawLines(p), "kind mismatch")
	assert.True(t, g.DrawTriangles(p))
	assert.True(t, g.DrawTriangles(resource.NewPrimitive(resource.PrimitiveTriangles, 0, 0)))
	g.EndDrawPrimitives()

	require.Len(t, d.Find("GenBuffer"), 1)
	handle := d.Find("GenBuffer")[0].Args[0]
	assert.Equal(t, []any{native.BufferVertex, handle}, d.Find("BindBuffer")[0].Args)
	assert.Equal(t, []any{native.BufferVertex, 36, record.BaseUsageHint + native.Enum(resource.UsageStatic)},
		d.Find("BufferData")[0].Args)
	assert.Equal(t, []any{native.ArrayVertex, int32(3), record.BaseNumericType + native.Enum(resource.NumericF32), int32(12), false, 0},
		d.Find("ArrayPointer")[0].Args)
	draws := d.Find("DrawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{record.BasePrimitiveKind + native.Enum(resource.PrimitiveTriangles), int32(0), int32(3)}, draws[0].Args)

	// an unchanged buffer is neither bound nor uploaded again
	d.ClearCalls()
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	g.EndDrawPrimitives()
	assert.Zero(t, d.Count("GenBuffer"))
	assert.Zero(t, d.Count("BindBuffer"))
	assert.Zero(t, d.Count("BufferData"))
	assert.Zero(t, d.Count("BufferSubData"))

	d.ClearCalls()
	vd.SetData(make([]byte, 36))
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	g.EndDrawPrimitives()
	assert.Equal(t, []any{native.BufferVertex, 0, 36}, d.Find("BufferSubData")[0].Args)
	assert.Zero(t, d.Count("BufferData"))

	d.ClearCalls()
	vd.SetData(make([]byte, 72))
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	g.EndDrawPrimitives()
	assert.Equal(t, 1, d.Count("BufferData"))
	assert.Zero(t, d.Count("BufferSubData"))
}

func TestDrawIndexed(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	beginScene(t, g)

	vd := triangleData(t, resource.UsageStatic)
	p := resource.NewIndexedPrimitive(resource.PrimitiveTriangles, []uint32{2, 1, 0})

	d.ClearCalls()
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	require.True(t, g.DrawTriangles(p))
	g.EndDrawPrimitives()

	assert.Equal(t, 2, d.Count("GenBuffer"))
	upload := d.Find("BufferData")
	require.Len(t, upload, 2)
	assert.Equal(t, []any{native.BufferIndex, 3, record.BaseUsageHint + native.Enum(resource.UsageStatic)}, upload[1].Args)
	draws := d.Find("DrawRangeElements")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{
		record.BasePrimitiveKind + native.Enum(resource.PrimitiveTriangles), uint32(0), uint32(2), int32(3),
		record.BaseIndexType + native.Enum(resource.IndexU8), false, 0,
	}, draws[0].Args)

	// rewritten indices mark the buffer dynamic
	d.ClearCalls()
	p.SetIndices([]uint32{0, 1, 2, 2, 1, 3})
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	require.True(t, g.DrawTriangles(p))
	g.EndDrawPrimitives()
	upload = d.Find("BufferData")
	require.Len(t, upload, 1)
	assert.Equal(t, []any{native.BufferIndex, 6, record.BaseUsageHint + native.Enum(resource.UsageDynamic)}, upload[0].Args)
}

func TestDrawElementsFallback(t *testing.T) {
	d := record.New().WithoutExtensions("GL_EXT_draw_range_elements")
	d.Info.Version = "1.1.0"
	g := newTestGSG(t, d)
	require.False(t, g.Capabilities().SupportsDrawRangeElements)
	beginScene(t, g)

	d.ClearCalls()
	require.True(t, g.BeginDrawPrimitives(nil, triangleData(t, resource.UsageStatic)))
	require.True(t, g.DrawTriangles(resource.NewIndexedPrimitive(resource.PrimitiveTriangles, []uint32{0, 1, 2})))
	g.EndDrawPrimitives()
	assert.Zero(t, d.Count("DrawRangeElements"))
	require.Len(t, d.Find("DrawElements"), 1)
	assert.Equal(t, []any{
		record.BasePrimitiveKind + native.Enum(resource.PrimitiveTriangles), int32(3),
		record.BaseIndexType + native.Enum(resource.IndexU8), false, 0,
	}, d.Find("DrawElements")[0].Args)
}

func TestDrawClientArrays(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d, func(c *Config) { c.VertexBuffers = false })
	beginScene(t, g)

	vd := triangleData(t, resource.UsageStatic)
	assert.Nil(t, g.PrepareVertexBuffer(vd))

	d.ClearCalls()
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	require.True(t, g.DrawTriangles(resource.NewIndexedPrimitive(resource.PrimitiveTriangles, []uint32{0, 1, 2})))
	g.EndDrawPrimitives()

	assert.Zero(t, d.Count("GenBuffer"))
	assert.Zero(t, d.Count("BufferData"))
	assert.Equal(t, true, d.Find("ArrayPointer")[0].Args[4], "arrays point into client memory")
	draws := d.Find("DrawRangeElements")
	require.Len(t, draws, 1)
	assert.Equal(t, true, draws[0].Args[5])
}

func TestDrawVertexLimit(t *testing.T) {
	d := record.New()
	d.Info.Limits.MaxVertices = 2
	g := newTestGSG(t, d)
	beginScene(t, g)

	// too large for a buffer, drawn from client memory
	vd := triangleData(t, resource.UsageStatic)
	assert.Nil(t, g.PrepareVertexBuffer(vd))
	d.ClearCalls()
	require.True(t, g.BeginDrawPrimitives(nil, vd))
	g.EndDrawPrimitives()
	assert.Zero(t, d.Count("GenBuffer"))
	assert.Equal(t, true, d.Find("ArrayPointer")[0].Args[4])
}

func TestDrawAlreadyTransformed(t *testing.T) {
	for _, stacked := range []bool{true, false} {
		name := "Reload"
		if stacked {
			name = "Stacked"
		}
		t.Run(name, func(t *testing.T) {
			d := record.New()
			if !stacked {
				d.Info.Limits.MaxProjectionStackDepth = 1
			}
			g := newTestGSG(t, d)
			beginScene(t, g)

			projection := state.MakeTransform(state.ScaleMat4(2, 2, 1))
			modelview := state.IdentityTransform().Translate(1, 2, 3)
			g.SetProjection(projection)
			g.SetStateAndTransform(state.MakeState(), modelview)

			vd := triangleData(t, resource.UsageStatic)
			vd.SetAlreadyTransformed(true)

			d.ClearCalls()
			require.True(t, g.BeginDrawPrimitives(nil, vd))
			assert.True(t, d.Matrix(native.MatrixProjection).IsIdentity())
			assert.True(t, d.Matrix(native.MatrixModelview).IsIdentity())
			g.EndDrawPrimitives()

			if stacked {
				assert.Equal(t, 2, d.Count("PushMatrix"))
				assert.Equal(t, 2, d.Count("PopMatrix"))
			} else {
				assert.Zero(t, d.Count("PushMatrix"))
				assert.Zero(t, d.Count("PopMatrix"))
			}
			assert.Zero(t, d.StackDepth(native.MatrixProjection))
			assert.Zero(t, d.StackDepth(native.MatrixModelview))
			assert.Equal(t, projection.Mat(), d.Matrix(native.MatrixProjection))
			assert.Equal(t, modelview.Mat(), d.Matrix(native.MatrixModelview))
		})
	}
}

func TestDisplayList(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d, func(c *Config) { c.DisplayLists = true })
	require.True(t, g.Capabilities().SupportsDisplayLists)
	beginScene(t, g)

	vd := triangleData(t, resource.UsageStatic)
	p := resource.NewPrimitive(resource.PrimitiveTriangles, 0, 3)
	geom := resource.NewGeom("geom", vd, p)

	draw := func() {
		t.Helper()
		require.True(t, g.BeginDrawPrimitives(geom, nil))
		require.True(t, g.DrawTriangles(p))
		g.EndDrawPrimitives()
	}

	d.ClearCalls()
	draw()
	assert.Equal(t, 1, d.Count("GenList"))
	assert.Equal(t, 1, d.Count("DrawArrays"))
	assert.Less(t, d.Index("NewList"), d.Index("DrawArrays"))
	assert.Less(t, d.Index("DrawArrays"), d.Index("EndList"))
	list := d.Find("GenList")[0].Args[0]

	gc := g.PrepareGeom(geom)
	require.NotNil(t, gc)
	assert.True(t, gc.HasDisplayList())

	d.ClearCalls()
	draw()
	assert.Equal(t, []any{list}, d.Find("CallList")[0].Args)
	assert.Zero(t, d.Count("DrawArrays"))
	assert.Zero(t, d.Count("NewList"))
	assert.Zero(t, d.Count("EndList"))

	// new vertices recompile into the same list
	d.ClearCalls()
	vd.SetData(make([]byte, 36))
	draw()
	assert.Zero(t, d.Count("GenList"))
	assert.Zero(t, d.Count("CallList"))
	assert.Equal(t, []any{list}, d.Find("NewList")[0].Args)
	assert.Equal(t, 1, d.Count("DrawArrays"))

	require.NoError(t, g.EndScene())
	require.NoError(t, g.EndFrame())
	g.ReleaseGeom(gc)
	d.ClearCalls()
	beginFrame(t, g)
	assert.Equal(t, []any{list}, d.Find("DeleteList")[0].Args)
	require.NoError(t, g.EndFrame())
}

func TestDisplayListFollowsArraySetup(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d, func(c *Config) { c.DisplayLists = true })
	beginScene(t, g)

	vd, err := resource.NewVertexData("colored", resource.ArrayFormat{
		Columns: []resource.Column{
			{Name: "vertex", Contents: resource.ContentsPoint, Components: 3, Type: resource.NumericF32},
			{Name: "color", Contents: resource.ContentsColor, Components: 4, Type: resource.NumericPackedABGR, Offset: 12},
			{Name: "texcoord", Contents: resource.ContentsTexcoord, Components: 2, Type: resource.NumericF32, Offset: 16},
		},
		Stride: 24,
	}, resource.UsageStatic, make([]byte, 72))
	require.NoError(t, err)
	p := resource.NewPrimitive(resource.PrimitiveTriangles, 0, 3)
	geom := resource.NewGeom("geom", vd, p)

	draw := func(s *state.RenderState) {
		t.Helper()
		d.ClearCalls()
		g.SetStateAndTransform(s, nil)
		require.True(t, g.BeginDrawPrimitives(geom, nil))
		require.True(t, g.DrawTriangles(p))
		g.EndDrawPrimitives()
	}
	vertexColor := state.MakeState(state.MakeVertexColor())

	draw(vertexColor)
	assert.Equal(t, 1, d.Count("NewList"))
	draw(vertexColor)
	assert.Equal(t, 1, d.Count("CallList"))

	// the compiled list carries the color array, a flat color recompiles
	draw(state.MakeState(state.MakeFlatColor(state.Vec4{1, 0, 0, 1})))
	assert.Zero(t, d.Count("CallList"))
	assert.Equal(t, 1, d.Count("NewList"))
	assert.Equal(t, 1, d.Count("DrawArrays"))

	draw(vertexColor)
	assert.Zero(t, d.Count("CallList"))
	assert.Equal(t, 1, d.Count("NewList"))

	// binding the texcoord column also recompiles
	draw(textureState(testTexture("t", 4, 4)).With(state.MakeVertexColor()))
	assert.Zero(t, d.Count("CallList"))
	assert.Equal(t, 1, d.Count("NewList"))
	assert.Zero(t, d.Count("GenList"), "the list handle is reused")
}

func TestDisplayListSkipped(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d, func(c *Config) { c.DisplayLists = true })
	beginScene(t, g)

	dynamic := triangleData(t, resource.UsageDynamic)
	p := resource.NewPrimitive(resource.PrimitiveTriangles, 0, 3)
	require.True(t, g.BeginDrawPrimitives(resource.NewGeom("dynamic", dynamic, p), nil))
	require.True(t, g.DrawTriangles(p))
	g.EndDrawPrimitives()
	assert.Zero(t, d.Count("GenList"))

	// scaled vertex colors are copied on the CPU every draw
	vd, err := resource.NewVertexData("colored", resource.ArrayFormat{
		Columns: []resource.Column{
			{Name: "vertex", Contents: resource.ContentsPoint, Components: 3, Type: resource.NumericF32},
			{Name: "color", Contents: resource.ContentsColor, Components: 4, Type: resource.NumericU8, Offset: 12},
		},
		Stride: 16,
	}, resource.UsageStatic, make([]byte, 48))
	require.NoError(t, err)
	g.SetStateAndTransform(state.MakeState(state.MakeVertexColor(), state.MakeColorScale(state.Vec4{0.5, 0.5, 0.5, 1})), nil)

	d.ClearCalls()
	require.True(t, g.BeginDrawPrimitives(resource.NewGeom("colored", vd, p), nil))
	require.True(t, g.DrawTriangles(p))
	g.EndDrawPrimitives()
	assert.Zero(t, d.Count("GenList"))
	assert.Equal(t, 1, d.Count("DrawArrays"))

	var colors []any
	for _, c := range d.Find("ArrayPointer") {
		if c.Args[0] == native.ArrayColor {
			colors = c.Args
		}
	}
	require.NotNil(t, colors)
	assert.Equal(t, []any{native.ArrayColor, int32(4), record.BaseNumericType + native.Enum(resource.NumericF32), int32(16), true, 0}, colors)
}

func TestDisplayListUnsupported(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	require.False(t, g.Capabilities().SupportsDisplayLists)
	beginScene(t, g)

	vd := triangleData(t, resource.UsageStatic)
	p := resource.NewPrimitive(resource.PrimitiveTriangles, 0, 3)
	for i := 0; i < 2; i++ {
		require.True(t, g.BeginDrawPrimitives(resource.NewGeom("geom", vd, p), nil))
		require.True(t, g.DrawTriangles(p))
		g.EndDrawPrimitives()
	}
	assert.Zero(t, d.Count("GenList"))
	assert.Equal(t, 2, d.Count("DrawArrays"))
}

func TestBufferRelease(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	vd := triangleData(t, resource.UsageStatic)
	vbc := g.PrepareVertexBuffer(vd)
	require.NotNil(t, vbc)
	require.True(t, g.ApplyVertexBuffer(vbc))
	assert.Equal(t, 36, vbc.Size())
	handle := vbc.Handle()

	g.ReleaseVertexBuffer(vbc)
	g.ReleaseVertexBuffer(vbc)
	assert.Zero(t, d.Count("DeleteBuffer"))
	beginFrame(t, g)
	assert.Equal(t, []any{handle}, d.Find("DeleteBuffer")[0].Args)
	assert.Equal(t, 1, d.Count("DeleteBuffer"))
	require.NoError(t, g.EndFrame())

	d.ClearCalls()
	fresh := g.PrepareVertexBuffer(vd)
	assert.NotSame(t, vbc, fresh)
	require.True(t, g.ApplyVertexBuffer(fresh))
	assert.Equal(t, 1, d.Count("BufferData"))
}

func TestBufferUploadFailure(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	vd := triangleData(t, resource.UsageStatic)
	vbc := g.PrepareVertexBuffer(vd)
	require.NotNil(t, vbc)
	d.FailNext("BufferData", errors.New("out of memory"))
	assert.False(t, g.ApplyVertexBuffer(vbc))
	assert.Zero(t, vbc.Size())

	// retried on the next use
	assert.True(t, g.ApplyVertexBuffer(vbc))
	assert.Equal(t, 2, d.Count("BufferData"))
}

func TestShader(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	require.True(t, g.Capabilities().SupportsGLSL)

	s := resource.NewShader("s", "void main() {}", "void main() {}")
	d.ClearCalls()
	g.SetStateAndTransform(state.MakeState(state.MakeShader(s)), nil)
	require.Len(t, d.Find("CreateProgram"), 1)
	handle := d.Find("CreateProgram")[0].Args[0]
	assert.Equal(t, []any{handle}, d.Find("UseProgram")[0].Args)

	sc := g.PrepareShader(s)
	require.NotNil(t, sc)
	assert.Equal(t, handle, sc.Handle())

	d.ClearCalls()
	g.SetStateAndTransform(state.MakeState(), nil)
	assert.Equal(t, []any{native.Handle(0)}, d.Find("UseProgram")[0].Args)

	// new sources relink
	d.ClearCalls()
	s.SetSources("void main() { }", "void main() { }")
	g.SetStateAndTransform(state.MakeState(state.MakeShader(s)), nil)
	assert.Equal(t, []any{handle}, d.Find("DeleteProgram")[0].Args)
	require.Len(t, d.Find("CreateProgram"), 1)
	assert.NotEqual(t, handle, sc.Handle())

	handle = sc.Handle()
	g.ReleaseShader(sc)
	d.ClearCalls()
	beginFrame(t, g)
	assert.Equal(t, []any{handle}, d.Find("DeleteProgram")[0].Args)
	require.NoError(t, g.EndFrame())
}

func TestShaderLinkFailure(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	s := resource.NewShader("broken", "void main() {", "")
	d.FailNext("CreateProgram", errors.New("syntax error"))
	d.ClearCalls()
	g.SetStateAndTransform(state.MakeState(state.MakeShader(s)), nil)
	assert.Equal(t, 1, d.Count("CreateProgram"))
	require.Len(t, d.Find("UseProgram"), 1)
	assert.Equal(t, []any{native.Handle(0)}, d.Find("UseProgram")[0].Args, "fixed function stays current")

	// not retried until the sources change
	assert.Nil(t, g.PrepareShader(s))
	assert.Equal(t, 1, d.Count("CreateProgram"))

	s.SetSources("void main() {}", "void main() {}")
	sc := g.PrepareShader(s)
	require.NotNil(t, sc)
	assert.NotZero(t, sc.Handle())
	assert.Equal(t, 2, d.Count("CreateProgram"))
}

func TestShaderUnsupported(t *testing.T) {
	d := record.New()
	d.Info.Version = "1.1.0"
	g := newTestGSG(t, d)
	require.False(t, g.Capabilities().SupportsGLSL)

	s := resource.NewShader("s", "void main() {}", "void main() {}")
	d.ClearCalls()
	g.SetStateAndTransform(state.MakeState(state.MakeShader(s)), nil)
	assert.Nil(t, g.PrepareShader(s))
	assert.Zero(t, d.Count("CreateProgram"))
	assert.Zero(t, d.Count("UseProgram"))
}
