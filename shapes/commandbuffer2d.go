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
	"encoding/binary"
	"unsafe"

	"github.com/chewxy/math32"
	"goarrg.com/gmath"
	"goarrg.com/gmath/color"

	"goarrg.com/rhi/gsg"
	"goarrg.com/rhi/gsg/internal/util"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

type cbState uint

const (
	cbIdle cbState = iota
	cbRecording
	cbReady
)

type vertex2d struct {
	X, Y  float32
	Color uint32
}

var vertex2dFormat = resource.ArrayFormat{
	Columns: []resource.Column{
		{Name: "vertex", Contents: resource.ContentsPoint, Components: 2, Type: resource.NumericF32, Offset: 0},
		{Name: "color", Contents: resource.ContentsColor, Components: 4, Type: resource.NumericPackedABGR, Offset: 8},
	},
	Stride: int32(unsafe.Sizeof(vertex2d{})),
}

/*
CommandBuffer2D records shapes between Begin and End and draws all of them
with a single triangle list on Execute. Shapes are drawn in recording order,
later shapes cover earlier ones.
*/
type CommandBuffer2D struct {
	noCopy      util.NoCopy
	cbState     cbState
	objectCount uint32
	vertices    []vertex2d
	data        *resource.VertexData
}

func NewCommandBuffer2D(name string) *CommandBuffer2D {
	data, err := resource.NewVertexData(name, vertex2dFormat, resource.UsageStream, nil)
	if err != nil {
		abort("Failed to create vertex data: %s", err)
	}
	cb := &CommandBuffer2D{data: data}
	cb.noCopy.Init()
	return cb
}

func (cb *CommandBuffer2D) Begin() {
	cb.noCopy.Check()
	if cb.cbState == cbRecording {
		abort("Begin() called while CommandBuffer2D is already recording")
	}
	cb.cbState = cbRecording
	cb.objectCount = 0
	cb.vertices = cb.vertices[:0]
}

func (cb *CommandBuffer2D) End() {
	cb.noCopy.Check()
	if cb.cbState != cbRecording {
		abort("End() called while CommandBuffer2D is not in a recording state")
	}
	cb.cbState = cbReady
	if len(cb.vertices) > 0 {
		b := make([]byte, len(cb.vertices)*int(vertex2dFormat.Stride))
		util.PutSlice(b, 0, cb.vertices)
		cb.data.SetData(b)
	}
	instance.logger.VPrintf("Recorded %d shapes as %d triangles", cb.objectCount, len(cb.vertices)/3)
}

// Destroy schedules the vertex buffer for release on g.
func (cb *CommandBuffer2D) Destroy(g *gsg.GraphicsStateGuardian) {
	cb.noCopy.Check()
	g.ReleaseVertexBuffer(g.PrepareVertexBuffer(cb.data))
	cb.vertices = nil
	cb.noCopy.Close()
}

// ObjectCount is the number of shapes recorded since the last Begin.
func (cb *CommandBuffer2D) ObjectCount() uint32 {
	return cb.objectCount
}

/*
Execute draws the recorded shapes with a pixel space orthographic projection
over viewport, the origin is the top left corner. The projection stays set on
return. It must be called inside a scene.
*/
func (cb *CommandBuffer2D) Execute(g *gsg.GraphicsStateGuardian, viewport gmath.Extent2i32) bool {
	cb.noCopy.Check()
	if cb.cbState != cbReady {
		abort("Execute() called before End()")
	}
	if len(cb.vertices) == 0 {
		return true
	}

	g.SetProjection(state.MakeTransform(state.OrthoMat4(0, float32(viewport.X), float32(viewport.Y), 0, -1, 1)))
	g.SetStateAndTransform(solid2DState(), state.IdentityTransform())

	if !g.BeginDrawPrimitives(nil, cb.data) {
		return false
	}
	defer g.EndDrawPrimitives()
	return g.DrawTriangles(resource.NewPrimitive(resource.PrimitiveTriangles, 0, int32(len(cb.vertices))))
}

func (cb *CommandBuffer2D) checkRecording() {
	cb.noCopy.Check()
	if cb.cbState != cbRecording {
		abort("Draw*() called while CommandBuffer2D is not in a recording state")
	}
}

// fan appends verts as a triangle fan around their first corner.
func (cb *CommandBuffer2D) fan(t Transform2D, verts []gmath.Vector2f32, c uint32) {
	m := t.modelMatrix(verts)
	for i := range verts {
		verts[i] = m.apply(verts[i])
	}
	for i := 1; i+1 < len(verts); i++ {
		for _, v := range [3]gmath.Vector2f32{verts[0], verts[i], verts[i+1]} {
			cb.vertices = append(cb.vertices, vertex2d{X: v.X, Y: v.Y, Color: c})
		}
	}
	cb.objectCount++
}

// star appends one triangle per corner from the center, verts alternate
// outer and inner corners.
func (cb *CommandBuffer2D) star(t Transform2D, verts []gmath.Vector2f32, c uint32) {
	m := t.modelMatrix(verts)
	center := m.apply(gmath.Vector2f32{})
	for i := range verts {
		verts[i] = m.apply(verts[i])
	}
	for i := range verts {
		next := verts[(i+1)%len(verts)]
		for _, v := range [3]gmath.Vector2f32{center, verts[i], next} {
			cb.vertices = append(cb.vertices, vertex2d{X: v.X, Y: v.Y, Color: c})
		}
	}
	cb.objectCount++
}

func packColor(c color.UNorm[uint8]) uint32 {
	return binary.NativeEndian.Uint32(util.Bytes(&c))
}

func (cb *CommandBuffer2D) DrawTriangle(t Transform2D, c color.UNorm[uint8]) {
	cb.checkRecording()
	cb.fan(t, []gmath.Vector2f32{
		{X: 0.0, Y: -0.5},
		{X: 0.5, Y: 0.5},
		{X: -0.5, Y: 0.5},
	}, packColor(c))
}

func (cb *CommandBuffer2D) DrawSquare(t Transform2D, c color.UNorm[uint8]) {
	cb.checkRecording()
	cb.fan(t, unitSquare(), packColor(c))
}

/*
DrawRegularNGon draws a regular polygon that fits within a circle with radius
0.5 before transformation.
*/
func (cb *CommandBuffer2D) DrawRegularNGon(sides uint32, t Transform2D, c color.UNorm[uint8]) {
	cb.checkRecording()
	if sides < 3 {
		abort("The smallest possible shape is 3 sides")
	}
	cb.fan(t, regularNGon(sides), packColor(c))
}

// DrawRegularNGonStar draws a star whose inner corners sit at thickness times
// the outer radius.
func (cb *CommandBuffer2D) DrawRegularNGonStar(sides uint32, thickness float32, t Transform2D, c color.UNorm[uint8]) {
	cb.checkRecording()
	if sides < 4 {
		abort("The smallest possible shape is 4 sides")
	}
	if !gmath.InRange(thickness, 0, 1) {
		abort("Thickness must be between 0 and 1")
	}
	cb.star(t, regularNGonStar(sides, thickness), packColor(c))
}

// DrawLine draws a quad of the given width centered on the segment a to b.
func (cb *CommandBuffer2D) DrawLine(a, b gmath.Point2f32, width float32, c color.UNorm[uint8]) {
	cb.checkRecording()
	d := gmath.Vector2f32{X: b.X - a.X, Y: b.Y - a.Y}
	l := math32.Sqrt(d.X*d.X + d.Y*d.Y)
	if l == 0 {
		return
	}
	n := gmath.Vector2f32{X: -d.Y / l * width * 0.5, Y: d.X / l * width * 0.5}
	p := packColor(c)
	corners := [4]gmath.Vector2f32{
		{X: a.X + n.X, Y: a.Y + n.Y},
		{X: b.X + n.X, Y: b.Y + n.Y},
		{X: b.X - n.X, Y: b.Y - n.Y},
		{X: a.X - n.X, Y: a.Y - n.Y},
	}
	for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
		cb.vertices = append(cb.vertices, vertex2d{X: corners[i].X, Y: corners[i].Y, Color: p})
	}
	cb.objectCount++
}
