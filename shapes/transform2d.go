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
	"github.com/chewxy/math32"
	"goarrg.com/gmath"
)

type Pivot uint32

const (
	PivotTopLeft Pivot = iota
	PivotTopRight
	PivotBottomRight
	PivotBottomLeft
	PivotCenter
)

// findPoint returns the pivot corner of the bounds of verts, which are
// already rotated and scaled.
func (p Pivot) findPoint(verts []gmath.Vector2f32) gmath.Vector2f32 {
	lo, hi := verts[0], verts[0]
	for _, v := range verts[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	switch p {
	case PivotTopLeft:
		return lo
	case PivotTopRight:
		return gmath.Vector2f32{X: hi.X, Y: lo.Y}
	case PivotBottomRight:
		return hi
	case PivotBottomLeft:
		return gmath.Vector2f32{X: lo.X, Y: hi.Y}
	case PivotCenter:
		return gmath.Vector2f32{}
	default:
		abort("Unknown Pivot: %d", p)
		return gmath.Vector2f32{}
	}
}

type TransformOrder uint32

const (
	// TransformTRS will create a model matrix by effectively doing
	// translation * rotation * scale
	TransformTRS TransformOrder = iota
	// TransformTSR will create a model matrix by effectively doing
	// translation * scale * rotation
	TransformTSR
)

type Transform2D struct {
	Pos            gmath.Point2f32
	Rot            float32
	Size           gmath.Vector2f32
	TransformOrder TransformOrder
	/*
	 TranslationPivot sets where in the object is Pos at.
	 Pivot locations are determined after rotating and scaling
	 the object, so top left always means the top left on the screen.
	*/
	TranslationPivot Pivot
}

// affine2D is a row-major 2x3 matrix.
type affine2D [2][3]float32

func (m *affine2D) apply(v gmath.Vector2f32) gmath.Vector2f32 {
	return gmath.Vector2f32{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2],
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2],
	}
}

// modelMatrix maps the unit shape verts to screen space.
func (t *Transform2D) modelMatrix(verts []gmath.Vector2f32) affine2D {
	var m0, m1 gmath.Vector2f32
	sin, cos := math32.Sincos(t.Rot)

	switch t.TransformOrder {
	case TransformTRS:
		m0 = gmath.Vector2f32{X: cos, Y: -sin}.Scale(t.Size)
		m1 = gmath.Vector2f32{X: sin, Y: cos}.Scale(t.Size)
	case TransformTSR:
		m0 = gmath.Vector2f32{X: cos, Y: -sin}.Scale(gmath.Vector2f32{X: t.Size.X, Y: t.Size.X})
		m1 = gmath.Vector2f32{X: sin, Y: cos}.Scale(gmath.Vector2f32{X: t.Size.Y, Y: t.Size.Y})
	default:
		abort("invalid TransformOrder: %d", t.TransformOrder)
	}

	p := t.Pos
	if t.TranslationPivot != PivotCenter {
		linear := make([]gmath.Vector2f32, len(verts))
		for i, v := range verts {
			linear[i] = gmath.Vector2f32{X: m0.Dot(v), Y: m1.Dot(v)}
		}
		p = t.Pos.Subtract(t.TranslationPivot.findPoint(linear))
	}

	return affine2D{
		{m0.X, m0.Y, p.X},
		{m1.X, m1.Y, p.Y},
	}
}

// regularNGon returns the corners of a regular polygon inside a circle of
// radius 0.5, the first corner points up.
func regularNGon(sides uint32) []gmath.Vector2f32 {
	verts := make([]gmath.Vector2f32, sides)
	step := 2 * math32.Pi / float32(sides)
	for i := range verts {
		s, c := math32.Sincos(float32(i) * step)
		verts[i] = gmath.Vector2f32{X: 0.5 * s, Y: -0.5 * c}
	}
	return verts
}

// regularNGonStar alternates outer corners at radius 0.5 with inner corners
// at 0.5*thickness.
func regularNGonStar(sides uint32, thickness float32) []gmath.Vector2f32 {
	verts := make([]gmath.Vector2f32, sides*2)
	step := math32.Pi / float32(sides)
	for i := range verts {
		r := float32(0.5)
		if i%2 == 1 {
			r *= thickness
		}
		s, c := math32.Sincos(float32(i) * step)
		verts[i] = gmath.Vector2f32{X: r * s, Y: -r * c}
	}
	return verts
}

func unitSquare() []gmath.Vector2f32 {
	return []gmath.Vector2f32{
		{X: -0.5, Y: -0.5},
		{X: 0.5, Y: -0.5},
		{X: 0.5, Y: 0.5},
		{X: -0.5, Y: 0.5},
	}
}
