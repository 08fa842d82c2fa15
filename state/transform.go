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

package state

import (
	"fmt"

	"github.com/chewxy/math32"
)

type Vec3 [3]float32

type Vec4 [4]float32

// Mat4 is a column-major 4x4 matrix, m[col*4+row].
type Mat4 [16]float32

func IdentityMat4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func TranslateMat4(x, y, z float32) Mat4 {
	m := IdentityMat4()
	m[12], m[13], m[14] = x, y, z
	return m
}

func ScaleMat4(x, y, z float32) Mat4 {
	m := IdentityMat4()
	m[0], m[5], m[10] = x, y, z
	return m
}

// OrthoMat4 maps the box to clip space the way glOrtho does.
func OrthoMat4(left, right, bottom, top, near, far float32) Mat4 {
	m := IdentityMat4()
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = -2 / (far - near)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[14] = -(far + near) / (far - near)
	return m
}

// RotateMat4 rotates by angle radians around the normalized axis.
func RotateMat4(angle float32, axis Vec3) Mat4 {
	l := math32.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if l == 0 {
		return IdentityMat4()
	}
	x, y, z := axis[0]/l, axis[1]/l, axis[2]/l
	s, c := math32.Sincos(angle)
	t := 1 - c
	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// Mul returns a*b, applying b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

func (a Mat4) IsIdentity() bool {
	return a == IdentityMat4()
}

// UniformScale reports the scale factor if the upper 3x3 scales all axes
// equally, within a small tolerance.
func (a Mat4) UniformScale() (float32, bool) {
	sx := math32.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
	sy := math32.Sqrt(a[4]*a[4] + a[5]*a[5] + a[6]*a[6])
	sz := math32.Sqrt(a[8]*a[8] + a[9]*a[9] + a[10]*a[10])
	const eps = 1e-4
	if math32.Abs(sx-sy) > eps || math32.Abs(sx-sz) > eps {
		return 0, false
	}
	return sx, true
}

func (a Mat4) Transform(v Vec4) Vec4 {
	var r Vec4
	for row := 0; row < 4; row++ {
		r[row] = a[row]*v[0] + a[4+row]*v[1] + a[8+row]*v[2] + a[12+row]*v[3]
	}
	return r
}

// TransformState is an interned matrix; pointer equality implies equal matrices.
type TransformState struct {
	mat Mat4
}

var (
	transforms        internTable[TransformState]
	identityTransform = MakeTransform(IdentityMat4())
)

func MakeTransform(m Mat4) *TransformState {
	return transforms.intern(TransformState{mat: m})
}

func IdentityTransform() *TransformState {
	return identityTransform
}

func (t *TransformState) Mat() Mat4 {
	return t.mat
}

func (t *TransformState) IsIdentity() bool {
	return t.mat.IsIdentity()
}

// Compose returns t followed by other, in the parent-child sense: other is
// expressed in t's space.
func (t *TransformState) Compose(other *TransformState) *TransformState {
	if other == nil || other.IsIdentity() {
		return t
	}
	if t.IsIdentity() {
		return other
	}
	return MakeTransform(t.mat.Mul(other.mat))
}

func (t *TransformState) Translate(x, y, z float32) *TransformState {
	return MakeTransform(t.mat.Mul(TranslateMat4(x, y, z)))
}

func (t *TransformState) Scale(x, y, z float32) *TransformState {
	return MakeTransform(t.mat.Mul(ScaleMat4(x, y, z)))
}

func (t *TransformState) Rotate(angle float32, axis Vec3) *TransformState {
	return MakeTransform(t.mat.Mul(RotateMat4(angle, axis)))
}

func (t *TransformState) String() string {
	if t.IsIdentity() {
		return "T:identity"
	}
	return fmt.Sprintf("T:%v", t.mat)
}
