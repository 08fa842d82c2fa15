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

// Light is an interned light source. Position and Direction are in world space.
type Light struct {
	Name     string
	Kind     LightKind
	Color    Vec4
	Specular Vec4
	Position Vec3
	// Direction is the light's facing for directional and spot lights.
	Direction Vec3
	// Attenuation holds constant, linear and quadratic terms.
	Attenuation Vec3
	Exponent    float32
	// Cutoff is the spot cone half angle in degrees.
	Cutoff float32
}

var lights internTable[Light]

func MakeLight(l Light) *Light {
	if l.Attenuation == (Vec3{}) {
		l.Attenuation = Vec3{1, 0, 0}
	}
	return lights.intern(l)
}

func (l *Light) String() string {
	return fmt.Sprintf("%s(%s)", l.Name, l.Kind)
}

// HomogeneousPosition returns the position as the fixed function pipeline
// expects it, w=0 for directional lights.
func (l *Light) HomogeneousPosition() Vec4 {
	if l.Kind == LightDirectional {
		return Vec4{-l.Direction[0], -l.Direction[1], -l.Direction[2], 0}
	}
	return Vec4{l.Position[0], l.Position[1], l.Position[2], 1}
}

// SpotCutoff returns the cone half angle clamped to [0, 90], or 180 for
// lights that are not spots.
func (l *Light) SpotCutoff() float32 {
	if l.Kind != LightSpot {
		return 180
	}
	return math32.Max(0, math32.Min(90, l.Cutoff))
}

// Material is an interned surface description. Zero-alpha colors mean the
// corresponding term is unset and comes from the vertex color.
type Material struct {
	Name      string
	Ambient   Vec4
	Diffuse   Vec4
	Specular  Vec4
	Emission  Vec4
	Shininess float32
	TwoSided  bool
	Local     bool
}

var materials internTable[Material]

func MakeMaterialValue(m Material) *Material {
	return materials.intern(m)
}

func (m *Material) String() string {
	return m.Name
}

func (m *Material) HasAmbient() bool  { return m.Ambient[3] != 0 }
func (m *Material) HasDiffuse() bool  { return m.Diffuse[3] != 0 }
func (m *Material) HasSpecular() bool { return m.Specular[3] != 0 }
func (m *Material) HasEmission() bool { return m.Emission[3] != 0 }
