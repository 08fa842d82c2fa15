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
	"github.com/chewxy/math32"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/state"
)

// Unset material terms take these and are then driven by the vertex color.
var defaultMaterialParams = native.MaterialParams{
	Ambient:  [4]float32{0.2, 0.2, 0.2, 1},
	Diffuse:  [4]float32{0.8, 0.8, 0.8, 1},
	Specular: [4]float32{0, 0, 0, 1},
	Emission: [4]float32{0, 0, 0, 1},
}

func (g *GraphicsStateGuardian) issueMaterial(target *state.RenderState) {
	m := target.Material().Material
	p := defaultMaterialParams
	ambient, diffuse := true, true
	lm := g.params.lightModel.v

	// Terms driven by the vertex color get the scale through the current
	// color, explicit terms are scaled here.
	scale := target.ColorScale().Scale
	scaled := func(c state.Vec4) [4]float32 {
		return [4]float32{c[0] * scale[0], c[1] * scale[1], c[2] * scale[2], c[3] * scale[3]}
	}

	g.scaleUsers.Clear(state.MaskOf(state.SlotMaterial))
	if m != nil {
		if m.HasAmbient() || m.HasDiffuse() || m.HasSpecular() {
			g.scaleUsers.Set(state.MaskOf(state.SlotMaterial))
		}
		if m.HasAmbient() {
			p.Ambient, ambient = scaled(m.Ambient), false
		}
		if m.HasDiffuse() {
			p.Diffuse, diffuse = scaled(m.Diffuse), false
		}
		if m.HasSpecular() {
			p.Specular = scaled(m.Specular)
		}
		if m.HasEmission() {
			p.Emission = m.Emission
		}
		p.Shininess = clamp(m.Shininess, 0, 128)
		p.TwoSided = m.TwoSided
		lm.localViewer, lm.twoSided = m.Local, m.TwoSided
	} else {
		lm.localViewer, lm.twoSided = false, false
	}

	g.device.Material(p)
	g.enable(native.CapColorMaterial, ambient || diffuse)
	if ambient || diffuse {
		g.device.ColorMaterial(ambient, diffuse)
	}
	g.setLightModel(lm)
}

func lightParams(l *state.Light) native.LightParams {
	return native.LightParams{
		Ambient:       [4]float32{0, 0, 0, 1},
		Diffuse:       l.Color,
		Specular:      l.Specular,
		Position:      l.HomogeneousPosition(),
		SpotDirection: l.Direction,
		SpotExponent:  l.Exponent,
		SpotCutoff:    l.SpotCutoff(),
		Attenuation:   l.Attenuation,
	}
}

/*
issueLight binds the non ambient lights to consecutive light indices under
the view transform, so positions given in world space end up in eye space.
Ambient lights are summed into the light model ambient.
*/
func (g *GraphicsStateGuardian) issueLight(target *state.RenderState) {
	la := target.Light()
	maxLights := int(g.caps.MaxLights)
	ambient := [4]float32{0, 0, 0, 1}
	n := 0

	g.enable(native.CapLighting, la.Enabled())

	directional := false
	for _, l := range la.Lights[:la.Num] {
		if l.Kind != state.LightAmbient {
			directional = true
			break
		}
	}

	if directional {
		g.withView(func() {
			for _, l := range la.Lights[:la.Num] {
				if l.Kind == state.LightAmbient {
					continue
				}
				if n >= maxLights {
					g.warnOnce("max lights", "%d lights requested, device supports %d", la.Num, maxLights)
					break
				}
				g.device.Light(n, lightParams(l))
				g.enableLight(n, true)
				n++
			}
		})
	}
	for i := n; i < maxLights; i++ {
		g.enableLight(i, false)
	}

	for _, l := range la.Lights[:la.Num] {
		if l.Kind == state.LightAmbient {
			for i := 0; i < 3; i++ {
				ambient[i] += l.Color[i]
			}
		}
	}
	lm := g.params.lightModel.v
	lm.ambient = ambient
	g.setLightModel(lm)
}

func (g *GraphicsStateGuardian) issueClipPlane(target *state.RenderState) {
	cp := target.ClipPlane()
	maxPlanes := int(g.caps.MaxClipPlanes)
	n := int(cp.Num)
	if n > maxPlanes {
		g.warnOnce("max clip planes", "%d clip planes requested, device supports %d", n, maxPlanes)
		n = maxPlanes
	}

	if n > 0 {
		g.withView(func() {
			for i, p := range cp.Planes[:n] {
				g.device.ClipPlane(i, [4]float64{float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])})
				g.enableClipPlane(i, true)
			}
		})
	}
	for i := n; i < maxPlanes; i++ {
		g.enableClipPlane(i, false)
	}
}

func (g *GraphicsStateGuardian) issueFog(target *state.RenderState) {
	f := target.Fog()
	g.enable(native.CapFog, f.Enabled)
	if !f.Enabled {
		return
	}

	density := f.Density
	if f.Mode != state.FogLinear && (math32.IsNaN(density) || math32.IsInf(density, 0) || density <= 0) {
		g.errorf("Invalid fog density: %g, using 1", density)
		density = 1
	}
	g.device.Fog(native.FogParams{
		Mode:    translate(g, g.device.FogMode, f.Mode, state.FogLinear),
		Color:   f.Color,
		Start:   f.Start,
		End:     f.End,
		Density: density,
	})
}
