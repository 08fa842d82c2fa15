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
	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// stageEnv is what was last issued to a unit's texture environment.
type stageEnv struct {
	stage  *state.TextureStage
	decal  bool
	color  state.Vec4
	format resource.Format
}

type textureUnits struct {
	active            int
	clientActive      int
	activeValid       bool
	clientActiveValid bool

	// numStages is how many units the last texture routine used.
	numStages int
	stages    [state.MaxTextureStages]*state.TextureStage
	textures  [state.MaxTextureStages]*TextureContext
	// texcoord maps a unit to an index into texcoordNames.
	texcoord      [state.MaxTextureStages]int
	texcoordNames []string

	env       [state.MaxTextureStages]cached[stageEnv]
	texGen    [state.MaxTextureStages]cached[state.TexGenMode]
	texMatrix [state.MaxTextureStages]bool
}

func (u *textureUnits) reset() {
	*u = textureUnits{numStages: state.MaxTextureStages}
}

func (g *GraphicsStateGuardian) selectUnit(i int) {
	if g.units.activeValid && g.units.active == i {
		return
	}
	if g.caps.SupportsMultitexture {
		g.device.ActiveTexture(i)
	}
	g.units.active, g.units.activeValid = i, true
}

func (g *GraphicsStateGuardian) selectClientUnit(i int) {
	if g.units.clientActiveValid && g.units.clientActive == i {
		return
	}
	if g.caps.SupportsMultitexture {
		g.device.ClientActiveTexture(i)
	}
	g.units.clientActive, g.units.clientActiveValid = i, true
}

var textureCapabilities = [...]native.Capability{
	resource.Texture1D:      native.CapTexture1D,
	resource.Texture2D:      native.CapTexture2D,
	resource.Texture3D:      native.CapTexture3D,
	resource.TextureCubeMap: native.CapTextureCubeMap,
}

// enableTextureTarget enables exactly one texture target on the active unit,
// or none when t is out of range.
func (g *GraphicsStateGuardian) enableTextureTarget(t resource.TextureType) {
	for i, c := range textureCapabilities {
		if g.hasTextureCapability(c) {
			g.enable(c, i == int(t))
		}
	}
}

func (g *GraphicsStateGuardian) hasTextureCapability(c native.Capability) bool {
	switch c {
	case native.CapTexture3D:
		return g.caps.SupportsTexture3D
	case native.CapTextureCubeMap:
		return g.caps.SupportsCubeMap
	}
	return true
}

func (g *GraphicsStateGuardian) disableUnit(unit int) {
	allOff := true
	for _, c := range textureCapabilities {
		if g.hasTextureCapability(c) && g.enables.unit[unit][c-native.CapTexture1D] != off {
			allOff = false
		}
	}
	if !allOff {
		g.selectUnit(unit)
		g.enableTextureTarget(resource.TextureType(len(textureCapabilities)))
	}
	g.units.stages[unit] = nil
	g.units.textures[unit] = nil
}

/*
issueTexture binds each active stage to the next free texture unit. Stages
whose texture cannot be uploaded are dropped and do not consume a unit.
*/
func (g *GraphicsStateGuardian) issueTexture(target *state.RenderState) {
	ta := target.Texture()
	n := int(ta.Num)
	maxStages := int(g.caps.MaxTextureStages)
	if n > maxStages {
		g.warnOnce("max texture stages", "%d texture stages requested, device supports %d", n, maxStages)
		n = maxStages
	}

	g.units.texcoordNames = g.units.texcoordNames[:0]
	g.scaleUsers.Clear(state.MaskOf(state.SlotTexture))
	unit := 0
	for _, e := range ta.Entries[:n] {
		tc := g.PrepareTexture(e.Texture)
		if tc == nil {
			continue
		}
		g.selectUnit(unit)
		if !g.ApplyTexture(tc) {
			g.errorf("Disabling stage %q, texture %q failed to upload", e.Stage.Name, e.Texture.Name())
			continue
		}
		g.enableTextureTarget(tc.desc.Type)
		g.issueTextureStage(unit, e.Stage, tc, target.ColorScale().Scale)
		if e.Stage.UsesColorScale() {
			g.scaleUsers.Set(state.MaskOf(state.SlotTexture))
		}

		g.units.stages[unit] = e.Stage
		g.units.textures[unit] = tc
		g.units.texcoord[unit] = g.texcoordIndex(e.Stage.TexcoordName)
		unit++
	}

	for i := unit; i < min(g.units.numStages, maxStages); i++ {
		g.disableUnit(i)
	}
	g.units.numStages = unit
}

func (g *GraphicsStateGuardian) texcoordIndex(name string) int {
	for i, n := range g.units.texcoordNames {
		if n == name {
			return i
		}
	}
	g.units.texcoordNames = append(g.units.texcoordNames, name)
	return len(g.units.texcoordNames) - 1
}

// issueTextureStage sets the texture environment of the active unit.
func (g *GraphicsStateGuardian) issueTextureStage(unit int, stage *state.TextureStage, tc *TextureContext, colorScale state.Vec4) {
	mode := stage.Mode
	color := stage.Color
	decal := false

	switch mode {
	case state.StageDecal:
		if tc.desc.Format.Components() < 3 {
			if g.caps.SupportsTextureCombine {
				decal = true
			} else {
				g.warnOnce("decal", "Decal on %s textures needs texture combine, using Modulate", tc.desc.Format)
				mode = state.StageModulate
			}
		}
	case state.StageCombine:
		if !g.caps.SupportsTextureCombine {
			g.warnOnce("combine", "Texture combine unsupported, using Modulate")
			mode = state.StageModulate
		} else if stage.UsesColorScale() {
			// one constant per unit, the color scale takes it
			if stage.UsesColor() {
				g.warnOnce("combine color scale", "Stage %q reads both its color and the color scale, using the color scale", stage.Name)
			}
			color = colorScale
		}
	case state.StageBlendColorScale:
		mode, color = state.StageBlend, colorScale
	case state.StageModulateGlow, state.StageModulateGloss, state.StageNormal:
		// only meaningful to generated shaders
		mode = state.StageModulate
	}

	env := stageEnv{stage: stage, decal: decal, color: color, format: tc.desc.Format}
	if !g.units.env[unit].update(env) {
		return
	}

	switch {
	case decal:
		g.device.TexEnvMode(translate(g, g.device.TextureStageMode, state.StageCombine, state.StageModulate))
		g.device.TexEnvCombine(g.combineParams(stage, decalCombine, decalAlphaCombine))
	case mode == state.StageCombine:
		g.device.TexEnvMode(translate(g, g.device.TextureStageMode, state.StageCombine, state.StageModulate))
		g.device.TexEnvCombine(g.combineParams(stage, stage.CombineRGB, stage.CombineAlpha))
	default:
		g.device.TexEnvMode(translate(g, g.device.TextureStageMode, mode, state.StageModulate))
	}
	if mode == state.StageBlend || stage.UsesColor() || stage.UsesColorScale() {
		g.device.TexEnvColor(color)
	}
}

// Decal of a one or two channel texture interpolates toward the texture by
// its alpha and keeps the incoming alpha.
var (
	decalCombine = state.CombineConfig{
		Mode:    state.CombineInterpolate,
		Source:  [3]state.CombineSource{state.SourceTexture, state.SourcePrevious, state.SourceTexture},
		Operand: [3]state.CombineOperand{state.OperandSrcColor, state.OperandSrcColor, state.OperandSrcAlpha},
	}
	decalAlphaCombine = state.CombineConfig{
		Mode:    state.CombineReplace,
		Source:  [3]state.CombineSource{state.SourcePrevious},
		Operand: [3]state.CombineOperand{state.OperandSrcAlpha},
	}
)

func (g *GraphicsStateGuardian) combineParams(stage *state.TextureStage, rgb, alpha state.CombineConfig) native.CombineParams {
	p := native.CombineParams{
		RGBMode:    translate(g, g.device.CombineMode, rgb.Mode, state.CombineModulate),
		AlphaMode:  translate(g, g.device.CombineMode, alpha.Mode, state.CombineModulate),
		RGBScale:   float32(stage.RGBScale),
		AlphaScale: float32(stage.AlphaScale),
	}
	for i := 0; i < 3; i++ {
		p.RGBSources[i] = g.combineSource(rgb.Source[i])
		p.RGBOperands[i] = translate(g, g.device.CombineOperand, rgb.Operand[i], state.OperandSrcColor)
		p.AlphaSources[i] = g.combineSource(alpha.Source[i])
		p.AlphaOperands[i] = translate(g, g.device.CombineOperand, alpha.Operand[i], state.OperandSrcAlpha)
	}
	return p
}

func (g *GraphicsStateGuardian) combineSource(s state.CombineSource) native.Enum {
	switch s {
	case state.SourceUndefined:
		s = state.SourcePrevious
	case state.SourceConstantColorScale:
		s = state.SourceConstant
	case state.SourceLastSavedResult:
		g.warnOnce("saved result", "Saved texture stage results unsupported, using Previous")
		s = state.SourcePrevious
	}
	return translate(g, g.device.CombineSource, s, state.SourcePrevious)
}

var texGenPlanes = [4][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}

/*
issueTexGen sets coordinate generation for every bound unit. World modes
specify their planes under the view transform so they generate world
coordinates. Reflection and normal modes have no world variant and generate
in eye space.
*/
func (g *GraphicsStateGuardian) issueTexGen(target *state.RenderState) {
	tg := target.TexGen()
	pointSprite := false

	for unit := 0; unit < min(state.MaxTextureStages, int(g.caps.MaxTextureStages)); unit++ {
		mode := state.TexGenOff
		if unit < g.units.numStages {
			mode = tg.Mode(g.units.stages[unit])
		}
		switch {
		case mode.NeedsCubeMap() && !g.caps.SupportsCubeMap:
			g.warnOnce("texgen cube map", "Tex gen %s needs cube maps, disabling", mode)
			mode = state.TexGenOff
		case mode == state.TexGenPointSprite && !g.caps.SupportsPointSprite:
			g.warnOnce("point sprite", "Point sprites unsupported, disabling tex gen")
			mode = state.TexGenOff
		}
		if mode == state.TexGenPointSprite {
			pointSprite = true
			mode = state.TexGenOff
		}

		cache := &g.units.texGen[unit]
		if mode == state.TexGenOff && cache.valid && cache.v == state.TexGenOff {
			continue
		}
		cache.update(mode)
		g.selectUnit(unit)
		g.issueTexGenMode(mode)
	}

	if g.caps.SupportsPointSprite {
		g.enable(native.CapPointSprite, pointSprite)
	}
}

func (g *GraphicsStateGuardian) issueTexGenMode(mode state.TexGenMode) {
	coords := 0
	switch mode {
	case state.TexGenOff:
	case state.TexGenEyeSphereMap:
		coords = 2
		g.texGen(coords, mode)
	case state.TexGenWorldNormal, state.TexGenEyeNormal, state.TexGenWorldCubeMap, state.TexGenEyeCubeMap:
		coords = 3
		g.texGen(coords, mode)
	case state.TexGenWorldPosition:
		coords = 4
		g.withView(func() { g.texGen(coords, mode) })
	case state.TexGenEyePosition:
		coords = 4
		g.withModelview(state.IdentityMat4(), func() { g.texGen(coords, mode) })
	default:
		g.errorf("Invalid tex gen mode: %s", mode)
	}

	for i, c := range [...]native.Capability{native.CapTexGenS, native.CapTexGenT, native.CapTexGenR, native.CapTexGenQ} {
		g.enable(c, i < coords)
	}
}

func (g *GraphicsStateGuardian) texGen(coords int, mode state.TexGenMode) {
	m := translate(g, g.device.TexGenMode, mode, state.TexGenEyePosition)
	for i := 0; i < coords; i++ {
		g.device.TexGen(native.TexCoord(i), m, texGenPlanes[i])
	}
}

// issueTexMatrix loads each bound unit's texture matrix, identity is only
// loaded over a unit that had something else.
func (g *GraphicsStateGuardian) issueTexMatrix(target *state.RenderState) {
	tm := target.TexMatrix()
	issued := false

	for unit := 0; unit < min(state.MaxTextureStages, int(g.caps.MaxTextureStages)); unit++ {
		t := state.IdentityTransform()
		if unit < g.units.numStages {
			t = tm.Transform(g.units.stages[unit])
		}
		identity := t.IsIdentity()
		if identity && !g.units.texMatrix[unit] {
			continue
		}
		g.selectUnit(unit)
		g.device.MatrixMode(native.MatrixTexture)
		g.device.LoadMatrix(t.Mat())
		g.units.texMatrix[unit] = !identity
		issued = true
	}
	if issued {
		g.device.MatrixMode(native.MatrixModelview)
	}
}
