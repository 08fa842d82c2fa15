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

/*
Package opengl implements native.Device over a fixed function OpenGL 2.1
context through go-gl. The context must be current on the calling goroutine
for every call, including New.
*/
package opengl

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"goarrg.com/debug"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/state"
)

var logger = debug.NewLogger("gsg", "opengl")

// ProcAddressFunc resolves a GL entry point by name, glfw.GetProcAddress for
// example. It returns nil for a missing entry point.
type ProcAddressFunc func(name string) unsafe.Pointer

// Surface is what Present swaps.
type Surface interface {
	SwapBuffers()
}

type Device struct {
	procAddress ProcAddressFunc
	surface     Surface
	entryPoints native.EntryPoints
}

var _ native.Device = (*Device)(nil)

// New loads the GL entry points of the current context. It fails when the
// context does not provide every OpenGL 2.1 entry point.
func New(procAddress ProcAddressFunc, surface Surface) (*Device, error) {
	if err := gl.InitWithProcAddrFunc(procAddress); err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to load OpenGL entry points")
	}
	// RAM images and read backs are tightly packed
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	return &Device{procAddress: procAddress, surface: surface}, nil
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}

func glBool(b bool) int32 {
	if b {
		return gl.TRUE
	}
	return gl.FALSE
}

func (d *Device) getString(name uint32) string {
	s := gl.GetString(name)
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func getInteger(name uint32) int32 {
	var v int32
	gl.GetIntegerv(name, &v)
	return v
}

func (d *Device) QueryInfo() (native.DriverInfo, error) {
	info := native.DriverInfo{
		API:      native.APIOpenGL,
		Vendor:   d.getString(gl.VENDOR),
		Renderer: d.getString(gl.RENDERER),
		Version:  d.getString(gl.VERSION),
	}
	if info.Version == "" {
		return info, debug.Errorf("glGetString(GL_VERSION) failed: %v", d.Error())
	}
	info.ShadingLanguageVersion = d.getString(gl.SHADING_LANGUAGE_VERSION)
	info.Extensions = strings.Fields(d.getString(gl.EXTENSIONS))

	l := &info.Limits
	l.MaxTextureStages = getInteger(gl.MAX_TEXTURE_UNITS)
	l.MaxTextureDimension = getInteger(gl.MAX_TEXTURE_SIZE)
	l.Max3DTextureDimension = getInteger(gl.MAX_3D_TEXTURE_SIZE)
	l.MaxCubeMapDimension = getInteger(gl.MAX_CUBE_MAP_TEXTURE_SIZE)
	l.MaxLights = getInteger(gl.MAX_LIGHTS)
	l.MaxClipPlanes = getInteger(gl.MAX_CLIP_PLANES)
	l.MaxVertices = getInteger(gl.MAX_ELEMENTS_VERTICES)
	l.MaxIndices = getInteger(gl.MAX_ELEMENTS_INDICES)
	l.RedBits = getInteger(gl.RED_BITS)
	l.StencilBits = getInteger(gl.STENCIL_BITS)
	l.Samples = getInteger(gl.SAMPLES)
	l.MaxModelviewStackDepth = getInteger(gl.MAX_MODELVIEW_STACK_DEPTH)
	l.MaxProjectionStackDepth = getInteger(gl.MAX_PROJECTION_STACK_DEPTH)
	for _, e := range info.Extensions {
		if e == "GL_EXT_texture_filter_anisotropic" {
			gl.GetFloatv(glMaxTextureMaxAnisotropyEXT, &l.MaxAnisotropy)
			break
		}
	}

	// a failed query leaves an error behind that must not be blamed on the
	// next call
	if err := d.Error(); err != nil {
		logger.WPrintf("QueryInfo: %v", err)
	}
	return info, nil
}

func (d *Device) HasEntryPoint(name string) bool {
	return d.procAddress(name) != nil
}

func (d *Device) BindEntryPoints(ep native.EntryPoints) {
	d.entryPoints = ep
	logger.VPrintf("Entry points: %v", ep)
}

func (d *Device) Enable(c native.Capability, on bool) {
	if c >= native.NumCapabilities {
		return
	}
	if c == native.CapStencilTestTwoSide && d.entryPoints[native.FeatureTwoSidedStencil] != native.VariantEXT {
		return
	}
	if on {
		gl.Enable(capabilities[c])
	} else {
		gl.Disable(capabilities[c])
	}
}

func (d *Device) EnableLight(i int, on bool) {
	if on {
		gl.Enable(gl.LIGHT0 + uint32(i))
	} else {
		gl.Disable(gl.LIGHT0 + uint32(i))
	}
}

func (d *Device) EnableClipPlane(i int, on bool) {
	if on {
		gl.Enable(gl.CLIP_PLANE0 + uint32(i))
	} else {
		gl.Disable(gl.CLIP_PLANE0 + uint32(i))
	}
}

func (d *Device) EnableArray(k native.ArrayKind, on bool) {
	if on {
		gl.EnableClientState(arrays[k])
	} else {
		gl.DisableClientState(arrays[k])
	}
}

func (d *Device) Hint(t native.HintTarget, m native.HintMode) {
	gl.Hint(hintTargets[t], hintModes[m])
}

func (d *Device) AlphaFunc(fn native.Enum, ref float32) { gl.AlphaFunc(uint32(fn), ref) }
func (d *Device) BlendFunc(src, dst native.Enum)        { gl.BlendFunc(uint32(src), uint32(dst)) }

func (d *Device) BlendEquation(eq native.Enum) {
	if d.entryPoints[native.FeatureBlendEquation] == native.VariantEXT {
		gl.BlendEquationEXT(uint32(eq))
		return
	}
	gl.BlendEquation(uint32(eq))
}

func (d *Device) BlendColor(c [4]float32) {
	if d.entryPoints[native.FeatureBlendColor] == native.VariantEXT {
		gl.BlendColorEXT(c[0], c[1], c[2], c[3])
		return
	}
	gl.BlendColor(c[0], c[1], c[2], c[3])
}

func (d *Device) ColorMask(r, g, b, a bool) { gl.ColorMask(r, g, b, a) }

func (d *Device) CullFace(front bool) {
	if front {
		gl.CullFace(gl.FRONT)
	} else {
		gl.CullFace(gl.BACK)
	}
}

func (d *Device) DepthFunc(fn native.Enum)            { gl.DepthFunc(uint32(fn)) }
func (d *Device) DepthMask(on bool)                   { gl.DepthMask(on) }
func (d *Device) PolygonOffset(factor, units float32) { gl.PolygonOffset(factor, units) }

func (d *Device) Fog(p native.FogParams) {
	gl.Fogi(gl.FOG_MODE, int32(p.Mode))
	gl.Fogfv(gl.FOG_COLOR, &p.Color[0])
	switch p.Mode {
	case gl.LINEAR:
		gl.Fogf(gl.FOG_START, p.Start)
		gl.Fogf(gl.FOG_END, p.End)
	default:
		gl.Fogf(gl.FOG_DENSITY, p.Density)
	}
}

func (d *Device) LightModel(ambient [4]float32, localViewer, twoSided bool) {
	gl.LightModelfv(gl.LIGHT_MODEL_AMBIENT, &ambient[0])
	gl.LightModeli(gl.LIGHT_MODEL_LOCAL_VIEWER, glBool(localViewer))
	gl.LightModeli(gl.LIGHT_MODEL_TWO_SIDE, glBool(twoSided))
}

func (d *Device) Light(i int, p native.LightParams) {
	l := gl.LIGHT0 + uint32(i)
	gl.Lightfv(l, gl.AMBIENT, &p.Ambient[0])
	gl.Lightfv(l, gl.DIFFUSE, &p.Diffuse[0])
	gl.Lightfv(l, gl.SPECULAR, &p.Specular[0])
	gl.Lightfv(l, gl.POSITION, &p.Position[0])
	gl.Lightfv(l, gl.SPOT_DIRECTION, &p.SpotDirection[0])
	gl.Lightf(l, gl.SPOT_EXPONENT, p.SpotExponent)
	gl.Lightf(l, gl.SPOT_CUTOFF, p.SpotCutoff)
	gl.Lightf(l, gl.CONSTANT_ATTENUATION, p.Attenuation[0])
	gl.Lightf(l, gl.LINEAR_ATTENUATION, p.Attenuation[1])
	gl.Lightf(l, gl.QUADRATIC_ATTENUATION, p.Attenuation[2])
}

func (d *Device) Material(p native.MaterialParams) {
	face := uint32(gl.FRONT)
	if p.TwoSided {
		face = gl.FRONT_AND_BACK
	}
	gl.Materialfv(face, gl.AMBIENT, &p.Ambient[0])
	gl.Materialfv(face, gl.DIFFUSE, &p.Diffuse[0])
	gl.Materialfv(face, gl.SPECULAR, &p.Specular[0])
	gl.Materialfv(face, gl.EMISSION, &p.Emission[0])
	gl.Materialf(face, gl.SHININESS, p.Shininess)
}

func (d *Device) ColorMaterial(ambient, diffuse bool) {
	switch {
	case ambient && diffuse:
		gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT_AND_DIFFUSE)
	case ambient:
		gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT)
	case diffuse:
		gl.ColorMaterial(gl.FRONT_AND_BACK, gl.DIFFUSE)
	}
}

func (d *Device) ClipPlane(i int, eq [4]float64) {
	gl.ClipPlane(gl.CLIP_PLANE0+uint32(i), &eq[0])
}

func (d *Device) LogicOp(op native.Enum)         { gl.LogicOp(uint32(op)) }
func (d *Device) PolygonMode(mode native.Enum)   { gl.PolygonMode(gl.FRONT_AND_BACK, uint32(mode)) }
func (d *Device) PointSize(size float32)         { gl.PointSize(size) }
func (d *Device) LineWidth(width float32)        { gl.LineWidth(width) }
func (d *Device) ShadeModel(model native.Enum)   { gl.ShadeModel(uint32(model)) }
func (d *Device) Scissor(r gmath.Recti32)        { gl.Scissor(r.X, r.Y, r.W, r.H) }
func (d *Device) Viewport(r gmath.Recti32)       { gl.Viewport(r.X, r.Y, r.W, r.H) }
func (d *Device) Color(c [4]float32)             { gl.Color4fv(&c[0]) }
func (d *Device) MatrixMode(m native.MatrixMode) { gl.MatrixMode(matrixModes[m]) }
func (d *Device) LoadMatrix(m state.Mat4)        { gl.LoadMatrixf(&m[0]) }
func (d *Device) PushMatrix()                    { gl.PushMatrix() }
func (d *Device) PopMatrix()                     { gl.PopMatrix() }

/*
Two sided stencil is either the 2.0 separate calls or
GL_EXT_stencil_two_side, which selects the face state that the one sided
calls then modify.
*/
func (d *Device) stencilFace(face native.StencilFace, separate, single func()) {
	switch {
	case face == native.StencilFrontAndBack:
		if d.entryPoints[native.FeatureTwoSidedStencil] == native.VariantEXT {
			gl.ActiveStencilFaceEXT(gl.BACK)
			single()
			gl.ActiveStencilFaceEXT(gl.FRONT)
		}
		single()
	case d.entryPoints[native.FeatureTwoSidedStencil] == native.VariantCore:
		separate()
	case d.entryPoints[native.FeatureTwoSidedStencil] == native.VariantEXT:
		gl.ActiveStencilFaceEXT(stencilFaces[face])
		single()
	default:
		single()
	}
}

func (d *Device) StencilFunc(face native.StencilFace, fn native.Enum, ref, mask uint32) {
	d.stencilFace(face,
		func() { gl.StencilFuncSeparate(stencilFaces[face], uint32(fn), int32(ref), mask) },
		func() { gl.StencilFunc(uint32(fn), int32(ref), mask) })
}

func (d *Device) StencilOp(face native.StencilFace, fail, zfail, zpass native.Enum) {
	d.stencilFace(face,
		func() { gl.StencilOpSeparate(stencilFaces[face], uint32(fail), uint32(zfail), uint32(zpass)) },
		func() { gl.StencilOp(uint32(fail), uint32(zfail), uint32(zpass)) })
}

func (d *Device) StencilMask(face native.StencilFace, mask uint32) {
	d.stencilFace(face,
		func() { gl.StencilMaskSeparate(stencilFaces[face], mask) },
		func() { gl.StencilMask(mask) })
}

func (d *Device) ActiveTexture(unit int)       { gl.ActiveTexture(gl.TEXTURE0 + uint32(unit)) }
func (d *Device) ClientActiveTexture(unit int) { gl.ClientActiveTexture(gl.TEXTURE0 + uint32(unit)) }

func (d *Device) TexEnvMode(mode native.Enum) {
	gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, int32(mode))
}

func (d *Device) TexEnvColor(c [4]float32) {
	gl.TexEnvfv(gl.TEXTURE_ENV, gl.TEXTURE_ENV_COLOR, &c[0])
}

var (
	rgbSources    = [3]uint32{gl.SRC0_RGB, gl.SRC1_RGB, gl.SRC2_RGB}
	rgbOperands   = [3]uint32{gl.OPERAND0_RGB, gl.OPERAND1_RGB, gl.OPERAND2_RGB}
	alphaSources  = [3]uint32{gl.SRC0_ALPHA, gl.SRC1_ALPHA, gl.SRC2_ALPHA}
	alphaOperands = [3]uint32{gl.OPERAND0_ALPHA, gl.OPERAND1_ALPHA, gl.OPERAND2_ALPHA}
)

func (d *Device) TexEnvCombine(p native.CombineParams) {
	gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, int32(p.RGBMode))
	gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, int32(p.AlphaMode))
	for i := 0; i < 3; i++ {
		gl.TexEnvi(gl.TEXTURE_ENV, rgbSources[i], int32(p.RGBSources[i]))
		gl.TexEnvi(gl.TEXTURE_ENV, rgbOperands[i], int32(p.RGBOperands[i]))
		gl.TexEnvi(gl.TEXTURE_ENV, alphaSources[i], int32(p.AlphaSources[i]))
		gl.TexEnvi(gl.TEXTURE_ENV, alphaOperands[i], int32(p.AlphaOperands[i]))
	}
	gl.TexEnvf(gl.TEXTURE_ENV, gl.RGB_SCALE, max(p.RGBScale, 1))
	gl.TexEnvf(gl.TEXTURE_ENV, gl.ALPHA_SCALE, max(p.AlphaScale, 1))
}

func (d *Device) TexGen(coord native.TexCoord, mode native.Enum, plane [4]float32) {
	c := texCoords[coord]
	gl.TexGeni(c, gl.TEXTURE_GEN_MODE, int32(mode))
	switch mode {
	case gl.EYE_LINEAR:
		gl.TexGenfv(c, gl.EYE_PLANE, &plane[0])
	case gl.OBJECT_LINEAR:
		gl.TexGenfv(c, gl.OBJECT_PLANE, &plane[0])
	}
}
