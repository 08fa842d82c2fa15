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

// Package record implements native.Device by recording every call. It backs
// the package tests and can stand in for a driver when none is available.
package record

import (
	"fmt"
	"strings"

	"goarrg.com/debug"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/internal/container"
	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/state"
)

type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}

type Device struct {
	Info    native.DriverInfo
	InfoErr error
	// Missing lists entry point names that fail to resolve.
	Missing map[string]bool
	Bound   native.EntryPoints
	Calls   []Call

	failNext map[string]error
	next     native.Handle

	matrixMode native.MatrixMode
	matrices   [3]state.Mat4
	stacks     [3]container.Stack[state.Mat4]

	Textures map[native.Handle]bool
	Buffers  map[native.Handle]bool
	Lists    map[native.Handle]bool
	Queries  map[native.Handle]bool
	Programs map[native.Handle]bool

	// SceneErrs and PresentErrs are returned in order by BeginScene and
	// Present, then nil once exhausted.
	SceneErrs   []error
	PresentErrs []error
}

var _ native.Device = (*Device)(nil)

// FullInfo describes an OpenGL 2.1 driver with the common extensions.
func FullInfo() native.DriverInfo {
	return native.DriverInfo{
		API:                    native.APIOpenGL,
		Vendor:                 "goARRG",
		Renderer:               "record",
		Version:                "2.1.0 record",
		ShadingLanguageVersion: "1.20",
		Extensions: []string{
			"GL_ARB_multitexture",
			"GL_ARB_texture_env_combine",
			"GL_ARB_texture_env_dot3",
			"GL_ARB_texture_compression",
			"GL_EXT_texture_compression_s3tc",
			"GL_ARB_texture_non_power_of_two",
			"GL_ARB_vertex_buffer_object",
			"GL_ARB_multisample",
			"GL_ARB_depth_texture",
			"GL_EXT_packed_depth_stencil",
			"GL_EXT_rescale_normal",
			"GL_EXT_blend_minmax",
			"GL_EXT_blend_color",
			"GL_EXT_blend_subtract",
			"GL_EXT_stencil_wrap",
			"GL_EXT_stencil_two_side",
			"GL_EXT_texture3D",
			"GL_ARB_texture_cube_map",
			"GL_EXT_texture_filter_anisotropic",
			"GL_ARB_texture_border_clamp",
			"GL_ARB_texture_mirrored_repeat",
			"GL_ATI_texture_mirror_once",
			"GL_EXT_bgra",
			"GL_SGIS_generate_mipmap",
			"GL_EXT_framebuffer_object",
			"GL_EXT_draw_range_elements",
			"GL_ARB_point_sprite",
			"GL_ARB_occlusion_query",
			"GL_ARB_shading_language_100",
		},
		Limits: native.Limits{
			MaxTextureStages:        4,
			MaxTextureDimension:     4096,
			Max3DTextureDimension:   256,
			MaxCubeMapDimension:     2048,
			MaxLights:               8,
			MaxClipPlanes:           6,
			MaxVertices:             4096,
			MaxIndices:              4096,
			MaxAnisotropy:           16,
			RedBits:                 8,
			StencilBits:             8,
			Samples:                 4,
			MaxModelviewStackDepth:  32,
			MaxProjectionStackDepth: 4,
		},
	}
}

func New() *Device {
	d := &Device{
		Info:     FullInfo(),
		Missing:  map[string]bool{},
		failNext: map[string]error{},
		Textures: map[native.Handle]bool{},
		Buffers:  map[native.Handle]bool{},
		Lists:    map[native.Handle]bool{},
		Queries:  map[native.Handle]bool{},
		Programs: map[native.Handle]bool{},
	}
	for i := range d.matrices {
		d.matrices[i] = state.IdentityMat4()
	}
	return d
}

// WithoutExtensions removes each listed extension from Info.
func (d *Device) WithoutExtensions(exts ...string) *Device {
	kept := d.Info.Extensions[:0]
	for _, e := range d.Info.Extensions {
		drop := false
		for _, x := range exts {
			if e == x {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, e)
		}
	}
	d.Info.Extensions = kept
	return d
}

func (d *Device) rec(name string, args ...any) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

// FailNext makes the next call to name return err.
func (d *Device) FailNext(name string, err error) {
	d.failNext[name] = err
}

func (d *Device) fail(name string) error {
	err, ok := d.failNext[name]
	if ok {
		delete(d.failNext, name)
	}
	return err
}

func (d *Device) ClearCalls() {
	d.Calls = d.Calls[:0]
}

func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Find returns the calls named name in order.
func (d *Device) Find(name string) []Call {
	ret := []Call{}
	for _, c := range d.Calls {
		if c.Name == name {
			ret = append(ret, c)
		}
	}
	return ret
}

func (d *Device) Names() []string {
	ret := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		ret[i] = c.Name
	}
	return ret
}

// Index returns the position of the first call named name, or -1.
func (d *Device) Index(name string) int {
	for i, c := range d.Calls {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (d *Device) Matrix(m native.MatrixMode) state.Mat4 {
	return d.matrices[m]
}

func (d *Device) StackDepth(m native.MatrixMode) int {
	return d.stacks[m].Len()
}

func (d *Device) gen(live map[native.Handle]bool) native.Handle {
	d.next++
	live[d.next] = true
	return d.next
}

func (d *Device) QueryInfo() (native.DriverInfo, error) {
	d.rec("QueryInfo")
	return d.Info, d.InfoErr
}

func (d *Device) HasEntryPoint(name string) bool {
	return !d.Missing[name]
}

func (d *Device) BindEntryPoints(ep native.EntryPoints) {
	d.rec("BindEntryPoints", ep)
	d.Bound = ep
}

func (d *Device) Enable(c native.Capability, on bool) { d.rec("Enable", c, on) }
func (d *Device) EnableLight(i int, on bool)          { d.rec("EnableLight", i, on) }
func (d *Device) EnableClipPlane(i int, on bool)      { d.rec("EnableClipPlane", i, on) }
func (d *Device) EnableArray(k native.ArrayKind, on bool) {
	d.rec("EnableArray", k, on)
}
func (d *Device) Hint(t native.HintTarget, m native.HintMode) { d.rec("Hint", t, m) }

func (d *Device) AlphaFunc(fn native.Enum, ref float32) { d.rec("AlphaFunc", fn, ref) }
func (d *Device) BlendFunc(src, dst native.Enum)        { d.rec("BlendFunc", src, dst) }
func (d *Device) BlendEquation(eq native.Enum)          { d.rec("BlendEquation", eq) }
func (d *Device) BlendColor(c [4]float32)               { d.rec("BlendColor", c) }
func (d *Device) ColorMask(r, g, b, a bool)             { d.rec("ColorMask", r, g, b, a) }
func (d *Device) CullFace(front bool)                   { d.rec("CullFace", front) }
func (d *Device) DepthFunc(fn native.Enum)              { d.rec("DepthFunc", fn) }
func (d *Device) DepthMask(on bool)                     { d.rec("DepthMask", on) }
func (d *Device) PolygonOffset(factor, units float32)   { d.rec("PolygonOffset", factor, units) }
func (d *Device) Fog(p native.FogParams)                { d.rec("Fog", p) }
func (d *Device) LightModel(ambient [4]float32, localViewer, twoSided bool) {
	d.rec("LightModel", ambient, localViewer, twoSided)
}
func (d *Device) Light(i int, p native.LightParams)      { d.rec("Light", i, p) }
func (d *Device) Material(p native.MaterialParams)       { d.rec("Material", p) }
func (d *Device) ColorMaterial(ambient, diffuse bool)    { d.rec("ColorMaterial", ambient, diffuse) }
func (d *Device) ClipPlane(i int, eq [4]float64)         { d.rec("ClipPlane", i, eq) }
func (d *Device) LogicOp(op native.Enum)                 { d.rec("LogicOp", op) }
func (d *Device) PolygonMode(mode native.Enum)           { d.rec("PolygonMode", mode) }
func (d *Device) PointSize(size float32)                 { d.rec("PointSize", size) }
func (d *Device) LineWidth(width float32)                { d.rec("LineWidth", width) }
func (d *Device) ShadeModel(model native.Enum)           { d.rec("ShadeModel", model) }
func (d *Device) Scissor(r gmath.Recti32)                { d.rec("Scissor", r) }
func (d *Device) Viewport(r gmath.Recti32)               { d.rec("Viewport", r) }
func (d *Device) Color(c [4]float32)                     { d.rec("Color", c) }
func (d *Device) StencilMask(f native.StencilFace, m uint32) { d.rec("StencilMask", f, m) }
func (d *Device) StencilFunc(f native.StencilFace, fn native.Enum, ref, mask uint32) {
	d.rec("StencilFunc", f, fn, ref, mask)
}
func (d *Device) StencilOp(f native.StencilFace, fail, zfail, zpass native.Enum) {
	d.rec("StencilOp", f, fail, zfail, zpass)
}

func (d *Device) MatrixMode(m native.MatrixMode) {
	d.rec("MatrixMode", m)
	d.matrixMode = m
}

func (d *Device) LoadMatrix(m state.Mat4) {
	d.rec("LoadMatrix", d.matrixMode, m)
	d.matrices[d.matrixMode] = m
}

func (d *Device) PushMatrix() {
	d.rec("PushMatrix", d.matrixMode)
	d.stacks[d.matrixMode].Push(d.matrices[d.matrixMode])
}

func (d *Device) PopMatrix() {
	d.rec("PopMatrix", d.matrixMode)
	if d.stacks[d.matrixMode].Empty() {
		panic("PopMatrix on empty stack")
	}
	d.matrices[d.matrixMode] = d.stacks[d.matrixMode].Pop()
}

func (d *Device) ActiveTexture(unit int)                { d.rec("ActiveTexture", unit) }
func (d *Device) ClientActiveTexture(unit int)          { d.rec("ClientActiveTexture", unit) }
func (d *Device) TexEnvMode(mode native.Enum)           { d.rec("TexEnvMode", mode) }
func (d *Device) TexEnvColor(c [4]float32)              { d.rec("TexEnvColor", c) }
func (d *Device) TexEnvCombine(p native.CombineParams)  { d.rec("TexEnvCombine", p) }
func (d *Device) GenerateMipmap(target native.Enum)     { d.rec("GenerateMipmap", target) }
func (d *Device) BindTexture(t native.Enum, h native.Handle) { d.rec("BindTexture", t, h) }
func (d *Device) TexGen(c native.TexCoord, mode native.Enum, plane [4]float32) {
	d.rec("TexGen", c, mode, plane)
}
func (d *Device) TexParameters(target native.Enum, p native.SamplerParams) {
	d.rec("TexParameters", target, p)
}

func (d *Device) GenTexture() (native.Handle, error) {
	if err := d.fail("GenTexture"); err != nil {
		d.rec("GenTexture", err)
		return 0, err
	}
	h := d.gen(d.Textures)
	d.rec("GenTexture", h)
	return h, nil
}

func (d *Device) DeleteTexture(h native.Handle) {
	d.rec("DeleteTexture", h)
	delete(d.Textures, h)
}

func (d *Device) texImage(name string, desc native.TexImageDesc, data []byte) error {
	d.rec(name, desc, len(data))
	return d.fail(name)
}

func (d *Device) TexImage(desc native.TexImageDesc, data []byte) error {
	return d.texImage("TexImage", desc, data)
}

func (d *Device) TexSubImage(desc native.TexImageDesc, data []byte) error {
	return d.texImage("TexSubImage", desc, data)
}

func (d *Device) CompressedTexImage(desc native.TexImageDesc, data []byte) error {
	return d.texImage("CompressedTexImage", desc, data)
}

func (d *Device) CompressedTexSubImage(desc native.TexImageDesc, data []byte) error {
	return d.texImage("CompressedTexSubImage", desc, data)
}

func (d *Device) CopyTexImage(desc native.TexImageDesc, x, y int32) error {
	d.rec("CopyTexImage", desc, x, y)
	return d.fail("CopyTexImage")
}

func (d *Device) CopyTexSubImage(desc native.TexImageDesc, x, y int32) error {
	d.rec("CopyTexSubImage", desc, x, y)
	return d.fail("CopyTexSubImage")
}

func (d *Device) GenBuffer() (native.Handle, error) {
	if err := d.fail("GenBuffer"); err != nil {
		d.rec("GenBuffer", err)
		return 0, err
	}
	h := d.gen(d.Buffers)
	d.rec("GenBuffer", h)
	return h, nil
}

func (d *Device) DeleteBuffer(h native.Handle) {
	d.rec("DeleteBuffer", h)
	delete(d.Buffers, h)
}

func (d *Device) BindBuffer(t native.BufferTarget, h native.Handle) { d.rec("BindBuffer", t, h) }

func (d *Device) BufferData(t native.BufferTarget, data []byte, usage native.Enum) error {
	d.rec("BufferData", t, len(data), usage)
	return d.fail("BufferData")
}

func (d *Device) BufferSubData(t native.BufferTarget, offset int, data []byte) {
	d.rec("BufferSubData", t, offset, len(data))
}

func (d *Device) ArrayPointer(k native.ArrayKind, size int32, typ native.Enum, stride int32, data []byte, offset int) {
	d.rec("ArrayPointer", k, size, typ, stride, data != nil, offset)
}

func (d *Device) DrawArrays(mode native.Enum, first, count int32) {
	d.rec("DrawArrays", mode, first, count)
}

func (d *Device) DrawElements(mode native.Enum, count int32, typ native.Enum, data []byte, offset int) {
	d.rec("DrawElements", mode, count, typ, data != nil, offset)
}

func (d *Device) DrawRangeElements(mode native.Enum, start, end uint32, count int32, typ native.Enum, data []byte, offset int) {
	d.rec("DrawRangeElements", mode, start, end, count, typ, data != nil, offset)
}

func (d *Device) GenList() (native.Handle, error) {
	if err := d.fail("GenList"); err != nil {
		return 0, err
	}
	h := d.gen(d.Lists)
	d.rec("GenList", h)
	return h, nil
}

func (d *Device) DeleteList(h native.Handle) {
	d.rec("DeleteList", h)
	delete(d.Lists, h)
}

func (d *Device) NewList(h native.Handle)  { d.rec("NewList", h) }
func (d *Device) EndList()                 { d.rec("EndList") }
func (d *Device) CallList(h native.Handle) { d.rec("CallList", h) }

func (d *Device) GenQuery() (native.Handle, error) {
	if err := d.fail("GenQuery"); err != nil {
		return 0, err
	}
	h := d.gen(d.Queries)
	d.rec("GenQuery", h)
	return h, nil
}

func (d *Device) DeleteQuery(h native.Handle) {
	d.rec("DeleteQuery", h)
	delete(d.Queries, h)
}

func (d *Device) BeginQuery(h native.Handle) { d.rec("BeginQuery", h) }
func (d *Device) EndQuery()                  { d.rec("EndQuery") }

func (d *Device) QueryResult(h native.Handle) (uint32, bool) {
	d.rec("QueryResult", h)
	return 1, d.Queries[h]
}

func (d *Device) CreateProgram(vertex, fragment string) (native.Handle, error) {
	if err := d.fail("CreateProgram"); err != nil {
		d.rec("CreateProgram", err)
		return 0, debug.ErrorWrapf(err, "Failed to link program")
	}
	h := d.gen(d.Programs)
	d.rec("CreateProgram", h)
	return h, nil
}

func (d *Device) DeleteProgram(h native.Handle) {
	d.rec("DeleteProgram", h)
	delete(d.Programs, h)
}

func (d *Device) UseProgram(h native.Handle) { d.rec("UseProgram", h) }

func (d *Device) ClearColor(c [4]float32)   { d.rec("ClearColor", c) }
func (d *Device) ClearDepth(v float64)      { d.rec("ClearDepth", v) }
func (d *Device) ClearStencil(s int32)      { d.rec("ClearStencil", s) }
func (d *Device) Clear(mask native.ClearMask) { d.rec("Clear", mask) }

func (d *Device) BeginScene() error {
	d.rec("BeginScene")
	if len(d.SceneErrs) > 0 {
		err := d.SceneErrs[0]
		d.SceneErrs = d.SceneErrs[1:]
		return err
	}
	return nil
}

func (d *Device) EndScene() error {
	d.rec("EndScene")
	return d.fail("EndScene")
}

func (d *Device) Present() error {
	d.rec("Present")
	if len(d.PresentErrs) > 0 {
		err := d.PresentErrs[0]
		d.PresentErrs = d.PresentErrs[1:]
		return err
	}
	return nil
}

func (d *Device) Flush()  { d.rec("Flush") }
func (d *Device) Finish() { d.rec("Finish") }

func (d *Device) ReadPixel(x, y int32) [4]byte {
	d.rec("ReadPixel", x, y)
	return [4]byte{}
}

// ReadPixels fills each 4 byte pixel with its framebuffer x, y and 0, 0xFF.
func (d *Device) ReadPixels(r gmath.Recti32, format, typ native.Enum, out []byte) error {
	d.rec("ReadPixels", r, format, typ, len(out))
	if err := d.fail("ReadPixels"); err != nil {
		return err
	}
	for y := int32(0); y < r.H; y++ {
		for x := int32(0); x < r.W; x++ {
			i := int(y*r.W+x) * 4
			if i+4 > len(out) {
				return nil
			}
			out[i], out[i+1], out[i+2], out[i+3] = byte(r.X+x), byte(r.Y+y), 0, 0xFF
		}
	}
	return nil
}

func (d *Device) Error() error {
	return d.fail("Error")
}

// Losable adds the exclusive mode surface model to a recording device.
type Losable struct {
	*Device
	// Levels are returned in order by TestCooperativeLevel, then OK.
	Levels     []native.CooperativeLevel
	RestoreErr error
	Restored   int
}

var _ native.SurfaceOwner = (*Losable)(nil)

func NewLosable() *Losable {
	return &Losable{Device: New()}
}

func (l *Losable) TestCooperativeLevel() native.CooperativeLevel {
	l.rec("TestCooperativeLevel")
	if len(l.Levels) > 0 {
		c := l.Levels[0]
		l.Levels = l.Levels[1:]
		return c
	}
	return native.CooperativeOK
}

func (l *Losable) RestoreSurfaces() error {
	l.rec("RestoreSurfaces")
	if l.RestoreErr != nil {
		return l.RestoreErr
	}
	l.Restored++
	return nil
}
