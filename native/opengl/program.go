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

package opengl

import (
	"strings"

	"github.com/go-gl/gl/v2.1/gl"
	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/native"
)

func compileShader(typ uint32, src string) (uint32, error) {
	h := gl.CreateShader(typ)
	if h == 0 {
		return 0, debug.Errorf("glCreateShader failed")
	}

	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(h, 1, csrc, nil)
	free()
	gl.CompileShader(h)

	var status int32
	gl.GetShaderiv(h, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(h, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(h, n, nil, gl.Str(msg))
		gl.DeleteShader(h)
		return 0, debug.Errorf("Failed to compile: %s", strings.TrimRight(msg, "\x00"))
	}
	return h, nil
}

// CreateProgram compiles and links vertex and fragment, either may be empty
// to keep the fixed function stage.
func (d *Device) CreateProgram(vertex, fragment string) (native.Handle, error) {
	shaders := []uint32{}
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()

	for _, s := range []struct {
		typ uint32
		src string
	}{{gl.VERTEX_SHADER, vertex}, {gl.FRAGMENT_SHADER, fragment}} {
		if s.src == "" {
			continue
		}
		h, err := compileShader(s.typ, s.src)
		if err != nil {
			return 0, err
		}
		shaders = append(shaders, h)
	}
	if len(shaders) == 0 {
		return 0, debug.Errorf("Program without sources")
	}

	p := gl.CreateProgram()
	if p == 0 {
		return 0, debug.ErrorWrapf(d.errorOr(native.ErrOutOfMemory), "glCreateProgram failed")
	}
	for _, s := range shaders {
		gl.AttachShader(p, s)
	}
	gl.LinkProgram(p)

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(p, n, nil, gl.Str(msg))
		gl.DeleteProgram(p)
		return 0, debug.Errorf("Failed to link: %s", strings.TrimRight(msg, "\x00"))
	}
	for _, s := range shaders {
		gl.DetachShader(p, s)
	}
	return native.Handle(p), nil
}

func (d *Device) DeleteProgram(h native.Handle) { gl.DeleteProgram(uint32(h)) }
func (d *Device) UseProgram(h native.Handle)    { gl.UseProgram(uint32(h)) }

func (d *Device) GenQuery() (native.Handle, error) {
	var h uint32
	gl.GenQueries(1, &h)
	if h == 0 {
		return 0, debug.ErrorWrapf(d.errorOr(native.ErrOutOfMemory), "glGenQueries failed")
	}
	return native.Handle(h), nil
}

func (d *Device) DeleteQuery(h native.Handle) {
	q := uint32(h)
	gl.DeleteQueries(1, &q)
}

func (d *Device) BeginQuery(h native.Handle) { gl.BeginQuery(gl.SAMPLES_PASSED, uint32(h)) }
func (d *Device) EndQuery()                  { gl.EndQuery(gl.SAMPLES_PASSED) }

func (d *Device) QueryResult(h native.Handle) (uint32, bool) {
	var available uint32
	gl.GetQueryObjectuiv(uint32(h), gl.QUERY_RESULT_AVAILABLE, &available)
	if available == gl.FALSE {
		return 0, false
	}
	var n uint32
	gl.GetQueryObjectuiv(uint32(h), gl.QUERY_RESULT, &n)
	return n, true
}
