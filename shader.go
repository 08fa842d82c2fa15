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
	"sync/atomic"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// ShaderContext is a shader linked into a program on one GSG.
type ShaderContext struct {
	shader   *resource.Shader
	handle   native.Handle
	modified uint64
	released atomic.Bool
}

func (sc *ShaderContext) Shader() *resource.Shader {
	return sc.shader
}

func (sc *ShaderContext) Handle() native.Handle {
	return sc.handle
}

/*
PrepareShader returns s's context, linking its program on first use and again
whenever its sources change. It returns nil if the device has no GLSL or the
program fails to link, the error is logged and not retried until the sources
change.
*/
func (g *GraphicsStateGuardian) PrepareShader(s *resource.Shader) *ShaderContext {
	g.noCopy.Check()
	if !g.functional || s == nil {
		return nil
	}
	if !g.caps.SupportsGLSL {
		g.warnOnce("glsl", "Shader %q ignored, GLSL unsupported", s.Name())
		return nil
	}

	sc, ok := g.prepared.shaders[s]
	if !ok || sc.released.Load() {
		sc = &ShaderContext{shader: s}
		g.prepared.shaders[s] = sc
	}
	if sc.modified != s.Modified() {
		g.linkShader(sc)
	}
	if sc.handle == 0 {
		return nil
	}
	return sc
}

func (g *GraphicsStateGuardian) linkShader(sc *ShaderContext) {
	vertex, fragment, modified := sc.shader.Sources()
	sc.modified = modified
	g.deleteProgram(sc)

	h, err := g.device.CreateProgram(vertex, fragment)
	if err != nil {
		g.errorf("Failed to link shader %q: %s", sc.shader.Name(), err)
		return
	}
	sc.handle = h
	g.logger.VPrintf("Linked shader %q", sc.shader.Name())
}

func (g *GraphicsStateGuardian) deleteProgram(sc *ShaderContext) {
	if sc.handle == 0 {
		return
	}
	if g.params.program.valid && g.params.program.v == sc.handle {
		g.params.program = cached[native.Handle]{}
		g.slotMask.Clear(state.MaskOf(state.SlotShader))
	}
	g.device.DeleteProgram(sc.handle)
	sc.handle = 0
}

// ReleaseShader schedules sc for destruction at the next BeginFrame. Safe to
// call from any goroutine.
func (g *GraphicsStateGuardian) ReleaseShader(sc *ShaderContext) {
	if sc == nil || sc.released.Swap(true) {
		return
	}
	g.queueRelease(func(q *releaseQueue) {
		q.shaders = append(q.shaders, sc)
	})
}

func (g *GraphicsStateGuardian) destroyShader(sc *ShaderContext) {
	g.deleteProgram(sc)
	if g.prepared.shaders[sc.shader] == sc {
		delete(g.prepared.shaders, sc.shader)
	}
}

// issueShader makes the target's program current, or fixed function when it
// has none or the program cannot be used.
func (g *GraphicsStateGuardian) issueShader(target *state.RenderState) {
	var h native.Handle
	if s := target.Shader().Shader; s != nil {
		if sc := g.PrepareShader(s); sc != nil {
			h = sc.handle
		}
	}
	if !g.caps.SupportsGLSL {
		return
	}
	if g.params.program.update(h) {
		g.device.UseProgram(h)
	}
}
