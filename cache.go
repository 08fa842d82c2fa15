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
	"bytes"
	"fmt"
	"sync"

	"goarrg.com/rhi/gsg/internal/container"
	"goarrg.com/rhi/gsg/resource"
)

type releaseQueue struct {
	textures      []*TextureContext
	vertexBuffers []*VertexBufferContext
	indexBuffers  []*IndexBufferContext
	geoms         []*GeomContext
	shaders       []*ShaderContext
	queries       []*QueryContext
}

func (q *releaseQueue) len() int {
	return len(q.textures) + len(q.vertexBuffers) + len(q.indexBuffers) + len(q.geoms) + len(q.shaders) + len(q.queries)
}

type enqueueQueue struct {
	textures []*resource.Texture
	geoms    []*resource.Geom
	shaders  []*resource.Shader
}

/*
preparedObjects owns every resource context. The maps are only touched on
the render goroutine, the queues are filled from any goroutine under mtx and
drained by BeginFrame.
*/
type preparedObjects struct {
	textures      map[*resource.Texture]*TextureContext
	vertexBuffers map[*resource.VertexData]*VertexBufferContext
	indexBuffers  map[*resource.Primitive]*IndexBufferContext
	geoms         map[*resource.Geom]*GeomContext
	shaders       map[*resource.Shader]*ShaderContext
	queries       map[*QueryContext]struct{}

	textureLRU    container.LRU[*TextureContext]
	textureMemory int64

	mtx      sync.Mutex
	released releaseQueue
	enqueued enqueueQueue
}

func (p *preparedObjects) init() {
	p.textures = map[*resource.Texture]*TextureContext{}
	p.vertexBuffers = map[*resource.VertexData]*VertexBufferContext{}
	p.indexBuffers = map[*resource.Primitive]*IndexBufferContext{}
	p.geoms = map[*resource.Geom]*GeomContext{}
	p.shaders = map[*resource.Shader]*ShaderContext{}
	p.queries = map[*QueryContext]struct{}{}
}

func (p *preparedObjects) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	buff.WriteString(fmt.Sprintf("\"textures\": %d,", len(p.textures)))
	buff.WriteString(fmt.Sprintf("\"vertexBuffers\": %d,", len(p.vertexBuffers)))
	buff.WriteString(fmt.Sprintf("\"indexBuffers\": %d,", len(p.indexBuffers)))
	buff.WriteString(fmt.Sprintf("\"geoms\": %d,", len(p.geoms)))
	buff.WriteString(fmt.Sprintf("\"shaders\": %d,", len(p.shaders)))
	buff.WriteString(fmt.Sprintf("\"queries\": %d,", len(p.queries)))
	buff.WriteString(fmt.Sprintf("\"textureMemory\": %d,", p.textureMemory))

	{
		buff.WriteString("\"residentTextures\": [")
		n := 0
		p.textureLRU.Each(func(tc *TextureContext) bool {
			buff.WriteString(fmt.Sprintf("%q,", tc.texture.Name()))
			n++
			return true
		})
		if n > 0 {
			buff.Truncate(buff.Len() - 1)
		}
		buff.WriteString("],")
	}

	p.mtx.Lock()
	buff.WriteString(fmt.Sprintf("\"pendingRelease\": %d", p.released.len()))
	p.mtx.Unlock()

	buff.WriteString("}")
	return buff.Bytes(), nil
}

func (g *GraphicsStateGuardian) queueRelease(f func(q *releaseQueue)) {
	g.prepared.mtx.Lock()
	defer g.prepared.mtx.Unlock()
	f(&g.prepared.released)
}

// EnqueueTexture prepares t at the start of the next frame. Safe to call
// from any goroutine.
func (g *GraphicsStateGuardian) EnqueueTexture(t *resource.Texture) {
	g.prepared.mtx.Lock()
	defer g.prepared.mtx.Unlock()
	g.prepared.enqueued.textures = append(g.prepared.enqueued.textures, t)
}

// EnqueueGeom prepares geom's buffers at the start of the next frame. Safe to
// call from any goroutine.
func (g *GraphicsStateGuardian) EnqueueGeom(geom *resource.Geom) {
	g.prepared.mtx.Lock()
	defer g.prepared.mtx.Unlock()
	g.prepared.enqueued.geoms = append(g.prepared.enqueued.geoms, geom)
}

// EnqueueShader compiles s at the start of the next frame. Safe to call from
// any goroutine.
func (g *GraphicsStateGuardian) EnqueueShader(s *resource.Shader) {
	g.prepared.mtx.Lock()
	defer g.prepared.mtx.Unlock()
	g.prepared.enqueued.shaders = append(g.prepared.enqueued.shaders, s)
}

// drainReleased destroys everything released since the last frame.
func (g *GraphicsStateGuardian) drainReleased() {
	g.prepared.mtx.Lock()
	q := g.prepared.released
	g.prepared.released = releaseQueue{}
	g.prepared.mtx.Unlock()

	if n := q.len(); n > 0 {
		g.logger.VPrintf("Destroying %d released objects", n)
	}
	for _, tc := range q.textures {
		g.destroyTexture(tc)
	}
	for _, gc := range q.geoms {
		g.destroyGeom(gc)
	}
	for _, vbc := range q.vertexBuffers {
		g.destroyVertexBuffer(vbc)
	}
	for _, ibc := range q.indexBuffers {
		g.destroyIndexBuffer(ibc)
	}
	for _, sc := range q.shaders {
		g.destroyShader(sc)
	}
	for _, qc := range q.queries {
		g.destroyQuery(qc)
	}
}

func (g *GraphicsStateGuardian) prepareEnqueued() {
	g.prepared.mtx.Lock()
	q := g.prepared.enqueued
	g.prepared.enqueued = enqueueQueue{}
	g.prepared.mtx.Unlock()

	for _, t := range q.textures {
		if tc := g.PrepareTexture(t); tc != nil {
			g.uploadNow(tc)
		}
	}
	for _, geom := range q.geoms {
		g.PrepareGeom(geom)
	}
	for _, s := range q.shaders {
		g.PrepareShader(s)
	}
}

// evictTextures frees the least recently used texture images until the
// resident set fits GraphicsMemoryLimit. Textures bound to a unit are kept.
func (g *GraphicsStateGuardian) evictTextures() {
	limit := g.config.GraphicsMemoryLimit
	if limit <= 0 || g.prepared.textureMemory <= limit {
		return
	}

	victims := []*TextureContext{}
	excess := g.prepared.textureMemory - limit
	g.prepared.textureLRU.Each(func(tc *TextureContext) bool {
		if excess <= 0 {
			return false
		}
		if g.textureBound(tc) {
			return true
		}
		victims = append(victims, tc)
		excess -= tc.memory
		return true
	})

	for _, tc := range victims {
		g.logger.VPrintf("Evicting texture %q (%d bytes)", tc.texture.Name(), tc.memory)
		g.evictTexture(tc)
	}
}

func (g *GraphicsStateGuardian) textureBound(tc *TextureContext) bool {
	for _, b := range g.units.textures[:g.units.numStages] {
		if b == tc {
			return true
		}
	}
	return false
}

// ReleaseAll destroys every prepared object immediately. Only call it from
// the render goroutine.
func (g *GraphicsStateGuardian) ReleaseAll() {
	g.noCopy.Check()
	g.drainReleased()

	for _, tc := range g.prepared.textures {
		g.destroyTexture(tc)
	}
	for _, gc := range g.prepared.geoms {
		g.destroyGeom(gc)
	}
	for _, vbc := range g.prepared.vertexBuffers {
		g.destroyVertexBuffer(vbc)
	}
	for _, ibc := range g.prepared.indexBuffers {
		g.destroyIndexBuffer(ibc)
	}
	for _, sc := range g.prepared.shaders {
		g.destroyShader(sc)
	}
	for qc := range g.prepared.queries {
		g.destroyQuery(qc)
	}
	g.prepared.init()
	g.prepared.textureLRU = container.LRU[*TextureContext]{}
	g.prepared.textureMemory = 0
	g.ClearStateAndTransform()
}
