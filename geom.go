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
)

// GeomContext is a geom prepared on one GSG. Static geoms may also be
// compiled into a display list.
type GeomContext struct {
	geom       *resource.Geom
	list       native.Handle
	listKey    uint64
	listArrays arraySetup
	released   atomic.Bool
}

func (gc *GeomContext) Geom() *resource.Geom {
	return gc.geom
}

func (gc *GeomContext) HasDisplayList() bool {
	return gc.list != 0
}

// geomKey changes whenever the geom, its vertices or any of its primitives
// are modified. Every counter only grows, so does the sum.
func geomKey(geom *resource.Geom) uint64 {
	key := geom.Modified() + geom.VertexData().Modified()
	for _, p := range geom.Primitives() {
		key += p.Modified()
	}
	return key
}

// PrepareGeom returns geom's context and uploads its vertex and index
// buffers when buffer objects are in use.
func (g *GraphicsStateGuardian) PrepareGeom(geom *resource.Geom) *GeomContext {
	g.noCopy.Check()
	if !g.functional || geom == nil || geom.VertexData() == nil {
		return nil
	}

	gc, ok := g.prepared.geoms[geom]
	if !ok || gc.released.Load() {
		gc = &GeomContext{geom: geom}
		g.prepared.geoms[geom] = gc
		g.logger.VPrintf("Prepared geom %q", geom.Name())
	}

	if vbc := g.PrepareVertexBuffer(geom.VertexData()); vbc != nil {
		g.ApplyVertexBuffer(vbc)
	}
	for _, p := range geom.Primitives() {
		if ibc := g.PrepareIndexBuffer(p); ibc != nil {
			g.ApplyIndexBuffer(ibc)
		}
	}
	return gc
}

// ReleaseGeom schedules gc's display list for destruction at the next
// BeginFrame. Safe to call from any goroutine.
func (g *GraphicsStateGuardian) ReleaseGeom(gc *GeomContext) {
	if gc == nil || gc.released.Swap(true) {
		return
	}
	g.queueRelease(func(q *releaseQueue) {
		q.geoms = append(q.geoms, gc)
	})
}

func (g *GraphicsStateGuardian) destroyGeom(gc *GeomContext) {
	if gc.list != 0 {
		g.device.DeleteList(gc.list)
		gc.list = 0
	}
	if g.prepared.geoms[gc.geom] == gc {
		delete(g.prepared.geoms, gc.geom)
	}
}
