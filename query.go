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
)

// QueryContext counts the samples that passed the depth test between
// BeginOcclusionQuery and EndOcclusionQuery.
type QueryContext struct {
	handle   native.Handle
	ended    bool
	ready    bool
	result   uint32
	released atomic.Bool
}

func (qc *QueryContext) Handle() native.Handle {
	return qc.handle
}

// BeginOcclusionQuery starts counting samples. It returns nil if occlusion
// queries are unsupported or one is already active.
func (g *GraphicsStateGuardian) BeginOcclusionQuery() *QueryContext {
	g.noCopy.Check()
	if !g.functional {
		return nil
	}
	if !g.caps.SupportsOcclusionQuery {
		g.warnOnce("occlusion query", "Occlusion queries unsupported")
		return nil
	}
	if g.frame.query != nil {
		g.misuse("BeginOcclusionQuery called when there's an active query")
		return nil
	}

	h, err := g.device.GenQuery()
	if err != nil {
		g.errorf("Failed to create occlusion query: %s", err)
		return nil
	}
	qc := &QueryContext{handle: h}
	g.prepared.queries[qc] = struct{}{}
	g.device.BeginQuery(h)
	g.frame.query = qc
	return qc
}

// EndOcclusionQuery stops the active query and returns it.
func (g *GraphicsStateGuardian) EndOcclusionQuery() *QueryContext {
	g.noCopy.Check()
	if !g.functional {
		return nil
	}
	qc := g.frame.query
	if qc == nil {
		g.misuse("EndOcclusionQuery called without an active query")
		return nil
	}
	g.device.EndQuery()
	qc.ended = true
	g.frame.query = nil
	return qc
}

/*
QueryResult returns the number of samples qc counted. Without wait it reports
false until the driver has the answer, with wait it blocks until then.
*/
func (g *GraphicsStateGuardian) QueryResult(qc *QueryContext, wait bool) (uint32, bool) {
	g.noCopy.Check()
	if qc == nil {
		return 0, false
	}
	if qc.ready {
		return qc.result, true
	}
	if !g.functional || !qc.ended || qc.handle == 0 {
		return 0, false
	}

	r, ok := g.device.QueryResult(qc.handle)
	if !ok && wait {
		g.device.Finish()
		r, ok = g.device.QueryResult(qc.handle)
	}
	if ok {
		qc.result, qc.ready = r, true
	}
	return r, ok
}

// ReleaseQuery schedules qc for destruction at the next BeginFrame. Safe to
// call from any goroutine.
func (g *GraphicsStateGuardian) ReleaseQuery(qc *QueryContext) {
	if qc == nil || qc.released.Swap(true) {
		return
	}
	g.queueRelease(func(q *releaseQueue) {
		q.queries = append(q.queries, qc)
	})
}

func (g *GraphicsStateGuardian) destroyQuery(qc *QueryContext) {
	if g.frame.query == qc {
		g.device.EndQuery()
		g.frame.query = nil
	}
	if qc.handle != 0 {
		g.device.DeleteQuery(qc.handle)
		qc.handle = 0
	}
	delete(g.prepared.queries, qc)
}
