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
	"context"
	"errors"
	"sync"

	"goarrg.com/debug"
	"golang.org/x/sync/errgroup"

	"goarrg.com/rhi/gsg/resource"
)

/*
AsyncLoader runs resource.Loader calls on a bounded pool of goroutines. It
only ever touches textures through their own locked setters, the render
goroutine notices a finished load through the texture's image counter.
*/
type AsyncLoader struct {
	loader resource.Loader
	logger *debug.Logger
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mtx     sync.Mutex
	pending map[*resource.Texture]struct{}
	// backlog holds loads that found the pool full.
	backlog []*resource.Texture
	closed  bool
}

// NewAsyncLoader returns a loader running at most workers loads at once. A
// nil loader gives an AsyncLoader that never loads anything.
func NewAsyncLoader(loader resource.Loader, workers int) *AsyncLoader {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(1, workers))
	return &AsyncLoader{
		loader:  loader,
		logger:  debug.NewLogger("gsg", "loader"),
		ctx:     ctx,
		cancel:  cancel,
		group:   group,
		pending: map[*resource.Texture]struct{}{},
	}
}

func (a *AsyncLoader) Enabled() bool {
	return a != nil && a.loader != nil
}

// Pending reports whether a load of t is queued or running.
func (a *AsyncLoader) Pending(t *resource.Texture) bool {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	_, ok := a.pending[t]
	return ok
}

// Schedule starts loading t in the background, it reports false if t was
// already pending or the loader is disabled or closed.
func (a *AsyncLoader) Schedule(t *resource.Texture) bool {
	if !a.Enabled() {
		return false
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.closed {
		return false
	}
	if _, ok := a.pending[t]; ok {
		return false
	}
	a.pending[t] = struct{}{}
	if !a.group.TryGo(a.loadFunc(t)) {
		a.backlog = append(a.backlog, t)
	}
	return true
}

// Pump starts as much of the backlog as the pool has room for.
func (a *AsyncLoader) Pump() {
	if !a.Enabled() {
		return
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	for len(a.backlog) > 0 && !a.closed {
		if !a.group.TryGo(a.loadFunc(a.backlog[0])) {
			return
		}
		a.backlog = a.backlog[1:]
	}
}

func (a *AsyncLoader) loadFunc(t *resource.Texture) func() error {
	return func() error {
		defer func() {
			a.mtx.Lock()
			delete(a.pending, t)
			a.mtx.Unlock()
		}()
		if err := a.loader.Load(a.ctx, t); err != nil {
			if !errors.Is(err, context.Canceled) {
				a.logger.EPrintf("Failed to load texture %q: %s", t.Name(), err)
			}
			return nil
		}
		a.logger.VPrintf("Loaded texture %q", t.Name())
		return nil
	}
}

// LoadNow loads t on the calling goroutine.
func (a *AsyncLoader) LoadNow(t *resource.Texture) error {
	if !a.Enabled() {
		return debug.Errorf("No loader for texture %q", t.Name())
	}
	return a.loader.Load(a.ctx, t)
}

// Close cancels outstanding loads and waits for running ones to return.
func (a *AsyncLoader) Close() {
	if a == nil {
		return
	}
	a.mtx.Lock()
	a.closed = true
	a.backlog = nil
	a.mtx.Unlock()
	a.cancel()
	_ = a.group.Wait()
}
