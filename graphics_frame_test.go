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
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/native/record"
	"goarrg.com/rhi/gsg/state"
)

func beginFrame(t *testing.T, g *GraphicsStateGuardian) {
	t.Helper()
	ok, err := g.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFrameNesting(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)
	d.ClearCalls()

	ok, err := g.BeginScene()
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, g.EndFrame())
	assert.Zero(t, d.Count("BeginScene"))

	beginFrame(t, g)
	assert.Equal(t, uint64(1), g.FrameNumber())
	assert.PanicsWithValue(t, "Fatal Error", func() { _, _ = g.BeginFrame() })

	ok, err = g.BeginScene()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, g.EndScene())
	require.NoError(t, g.EndFrame())
	assert.Equal(t, []string{"BeginScene", "EndScene", "Present"}, d.Names())

	beginFrame(t, g)
	assert.Equal(t, uint64(2), g.FrameNumber())
	require.NoError(t, g.EndFrame())
}

func TestFrameNestingStrict(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d, func(c *Config) { c.Strict = true })

	assert.PanicsWithValue(t, "Fatal Error", func() { _, _ = g.BeginScene() })
	assert.PanicsWithValue(t, "Fatal Error", func() { _ = g.EndFrame() })
	beginFrame(t, g)
	assert.PanicsWithValue(t, "Fatal Error", func() { _ = g.EndScene() })
}

func TestBeginFrameForcesFullState(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	s := state.MakeState(state.MakeDepthTest(state.CompareLessEqual))
	g.SetStateAndTransform(s, state.IdentityTransform())
	beginFrame(t, g)

	d.ClearCalls()
	g.SetStateAndTransform(s, nil)
	assert.Equal(t, 1, d.Count("DepthFunc"))
	// enables survive frames
	assert.Zero(t, d.Count("Enable"))
	require.NoError(t, g.EndFrame())
}

func TestClear(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	g.SetStateAndTransform(state.MakeState(state.MakeColorWrite(state.ColorWriteRed), state.MakeDepthWrite(false)), nil)

	req := ClearRequest{Color: true, ColorValue: state.Vec4{0, 0, 0, 1}, Depth: true, DepthValue: 1}
	d.ClearCalls()
	g.Clear(req)
	assert.Equal(t, []string{"ClearColor", "ColorMask", "ClearDepth", "DepthMask", "Clear", "ColorMask", "DepthMask"}, d.Names())
	assert.Equal(t, []any{native.ClearColor | native.ClearDepth}, d.Find("Clear")[0].Args)
	masks := d.Find("ColorMask")
	assert.Equal(t, []any{true, true, true, true}, masks[0].Args)
	assert.Equal(t, []any{true, false, false, false}, masks[1].Args)
	assert.Equal(t, []any{false}, d.Find("DepthMask")[1].Args)

	// clear values are cached
	d.ClearCalls()
	g.Clear(req)
	assert.Equal(t, []string{"ColorMask", "DepthMask", "Clear", "ColorMask", "DepthMask"}, d.Names())

	d.ClearCalls()
	g.Clear(ClearRequest{Stencil: true, StencilValue: 3})
	assert.Equal(t, []string{"ClearStencil", "Clear"}, d.Names())

	d.ClearCalls()
	g.Clear(ClearRequest{})
	assert.Empty(t, d.Calls)
}

func TestDisplayRegion(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	full := gmath.Recti32{X: 0, Y: 0, W: 640, H: 480}
	d.ClearCalls()
	g.PrepareDisplayRegion(full, full)
	assert.Equal(t, []string{"Viewport", "Scissor", "Enable"}, d.Names())
	assert.Equal(t, []bool{true}, enableCalls(d, native.CapScissorTest))

	d.ClearCalls()
	g.SetStateAndTransform(state.MakeState(state.MakeScissor(0, 0.5, 0, 0.5)), nil)
	require.Len(t, d.Find("Scissor"), 1)
	assert.Equal(t, []any{gmath.Recti32{X: 0, Y: 0, W: 320, H: 240}}, d.Find("Scissor")[0].Args)

	// without a scissor attrib the region's own scissor applies
	d.ClearCalls()
	g.SetStateAndTransform(state.MakeState(state.MakeScissorOff()), nil)
	require.Len(t, d.Find("Scissor"), 1)
	assert.Equal(t, []any{full}, d.Find("Scissor")[0].Args)
	assert.Empty(t, enableCalls(d, native.CapScissorTest))

	// same region again only invalidates the scissor routine
	d.ClearCalls()
	g.PrepareDisplayRegion(full, full)
	assert.Empty(t, d.Calls)

	d.ClearCalls()
	g.PrepareDisplayRegion(gmath.Recti32{W: -1}, full)
	assert.Equal(t, []bool{false}, enableCalls(d, native.CapScissorTest))
	assert.Zero(t, d.Count("Viewport"))
}

func TestSurfaceLoss(t *testing.T) {
	l := record.NewLosable()
	g := newTestGSG(t, l)

	tex := testTexture("t", 4, 4)
	beginFrame(t, g)
	g.SetStateAndTransform(textureState(tex), state.IdentityTransform())
	require.NoError(t, g.EndFrame())

	l.SceneErrs = []error{native.ErrSurfaceLost}
	l.Levels = []native.CooperativeLevel{native.CooperativeLostExclusive}
	beginFrame(t, g)
	ok, err := g.BeginScene()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, g.IsLost())
	l.ClearCalls()
	require.NoError(t, g.EndFrame())
	assert.Zero(t, l.Count("Present"))

	l.Levels = []native.CooperativeLevel{native.CooperativeExclusiveAlreadySet}
	ok, err = g.BeginFrame()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, g.IsLost())

	l.RestoreErr = errors.New("still busy")
	ok, err = g.BeginFrame()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, l.Restored)

	l.RestoreErr = nil
	l.ClearCalls()
	beginFrame(t, g)
	assert.False(t, g.IsLost())
	assert.Equal(t, 1, l.Restored)
	// device state is reestablished
	assert.Equal(t, []bool{false}, enableCalls(l.Device, native.CapDither))

	l.ClearCalls()
	g.SetStateAndTransform(textureState(tex), state.IdentityTransform())
	assert.Equal(t, 1, l.Count("TexImage"))
	assert.Zero(t, l.Count("GenTexture"))
	require.NoError(t, g.EndFrame())
}

func TestDisplayModeChanged(t *testing.T) {
	l := record.NewLosable()
	g := newTestGSG(t, l)

	l.PresentErrs = []error{native.ErrSurfaceLost}
	l.Levels = []native.CooperativeLevel{native.CooperativeWrongMode}
	beginFrame(t, g)
	err := g.EndFrame()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrorDisplayModeChanged{}))
	assert.False(t, g.IsFunctional())

	ok, err := g.BeginFrame()
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestSurfaceErrorWithoutOwner(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	d.SceneErrs = []error{native.ErrSurfaceLost}
	beginFrame(t, g)
	ok, err := g.BeginScene()
	assert.False(t, ok)
	assert.True(t, errors.Is(err, native.ErrSurfaceLost))
	assert.False(t, g.IsLost())
	require.NoError(t, g.EndFrame())
}

func TestDeferredRelease(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	tex := testTexture("t", 4, 4)
	tc := g.PrepareTexture(tex)
	require.True(t, g.ApplyTexture(tc))
	handle := tc.Handle()

	wg := sync.WaitGroup{}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.ReleaseTexture(tc)
		}()
	}
	wg.Wait()
	assert.Zero(t, d.Count("DeleteTexture"))

	beginFrame(t, g)
	deleted := d.Find("DeleteTexture")
	require.Len(t, deleted, 1)
	assert.Equal(t, []any{handle}, deleted[0].Args)
	assert.NotContains(t, g.prepared.textures, tex)
	assert.Zero(t, g.prepared.textureMemory)
	require.NoError(t, g.EndFrame())

	// a released texture gets a fresh context
	assert.NotSame(t, tc, g.PrepareTexture(tex))
}

func TestEnqueueFromGoroutine(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	tex := testTexture("t", 4, 4)
	done := make(chan struct{})
	go func() {
		g.EnqueueTexture(tex)
		close(done)
	}()
	<-done
	assert.Zero(t, d.Count("TexImage"))

	beginFrame(t, g)
	assert.Equal(t, 1, d.Count("TexImage"))
	require.Contains(t, g.prepared.textures, tex)
	assert.True(t, g.prepared.textures[tex].IsLoaded())
	require.NoError(t, g.EndFrame())
}

func TestOcclusionQuery(t *testing.T) {
	d := record.New()
	g := newTestGSG(t, d)

	assert.Nil(t, g.EndOcclusionQuery())

	qc := g.BeginOcclusionQuery()
	require.NotNil(t, qc)
	assert.Nil(t, g.BeginOcclusionQuery())

	n, ok := g.QueryResult(qc, false)
	assert.False(t, ok, "query still running")
	assert.Zero(t, n)

	assert.Same(t, qc, g.EndOcclusionQuery())
	n, ok = g.QueryResult(qc, true)
	require.True(t, ok)
	assert.Equal(t, uint32(1), n)

	d.ClearCalls()
	n, ok = g.QueryResult(qc, false)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), n)
	assert.Empty(t, d.Calls, "results are cached")

	handle := qc.Handle()
	g.ReleaseQuery(qc)
	beginFrame(t, g)
	require.Len(t, d.Find("DeleteQuery"), 1)
	assert.Equal(t, []any{handle}, d.Find("DeleteQuery")[0].Args)
	require.NoError(t, g.EndFrame())
}

func TestOcclusionQueryUnsupported(t *testing.T) {
	d := record.New().WithoutExtensions("GL_ARB_occlusion_query")
	d.Info.Version = "1.1.0"
	g := newTestGSG(t, d)

	assert.Nil(t, g.BeginOcclusionQuery())
	assert.Zero(t, d.Count("GenQuery"))
}
