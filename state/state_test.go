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

package state

import (
	"image"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goarrg.com/rhi/gsg/resource"
)

func (t *internTable[T]) contains(v T) bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	_, ok := t.table[v]
	return ok
}

func TestInternPointerEquality(t *testing.T) {
	assert.Same(t, MakeDepthTest(CompareLessEqual), MakeDepthTest(CompareLessEqual))
	assert.NotSame(t, MakeDepthTest(CompareLessEqual), MakeDepthTest(CompareLess))

	a := MakeState(MakeDepthTest(CompareLessEqual), MakeCullFace(CullNone))
	b := MakeState(MakeCullFace(CullNone), MakeDepthTest(CompareLessEqual))
	assert.Same(t, a, b)

	stage := MakeTextureStage(TextureStage{Name: "detail", Sort: 1})
	assert.Same(t, stage, MakeTextureStage(TextureStage{Name: "detail", Sort: 1, TexcoordName: "texcoord"}))

	l1 := MakeLight(Light{Name: "sun", Kind: LightDirectional, Direction: Vec3{0, 0, -1}})
	l2 := MakeLight(Light{Name: "sun", Kind: LightDirectional, Direction: Vec3{0, 0, -1}})
	assert.Same(t, MakeLights(l1), MakeLights(l2))
}

func TestInternConcurrent(t *testing.T) {
	const workers = 8
	results := make([]*RenderState, workers)
	wg := sync.WaitGroup{}
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = MakeState(MakeFlatColor(Vec4{0.25, 0.5, 0.75, 1}), MakeDepthWrite(false))
		}()
	}
	wg.Wait()
	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

func TestInternEviction(t *testing.T) {
	m := TranslateMat4(1234, 5678, 91011)
	key := TransformState{mat: m}
	func() {
		p := MakeTransform(m)
		require.True(t, transforms.contains(key))
		runtime.KeepAlive(p)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return !transforms.contains(key)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRenderStateDerive(t *testing.T) {
	base := MakeState(MakeDepthTest(CompareLess))
	with := base.With(MakeCullFace(CullNone))
	assert.True(t, with.Has(SlotCullFace))
	assert.Same(t, base, with.Without(SlotCullFace))
	assert.Same(t, base, base.With(MakeDepthTest(CompareLess)))

	top := MakeState(MakeDepthTest(CompareAlways))
	composed := with.Compose(top)
	assert.Equal(t, CompareAlways, composed.DepthTest().Func)
	assert.Equal(t, CullNone, composed.CullFace().Mode)
	assert.Same(t, with, with.Compose(EmptyState()))
	assert.Same(t, top, EmptyState().Compose(top))
}

func TestRenderStateDefaults(t *testing.T) {
	s := EmptyState()
	assert.True(t, s.IsEmpty())
	for slot := Slot(0); slot < NumSlots; slot++ {
		assert.Nil(t, s.Attrib(slot))
		a := s.Get(slot)
		require.NotNil(t, a, slot.String())
		assert.Equal(t, slot, a.Slot())
		assert.Same(t, DefaultAttrib(slot), a)
	}
	assert.Equal(t, CullClockwise, s.CullFace().Mode)
	assert.True(t, s.DepthWrite().Enabled)
	assert.True(t, s.ColorScale().IsIdentity())
	assert.Equal(t, ColorWriteAll, s.ColorWrite().Channels)
}

func TestTextureAttribOrder(t *testing.T) {
	a := MakeTextureStage(TextureStage{Name: "a", Sort: 2})
	b := MakeTextureStage(TextureStage{Name: "b", Sort: 0})
	c := MakeTextureStage(TextureStage{Name: "c", Sort: 1})
	tex := newTestTexture(t)

	attr := MakeTexture(
		TextureEntry{Stage: a, Texture: tex},
		TextureEntry{Stage: b, Texture: tex},
		TextureEntry{Stage: c, Texture: tex},
		TextureEntry{Stage: b, Texture: tex},
	)
	require.Equal(t, uint8(3), attr.Num)
	assert.Same(t, b, attr.Entries[0].Stage)
	assert.Same(t, c, attr.Entries[1].Stage)
	assert.Same(t, a, attr.Entries[2].Stage)
	assert.Same(t, tex, attr.Texture(c))
	assert.Nil(t, attr.Texture(DefaultTextureStage()))
}

func TestTexMatrixDropsIdentity(t *testing.T) {
	stage := DefaultTextureStage()
	attr := MakeTexMatrix(TexMatrixEntry{Stage: stage, Transform: IdentityTransform()})
	assert.Equal(t, uint8(0), attr.Num)
	assert.Same(t, MakeTexMatrix(), attr)

	scaled := IdentityTransform().Scale(2, 2, 1)
	attr = MakeTexMatrix(TexMatrixEntry{Stage: stage, Transform: scaled})
	assert.Same(t, scaled, attr.Transform(stage))
}

func TestTransformCompose(t *testing.T) {
	id := IdentityTransform()
	assert.Same(t, id, MakeTransform(IdentityMat4()))

	tr := id.Translate(1, 2, 3)
	assert.Same(t, tr, id.Compose(tr))
	assert.Same(t, tr, tr.Compose(id))

	v := tr.Scale(2, 2, 2).Mat().Transform(Vec4{1, 1, 1, 1})
	assert.Equal(t, Vec4{3, 4, 5, 1}, v)

	s, ok := MakeTransform(ScaleMat4(3, 3, 3)).Mat().UniformScale()
	assert.True(t, ok)
	assert.InDelta(t, 3, s, 1e-6)
	_, ok = MakeTransform(ScaleMat4(1, 2, 1)).Mat().UniformScale()
	assert.False(t, ok)

	r := RotateMat4(math32.Pi/2, Vec3{0, 0, 1}).Transform(Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0, r[0], 1e-6)
	assert.InDelta(t, 1, r[1], 1e-6)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "LessEqual", CompareLessEqual.String())
	assert.Equal(t, "CompareFunc(99)", CompareFunc(99).String())
	assert.False(t, CompareFunc(99).Valid())
	assert.Equal(t, "RGB", ColorWriteRGB.String())
	assert.Equal(t, "Off", ColorWriteOff.String())
	assert.Equal(t, "Line|Multisample", (AntialiasLine | AntialiasMultisample).String())
	assert.Equal(t, "{DepthTest, Texture}", MaskOf(SlotDepthTest, SlotTexture).String())
	assert.Equal(t, int(NumSlots), AllSlots.Len())
}

func TestCullFaceReverse(t *testing.T) {
	assert.Equal(t, CullCounterClockwise, MakeCullFaceReverse(CullClockwise).EffectiveMode())
	assert.Equal(t, CullNone, MakeCullFaceReverse(CullNone).EffectiveMode())
}

func TestLightHelpers(t *testing.T) {
	dir := MakeLight(Light{Kind: LightDirectional, Direction: Vec3{0, 0, -1}})
	assert.Equal(t, Vec4{0, 0, 1, 0}, dir.HomogeneousPosition())
	assert.Equal(t, float32(180), dir.SpotCutoff())
	assert.Equal(t, Vec3{1, 0, 0}, dir.Attenuation)

	spot := MakeLight(Light{Kind: LightSpot, Cutoff: 120})
	assert.Equal(t, float32(90), spot.SpotCutoff())
}

func newTestTexture(t *testing.T) *resource.Texture {
	t.Helper()
	return resource.NewTextureFromImage(t.Name(), image.NewRGBA(image.Rect(0, 0, 2, 2)))
}
