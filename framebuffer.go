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
	"image"

	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// copyRegion resolves an empty rectangle to the current display region.
func (g *GraphicsStateGuardian) copyRegion(call string, r gmath.Recti32) (gmath.Recti32, bool) {
	if g.draw.active {
		g.misuse("%s called inside BeginDrawPrimitives", call)
		return r, false
	}
	if r.W == 0 && r.H == 0 {
		if !g.region.valid {
			g.errorf("%s: no display region", call)
			return r, false
		}
		r = g.region.viewport
	}
	if r.W <= 0 || r.H <= 0 {
		g.errorf("%s: invalid region %v", call, r)
		return r, false
	}
	return r, true
}

/*
CopyTexture replaces t's image on this GSG with region of the framebuffer.
An empty region copies the current display region, and without NPOT support
the copy grows to the next power of two. t's RAM image is not touched: the
copy lasts until t is modified, evicted or released.
*/
func (g *GraphicsStateGuardian) CopyTexture(t *resource.Texture, region gmath.Recti32) bool {
	g.noCopy.Check()
	if !g.functional || t == nil {
		return false
	}
	region, ok := g.copyRegion("CopyTexture", region)
	if !ok {
		return false
	}
	snap := t.Snapshot()
	if snap.Type != resource.Texture2D {
		g.errorf("Texture %q: cannot copy the framebuffer into a %s texture", t.Name(), snap.Type)
		return false
	}

	size := gmath.Extent3i32{X: region.W, Y: region.H, Z: 1}
	if !g.caps.SupportsNPOT {
		size.X, size.Y = ceilPowerOfTwo(size.X), ceilPowerOfTwo(size.Y)
	}
	if exceeds(resource.Texture2D, size, g.maxTextureDimension(resource.Texture2D)) {
		g.errorf("Texture %q: copy of %v exceeds %d", t.Name(), size, g.maxTextureDimension(resource.Texture2D))
		return false
	}
	internal, ok := g.device.InternalFormat(resource.FormatRGBA, resource.ComponentU8, resource.CompressionNone)
	if !ok {
		g.errorf("Texture %q: RGBA copies unsupported", t.Name())
		return false
	}

	tc := g.PrepareTexture(t)
	if tc == nil {
		return false
	}
	if tc.handle == 0 && !g.createTexture(tc) {
		return false
	}
	g.selectUnit(0)
	g.device.BindTexture(tc.target, tc.handle)
	g.slotMask.Clear(state.MaskOf(state.SlotTexture))

	layout := textureLayout{textureType: resource.Texture2D, size: size, numLevels: 1, internal: internal}
	reuse, ok := g.bindLayout(tc, layout)
	if !ok {
		return false
	}
	g.device.TexParameters(tc.target, g.samplerParams(&snap.Sampler, 1, false))

	d := native.TexImageDesc{Target: tc.target, InternalFormat: internal, Size: size}
	var err error
	if reuse {
		err = g.device.CopyTexSubImage(d, region.X, region.Y)
	} else {
		err = g.device.CopyTexImage(d, region.X, region.Y)
	}
	if err != nil {
		g.errorf("Failed to copy %v into texture %q: %s", region, t.Name(), err)
		tc.layout = textureLayout{}
		tc.applied = false
		return false
	}

	desc := resource.TextureDesc{
		Type: resource.Texture2D, Size: size, Format: resource.FormatRGBA,
		ComponentType: resource.ComponentU8, Sampler: snap.Sampler,
	}
	memory := int64(resource.ImageSize(&desc, size))
	g.prepared.textureMemory += memory - tc.memory
	tc.desc = desc
	tc.layout = layout
	tc.autoMipmap = false
	tc.memory = memory
	tc.loaded, tc.placeholder = true, false
	g.markLoaded(tc, &snap)
	g.logger.VPrintf("Copied %v into texture %q %v, reuse: %t", region, t.Name(), size, reuse)
	return true
}

// CopyPixels reads region of the framebuffer back as 8 bit RGBA, top row
// first. An empty region reads the current display region.
func (g *GraphicsStateGuardian) CopyPixels(region gmath.Recti32) (*image.NRGBA, bool) {
	g.noCopy.Check()
	if !g.functional {
		return nil, false
	}
	region, ok := g.copyRegion("CopyPixels", region)
	if !ok {
		return nil, false
	}
	format, ok1 := g.device.ExternalFormat(resource.FormatRGBA)
	ctype, ok2 := g.device.ComponentType(resource.ComponentU8)
	if !ok1 || !ok2 {
		g.errorf("CopyPixels: RGBA read back unsupported")
		return nil, false
	}

	w, h := int(region.W), int(region.H)
	stride := w * 4
	buf := make([]byte, stride*h)
	if err := g.device.ReadPixels(region, format, ctype, buf); err != nil {
		g.errorf("Failed to read pixels %v: %s", region, err)
		return nil, false
	}

	// the framebuffer's origin is its bottom left corner
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], buf[(h-1-y)*stride:])
	}
	return img, true
}
