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

	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

// textureLayout is what decides whether a native texture can be updated in
// place or has to be recreated.
type textureLayout struct {
	textureType resource.TextureType
	size        gmath.Extent3i32
	numLevels   int32
	internal    native.Enum
}

// TextureContext is a texture prepared on one GSG.
type TextureContext struct {
	texture *resource.Texture
	handle  native.Handle
	target  native.Enum

	// desc, layout and autoMipmap describe what the native object holds.
	desc       resource.TextureDesc
	layout     textureLayout
	autoMipmap bool

	imageModified      uint64
	propertiesModified uint64

	// applied is false until an upload succeeds, and after one fails.
	applied     bool
	loaded      bool
	placeholder bool
	memory      int64
	released    atomic.Bool
}

func (tc *TextureContext) Texture() *resource.Texture {
	return tc.texture
}

func (tc *TextureContext) Handle() native.Handle {
	return tc.handle
}

// IsLoaded reports whether the full image, not a placeholder, is resident.
func (tc *TextureContext) IsLoaded() bool {
	return tc.loaded
}

func (tc *TextureContext) IsPlaceholder() bool {
	return tc.placeholder
}

func (tc *TextureContext) hasImage() bool {
	return tc.layout != textureLayout{}
}

func (g *GraphicsStateGuardian) textureTypeSupported(t resource.TextureType) bool {
	switch t {
	case resource.Texture1D, resource.Texture2D:
		return true
	case resource.Texture3D:
		return g.caps.SupportsTexture3D
	case resource.TextureCubeMap:
		return g.caps.SupportsCubeMap
	}
	return false
}

func (g *GraphicsStateGuardian) maxTextureDimension(t resource.TextureType) int32 {
	switch t {
	case resource.Texture3D:
		return min(g.caps.Max3DTextureDimension, g.caps.MaxTextureDimension)
	case resource.TextureCubeMap:
		return min(g.caps.MaxCubeMapDimension, g.caps.MaxTextureDimension)
	}
	return g.caps.MaxTextureDimension
}

func exceeds(t resource.TextureType, size gmath.Extent3i32, limit int32) bool {
	return size.X > limit || size.Y > limit || (t == resource.Texture3D && size.Z > limit)
}

// PrepareTexture returns t's context, creating the native object on first
// use. Pixels are uploaded lazily by ApplyTexture.
func (g *GraphicsStateGuardian) PrepareTexture(t *resource.Texture) *TextureContext {
	g.noCopy.Check()
	if !g.functional || t == nil {
		return nil
	}
	if tc, ok := g.prepared.textures[t]; ok && !tc.released.Load() {
		return tc
	}

	desc := t.Desc()
	if !g.textureTypeSupported(desc.Type) {
		g.errorf("Texture %q: %s textures unsupported", t.Name(), desc.Type)
		return nil
	}
	target, ok := g.device.TextureTarget(desc.Type)
	if !ok {
		g.errorf("Texture %q: invalid texture type %s", t.Name(), desc.Type)
		return nil
	}

	tc := &TextureContext{texture: t, target: target}
	if !g.createTexture(tc) {
		return nil
	}
	g.prepared.textures[t] = tc
	g.logger.VPrintf("Prepared texture %q", t.Name())
	return tc
}

func (g *GraphicsStateGuardian) createTexture(tc *TextureContext) bool {
	h, err := g.device.GenTexture()
	if err != nil {
		g.errorf("Failed to create texture %q: %s", tc.texture.Name(), err)
		return false
	}
	tc.handle = h
	return true
}

// ApplyTexture binds tc to the active texture unit and brings its image up
// to date. It returns false if the texture cannot be used.
func (g *GraphicsStateGuardian) ApplyTexture(tc *TextureContext) bool {
	g.noCopy.Check()
	if !g.functional || tc == nil {
		return false
	}
	if tc.handle == 0 && !g.createTexture(tc) {
		tc.applied = false
		return false
	}
	g.device.BindTexture(tc.target, tc.handle)
	return g.UpdateTexture(tc, false)
}

/*
UpdateTexture uploads whatever changed since tc was last loaded, tc must be
bound. With force set a texture without a RAM image is loaded synchronously
instead of showing a placeholder.
*/
func (g *GraphicsStateGuardian) UpdateTexture(tc *TextureContext, force bool) bool {
	g.noCopy.Check()
	if !g.functional || tc == nil {
		return false
	}

	snap := tc.texture.Snapshot()
	switch {
	case !tc.applied || snap.ImageModified != tc.imageModified || (force && !tc.loaded):
		if !g.uploadTexture(tc, &snap, force) {
			tc.applied = false
			return false
		}
	case snap.PropertiesModified != tc.propertiesModified:
		if snap.UsesMipmaps() && tc.layout.numLevels <= 1 && !tc.autoMipmap && !tc.placeholder {
			// mipmaps were switched on, the levels have to be uploaded
			if !g.uploadTexture(tc, &snap, force) {
				tc.applied = false
				return false
			}
			break
		}
		g.device.TexParameters(tc.target, g.samplerParams(&snap.Sampler, tc.layout.numLevels, tc.autoMipmap))
		tc.desc.Sampler = snap.Sampler
	}

	g.markLoaded(tc, &snap)
	return true
}

func (g *GraphicsStateGuardian) markLoaded(tc *TextureContext, snap *resource.TextureSnapshot) {
	tc.imageModified = snap.ImageModified
	tc.propertiesModified = snap.PropertiesModified
	tc.applied = true
	if tc.memory > 0 {
		g.prepared.textureLRU.Touch(tc)
	}
}

// ReleaseTexture schedules tc for destruction at the next BeginFrame. Safe to
// call from any goroutine.
func (g *GraphicsStateGuardian) ReleaseTexture(tc *TextureContext) {
	if tc == nil || tc.released.Swap(true) {
		return
	}
	g.queueRelease(func(q *releaseQueue) {
		q.textures = append(q.textures, tc)
	})
}

func (g *GraphicsStateGuardian) destroyTexture(tc *TextureContext) {
	if tc.handle != 0 {
		g.device.DeleteTexture(tc.handle)
		tc.handle = 0
	}
	g.prepared.textureLRU.Remove(tc)
	g.prepared.textureMemory -= tc.memory
	tc.memory = 0
	tc.layout = textureLayout{}
	tc.applied, tc.loaded = false, false
	if g.prepared.textures[tc.texture] == tc {
		delete(g.prepared.textures, tc.texture)
	}
	for i, b := range g.units.textures {
		if b == tc {
			g.units.textures[i] = nil
			g.slotMask.Clear(state.MaskOf(state.SlotTexture))
		}
	}
}

// evictTexture frees the native image but keeps the context, the next apply
// uploads it again.
func (g *GraphicsStateGuardian) evictTexture(tc *TextureContext) {
	if tc.handle != 0 {
		g.device.DeleteTexture(tc.handle)
		tc.handle = 0
	}
	g.prepared.textureLRU.Remove(tc)
	g.prepared.textureMemory -= tc.memory
	tc.memory = 0
	tc.layout = textureLayout{}
	tc.applied, tc.loaded, tc.placeholder = false, false, false
}

// uploadNow binds tc on unit 0 outside of the texture routine.
func (g *GraphicsStateGuardian) uploadNow(tc *TextureContext) bool {
	g.selectUnit(0)
	ok := g.ApplyTexture(tc)
	g.slotMask.Clear(state.MaskOf(state.SlotTexture))
	return ok
}

// markTexturesForReload forces every prepared texture to upload again, as
// after the device's surfaces were restored.
func (g *GraphicsStateGuardian) markTexturesForReload() {
	for _, tc := range g.prepared.textures {
		tc.applied = false
		tc.layout = textureLayout{}
	}
	g.slotMask.Clear(state.MaskOf(state.SlotTexture))
}

// bindLayout makes sure the bound native object can take an image of layout,
// recreating it when it holds something else. It reports whether the
// existing storage can be updated in place.
func (g *GraphicsStateGuardian) bindLayout(tc *TextureContext, layout textureLayout) (reuse bool, ok bool) {
	if tc.layout == layout && !tc.placeholder {
		return true, true
	}
	if tc.hasImage() {
		g.logger.VPrintf("Recreating texture %q", tc.texture.Name())
		g.device.DeleteTexture(tc.handle)
		tc.handle = 0
		tc.layout = textureLayout{}
		if !g.createTexture(tc) {
			return false, false
		}
		g.device.BindTexture(tc.target, tc.handle)
	}
	return false, true
}

func (g *GraphicsStateGuardian) uploadTexture(tc *TextureContext, snap *resource.TextureSnapshot, force bool) bool {
	name := tc.texture.Name()

	if !snap.HasRAMImage() {
		if !force && g.config.IncompleteRender && g.loader.Enabled() {
			return g.uploadPlaceholder(tc, snap)
		}
		if !g.loadNow(tc, snap) {
			return false
		}
	}

	if !g.caps.SupportsCompression(snap.Compression) {
		if snap.Filename == "" || !g.loader.Enabled() {
			g.errorf("Texture %q: %s compression unsupported and no uncompressed image", name, snap.Compression)
			return false
		}
		g.warnOnce("compression "+snap.Compression.String(), "%s compression unsupported, reloading %q uncompressed", snap.Compression, name)
		if !force && g.config.IncompleteRender {
			return g.uploadPlaceholder(tc, snap)
		}
		if !g.loadNow(tc, snap) {
			return false
		}
		if !g.caps.SupportsCompression(snap.Compression) {
			g.errorf("Texture %q: reload is still %s compressed", name, snap.Compression)
			return false
		}
	}

	desc := snap.TextureDesc
	levels := snap.Levels
	for i, level := range levels {
		if want := resource.ImageSize(&desc, level.Size); len(level.Data) < want {
			g.errorf("Texture %q: level %d has %d bytes, want %d", name, i, len(level.Data), want)
			return false
		}
	}

	levels, ok := g.fitTexture(name, &desc, levels)
	if !ok {
		return false
	}

	full := int32(resource.NumLevels(levels[0].Size))
	autoMip := false
	switch {
	case !snap.UsesMipmaps():
		levels = levels[:1]
	case int32(len(levels)) >= full:
	case g.config.DriverGenerateMipmaps && desc.Compression == resource.CompressionNone &&
		(g.caps.SupportsGenerateMipmap || g.caps.SupportsAutoMipmap):
		autoMip = true
		levels = levels[:1]
	case canScale(&desc):
		levels = generateMipmaps(&desc, levels)
	default:
		g.warnOnce("mipmap "+name, "Texture %q cannot generate mipmaps, sampling %d levels", name, len(levels))
	}

	if (desc.Format == resource.FormatBGRA || desc.Format == resource.FormatBGR) && !g.caps.SupportsBGR {
		if desc.ComponentType != resource.ComponentU8 || desc.Compression != resource.CompressionNone {
			g.errorf("Texture %q: BGR order unsupported for %s", name, desc.ComponentType)
			return false
		}
		levels = swizzleBGR(&desc, levels)
	}

	internal, ok1 := g.device.InternalFormat(desc.Format, desc.ComponentType, desc.Compression)
	format, ok2 := g.device.ExternalFormat(desc.Format)
	ctype, ok3 := g.device.ComponentType(desc.ComponentType)
	if !ok1 || !ok2 || !ok3 {
		g.errorf("Texture %q: unsupported format %s", name, desc)
		return false
	}

	numLevels := int32(len(levels))
	if autoMip {
		numLevels = full
	}
	layout := textureLayout{textureType: desc.Type, size: levels[0].Size, numLevels: numLevels, internal: internal}
	reuse, ok := g.bindLayout(tc, layout)
	if !ok {
		return false
	}

	params := g.samplerParams(&desc.Sampler, numLevels, autoMip)
	params.AutoMipmap = autoMip && !g.caps.SupportsGenerateMipmap
	g.device.TexParameters(tc.target, params)

	compressed := desc.Compression != resource.CompressionNone
	faces := faceCount(desc.Type)
	memory := int64(0)
	for i, level := range levels {
		faceSize := resource.ImageSize(&desc, level.Size) / faces
		memory += int64(faceSize * faces)
		for face := 0; face < faces; face++ {
			target := tc.target
			if desc.Type == resource.TextureCubeMap {
				target, _ = g.device.CubeFaceTarget(face)
			}
			d := native.TexImageDesc{
				Target: target, Level: int32(i), InternalFormat: internal,
				Format: format, Type: ctype, Size: level.Size,
			}
			data := level.Data[face*faceSize : (face+1)*faceSize]

			var err error
			switch {
			case compressed && reuse:
				err = g.device.CompressedTexSubImage(d, data)
			case compressed:
				err = g.device.CompressedTexImage(d, data)
			case reuse:
				err = g.device.TexSubImage(d, data)
			default:
				err = g.device.TexImage(d, data)
			}
			if err != nil {
				g.errorf("Failed to upload texture %q level %d: %s", name, i, err)
				tc.layout = textureLayout{}
				return false
			}
		}
	}
	if autoMip {
		if g.caps.SupportsGenerateMipmap {
			g.device.GenerateMipmap(tc.target)
		}
		memory += memory / 3
	}

	g.prepared.textureMemory += memory - tc.memory
	desc.Size = levels[0].Size
	tc.desc = desc
	tc.layout = layout
	tc.autoMipmap = autoMip
	tc.memory = memory
	tc.loaded, tc.placeholder = true, false
	g.logger.VPrintf("Uploaded texture %q %s %v, %d levels, reuse: %t", name, desc, desc.Size, numLevels, reuse)
	return true
}

// fitTexture picks the first level within the device limits, scaling on the
// CPU when no such level exists.
func (g *GraphicsStateGuardian) fitTexture(name string, desc *resource.TextureDesc, levels []resource.Image) ([]resource.Image, bool) {
	limit := g.maxTextureDimension(desc.Type)
	base := 0
	for base < len(levels) && exceeds(desc.Type, levels[base].Size, limit) {
		base++
	}
	if base < len(levels) {
		if base > 0 {
			g.logger.VPrintf("Texture %q: skipping %d levels larger than %d", name, base, limit)
		}
		levels = levels[base:]
	} else {
		if !canScale(desc) {
			g.errorf("Texture %q: %v exceeds %d and cannot be scaled", name, levels[0].Size, limit)
			return nil, false
		}
		k := 0
		for exceeds(desc.Type, resource.LevelSize(levels[0].Size, k), limit) {
			k++
		}
		g.logger.VPrintf("Texture %q: scaling %v to fit %d", name, levels[0].Size, limit)
		levels = []resource.Image{scaleImage(desc, levels[0], resource.LevelSize(levels[0].Size, k))}
	}

	size := levels[0].Size
	if !g.caps.SupportsNPOT && (!isPowerOfTwo(size.X) || !isPowerOfTwo(size.Y)) {
		if !canScale(desc) {
			g.errorf("Texture %q: %v is not a power of two", name, size)
			return nil, false
		}
		to := gmath.Extent3i32{X: floorPowerOfTwo(size.X), Y: floorPowerOfTwo(size.Y), Z: 1}
		g.logger.VPrintf("Texture %q: scaling %v to %v", name, size, to)
		levels = []resource.Image{scaleImage(desc, levels[0], to)}
	}
	return levels, true
}

func (g *GraphicsStateGuardian) loadNow(tc *TextureContext, snap *resource.TextureSnapshot) bool {
	if err := g.loader.LoadNow(tc.texture); err != nil {
		g.errorf("Failed to load texture %q: %s", tc.texture.Name(), err)
		return false
	}
	*snap = tc.texture.Snapshot()
	if !snap.HasRAMImage() {
		g.errorf("Texture %q has no image after loading", tc.texture.Name())
		return false
	}
	return true
}

var whiteTexel = []byte{0xFF, 0xFF, 0xFF, 0xFF}

/*
uploadPlaceholder shows a tiny stand in for tc and starts loading the real
image in the background. The stand in is the texture's own placeholder when
it has one, else a white texel.
*/
func (g *GraphicsStateGuardian) uploadPlaceholder(tc *TextureContext, snap *resource.TextureSnapshot) bool {
	desc := resource.TextureDesc{
		Type: snap.Type, Format: resource.FormatRGBA, ComponentType: resource.ComponentU8,
		Sampler: snap.Sampler,
	}
	faces := faceCount(desc.Type)
	img := resource.Image{Size: gmath.Extent3i32{X: 1, Y: 1, Z: 1}}
	for i := 0; i < faces; i++ {
		img.Data = append(img.Data, whiteTexel...)
	}
	if p := snap.Placeholder; p != nil && len(p.Data) >= resource.ImageSize(&desc, p.Size) &&
		!exceeds(desc.Type, p.Size, g.maxTextureDimension(desc.Type)) {
		img = *p
	}

	internal, ok1 := g.device.InternalFormat(desc.Format, desc.ComponentType, desc.Compression)
	format, ok2 := g.device.ExternalFormat(desc.Format)
	ctype, ok3 := g.device.ComponentType(desc.ComponentType)
	if !ok1 || !ok2 || !ok3 {
		g.errorf("Texture %q: placeholder format unsupported", tc.texture.Name())
		return false
	}

	if tc.hasImage() {
		if _, ok := g.bindLayout(tc, textureLayout{}); !ok {
			return false
		}
	}
	g.device.TexParameters(tc.target, g.samplerParams(&desc.Sampler, 1, false))

	faceSize := resource.ImageSize(&desc, img.Size) / faces
	for face := 0; face < faces; face++ {
		target := tc.target
		if desc.Type == resource.TextureCubeMap {
			target, _ = g.device.CubeFaceTarget(face)
		}
		d := native.TexImageDesc{
			Target: target, InternalFormat: internal, Format: format, Type: ctype, Size: img.Size,
		}
		if err := g.device.TexImage(d, img.Data[face*faceSize:(face+1)*faceSize]); err != nil {
			g.errorf("Failed to upload placeholder for %q: %s", tc.texture.Name(), err)
			return false
		}
	}

	memory := int64(faceSize * faces)
	g.prepared.textureMemory += memory - tc.memory
	desc.Size = img.Size
	tc.desc = desc
	tc.layout = textureLayout{textureType: desc.Type, size: img.Size, numLevels: 1, internal: internal}
	tc.autoMipmap = false
	tc.memory = memory
	tc.loaded, tc.placeholder = false, true

	if g.loader.Schedule(tc.texture) {
		g.logger.VPrintf("Texture %q: placeholder uploaded, loading in background", tc.texture.Name())
	}
	return true
}

func swizzleBGR(desc *resource.TextureDesc, levels []resource.Image) []resource.Image {
	n := desc.Format.Components()
	out := make([]resource.Image, len(levels))
	for i, level := range levels {
		data := make([]byte, len(level.Data))
		copy(data, level.Data)
		for p := 0; p+2 < len(data); p += n {
			data[p], data[p+2] = data[p+2], data[p]
		}
		out[i] = resource.Image{Size: level.Size, Data: data}
	}
	if desc.Format == resource.FormatBGRA {
		desc.Format = resource.FormatRGBA
	} else {
		desc.Format = resource.FormatRGB
	}
	return out
}

func demoteFilter(f resource.FilterMode) resource.FilterMode {
	switch f {
	case resource.FilterNearestMipmapNearest, resource.FilterNearestMipmapLinear:
		return resource.FilterNearest
	case resource.FilterLinearMipmapNearest, resource.FilterLinearMipmapLinear:
		return resource.FilterLinear
	}
	return f
}

func (g *GraphicsStateGuardian) wrapMode(w resource.WrapMode) native.Enum {
	switch w {
	case resource.WrapBorderColor:
		if !g.caps.SupportsBorderClamp {
			g.warnOnce("border clamp", "Border color wrap unsupported, using Clamp")
			w = resource.WrapClamp
		}
	case resource.WrapMirror:
		if !g.caps.SupportsMirror {
			g.warnOnce("mirror", "Mirror wrap unsupported, using Repeat")
			w = resource.WrapRepeat
		}
	case resource.WrapMirrorOnce:
		if !g.caps.SupportsMirrorOnce {
			g.warnOnce("mirror once", "Mirror once wrap unsupported, using Clamp")
			w = resource.WrapClamp
		}
	}
	return translate(g, g.device.WrapMode, w, resource.WrapRepeat)
}

func (g *GraphicsStateGuardian) samplerParams(s *resource.Sampler, numLevels int32, autoMip bool) native.SamplerParams {
	minFilter := s.MinFilter
	if numLevels <= 1 && !autoMip {
		minFilter = demoteFilter(minFilter)
	}
	p := native.SamplerParams{
		WrapS:       g.wrapMode(s.WrapU),
		WrapT:       g.wrapMode(s.WrapV),
		WrapR:       g.wrapMode(s.WrapW),
		MinFilter:   translate(g, g.device.FilterMode, minFilter, resource.FilterLinear),
		MagFilter:   translate(g, g.device.FilterMode, demoteFilter(s.MagFilter), resource.FilterLinear),
		Anisotropy:  1,
		BorderColor: s.BorderColor,
		MaxLevel:    max(0, numLevels-1),
	}
	if g.caps.SupportsAnisotropy {
		p.Anisotropy = clamp(float32(s.Anisotropy), 1, g.caps.MaxAnisotropy)
	}
	return p
}
