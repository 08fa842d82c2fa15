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

package resource

import (
	"image"
	"slices"
	"strings"
	"sync"

	"goarrg.com/gmath"
	"golang.org/x/image/draw"

	"goarrg.com/rhi/gsg/internal/util"
)

type TextureType uint8

const (
	Texture1D TextureType = iota
	Texture2D
	Texture3D
	TextureCubeMap
)

func (t TextureType) String() string {
	switch t {
	case Texture1D:
		return "1D"
	case Texture2D:
		return "2D"
	case Texture3D:
		return "3D"
	case TextureCubeMap:
		return "Cube"
	}
	return "Invalid"
}

// Format is the logical component layout of a texture.
type Format uint8

const (
	FormatRGBA Format = iota
	FormatRGB
	FormatAlpha
	FormatLuminance
	FormatLuminanceAlpha
	FormatRed
	FormatGreen
	FormatBlue
	FormatDepth
	FormatDepthStencil
	// FormatBGRA is RGBA stored with red and blue swapped.
	FormatBGRA
	FormatBGR
)

func (f Format) String() string {
	switch f {
	case FormatRGBA:
		return "RGBA"
	case FormatRGB:
		return "RGB"
	case FormatAlpha:
		return "Alpha"
	case FormatLuminance:
		return "Luminance"
	case FormatLuminanceAlpha:
		return "LuminanceAlpha"
	case FormatRed:
		return "Red"
	case FormatGreen:
		return "Green"
	case FormatBlue:
		return "Blue"
	case FormatDepth:
		return "Depth"
	case FormatDepthStencil:
		return "DepthStencil"
	case FormatBGRA:
		return "BGRA"
	case FormatBGR:
		return "BGR"
	}
	return "Invalid"
}

func (f Format) Components() int {
	switch f {
	case FormatRGBA, FormatBGRA:
		return 4
	case FormatRGB, FormatBGR:
		return 3
	case FormatLuminanceAlpha, FormatDepthStencil:
		return 2
	}
	return 1
}

func (f Format) IsDepth() bool {
	return f == FormatDepth || f == FormatDepthStencil
}

type ComponentType uint8

const (
	ComponentU8 ComponentType = iota
	ComponentU16
	ComponentF32
	// ComponentU24S8 packs depth and stencil into one 32 bit word.
	ComponentU24S8
)

func (c ComponentType) String() string {
	switch c {
	case ComponentU8:
		return "U8"
	case ComponentU16:
		return "U16"
	case ComponentF32:
		return "F32"
	case ComponentU24S8:
		return "U24S8"
	}
	return "Invalid"
}

func (c ComponentType) Size() int {
	switch c {
	case ComponentU16:
		return 2
	case ComponentF32, ComponentU24S8:
		return 4
	}
	return 1
}

type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionDXT1
	CompressionDXT3
	CompressionDXT5
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionDXT1:
		return "DXT1"
	case CompressionDXT3:
		return "DXT3"
	case CompressionDXT5:
		return "DXT5"
	}
	return "Invalid"
}

// BlockSize is the byte size of one 4x4 block, 0 for uncompressed.
func (c Compression) BlockSize() int {
	switch c {
	case CompressionDXT1:
		return 8
	case CompressionDXT3, CompressionDXT5:
		return 16
	}
	return 0
}

type WrapMode uint8

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirror
	WrapMirrorOnce
	WrapBorderColor
)

func (w WrapMode) String() string {
	switch w {
	case WrapClamp:
		return "Clamp"
	case WrapRepeat:
		return "Repeat"
	case WrapMirror:
		return "Mirror"
	case WrapMirrorOnce:
		return "MirrorOnce"
	case WrapBorderColor:
		return "BorderColor"
	}
	return "Invalid"
}

type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

func (f FilterMode) String() string {
	switch f {
	case FilterNearest:
		return "Nearest"
	case FilterLinear:
		return "Linear"
	case FilterNearestMipmapNearest:
		return "NearestMipmapNearest"
	case FilterLinearMipmapNearest:
		return "LinearMipmapNearest"
	case FilterNearestMipmapLinear:
		return "NearestMipmapLinear"
	case FilterLinearMipmapLinear:
		return "LinearMipmapLinear"
	}
	return "Invalid"
}

func (f FilterMode) UsesMipmaps() bool {
	return f >= FilterNearestMipmapNearest && f <= FilterLinearMipmapLinear
}

type Sampler struct {
	WrapU       WrapMode
	WrapV       WrapMode
	WrapW       WrapMode
	MinFilter   FilterMode
	MagFilter   FilterMode
	Anisotropy  int32
	BorderColor [4]float32
}

func DefaultSampler() Sampler {
	return Sampler{
		WrapU: WrapRepeat, WrapV: WrapRepeat, WrapW: WrapRepeat,
		MinFilter: FilterLinear, MagFilter: FilterLinear,
		Anisotropy: 1,
	}
}

// Image is one mip level of RAM image data. For cube maps the six faces are
// stored back to back in Data.
type Image struct {
	Size gmath.Extent3i32
	Data []byte
}

type TextureDesc struct {
	Type          TextureType
	Size          gmath.Extent3i32
	Format        Format
	ComponentType ComponentType
	Compression   Compression
	Sampler       Sampler
	Filename      string
}

// Texture is client owned image data plus sampling properties. It is safe to
// modify from loader goroutines while the render thread reads it.
type Texture struct {
	noCopy util.NoCopy
	mtx    sync.RWMutex
	name   string
	desc   TextureDesc
	levels []Image
	// placeholder is a tiny image shown until levels are loaded.
	placeholder *Image

	imageModified      uint64
	propertiesModified uint64
}

// TextureSnapshot is a consistent copy of a texture's state. The level slices
// share backing arrays with the texture, which replaces rather than mutates them.
type TextureSnapshot struct {
	TextureDesc
	Levels             []Image
	Placeholder        *Image
	ImageModified      uint64
	PropertiesModified uint64
}

func (s *TextureSnapshot) HasRAMImage() bool {
	return len(s.Levels) > 0 && len(s.Levels[0].Data) > 0
}

func (s *TextureSnapshot) UsesMipmaps() bool {
	return s.Sampler.MinFilter.UsesMipmaps()
}

func NewTexture(name string, desc TextureDesc) *Texture {
	t := &Texture{name: name, desc: desc, imageModified: 1, propertiesModified: 1}
	if t.desc.Size.Y == 0 {
		t.desc.Size.Y = 1
	}
	if t.desc.Size.Z == 0 {
		t.desc.Size.Z = 1
	}
	t.noCopy.Init()
	return t
}

// NewTextureFromImage converts img to an 8 bit RGBA texture with a single level.
func NewTextureFromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	size := gmath.Extent3i32{X: int32(b.Dx()), Y: int32(b.Dy()), Z: 1}
	t := NewTexture(name, TextureDesc{
		Type:          Texture2D,
		Size:          size,
		Format:        FormatRGBA,
		ComponentType: ComponentU8,
		Sampler:       DefaultSampler(),
	})
	t.levels = []Image{{Size: size, Data: rgba.Pix}}
	return t
}

func (t *Texture) Name() string {
	return t.name
}

func (t *Texture) String() string {
	return t.name
}

func (t *Texture) Snapshot() TextureSnapshot {
	t.noCopy.Check()
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return TextureSnapshot{
		TextureDesc:        t.desc,
		Levels:             slices.Clone(t.levels),
		Placeholder:        t.placeholder,
		ImageModified:      t.imageModified,
		PropertiesModified: t.propertiesModified,
	}
}

func (t *Texture) Desc() TextureDesc {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.desc
}

func (t *Texture) ImageModified() uint64 {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.imageModified
}

func (t *Texture) PropertiesModified() uint64 {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.propertiesModified
}

func (t *Texture) HasRAMImage() bool {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return len(t.levels) > 0 && len(t.levels[0].Data) > 0
}

// SetRAMImage replaces all levels. levels[0] defines the new size.
func (t *Texture) SetRAMImage(levels []Image) {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.levels = slices.Clone(levels)
	if len(levels) > 0 {
		t.desc.Size = levels[0].Size
	}
	t.imageModified++
}

// SetRAMImageFormat replaces the levels along with their pixel format, as a
// loader does when it finishes decoding.
func (t *Texture) SetRAMImageFormat(levels []Image, f Format, c ComponentType, comp Compression) {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.levels = slices.Clone(levels)
	if len(levels) > 0 {
		t.desc.Size = levels[0].Size
	}
	if t.desc.Format != f || t.desc.ComponentType != c || t.desc.Compression != comp {
		t.desc.Format, t.desc.ComponentType, t.desc.Compression = f, c, comp
		t.propertiesModified++
	}
	t.imageModified++
}

func (t *Texture) ClearRAMImage() {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.levels = nil
}

func (t *Texture) SetPlaceholder(img Image) {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.placeholder = &img
}

func (t *Texture) SetSampler(s Sampler) {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.desc.Sampler != s {
		t.desc.Sampler = s
		t.propertiesModified++
	}
}

func (t *Texture) SetWrap(u, v, w WrapMode) {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.desc.Sampler.WrapU != u || t.desc.Sampler.WrapV != v || t.desc.Sampler.WrapW != w {
		t.desc.Sampler.WrapU, t.desc.Sampler.WrapV, t.desc.Sampler.WrapW = u, v, w
		t.propertiesModified++
	}
}

func (t *Texture) SetFilter(minFilter, magFilter FilterMode) {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.desc.Sampler.MinFilter != minFilter || t.desc.Sampler.MagFilter != magFilter {
		t.desc.Sampler.MinFilter, t.desc.Sampler.MagFilter = minFilter, magFilter
		t.propertiesModified++
	}
}

// Modify runs f with exclusive access to level data and marks the image dirty.
func (t *Texture) Modify(f func(levels []Image)) {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	f(t.levels)
	t.imageModified++
}

func (t *Texture) Close() {
	t.noCopy.Check()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.levels = nil
	t.placeholder = nil
	t.noCopy.Close()
}

// LevelSize returns the size of mip level i of a base size.
func LevelSize(base gmath.Extent3i32, level int) gmath.Extent3i32 {
	return gmath.Extent3i32{
		X: max(1, base.X>>level),
		Y: max(1, base.Y>>level),
		Z: max(1, base.Z>>level),
	}
}

// NumLevels returns the length of a full mip chain for size.
func NumLevels(size gmath.Extent3i32) int {
	m := max(size.X, size.Y, size.Z)
	n := 1
	for m > 1 {
		m >>= 1
		n++
	}
	return n
}

// ImageSize returns the byte size of one level.
func ImageSize(desc *TextureDesc, size gmath.Extent3i32) int {
	faces := 1
	if desc.Type == TextureCubeMap {
		faces = 6
	}
	if bs := desc.Compression.BlockSize(); bs > 0 {
		bx := (int(size.X) + 3) / 4
		by := (int(size.Y) + 3) / 4
		return bx * by * int(size.Z) * bs * faces
	}
	bpp := desc.Format.Components() * desc.ComponentType.Size()
	if desc.Format == FormatDepthStencil && desc.ComponentType == ComponentU24S8 {
		bpp = 4
	}
	return int(size.X) * int(size.Y) * int(size.Z) * bpp * faces
}

func (d TextureDesc) String() string {
	sb := strings.Builder{}
	sb.WriteString(d.Type.String())
	sb.WriteString(" ")
	sb.WriteString(d.Format.String())
	sb.WriteString(" ")
	sb.WriteString(d.ComponentType.String())
	if d.Compression != CompressionNone {
		sb.WriteString(" ")
		sb.WriteString(d.Compression.String())
	}
	return sb.String()
}

func (t TextureType) Valid() bool   { return t <= TextureCubeMap }
func (f Format) Valid() bool        { return f <= FormatBGR }
func (c ComponentType) Valid() bool { return c <= ComponentU24S8 }
func (c Compression) Valid() bool   { return c <= CompressionDXT5 }
func (w WrapMode) Valid() bool      { return w <= WrapBorderColor }
func (f FilterMode) Valid() bool    { return f <= FilterLinearMipmapLinear }
