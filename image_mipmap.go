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
	"golang.org/x/image/draw"

	"goarrg.com/rhi/gsg/resource"
)

// canScale reports whether the CPU can resample images of desc.
func canScale(desc *resource.TextureDesc) bool {
	return desc.Compression == resource.CompressionNone &&
		desc.ComponentType == resource.ComponentU8 &&
		desc.Type != resource.Texture3D &&
		!desc.Format.IsDepth()
}

func faceCount(t resource.TextureType) int {
	if t == resource.TextureCubeMap {
		return 6
	}
	return 1
}

// toNRGBA expands one face of 8 bit pixels into an NRGBA image.
func toNRGBA(f resource.Format, w, h int, data []byte) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := f.Components()
	for i := 0; i < w*h; i++ {
		src := data[i*n : i*n+n]
		dst := img.Pix[i*4 : i*4+4]
		switch f {
		case resource.FormatRGBA:
			copy(dst, src)
		case resource.FormatBGRA:
			dst[0], dst[1], dst[2], dst[3] = src[2], src[1], src[0], src[3]
		case resource.FormatRGB:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 0xFF
		case resource.FormatBGR:
			dst[0], dst[1], dst[2], dst[3] = src[2], src[1], src[0], 0xFF
		case resource.FormatLuminanceAlpha:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[0], src[0], src[1]
		default:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[0], src[0], 0xFF
		}
	}
	return img
}

func fromNRGBA(f resource.Format, img *image.NRGBA, out []byte) []byte {
	b := img.Bounds()
	for i := 0; i < b.Dx()*b.Dy(); i++ {
		src := img.Pix[i*4 : i*4+4]
		switch f {
		case resource.FormatRGBA:
			out = append(out, src...)
		case resource.FormatBGRA:
			out = append(out, src[2], src[1], src[0], src[3])
		case resource.FormatRGB:
			out = append(out, src[0], src[1], src[2])
		case resource.FormatBGR:
			out = append(out, src[2], src[1], src[0])
		case resource.FormatLuminanceAlpha:
			out = append(out, src[0], src[3])
		default:
			out = append(out, src[0])
		}
	}
	return out
}

// scaleImage resamples every face of src to size. Callers check canScale.
func scaleImage(desc *resource.TextureDesc, src resource.Image, size gmath.Extent3i32) resource.Image {
	faces := faceCount(desc.Type)
	faceSize := len(src.Data) / faces
	out := make([]byte, 0, resource.ImageSize(desc, size))

	for face := 0; face < faces; face++ {
		from := toNRGBA(desc.Format, int(src.Size.X), int(src.Size.Y), src.Data[face*faceSize:(face+1)*faceSize])
		to := image.NewNRGBA(image.Rect(0, 0, int(size.X), int(size.Y)))
		if size.X <= src.Size.X/2 || size.Y <= src.Size.Y/2 {
			draw.CatmullRom.Scale(to, to.Bounds(), from, from.Bounds(), draw.Src, nil)
		} else {
			draw.BiLinear.Scale(to, to.Bounds(), from, from.Bounds(), draw.Src, nil)
		}
		out = fromNRGBA(desc.Format, to, out)
	}
	return resource.Image{Size: gmath.Extent3i32{X: size.X, Y: size.Y, Z: 1}, Data: out}
}

// generateMipmaps completes levels down to 1x1, keeping the levels given.
func generateMipmaps(desc *resource.TextureDesc, levels []resource.Image) []resource.Image {
	base := levels[0].Size
	n := resource.NumLevels(base)
	out := make([]resource.Image, len(levels), n)
	copy(out, levels)
	for i := len(out); i < n; i++ {
		out = append(out, scaleImage(desc, out[i-1], resource.LevelSize(base, i)))
	}
	return out
}

func isPowerOfTwo(v int32) bool {
	return v > 0 && v&(v-1) == 0
}

// floorPowerOfTwo returns the largest power of two not above v.
func floorPowerOfTwo(v int32) int32 {
	p := int32(1)
	for p*2 <= v {
		p *= 2
	}
	return p
}

// ceilPowerOfTwo returns the smallest power of two not below v.
func ceilPowerOfTwo(v int32) int32 {
	p := int32(1)
	for p < v {
		p *= 2
	}
	return p
}
