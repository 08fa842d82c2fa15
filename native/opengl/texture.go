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

package opengl

import (
	"github.com/go-gl/gl/v2.1/gl"
	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/native"
)

func (d *Device) GenTexture() (native.Handle, error) {
	var h uint32
	gl.GenTextures(1, &h)
	if h == 0 {
		return 0, debug.ErrorWrapf(d.errorOr(native.ErrOutOfMemory), "glGenTextures failed")
	}
	return native.Handle(h), nil
}

func (d *Device) DeleteTexture(h native.Handle) {
	t := uint32(h)
	gl.DeleteTextures(1, &t)
}

func (d *Device) BindTexture(target native.Enum, h native.Handle) {
	gl.BindTexture(uint32(target), uint32(h))
}

func (d *Device) TexParameters(target native.Enum, p native.SamplerParams) {
	t := uint32(target)
	gl.TexParameteri(t, gl.TEXTURE_WRAP_S, int32(p.WrapS))
	gl.TexParameteri(t, gl.TEXTURE_WRAP_T, int32(p.WrapT))
	if t == gl.TEXTURE_3D || t == gl.TEXTURE_CUBE_MAP {
		gl.TexParameteri(t, gl.TEXTURE_WRAP_R, int32(p.WrapR))
	}
	gl.TexParameteri(t, gl.TEXTURE_MIN_FILTER, int32(p.MinFilter))
	gl.TexParameteri(t, gl.TEXTURE_MAG_FILTER, int32(p.MagFilter))
	if p.Anisotropy > 1 {
		gl.TexParameterf(t, glTextureMaxAnisotropyEXT, p.Anisotropy)
	}
	gl.TexParameterfv(t, gl.TEXTURE_BORDER_COLOR, &p.BorderColor[0])
	gl.TexParameteri(t, gl.TEXTURE_BASE_LEVEL, p.BaseLevel)
	gl.TexParameteri(t, gl.TEXTURE_MAX_LEVEL, p.MaxLevel)
	gl.TexParameteri(t, gl.GENERATE_MIPMAP, glBool(p.AutoMipmap))
}

// dimensions reports how many of desc.Size the target uses, cube faces
// upload as 2D images.
func dimensions(target native.Enum) int {
	switch target {
	case gl.TEXTURE_1D:
		return 1
	case gl.TEXTURE_3D:
		return 3
	}
	return 2
}

func (d *Device) TexImage(desc native.TexImageDesc, data []byte) error {
	t, s := uint32(desc.Target), desc.Size
	switch dimensions(desc.Target) {
	case 1:
		gl.TexImage1D(t, desc.Level, int32(desc.InternalFormat), s.X, 0, uint32(desc.Format), uint32(desc.Type), ptr(data))
	case 2:
		gl.TexImage2D(t, desc.Level, int32(desc.InternalFormat), s.X, s.Y, 0, uint32(desc.Format), uint32(desc.Type), ptr(data))
	case 3:
		gl.TexImage3D(t, desc.Level, int32(desc.InternalFormat), s.X, s.Y, s.Z, 0, uint32(desc.Format), uint32(desc.Type), ptr(data))
	}
	return d.uploadError("glTexImage", desc)
}

func (d *Device) TexSubImage(desc native.TexImageDesc, data []byte) error {
	t, s := uint32(desc.Target), desc.Size
	switch dimensions(desc.Target) {
	case 1:
		gl.TexSubImage1D(t, desc.Level, 0, s.X, uint32(desc.Format), uint32(desc.Type), ptr(data))
	case 2:
		gl.TexSubImage2D(t, desc.Level, 0, 0, s.X, s.Y, uint32(desc.Format), uint32(desc.Type), ptr(data))
	case 3:
		gl.TexSubImage3D(t, desc.Level, 0, 0, 0, s.X, s.Y, s.Z, uint32(desc.Format), uint32(desc.Type), ptr(data))
	}
	return d.uploadError("glTexSubImage", desc)
}

func (d *Device) CompressedTexImage(desc native.TexImageDesc, data []byte) error {
	t, s, f, n := uint32(desc.Target), desc.Size, uint32(desc.InternalFormat), int32(len(data))
	switch dimensions(desc.Target) {
	case 1:
		gl.CompressedTexImage1D(t, desc.Level, f, s.X, 0, n, ptr(data))
	case 2:
		gl.CompressedTexImage2D(t, desc.Level, f, s.X, s.Y, 0, n, ptr(data))
	case 3:
		gl.CompressedTexImage3D(t, desc.Level, f, s.X, s.Y, s.Z, 0, n, ptr(data))
	}
	return d.uploadError("glCompressedTexImage", desc)
}

func (d *Device) CompressedTexSubImage(desc native.TexImageDesc, data []byte) error {
	t, s, f, n := uint32(desc.Target), desc.Size, uint32(desc.InternalFormat), int32(len(data))
	switch dimensions(desc.Target) {
	case 1:
		gl.CompressedTexSubImage1D(t, desc.Level, 0, s.X, f, n, ptr(data))
	case 2:
		gl.CompressedTexSubImage2D(t, desc.Level, 0, 0, s.X, s.Y, f, n, ptr(data))
	case 3:
		gl.CompressedTexSubImage3D(t, desc.Level, 0, 0, 0, s.X, s.Y, s.Z, f, n, ptr(data))
	}
	return d.uploadError("glCompressedTexSubImage", desc)
}

func (d *Device) CopyTexImage(desc native.TexImageDesc, x, y int32) error {
	t, s, f := uint32(desc.Target), desc.Size, uint32(desc.InternalFormat)
	switch dimensions(desc.Target) {
	case 1:
		gl.CopyTexImage1D(t, desc.Level, f, x, y, s.X, 0)
	case 2:
		gl.CopyTexImage2D(t, desc.Level, f, x, y, s.X, s.Y, 0)
	default:
		return debug.Errorf("glCopyTexImage(0x%X): 3D storage must exist before a copy", desc.Target)
	}
	return d.uploadError("glCopyTexImage", desc)
}

// CopyTexSubImage copies into slice 0 of a 3D texture.
func (d *Device) CopyTexSubImage(desc native.TexImageDesc, x, y int32) error {
	t, s := uint32(desc.Target), desc.Size
	switch dimensions(desc.Target) {
	case 1:
		gl.CopyTexSubImage1D(t, desc.Level, 0, x, y, s.X)
	case 2:
		gl.CopyTexSubImage2D(t, desc.Level, 0, 0, x, y, s.X, s.Y)
	case 3:
		gl.CopyTexSubImage3D(t, desc.Level, 0, 0, 0, x, y, s.X, s.Y)
	}
	return d.uploadError("glCopyTexSubImage", desc)
}

func (d *Device) uploadError(call string, desc native.TexImageDesc) error {
	if err := d.Error(); err != nil {
		return debug.ErrorWrapf(err, "%s(0x%X, level %d, %v) failed", call, desc.Target, desc.Level, desc.Size)
	}
	return nil
}

func (d *Device) GenerateMipmap(target native.Enum) {
	switch d.entryPoints[native.FeatureGenerateMipmap] {
	case native.VariantCore:
		gl.GenerateMipmap(uint32(target))
	case native.VariantEXT:
		gl.GenerateMipmapEXT(uint32(target))
	default:
		logger.EPrintf("GenerateMipmap called without entry point")
	}
}
