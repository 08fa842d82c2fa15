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
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"

	"goarrg.com/debug"
	"goarrg.com/gmath"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var logger = debug.NewLogger("gsg", "resource")

// Loader fills in the RAM image of a texture that was registered without one.
type Loader interface {
	Load(ctx context.Context, t *Texture) error
}

// ImageLoader decodes the texture's Filename from FS. PNG, JPEG, BMP, TIFF and
// WebP are recognized.
type ImageLoader struct {
	FS fs.FS
}

var _ Loader = (*ImageLoader)(nil)

func (l *ImageLoader) Load(ctx context.Context, t *Texture) error {
	name := t.Desc().Filename
	if name == "" {
		return debug.Errorf("Texture %q has no filename", t.Name())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := l.FS.Open(name)
	if err != nil {
		return debug.ErrorWrapf(err, "Failed to open %q", name)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return debug.ErrorWrapf(err, "Failed to decode %q", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.VPrintf("Decoded %q as %s %v", name, format, img.Bounds())

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	size := gmath.Extent3i32{X: int32(b.Dx()), Y: int32(b.Dy()), Z: 1}
	t.SetRAMImageFormat([]Image{{Size: size, Data: rgba.Pix}}, FormatRGBA, ComponentU8, CompressionNone)
	return nil
}
