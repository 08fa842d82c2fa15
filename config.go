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
	"bytes"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"goarrg.com/debug"
	"goarrg.com/gmath"

	"goarrg.com/rhi/gsg/state"
)

type Config struct {
	// IncompleteRender draws a placeholder for textures without a RAM image
	// and loads the real image in the background.
	IncompleteRender bool `toml:"incomplete_render"`
	// DriverGenerateMipmaps lets the driver build mip chains when it can,
	// otherwise they are generated on the CPU.
	DriverGenerateMipmaps bool `toml:"driver_generate_mipmaps"`
	CompressedTextures    bool `toml:"compressed_textures"`
	CheapTextures         bool `toml:"cheap_textures"`
	AutoNormalizeLighting bool `toml:"auto_normalize_lighting"`
	VertexBuffers         bool `toml:"vertex_buffers"`
	DisplayLists          bool `toml:"display_lists"`

	// MaxTextureStages and MaxTextureDimension clamp the driver limits, zero
	// means no clamp.
	MaxTextureStages    int32 `toml:"max_texture_stages"`
	MaxTextureDimension int32 `toml:"max_texture_dimension"`

	AsyncLoadWorkers int32 `toml:"async_load_workers"`
	// GraphicsMemoryLimit is the texture byte budget enforced at BeginFrame by
	// evicting the least recently used textures, zero means unlimited.
	GraphicsMemoryLimit int64 `toml:"graphics_memory_limit"`

	// Strict aborts on frame nesting misuse instead of logging it.
	Strict bool `toml:"strict"`
}

func DefaultConfig() Config {
	return Config{
		IncompleteRender:      true,
		DriverGenerateMipmaps: true,
		CompressedTextures:    true,
		VertexBuffers:         true,
		AsyncLoadWorkers:      2,
	}
}

// LoadConfig decodes a TOML document over DefaultConfig. Unknown keys are an
// error.
func LoadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	if err := d.Decode(&c); err != nil {
		return Config{}, debug.ErrorWrapf(err, "Failed to decode config")
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	buff.WriteString(fmt.Sprintf("\"IncompleteRender\": %t,", c.IncompleteRender))
	buff.WriteString(fmt.Sprintf("\"DriverGenerateMipmaps\": %t,", c.DriverGenerateMipmaps))
	buff.WriteString(fmt.Sprintf("\"CompressedTextures\": %t,", c.CompressedTextures))
	buff.WriteString(fmt.Sprintf("\"CheapTextures\": %t,", c.CheapTextures))
	buff.WriteString(fmt.Sprintf("\"AutoNormalizeLighting\": %t,", c.AutoNormalizeLighting))
	buff.WriteString(fmt.Sprintf("\"VertexBuffers\": %t,", c.VertexBuffers))
	buff.WriteString(fmt.Sprintf("\"DisplayLists\": %t,", c.DisplayLists))

	buff.WriteString(fmt.Sprintf("\"MaxTextureStages\": %d,", c.MaxTextureStages))
	buff.WriteString(fmt.Sprintf("\"MaxTextureDimension\": %d,", c.MaxTextureDimension))
	buff.WriteString(fmt.Sprintf("\"AsyncLoadWorkers\": %d,", c.AsyncLoadWorkers))
	buff.WriteString(fmt.Sprintf("\"GraphicsMemoryLimit\": %d,", c.GraphicsMemoryLimit))
	buff.WriteString(fmt.Sprintf("\"Strict\": %t,", c.Strict))

	buff.Truncate(buff.Len() - 1)
	buff.WriteString("}")
	return buff.Bytes(), nil
}

func (c *Config) validate() error {
	if !gmath.InRange(c.MaxTextureStages, 0, state.MaxTextureStages) {
		return debug.Errorf("Config.MaxTextureStages is outside of valid range [0, %d]", state.MaxTextureStages)
	}
	if c.MaxTextureDimension < 0 {
		return debug.Errorf("Config.MaxTextureDimension must be >= 0")
	}
	if c.MaxTextureDimension&(c.MaxTextureDimension-1) != 0 {
		return debug.Errorf("Config.MaxTextureDimension must be a power of two")
	}
	if c.AsyncLoadWorkers == 0 {
		c.AsyncLoadWorkers = 1
	} else if c.AsyncLoadWorkers < 0 {
		return debug.Errorf("Config.AsyncLoadWorkers must be >= 1")
	}
	if c.GraphicsMemoryLimit < 0 {
		return debug.Errorf("Config.GraphicsMemoryLimit must be >= 0")
	}
	return nil
}
