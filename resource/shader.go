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
	"sync"
	"unsafe"

	"goarrg.com/asset"
	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/internal/util"
)

// Shader is a GLSL vertex and fragment program pair.
type Shader struct {
	noCopy   util.NoCopy
	mtx      sync.RWMutex
	name     string
	vertex   string
	fragment string
	modified uint64
}

func NewShader(name, vertex, fragment string) *Shader {
	s := &Shader{name: name, vertex: vertex, fragment: fragment, modified: 1}
	s.noCopy.Init()
	return s
}

func readAsset(fsys *asset.FileSystem, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", debug.ErrorWrapf(err, "Failed to open %q", name)
	}
	a := f.(*asset.File)
	defer a.Close()
	if a.Size() == 0 {
		return "", nil
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(a.Uintptr())), a.Size())), nil
}

// LoadShader reads both stages from fsys.
func LoadShader(fsys *asset.FileSystem, name, vertex, fragment string) (*Shader, error) {
	logger.VPrintf("Loading shader %q: %q %q", name, vertex, fragment)
	v, err := readAsset(fsys, vertex)
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to load shader %q", name)
	}
	f, err := readAsset(fsys, fragment)
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to load shader %q", name)
	}
	return NewShader(name, v, f), nil
}

func (s *Shader) Name() string {
	return s.name
}

func (s *Shader) String() string {
	return s.name
}

func (s *Shader) Sources() (vertex, fragment string, modified uint64) {
	s.noCopy.Check()
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.vertex, s.fragment, s.modified
}

func (s *Shader) Modified() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.modified
}

func (s *Shader) SetSources(vertex, fragment string) {
	s.noCopy.Check()
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.vertex, s.fragment = vertex, fragment
	s.modified++
}
