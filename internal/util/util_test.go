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

package util

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceBytes(t *testing.T) {
	f := []float32{1, 2}
	b := SliceBytes(f)
	require.Len(t, b, 8)
	assert.Equal(t, float32(2), math.Float32frombits(binary.NativeEndian.Uint32(b[4:])))
	assert.Nil(t, SliceBytes([]uint16{}))
}

func TestPutSlice(t *testing.T) {
	dst := make([]byte, 6)
	n := PutSlice(dst, 2, []uint16{0x0102, 0x0304})
	assert.Equal(t, uintptr(4), n)
	assert.Equal(t, uint16(0x0304), binary.NativeEndian.Uint16(dst[4:]))

	assert.Panics(t, func() { PutSlice(dst, 4, []uint32{1}) })
}

func TestNoCopy(t *testing.T) {
	type guarded struct {
		noCopy NoCopy
	}
	g := &guarded{}
	g.noCopy.Init()
	g.noCopy.Check()

	c := *g
	assert.Panics(t, func() { c.noCopy.Check() })

	g.noCopy.Close()
	assert.Panics(t, func() { g.noCopy.Check() })
	assert.True(t, g.noCopy.InitLazy())
}
