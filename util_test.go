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
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goarrg.com/rhi/gsg/native/record"
	"goarrg.com/rhi/gsg/resource"
)

func TestStringSortedKeys(t *testing.T) {
	m := map[resource.Compression]bool{
		resource.CompressionDXT5: true,
		resource.CompressionNone: true,
		resource.CompressionDXT1: false,
	}
	assert.Equal(t, []resource.Compression{resource.CompressionDXT1, resource.CompressionDXT5, resource.CompressionNone}, stringSortedKeys(m))
	assert.Empty(t, stringSortedKeys(map[resource.Compression]bool{}))
}

func TestCompressionModesReport(t *testing.T) {
	g := newTestGSG(t, record.New())
	caps := g.Capabilities()
	b, err := json.Marshal(&caps)
	require.NoError(t, err)
	report := string(b)
	dxt1 := strings.Index(report, `"DXT1"`)
	dxt3 := strings.Index(report, `"DXT3"`)
	dxt5 := strings.Index(report, `"DXT5"`)
	require.True(t, dxt1 >= 0, report)
	assert.Less(t, dxt1, dxt3)
	assert.Less(t, dxt3, dxt5)

	// no modes still makes a valid report
	b, err = json.Marshal(&Capabilities{})
	require.NoError(t, err)
	assert.True(t, json.Valid(b), string(b))
}
