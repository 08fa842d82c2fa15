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

package state

import "fmt"

type CombineConfig struct {
	Mode    CombineMode
	Source  [3]CombineSource
	Operand [3]CombineOperand
}

// TextureStage describes how one texture is blended into the fragment.
type TextureStage struct {
	Name string
	// Sort orders stages within a TextureAttrib, lowest first.
	Sort     int32
	Priority int32
	Mode     TextureStageMode
	// TexcoordName selects the vertex column feeding this stage. Stages
	// sharing a name share a texcoord index.
	TexcoordName string
	Color        Vec4
	RGBScale     uint8
	AlphaScale   uint8
	SavedResult  bool
	CombineRGB   CombineConfig
	CombineAlpha CombineConfig
}

var (
	textureStages       internTable[TextureStage]
	defaultTextureStage = MakeTextureStage(TextureStage{Name: "default", TexcoordName: "texcoord"})
)

// MakeTextureStage interns s. Zero scales become 1 and an empty TexcoordName
// becomes "texcoord".
func MakeTextureStage(s TextureStage) *TextureStage {
	if s.RGBScale == 0 {
		s.RGBScale = 1
	}
	if s.AlphaScale == 0 {
		s.AlphaScale = 1
	}
	if s.TexcoordName == "" {
		s.TexcoordName = "texcoord"
	}
	return textureStages.intern(s)
}

func DefaultTextureStage() *TextureStage {
	return defaultTextureStage
}

func (s *TextureStage) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, s.Mode)
}

// UsesColor reports whether the stage reads its constant color.
func (s *TextureStage) UsesColor() bool {
	return s.Mode == StageBlend || s.combineReads(SourceConstant)
}

// UsesColorScale reports whether the stage reads the color scale in place of
// its constant color.
func (s *TextureStage) UsesColorScale() bool {
	return s.Mode == StageBlendColorScale || s.combineReads(SourceConstantColorScale)
}

func (s *TextureStage) combineReads(src CombineSource) bool {
	if s.Mode != StageCombine {
		return false
	}
	for _, c := range [2]CombineConfig{s.CombineRGB, s.CombineAlpha} {
		for i := 0; i < c.Mode.Operands(); i++ {
			if c.Source[i] == src {
				return true
			}
		}
	}
	return false
}

func stageLess(a, b *TextureStage) bool {
	if a.Sort != b.Sort {
		return a.Sort < b.Sort
	}
	return a.Priority > b.Priority
}
