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

/*
Package shapes batches flat colored 2D shapes into one vertex array and draws
them through a gsg.GraphicsStateGuardian in screen space.
*/
package shapes

import (
	"goarrg.com"
	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/state"
)

type platform struct{}

func (platform) Abort()                           { panic("Fatal Error") }
func (platform) AbortPopup(f string, args ...any) { panic("Fatal Error") }

var instance = struct {
	platform goarrg.PlatformInterface
	logger   *debug.Logger

	solid2DState *state.RenderState
}{
	platform: platform{},
	logger:   debug.NewLogger("gsg", "shapes"),
}

func Init(platform goarrg.PlatformInterface) {
	instance.platform = platform
}

// solid2DState is blended, unlit and ignores depth.
func solid2DState() *state.RenderState {
	if instance.solid2DState == nil {
		instance.solid2DState = state.MakeState(
			state.MakeVertexColor(),
			state.MakeTransparency(state.TransparencyAlpha),
			state.MakeDepthTest(state.CompareNone),
			state.MakeDepthWrite(false),
			state.MakeCullFace(state.CullNone),
			state.MakeTextureOff(),
			state.MakeLights(),
		)
	}
	return instance.solid2DState
}

func abort(fmt string, args ...any) {
	instance.logger.EPrintf(fmt, args...)
	instance.platform.Abort()
}
