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
	"errors"

	"goarrg.com/rhi/gsg/native"
)

// IsLost reports whether the device's surfaces are currently owned by
// someone else. Frames are skipped until they are regained.
func (g *GraphicsStateGuardian) IsLost() bool {
	return g.frame.lost
}

/*
checkCooperativeLevel polls a surface owning device and moves between the
normal and lost states. It returns false while the surfaces are unusable, and
ErrorDisplayModeChanged when they can never be used again.
*/
func (g *GraphicsStateGuardian) checkCooperativeLevel() (bool, error) {
	if g.surfaces == nil {
		return true, nil
	}

	level := g.surfaces.TestCooperativeLevel()
	switch level {
	case native.CooperativeOK:
		if !g.frame.lost {
			return true, nil
		}
		if err := g.surfaces.RestoreSurfaces(); err != nil {
			g.logger.WPrintf("Failed to restore surfaces, retrying next frame: %s", err)
			return false, nil
		}
		g.frame.lost = false
		g.markTexturesForReload()
		g.resetMirror()
		g.initDeviceState()
		g.logger.IPrintf("Surfaces restored")
		return true, nil

	case native.CooperativeLostExclusive, native.CooperativeExclusiveAlreadySet:
		if !g.frame.lost {
			g.logger.WPrintf("Lost surfaces: %s", level)
		}
		g.frame.lost = true
		return false, nil

	case native.CooperativeWrongMode:
		g.logger.EPrintf("Display mode changed, device is unusable")
		g.frame.lost = true
		g.functional = false
		return false, ErrorDisplayModeChanged{}
	}

	g.errorf("Invalid cooperative level: %d", level)
	return false, nil
}

// handleSurfaceError turns a lost or busy surface result into a state
// transition, any other error is returned as is.
func (g *GraphicsStateGuardian) handleSurfaceError(err error) error {
	if err == nil {
		return nil
	}
	if g.surfaces == nil || !(errors.Is(err, native.ErrSurfaceLost) || errors.Is(err, native.ErrSurfaceBusy)) {
		return err
	}
	g.logger.VPrintf("Surface error: %s", err)
	if _, err := g.checkCooperativeLevel(); err != nil {
		return err
	}
	return nil
}
