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
	"goarrg.com"
	"goarrg.com/debug"

	"goarrg.com/rhi/gsg/internal/util"
	"goarrg.com/rhi/gsg/native"
	"goarrg.com/rhi/gsg/resource"
	"goarrg.com/rhi/gsg/state"
)

type platform struct{}

func (platform) Abort()                           { panic("Fatal Error") }
func (platform) AbortPopup(f string, args ...any) { panic("Fatal Error") }

var instance = struct {
	platform goarrg.PlatformInterface
	logger   *debug.Logger
}{
	platform: platform{},
	logger:   debug.NewLogger("gsg"),
}

// InitPlatform routes fatal errors through platform instead of panicking.
func InitPlatform(platform goarrg.PlatformInterface) {
	instance.platform = platform
	util.Init(platform)
}

func SetLogLevel(l uint32) {
	instance.logger.SetLevel(l)
}

type ErrorNotFunctional struct{}

func (ErrorNotFunctional) Is(target error) bool {
	_, ok := target.(ErrorNotFunctional)
	return ok
}

func (ErrorNotFunctional) Error() string {
	return "GSG Not Functional"
}

type ErrorDisplayModeChanged struct{}

func (ErrorDisplayModeChanged) Is(target error) bool {
	_, ok := target.(ErrorDisplayModeChanged)
	return ok
}

func (ErrorDisplayModeChanged) Error() string {
	return "Display Mode Changed"
}

type ErrorDeviceFailure struct{}

func (ErrorDeviceFailure) Is(target error) bool {
	_, ok := target.(ErrorDeviceFailure)
	return ok
}

func (ErrorDeviceFailure) Error() string {
	return "Device Failure"
}

/*
GraphicsStateGuardian keeps a mirror of the state it has issued to a native
device so that each state change only sends the calls that differ. It is not
safe for concurrent use, all methods must be called from the goroutine that
owns the device's context. Release* and Enqueue* are the exception and may be
called from any goroutine.
*/
type GraphicsStateGuardian struct {
	noCopy   util.NoCopy
	name     string
	logger   *debug.Logger
	device   native.Device
	surfaces native.SurfaceOwner
	config   Config

	functional bool
	caps       Capabilities
	warned     map[string]struct{}

	target    *state.RenderState
	transform *state.TransformState
	view      *state.TransformState
	applied   [state.NumSlots]state.Attrib
	slotMask  state.SlotMask
	routines  []issueRoutine

	// scaleUsers marks the routines whose last issue read the color scale.
	scaleUsers state.SlotMask

	enables  enableCache
	params   paramCache
	units    textureUnits
	prepared preparedObjects
	loader   *AsyncLoader

	region displayRegion
	frame  frameState
	draw   drawState
}

func New(name string, device native.Device, loader resource.Loader, config Config) *GraphicsStateGuardian {
	if err := config.validate(); err != nil {
		abort("%s", err)
	}

	g := &GraphicsStateGuardian{
		name:   name,
		logger: debug.NewLogger("gsg", name),
		device: device,
		config: config,
		warned: map[string]struct{}{},
	}
	g.noCopy.Init()
	g.surfaces, _ = device.(native.SurfaceOwner)
	g.logger.IPrintf("User requested config: %s", prettyString(&g.config))

	g.initRoutines()
	g.prepared.init()
	g.loader = NewAsyncLoader(loader, int(config.AsyncLoadWorkers))
	g.resetMirror()
	return g
}

func (g *GraphicsStateGuardian) Name() string {
	return g.name
}

func (g *GraphicsStateGuardian) SetLogLevel(l uint32) {
	g.logger.SetLevel(l)
}

// IsFunctional reports whether the last Reset succeeded.
func (g *GraphicsStateGuardian) IsFunctional() bool {
	g.noCopy.Check()
	return g.functional
}

func (g *GraphicsStateGuardian) Capabilities() Capabilities {
	g.noCopy.Check()
	return g.caps.clone()
}

// resetMirror forgets everything the GSG believes about device state.
func (g *GraphicsStateGuardian) resetMirror() {
	g.target = state.EmptyState()
	g.transform = nil
	if g.view == nil {
		g.view = state.IdentityTransform()
	}
	g.applied = [state.NumSlots]state.Attrib{}
	g.slotMask = 0
	g.scaleUsers = 0
	g.enables.reset()
	g.params.reset()
	g.units.reset()
	g.draw = drawState{}
}

// Close releases every prepared object and stops background loads.
func (g *GraphicsStateGuardian) Close() {
	g.noCopy.Check()
	g.loader.Close()
	g.ReleaseAll()
	g.logger.IPrintf("Closed")
	g.noCopy.Close()
}
