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

func abort(fmt string, args ...any) {
	instance.logger.EPrintf(fmt, args...)
	instance.platform.Abort()
}

func abortPopup(fmt string, args ...any) {
	instance.logger.EPrintf("[popup] "+fmt, args...)
	instance.platform.AbortPopup(fmt, args...)
}

// errorf logs a resource or enum error against this GSG's logger.
func (g *GraphicsStateGuardian) errorf(fmt string, args ...any) {
	g.logger.EPrintf(fmt, args...)
}

// warnOnce logs a capability fallback the first time key is seen, so per
// frame fallbacks do not flood the log.
func (g *GraphicsStateGuardian) warnOnce(key string, fmt string, args ...any) {
	if _, ok := g.warned[key]; ok {
		g.logger.VPrintf(fmt, args...)
		return
	}
	g.warned[key] = struct{}{}
	g.logger.WPrintf(fmt, args...)
}
