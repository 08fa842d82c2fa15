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
	"fmt"
	"strconv"
	"strings"

	"goarrg.com/debug"
)

// Version is a driver API version, the leading "major.minor[.release]" of the
// version string.
type Version struct {
	Major   int
	Minor   int
	Release int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Release)
}

func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVersion accepts strings such as "2.1.0 NVIDIA 535.1", "1.4" and
// "OpenGL ES 2.0 build 7". Anything after the first space following the
// number is vendor information and ignored.
func ParseVersion(s string) (Version, error) {
	str := strings.TrimSpace(s)
	for _, prefix := range []string{"OpenGL ES-CM ", "OpenGL ES-CL ", "OpenGL ES ", "Direct3D "} {
		str = strings.TrimPrefix(str, prefix)
	}
	if i := strings.IndexAny(str, " \t"); i >= 0 {
		str = str[:i]
	}
	if str == "" {
		return Version{}, debug.Errorf("Empty version string")
	}

	parts := strings.Split(str, ".")
	if len(parts) < 2 {
		return Version{}, debug.Errorf("Version %q not in the format \"major.minor\"", s)
	}

	nums := [3]int{}
	for i, p := range parts[:min(3, len(parts))] {
		n, err := strconv.Atoi(p)
		if err == nil && n < 0 {
			err = debug.Errorf("Negative component %d", n)
		}
		if err != nil {
			if i == 2 {
				// some drivers append text directly to the release number
				break
			}
			return Version{}, debug.ErrorWrapf(err, "Invalid version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Release: nums[2]}, nil
}
