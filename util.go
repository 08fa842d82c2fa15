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
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

func jsonString(target any) string {
	bytes, err := json.Marshal(target)
	if err != nil {
		abort("%s", err)
	}
	return strings.TrimSpace(string(bytes))
}

func prettyString(target json.Marshaler) string {
	bytes, err := json.MarshalIndent(target, "", "    ")
	if err != nil {
		abort("%s", err)
	}
	return strings.TrimSpace(string(bytes))
}

func hasBits[N constraints.Unsigned](t, want N) bool {
	return (t & want) == want
}

// stringSortedKeys returns the keys of m ordered by their String form so
// reports come out the same on every run.
func stringSortedKeys[M ~map[K]V, K interface {
	comparable
	fmt.Stringer
}, V any](m M) []K {
	keys := maps.Keys(m)
	slices.SortFunc(keys, func(a, b K) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

func clamp[N cmp.Ordered](v, lo, hi N) N {
	return max(lo, min(hi, v))
}
