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

import (
	"runtime"
	"sync"
	"weak"
)

// internTable maps a value to the single live pointer holding it. Entries are
// weak so the table never keeps a value alive on its own.
type internTable[T comparable] struct {
	mtx   sync.Mutex
	table map[T]weak.Pointer[T]
}

func (t *internTable[T]) intern(v T) *T {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.table == nil {
		t.table = map[T]weak.Pointer[T]{}
	}
	if w, ok := t.table[v]; ok {
		if p := w.Value(); p != nil {
			return p
		}
	}

	p := new(T)
	*p = v
	t.table[v] = weak.Make(p)
	runtime.AddCleanup(p, t.evict, v)
	return p
}

func (t *internTable[T]) evict(v T) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	// the key may have been reinterned after the old pointer died
	if w, ok := t.table[v]; ok && w.Value() == nil {
		delete(t.table, v)
	}
}

func (t *internTable[T]) len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.table)
}
