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

package container

type lruNode[E comparable] struct {
	value      E
	prev, next *lruNode[E]
}

// LRU orders elements by recency of Touch. The zero value is ready to use.
// Not safe for concurrent use.
type LRU[E comparable] struct {
	nodes map[E]*lruNode[E]
	// head is the most recently touched element, tail the least.
	head, tail *lruNode[E]
}

func (l *LRU[E]) Len() int {
	return len(l.nodes)
}

func (l *LRU[E]) Contains(e E) bool {
	_, ok := l.nodes[e]
	return ok
}

// Touch marks e as most recently used, inserting it if needed.
func (l *LRU[E]) Touch(e E) {
	if l.nodes == nil {
		l.nodes = map[E]*lruNode[E]{}
	}
	n, ok := l.nodes[e]
	if ok {
		if l.head == n {
			return
		}
		l.unlink(n)
	} else {
		n = &lruNode[E]{value: e}
		l.nodes[e] = n
	}
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *LRU[E]) Remove(e E) bool {
	n, ok := l.nodes[e]
	if !ok {
		return false
	}
	l.unlink(n)
	delete(l.nodes, e)
	return true
}

// Oldest returns the least recently touched element.
func (l *LRU[E]) Oldest() (E, bool) {
	if l.tail == nil {
		var zero E
		return zero, false
	}
	return l.tail.value, true
}

// Each walks from least to most recently used until f returns false.
func (l *LRU[E]) Each(f func(E) bool) {
	for n := l.tail; n != nil; {
		prev := n.prev
		if !f(n.value) {
			return
		}
		n = prev
	}
}

func (l *LRU[E]) unlink(n *lruNode[E]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
