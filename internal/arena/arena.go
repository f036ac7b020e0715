// Copyright 2026 The Shapes Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package arena provides a low-level, relatively unsafe arena allocation
// abstraction backing the Scoped buffer allocator (shapes.ScopedAllocator).
//
// # Design
//
// Arenas hand out pointer-free memory, but a Buffer built from arena memory
// needs to stay alive as long as anything still points into it. This is
// ensured by giving each chunk allocated for the arena the shape
//
//	type chunk struct {
//	  memory [N]byte
//	  arena  *Arena
//	}
//
// Holding a pointer into chunk.memory anywhere reachable by a GC root marks
// the whole chunk allocation live, and therefore marks the trailing *Arena
// field live too. Tracing through arena.blocks then marks every other chunk
// live as well.
package arena

import (
	"github.com/shapesdb/shapes/internal/dbg"
	"github.com/shapesdb/shapes/internal/xunsafe"
)

// Arena is an allocator for pointer-free memory, used to back a Scoped
// buffer allocator (spec §4.C). A zero Arena is empty and ready to use.
type Arena struct {
	_ xunsafe.NoCopy

	next, end xunsafe.Addr[byte]
	cap       int // Always a power of 2.

	// Blocks of memory allocated by this arena, indexed by size log2.
	blocks []*byte
}

// Align is the alignment of every allocation handed out by an Arena.
const Align = 8

// Alloc allocates size zeroed bytes aligned to Align, growing the arena if
// necessary.
func (a *Arena) Alloc(size int) *byte {
	size = (size + Align - 1) &^ (Align - 1)

	if a.next.Add(size) > a.end {
		a.grow(size)
	}

	p := a.next.AssertValid()
	a.next = a.next.Add(size)
	a.log("alloc", "%v:%v, %d", p, a.next, size)
	return p
}

// Reset discards all memory allocated by this arena, allowing its
// underlying chunks to be reused by future calls to Alloc.
//
// Any Buffer built from memory this arena previously returned must not be
// used after a call to Reset.
func (a *Arena) Reset() {
	a.next, a.end, a.cap = 0, 0, 0
	for log, block := range a.blocks {
		if block != nil {
			xunsafe.Clear(block, 1<<log)
		}
	}
}

// grow allocates a fresh chunk of at least size bytes onto the arena.
func (a *Arena) grow(size int) {
	p, n := a.allocChunk(max(size, a.cap*2))
	a.next = xunsafe.AddrOf(p)
	a.end = a.next.ByteAdd(n)
	a.cap = n
	a.log("grow", "%v:%v:%d", a.next, a.end, a.cap)
}

func (a *Arena) log(op, format string, args ...any) {
	dbg.Log([]any{"%p %v:%v", a, a.next, a.end}, op, format, args...)
}
