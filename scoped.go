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

package shapes

import (
	"unsafe"

	"github.com/shapesdb/shapes/internal/arena"
	"github.com/shapesdb/shapes/internal/xunsafe"
)

// ScopedAllocator hands out Buffers backed by a single growable arena (spec
// §4.C, "Scoped"). Every Buffer it produced becomes invalid once Close is
// called; the allocator is not safe for concurrent use.
type ScopedAllocator struct {
	arena arena.Arena
}

// NewScopedAllocator returns a fresh, empty ScopedAllocator.
func NewScopedAllocator() *ScopedAllocator { return &ScopedAllocator{} }

// Allocate carves size bytes, aligned to align, out of the arena.
func (s *ScopedAllocator) Allocate(size, align int) (*Buffer, error) {
	if size < 0 {
		return nil, invalidArgument("Allocate", "negative size %d", size)
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, invalidArgument("Allocate", "alignment %d is not a power of two", align)
	}
	if size == 0 {
		return &Buffer{align: align}, nil
	}

	extra := 0
	if align > arena.Align {
		extra = align - 1
	}
	n := size + extra
	p := s.arena.Alloc(n)
	data := unsafe.Slice(p, n)

	base := xunsafe.AddrOf(unsafe.SliceData(data))
	aligned := base.RoundUpTo(align)
	start := int(aligned.Sub(base))

	return &Buffer{back: data, off: start, size: size, align: align}, nil
}

// Close discards every Buffer this allocator has produced. Using any such
// Buffer after Close is a use-after-free.
func (s *ScopedAllocator) Close() { s.arena.Reset() }
