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

	"github.com/shapesdb/shapes/internal/xunsafe"
)

// SlicingAllocator bump-allocates Buffers out of a single pre-existing
// backing slice (spec §4.C, "Slicing"): stack-style, no free operation,
// overflow fails rather than growing.
type SlicingAllocator struct {
	back []byte
	next int
}

// NewSlicingAllocator returns an Allocator that carves Buffers out of buf in
// order, never reallocating.
func NewSlicingAllocator(buf []byte) *SlicingAllocator {
	return &SlicingAllocator{back: buf}
}

// Allocate carves size bytes, aligned to align, out of the remaining tail
// of the backing slice.
func (s *SlicingAllocator) Allocate(size, align int) (*Buffer, error) {
	if size < 0 {
		return nil, invalidArgument("Allocate", "negative size %d", size)
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, invalidArgument("Allocate", "alignment %d is not a power of two", align)
	}
	if size == 0 {
		return &Buffer{align: align}, nil
	}
	if len(s.back) == 0 {
		return nil, invalidArgument("Allocate", "slicing allocator exhausted: requested %d bytes", size)
	}

	base := xunsafe.AddrOf(unsafe.SliceData(s.back))
	cur := base.ByteAdd(s.next)
	aligned := cur.RoundUpTo(align)
	off := s.next + int(aligned.Sub(cur))

	if off+size > len(s.back) {
		return nil, invalidArgument("Allocate", "slicing allocator out of bounds: need [%d, %d), have %d bytes", off, off+size, len(s.back))
	}

	window := s.back[off : off+size]
	for i := range window {
		window[i] = 0
	}
	s.next = off + size

	return &Buffer{back: s.back, off: off, size: size, align: align}, nil
}
