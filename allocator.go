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

// Buffer is a contiguous, mutable byte region with a fixed alignment (spec
// §3). Buffers are produced by an Allocator and are zero-initialized at
// allocation.
type Buffer struct {
	back  []byte // Backing allocation; kept alive for as long as Buffer is.
	off   int    // Offset of the aligned window within back.
	size  int
	align int
}

// Bytes returns the buffer's addressable window.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.back[b.off : b.off+b.size]
}

// Len returns the buffer's size in bytes.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.size
}

// Align returns the alignment this buffer's base satisfies.
func (b *Buffer) Align() int { return b.align }

// Base returns a pointer to byte 0 of the buffer.
func (b *Buffer) Base() *byte {
	if b.size == 0 {
		return nil
	}
	return &b.back[b.off]
}

func newBuffer(size, align int) (*Buffer, error) {
	if size < 0 {
		return nil, invalidArgument("Allocate", "negative size %d", size)
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, invalidArgument("Allocate", "alignment %d is not a power of two", align)
	}
	if size == 0 {
		return &Buffer{align: align}, nil
	}

	back := make([]byte, size+align-1)
	base := xunsafe.AddrOf(unsafe.SliceData(back))
	aligned := base.RoundUpTo(align)
	start := int(aligned.Sub(base))
	return &Buffer{back: back, off: start, size: size, align: align}, nil
}

// Allocator is a factory of aligned, zero-initialized Buffers (spec §4.C).
// Implementations choose their own ownership/release policy.
type Allocator interface {
	Allocate(size, align int) (*Buffer, error)
}
