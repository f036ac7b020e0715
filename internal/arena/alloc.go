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

package arena

import (
	"math/bits"
	"reflect"
	"unsafe"

	"github.com/shapesdb/shapes/internal/xunsafe"
)

const minChunkLog = 6 // Never allocate chunks smaller than 64 bytes.

func suggestSizeLog(bytes int) uint {
	return max(minChunkLog, uint(bits.Len(uint(bytes)-1)))
}

func (a *Arena) allocChunk(size int) (*byte, int) {
	log := suggestSizeLog(size)
	n := 1 << log
	if int(log) < len(a.blocks) {
		if a.blocks[log] == nil {
			a.blocks[log] = allocTraceable(n, unsafe.Pointer(a))
		}
		return a.blocks[log], n
	}

	p := allocTraceable(n, unsafe.Pointer(a))
	a.blocks = append(a.blocks, make([]*byte, int(log+1)-len(a.blocks))...)
	a.blocks[log] = p
	return p, n
}

// allocTraceable allocates size bytes of garbage-collected memory and
// returns a pointer to them, with ptr (the owning *Arena) tucked in right
// after the data so that any live pointer into the data keeps ptr, and
// hence the rest of the arena's chunks, reachable to the GC.
func allocTraceable(size int, ptr unsafe.Pointer) *byte {
	// This needs reflection, because we need a weirdly-shaped allocation: a
	// run of bytes followed by a pointer. The shape is cached per power of
	// two, since that is the only size allocChunk ever requests.
	align := int(unsafe.Alignof(uintptr(0)))
	size += (align - size%align) % align

	log := bits.TrailingZeros(uint(size))
	shape := chunkShapes[log]

	p := (*byte)(reflect.New(shape).UnsafePointer())
	xunsafe.ByteStore(p, size, ptr)
	return p
}

var chunkShapes [bits.UintSize - 1]reflect.Type

func init() {
	for i := range chunkShapes {
		chunkShapes[i] = reflect.StructOf([]reflect.StructField{
			{Name: "Data", Type: reflect.ArrayOf(1<<i, reflect.TypeFor[byte]())},
			{Name: "Arena", Type: reflect.TypeFor[*Arena]()},
		})
	}
}
