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

package shapes_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapesdb/shapes"
)

func uintptrOf(buf *shapes.Buffer) uintptr {
	return uintptr(unsafe.Pointer(buf.Base()))
}

func testAllocatorAlignment(t *testing.T, alloc shapes.Allocator) {
	t.Helper()
	for _, align := range []int{1, 2, 4, 8, 16} {
		buf, err := alloc.Allocate(37, align)
		require.NoError(t, err)
		assert.Equal(t, 37, buf.Len())
		assert.Zero(t, uintptrOf(buf) % uintptr(align))
		for _, b := range buf.Bytes() {
			assert.Zero(t, b)
		}
	}
}

func TestAutomaticAllocator(t *testing.T) {
	testAllocatorAlignment(t, shapes.NewAutomaticAllocator())
}

func TestScopedAllocator(t *testing.T) {
	alloc := shapes.NewScopedAllocator()
	testAllocatorAlignment(t, alloc)
	alloc.Close()
}

func TestSlicingAllocator(t *testing.T) {
	backing := make([]byte, 256)
	for i := range backing {
		backing[i] = 0xFF
	}
	alloc := shapes.NewSlicingAllocator(backing)

	buf, err := alloc.Allocate(16, 8)
	require.NoError(t, err)
	assert.Equal(t, 16, buf.Len())
	for _, b := range buf.Bytes() {
		assert.Zero(t, b)
	}

	_, err = alloc.Allocate(1000, 8)
	assert.Error(t, err)
}

func TestAllocatorRejectsBadInput(t *testing.T) {
	alloc := shapes.NewAutomaticAllocator()
	_, err := alloc.Allocate(-1, 8)
	assert.Error(t, err)
	_, err = alloc.Allocate(8, 3)
	assert.Error(t, err)
}
