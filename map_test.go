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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapesdb/shapes"
)

func i32Hash(v shapes.Value) uint32 {
	x, _ := v.I32()
	return uint32(x)
}

func boolHash(v shapes.Value) uint32 {
	b, _ := v.Bool()
	if b {
		return 1
	}
	return 0
}

func newTestMap(t *testing.T, presize int) *shapes.Map {
	t.Helper()
	m, err := shapes.NewMap(shapes.I32Type(), shapes.I32Type(), i32Hash, shapes.NewAutomaticAllocator(), presize)
	require.NoError(t, err)
	return m
}

// P3
func TestMapIdempotentOverwrite(t *testing.T) {
	m := newTestMap(t, 0)
	_, existed, err := m.Put(shapes.I32Value(1), shapes.I32Value(10))
	require.NoError(t, err)
	assert.False(t, existed)

	old, existed, err := m.Put(shapes.I32Value(1), shapes.I32Value(20))
	require.NoError(t, err)
	assert.True(t, existed)
	assert.EqualValues(t, 10, mustI32(t, old))

	assert.EqualValues(t, 1, m.Size())
	v, ok, err := m.Get(shapes.I32Value(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 20, mustI32(t, v))
}

// P4, E4 (smaller N for test speed)
func TestMapContract(t *testing.T) {
	const n = 2000
	m := newTestMap(t, 0)
	for i := int32(0); i < n; i++ {
		_, _, err := m.Put(shapes.I32Value(i), shapes.I32Value(i))
		require.NoError(t, err)
	}
	assert.EqualValues(t, n, m.Size())

	for i := int32(0); i < n; i++ {
		v, ok, err := m.Get(shapes.I32Value(i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, i, mustI32(t, v))
		has, err := m.Contains(shapes.I32Value(i))
		require.NoError(t, err)
		assert.True(t, has)
	}

	seen := make(map[int32]bool, n)
	it := m.Iter()
	for it.HasNext() {
		k, v, err := it.Next()
		require.NoError(t, err)
		ki := mustI32(t, k)
		assert.EqualValues(t, ki, mustI32(t, v))
		assert.False(t, seen[ki])
		seen[ki] = true
	}
	assert.Len(t, seen, n)
}

// P5
func TestMapRehashPreservesEntries(t *testing.T) {
	m := newTestMap(t, 0)
	for i := int32(0); i < 500; i++ {
		_, _, err := m.Put(shapes.I32Value(i), shapes.I32Value(i*2))
		require.NoError(t, err)
	}
	for i := int32(0); i < 500; i++ {
		v, ok, err := m.Get(shapes.I32Value(i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, i*2, mustI32(t, v))
	}
}

// P6
func TestMapTombstoneCorrectness(t *testing.T) {
	m := newTestMap(t, 0)
	_, _, err := m.Put(shapes.I32Value(1), shapes.I32Value(10))
	require.NoError(t, err)
	_, existed, err := m.Remove(shapes.I32Value(1))
	require.NoError(t, err)
	assert.True(t, existed)
	_, _, err = m.Put(shapes.I32Value(1), shapes.I32Value(20))
	require.NoError(t, err)

	v, ok, err := m.Get(shapes.I32Value(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 20, mustI32(t, v))
	assert.EqualValues(t, 1, m.Size())
}

// P7
func TestMapIteratorInvalidation(t *testing.T) {
	m := newTestMap(t, 0)
	for i := int32(0); i < 4; i++ {
		_, _, err := m.Put(shapes.I32Value(i), shapes.I32Value(i))
		require.NoError(t, err)
	}

	it := m.Iter()
	require.True(t, it.HasNext())
	_, _, err := it.Next()
	require.NoError(t, err)

	_, _, err = m.Put(shapes.I32Value(100), shapes.I32Value(100))
	require.NoError(t, err)

	_, _, err = it.Next()
	assert.ErrorIs(t, err, shapes.ErrConcurrentModification)
}

func TestMapIteratorRemoveContinues(t *testing.T) {
	m := newTestMap(t, 0)
	for i := int32(0); i < 4; i++ {
		_, _, err := m.Put(shapes.I32Value(i), shapes.I32Value(i))
		require.NoError(t, err)
	}

	it := m.Iter()
	count := 0
	for it.HasNext() {
		_, _, err := it.Next()
		require.NoError(t, err)
		count++
		require.NoError(t, it.Remove())
	}
	assert.Equal(t, 4, count)
	assert.EqualValues(t, 0, m.Size())
}

// E5
func TestMapBoolKeys(t *testing.T) {
	m, err := shapes.NewMap(shapes.BoolType(), shapes.BoolType(), boolHash, shapes.NewAutomaticAllocator(), 0)
	require.NoError(t, err)

	_, existed, err := m.Put(shapes.BoolValue(true), shapes.BoolValue(false))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.EqualValues(t, 1, m.Size())

	it := m.Iter()
	require.True(t, it.HasNext())
	k, v, err := it.Next()
	require.NoError(t, err)
	kb, _ := k.Bool()
	vb, _ := v.Bool()
	assert.True(t, kb)
	assert.False(t, vb)
	assert.False(t, it.HasNext())
}

func TestMapClone(t *testing.T) {
	m := newTestMap(t, 0)
	for i := int32(0); i < 10; i++ {
		_, _, err := m.Put(shapes.I32Value(i), shapes.I32Value(i))
		require.NoError(t, err)
	}
	clone, err := m.Clone()
	require.NoError(t, err)

	_, _, err = clone.Remove(shapes.I32Value(0))
	require.NoError(t, err)

	v, ok, err := m.Get(shapes.I32Value(0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 0, mustI32(t, v))

	_, ok, err = clone.Get(shapes.I32Value(0))
	require.NoError(t, err)
	assert.False(t, ok)
}

// A failed Put (key/value type mismatch) must not mutate the map: no
// phantom occupied slot, no size/modCount change, and a later Put of the
// same key must succeed cleanly rather than finding a half-written slot.
func TestMapPutRejectsMismatchWithoutMutating(t *testing.T) {
	m := newTestMap(t, 0)

	_, _, err := m.Put(shapes.I32Value(1), shapes.BoolValue(true))
	require.Error(t, err)
	assert.EqualValues(t, 0, m.Size())

	has, err := m.Contains(shapes.I32Value(1))
	require.NoError(t, err)
	assert.False(t, has)

	_, existed, err := m.Put(shapes.I32Value(1), shapes.I32Value(42))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.EqualValues(t, 1, m.Size())

	v, ok, err := m.Get(shapes.I32Value(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 42, mustI32(t, v))
}

// Same guarantee on the overwrite (key-already-present) path: a failed
// re-encode of the new value must not clobber the value already stored.
func TestMapPutOverwriteRejectsMismatchWithoutMutating(t *testing.T) {
	m := newTestMap(t, 0)
	_, _, err := m.Put(shapes.I32Value(1), shapes.I32Value(10))
	require.NoError(t, err)

	_, _, err = m.Put(shapes.I32Value(1), shapes.BoolValue(true))
	require.Error(t, err)

	v, ok, err := m.Get(shapes.I32Value(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 10, mustI32(t, v))
	assert.EqualValues(t, 1, m.Size())
}
