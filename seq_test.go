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

func newTestSeq(t *testing.T, presize int) (*shapes.Seq, *shapes.Accessor) {
	t.Helper()
	acc, err := shapes.NewAccessor(shapes.I32Type())
	require.NoError(t, err)
	s, err := shapes.NewSeq(acc, shapes.NewAutomaticAllocator(), presize)
	require.NoError(t, err)
	return s, acc
}

func TestSeqPushGetLen(t *testing.T) {
	s, _ := newTestSeq(t, 0)
	assert.EqualValues(t, 2, s.Cap())

	for i := int32(0); i < 10; i++ {
		require.NoError(t, s.Push(shapes.I32Value(i)))
	}
	assert.EqualValues(t, 10, s.Len())
	assert.True(t, s.Cap() >= 10)
	assert.EqualValues(t, (s.Cap()&(s.Cap()-1)), 0, "capacity must stay a power of two")

	v, err := s.Get(7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, mustI32(t, v))
}

func TestSeqInsertRemove(t *testing.T) {
	s, _ := newTestSeq(t, 4)
	for i := int32(0); i < 4; i++ {
		require.NoError(t, s.Push(shapes.I32Value(i)))
	}

	require.NoError(t, s.Insert(2, shapes.I32Value(99)))
	assert.EqualValues(t, 5, s.Len())
	v, err := s.Get(2)
	require.NoError(t, err)
	assert.EqualValues(t, 99, mustI32(t, v))
	v, err = s.Get(3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mustI32(t, v))

	old, err := s.Remove(2)
	require.NoError(t, err)
	assert.EqualValues(t, 99, mustI32(t, old))
	assert.EqualValues(t, 4, s.Len())
	v, err = s.Get(2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mustI32(t, v))
}

// P8
func TestSeqEquals(t *testing.T) {
	a, _ := newTestSeq(t, 0)
	b, _ := newTestSeq(t, 0)
	for i := int32(0); i < 5; i++ {
		require.NoError(t, a.Push(shapes.I32Value(i)))
		require.NoError(t, b.Push(shapes.I32Value(i)))
	}
	assert.True(t, a.Equals(b))

	require.NoError(t, b.Push(shapes.I32Value(5)))
	assert.False(t, a.Equals(b))

	c, _ := newTestSeq(t, 0)
	for i := int32(0); i < 5; i++ {
		require.NoError(t, c.Push(shapes.I32Value(i)))
	}
	assert.True(t, a.Equals(c))
}

func TestSeqOutOfRange(t *testing.T) {
	s, _ := newTestSeq(t, 0)
	_, err := s.Get(0)
	assert.Error(t, err)
	_, err = s.Remove(0)
	assert.Error(t, err)
}

func TestSeqClip(t *testing.T) {
	s, _ := newTestSeq(t, 0)
	for i := int32(0); i < 9; i++ {
		require.NoError(t, s.Push(shapes.I32Value(i)))
	}
	require.NoError(t, s.Clip())
	assert.EqualValues(t, 16, s.Cap())

	for i := int32(0); i < 9; i++ {
		v, err := s.Get(i)
		require.NoError(t, err)
		assert.EqualValues(t, i, mustI32(t, v))
	}
}
