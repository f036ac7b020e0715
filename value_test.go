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

	"github.com/shapesdb/shapes"
)

func TestValueScalarRoundTrip(t *testing.T) {
	assert.Equal(t, true, mustBool(t, shapes.BoolValue(true)))
	assert.EqualValues(t, -5, mustI32(t, shapes.I32Value(-5)))
	assert.EqualValues(t, 7, mustU64(t, shapes.U64Value(7)))
	f, ok := shapes.F64Value(3.5).F64()
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)
}

func mustBool(t *testing.T, v shapes.Value) bool {
	t.Helper()
	b, ok := v.Bool()
	assert.True(t, ok)
	return b
}

func mustI32(t *testing.T, v shapes.Value) int32 {
	t.Helper()
	x, ok := v.I32()
	assert.True(t, ok)
	return x
}

func mustU64(t *testing.T, v shapes.Value) uint64 {
	t.Helper()
	x, ok := v.U64()
	assert.True(t, ok)
	return x
}

func TestValueEqual(t *testing.T) {
	point := structOf(field("x", shapes.I32Type()), field("y", shapes.I32Type()))
	a := shapes.StructValue(point, []shapes.Value{shapes.I32Value(1), shapes.I32Value(2)})
	b := shapes.StructValue(point, []shapes.Value{shapes.I32Value(1), shapes.I32Value(2)})
	c := shapes.StructValue(point, []shapes.Value{shapes.I32Value(1), shapes.I32Value(3)})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestValueFieldAndAt(t *testing.T) {
	point := structOf(field("x", shapes.I32Type()), field("y", shapes.I32Type()))
	v := shapes.StructValue(point, []shapes.Value{shapes.I32Value(7), shapes.I32Value(-7)})

	x, ok := v.Field("x")
	assert.True(t, ok)
	assert.EqualValues(t, 7, mustI32(t, x))

	_, ok = v.Field("z")
	assert.False(t, ok)

	arr := shapes.ArrayValue(shapes.ArrayOf(shapes.I32Type(), 2), []shapes.Value{shapes.I32Value(1), shapes.I32Value(2)})
	assert.Equal(t, 2, arr.Len())
	e, ok := arr.At(1)
	assert.True(t, ok)
	assert.EqualValues(t, 2, mustI32(t, e))
}
