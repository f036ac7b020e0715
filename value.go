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
	"fmt"
	"math"
)

// Value is a dynamically-typed realization of T in the Access Engine's
// contract (spec §4.D): since a TypeDescriptor can describe layouts (custom
// byte order, padding_before, alignment_override, unions) that no single Go
// struct's compiler-assigned layout could represent, T is not a generic type
// parameter but this tagged union, bound to the TypeDescriptor that shaped
// it. A Value is immutable once constructed.
type Value struct {
	typ *TypeDescriptor

	scalar uint64  // Bit pattern for KindPrimitive.
	fields []Value // KindStruct/KindUnion, parallel to typ.Fields().
	elems  []Value // KindArray, length typ.Count() (or variable, pre-layout).
}

// Type returns the TypeDescriptor this value was constructed against.
func (v Value) Type() *TypeDescriptor { return v.typ }

// Kind reports the dynamic kind of v.
func (v Value) Kind() TypeKind {
	if v.typ == nil {
		return KindPrimitive
	}
	return v.typ.kind
}

func scalarValue(t *TypeDescriptor, bits uint64) Value {
	return Value{typ: t, scalar: bits}
}

// BoolValue constructs a bool-kinded Value.
func BoolValue(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return scalarValue(Primitive(Bool), bits)
}

func I8Value(x int8) Value     { return scalarValue(Primitive(I8), uint64(uint8(x))) }
func U8Value(x uint8) Value    { return scalarValue(Primitive(U8), uint64(x)) }
func I16Value(x int16) Value   { return scalarValue(Primitive(I16), uint64(uint16(x))) }
func U16Value(x uint16) Value  { return scalarValue(Primitive(U16), uint64(x)) }
func I32Value(x int32) Value   { return scalarValue(Primitive(I32), uint64(uint32(x))) }
func U32Value(x uint32) Value  { return scalarValue(Primitive(U32), uint64(x)) }
func I64Value(x int64) Value   { return scalarValue(Primitive(I64), uint64(x)) }
func U64Value(x uint64) Value  { return scalarValue(Primitive(U64), x) }
func F32Value(x float32) Value { return scalarValue(Primitive(F32), uint64(math.Float32bits(x))) }
func F64Value(x float64) Value { return scalarValue(Primitive(F64), math.Float64bits(x)) }
func Char16Value(x uint16) Value { return scalarValue(Primitive(Char16), uint64(x)) }

// StructValue constructs a struct- or union-kinded Value. fields must be in
// the same order as t.Fields().
func StructValue(t *TypeDescriptor, fields []Value) Value {
	return Value{typ: t, fields: fields}
}

// ArrayValue constructs an array-kinded Value from its elements.
func ArrayValue(t *TypeDescriptor, elems []Value) Value {
	return Value{typ: t, elems: elems}
}

// Bool returns v's bool payload; ok is false if v is not a bool.
func (v Value) Bool() (bool, bool) {
	if v.typ == nil || v.typ.kind != KindPrimitive || v.typ.prim != Bool {
		return false, false
	}
	return v.scalar != 0, true
}

func (v Value) primScalar(k PrimitiveKind) (uint64, bool) {
	if v.typ == nil || v.typ.kind != KindPrimitive || v.typ.prim != k {
		return 0, false
	}
	return v.scalar, true
}

func (v Value) I8() (int8, bool)  { x, ok := v.primScalar(I8); return int8(uint8(x)), ok }
func (v Value) U8() (uint8, bool) { x, ok := v.primScalar(U8); return uint8(x), ok }
func (v Value) I16() (int16, bool) { x, ok := v.primScalar(I16); return int16(uint16(x)), ok }
func (v Value) U16() (uint16, bool) { x, ok := v.primScalar(U16); return uint16(x), ok }
func (v Value) I32() (int32, bool) { x, ok := v.primScalar(I32); return int32(uint32(x)), ok }
func (v Value) U32() (uint32, bool) { x, ok := v.primScalar(U32); return uint32(x), ok }
func (v Value) I64() (int64, bool) { x, ok := v.primScalar(I64); return int64(x), ok }
func (v Value) U64() (uint64, bool) { return v.primScalar(U64) }
func (v Value) F32() (float32, bool) {
	x, ok := v.primScalar(F32)
	return math.Float32frombits(uint32(x)), ok
}
func (v Value) F64() (float64, bool) {
	x, ok := v.primScalar(F64)
	return math.Float64frombits(x), ok
}
func (v Value) Char16() (uint16, bool) { x, ok := v.primScalar(Char16); return uint16(x), ok }

// Field looks up a struct/union field's value by its effective name.
func (v Value) Field(name string) (Value, bool) {
	if v.typ == nil || (v.typ.kind != KindStruct && v.typ.kind != KindUnion) {
		return Value{}, false
	}
	for i, f := range v.typ.fields {
		if f.Opts.effectiveName(f.Name) == name && i < len(v.fields) {
			return v.fields[i], true
		}
	}
	return Value{}, false
}

// At returns the i-th element of an array-kinded Value.
func (v Value) At(i int) (Value, bool) {
	if v.typ == nil || v.typ.kind != KindArray || i < 0 || i >= len(v.elems) {
		return Value{}, false
	}
	return v.elems[i], true
}

// Len returns the element count of an array-kinded Value.
func (v Value) Len() int { return len(v.elems) }

// Equal reports whether v and other have the same type and the same
// recursive content. Types are compared structurally, not by descriptor
// identity: primitives must share a PrimitiveKind, and struct/union fields
// are compared position by position without regard to field names.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		if v.typ == nil || other.typ == nil {
			return false
		}
		if v.typ.kind != other.typ.kind {
			return false
		}
		if v.typ.kind == KindPrimitive && v.typ.prim != other.typ.prim {
			return false
		}
	}
	switch v.Kind() {
	case KindPrimitive:
		return v.scalar == other.scalar
	case KindArray:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	default: // struct, union
		if len(v.fields) != len(other.fields) {
			return false
		}
		for i := range v.fields {
			if !v.fields[i].Equal(other.fields[i]) {
				return false
			}
		}
		return true
	}
}

// String renders v for diagnostics.
func (v Value) String() string {
	switch v.Kind() {
	case KindPrimitive:
		if v.typ != nil && v.typ.prim == Bool {
			b, _ := v.Bool()
			return fmt.Sprintf("%v", b)
		}
		if v.typ != nil && (v.typ.prim == F32 || v.typ.prim == F64) {
			f, _ := v.F64()
			if v.typ.prim == F32 {
				f32, _ := v.F32()
				f = float64(f32)
			}
			return fmt.Sprintf("%v", f)
		}
		return fmt.Sprintf("%d", v.scalar)
	case KindArray:
		return fmt.Sprintf("%v", v.elems)
	default:
		return fmt.Sprintf("%v", v.fields)
	}
}
