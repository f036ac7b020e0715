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

import "fmt"

// PrimitiveKind identifies one of the fixed set of scalar types the layout
// engine understands (spec §3).
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	F32
	F64
	Char16
)

func (k PrimitiveKind) String() string {
	switch k {
	case Bool:
		return "bool"
	case I8:
		return "i8"
	case U8:
		return "u8"
	case I16:
		return "i16"
	case U16:
		return "u16"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case I64:
		return "i64"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Char16:
		return "char16"
	default:
		return fmt.Sprintf("PrimitiveKind(%d)", int(k))
	}
}

// width returns the default width, in bytes, of a primitive kind (spec
// §6, "In-memory layout").
func (k PrimitiveKind) width() int {
	switch k {
	case Bool, I8, U8:
		return 1
	case I16, U16, Char16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	default:
		panic(fmt.Sprintf("shapes: unknown primitive kind %v", k))
	}
}

// ByteOrder selects a primitive field's encoding. It never affects a
// field's width or offset (spec §6).
type ByteOrder int

const (
	NativeEndian ByteOrder = iota
	LittleEndian
	BigEndian
)

// TypeKind discriminates the variants of TypeDescriptor.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindStruct
	KindUnion
	KindArray
)

// TypeDescriptor is a recursive, immutable description of a composite
// value's shape (spec §3). Build one with Primitive, StructOf, UnionOf, or
// ArrayOf; TypeDescriptors are never mutated after construction, so a
// *TypeDescriptor's identity is a valid cache key for its ComputedLayout.
type TypeDescriptor struct {
	kind TypeKind

	// KindPrimitive.
	prim PrimitiveKind

	// KindStruct, KindUnion.
	fields []FieldDescriptor
	opts   LayoutOpts

	// KindArray.
	elem  *TypeDescriptor
	count uint64

	layout *ComputedLayout // Never set; LayoutOf memoizes in layoutCache instead.
}

// FieldDescriptor names one member of a Struct or Union TypeDescriptor.
type FieldDescriptor struct {
	Name string
	Type *TypeDescriptor
	Opts FieldOpts
}

// FieldOpts carries the per-field layout overrides described in spec §3.
type FieldOpts struct {
	NameOverride      string
	AlignmentOverride uint64 // 0 means "not set"; must be a power of two.
	PaddingBefore     *uint64
	ByteOrder         ByteOrder
}

func (o FieldOpts) effectiveName(declared string) string {
	if o.NameOverride != "" {
		return o.NameOverride
	}
	return declared
}

// EndPaddingAuto requests that end padding be computed automatically
// (round size up to the struct's alignment). This is the zero value's
// meaning is distinct from 0 ("no end padding"), so it is spelled out as a
// distinguished sentinel.
const EndPaddingAuto int64 = -1

// LayoutOpts controls struct/union-level layout decisions (spec §3).
type LayoutOpts struct {
	Union        bool // false = struct, true = union.
	AutoPadding  bool // Ignored when Union is true.
	EndPadding   int64
	endPaddingSet bool
}

// DefaultLayoutOpts is the struct layout used when none is supplied:
// auto_padding on, end_padding "auto".
func DefaultLayoutOpts() LayoutOpts {
	return LayoutOpts{AutoPadding: true, EndPadding: EndPaddingAuto, endPaddingSet: true}
}

// WithEndPadding returns a copy of o with an explicit end-padding byte
// count (0 means none, any positive value is added verbatim).
func (o LayoutOpts) WithEndPadding(n int64) LayoutOpts {
	o.EndPadding = n
	o.endPaddingSet = true
	return o
}

func (o LayoutOpts) endPadding() int64 {
	if !o.endPaddingSet {
		return EndPaddingAuto
	}
	return o.EndPadding
}

// Primitive constructs a TypeDescriptor for a scalar kind.
func Primitive(kind PrimitiveKind) *TypeDescriptor {
	return &TypeDescriptor{kind: KindPrimitive, prim: kind}
}

// Convenience constructors for every primitive kind (spec §3).
func BoolType() *TypeDescriptor   { return Primitive(Bool) }
func I8Type() *TypeDescriptor     { return Primitive(I8) }
func U8Type() *TypeDescriptor     { return Primitive(U8) }
func I16Type() *TypeDescriptor    { return Primitive(I16) }
func U16Type() *TypeDescriptor    { return Primitive(U16) }
func I32Type() *TypeDescriptor    { return Primitive(I32) }
func U32Type() *TypeDescriptor    { return Primitive(U32) }
func I64Type() *TypeDescriptor    { return Primitive(I64) }
func U64Type() *TypeDescriptor    { return Primitive(U64) }
func F32Type() *TypeDescriptor    { return Primitive(F32) }
func F64Type() *TypeDescriptor    { return Primitive(F64) }
func Char16Type() *TypeDescriptor { return Primitive(Char16) }

// StructOf constructs a Struct TypeDescriptor with the given fields in
// declaration order and layout options; use DefaultLayoutOpts for the
// conventional auto-padded, auto-end-padded layout. Opts.Union is always
// forced to false.
func StructOf(fields []FieldDescriptor, opts LayoutOpts) *TypeDescriptor {
	opts.Union = false
	return &TypeDescriptor{kind: KindStruct, fields: fields, opts: opts}
}

// UnionOf constructs a Union TypeDescriptor: every field overlaps at
// offset 0, and auto-padding never applies (spec §4.A).
func UnionOf(fields []FieldDescriptor) *TypeDescriptor {
	return &TypeDescriptor{kind: KindUnion, fields: fields, opts: LayoutOpts{Union: true}}
}

// ArrayOf constructs an Array TypeDescriptor of count elements of the
// given type. count == 0 describes an "unsized tail" (spec §3).
func ArrayOf(elem *TypeDescriptor, count uint64) *TypeDescriptor {
	return &TypeDescriptor{kind: KindArray, elem: elem, count: count}
}

// Kind reports which TypeDescriptor variant this is.
func (t *TypeDescriptor) Kind() TypeKind { return t.kind }

// Field looks up a field by its declared (or overridden) name; this walks
// Fields() directly rather than a computed layout, so it is meaningful
// even before LayoutOf has been called.
func (t *TypeDescriptor) Field(name string) (FieldDescriptor, bool) {
	for _, f := range t.fields {
		if f.Opts.effectiveName(f.Name) == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Fields returns the declared fields of a Struct or Union descriptor, or
// nil for any other kind.
func (t *TypeDescriptor) Fields() []FieldDescriptor { return t.fields }

// Elem returns the element type of an Array descriptor, or nil otherwise.
func (t *TypeDescriptor) Elem() *TypeDescriptor { return t.elem }

// Count returns the element count of an Array descriptor (0 means
// unsized).
func (t *TypeDescriptor) Count() uint64 { return t.count }

// Primitive returns the primitive kind of a Primitive descriptor; the
// second return value is false for any other kind.
func (t *TypeDescriptor) Primitive() (PrimitiveKind, bool) {
	if t.kind != KindPrimitive {
		return 0, false
	}
	return t.prim, true
}

// String renders a compact, C-like declaration of the descriptor, useful
// for diagnostics.
func (t *TypeDescriptor) String() string {
	switch t.kind {
	case KindPrimitive:
		return t.prim.String()
	case KindArray:
		return fmt.Sprintf("%v[%d]", t.elem, t.count)
	case KindUnion:
		return structString(t, "union")
	default:
		return structString(t, "struct")
	}
}

func structString(t *TypeDescriptor, kw string) string {
	s := kw + " {"
	for i, f := range t.fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%v %s", f.Type, f.Opts.effectiveName(f.Name))
	}
	return s + "}"
}
