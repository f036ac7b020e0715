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
	"encoding/binary"
	"math"

	"github.com/shapesdb/shapes/internal/pathparse"
	"github.com/shapesdb/shapes/internal/xunsafe"
)

// Accessor is the Access Engine's entry point (spec §4.D): an immutable
// object bound to a TypeDescriptor and its ComputedLayout, owning the
// compiled offset tables. Construction always succeeds (even for layouts
// the bulk codec can't handle); path-based scalar access remains available
// regardless.
type Accessor struct {
	typ     *TypeDescriptor
	layout  *ComputedLayout
	bulkErr error // Set if Get/Set/NewValueFrom must refuse this layout.
}

var hostLittleEndian = func() bool {
	var x uint16 = 1
	return (*xunsafe.Cast[[2]byte](&x))[0] == 1
}()

// NewAccessor computes t's layout and binds an Accessor to it.
func NewAccessor(t *TypeDescriptor) (*Accessor, error) {
	if t == nil {
		return nil, invalidArgument("NewAccessor", "nil TypeDescriptor")
	}
	cl, err := LayoutOf(t)
	if err != nil {
		return nil, err
	}
	return &Accessor{typ: t, layout: cl, bulkErr: bulkSupport(t)}, nil
}

// Type returns the TypeDescriptor this accessor is bound to.
func (a *Accessor) Type() *TypeDescriptor { return a.typ }

// Layout returns the ComputedLayout this accessor is bound to.
func (a *Accessor) Layout() *ComputedLayout { return a.layout }

// Stride is the byte distance between successive elements of an array of
// this accessor's type.
func (a *Accessor) Stride() int { return int(a.layout.Size) }

// bulkSupport reports why the bulk get/set codec must refuse t, or nil if
// it may proceed (spec §4.A failure modes, §4.D encoder/decoder rules).
func bulkSupport(t *TypeDescriptor) error {
	switch t.kind {
	case KindPrimitive:
		return nil
	case KindArray:
		return unsupportedLayout("Accessor", "layout contains an array/sequence leaf")
	case KindUnion:
		return unsupportedLayout("Accessor", "layout contains a union leaf")
	default:
		for _, f := range t.fields {
			if err := bulkSupport(f.Type); err != nil {
				return err
			}
		}
		return nil
	}
}

func fieldsOf(cl *ComputedLayout) []Member {
	var out []Member
	for _, m := range cl.Members {
		if m.Kind == MemberField {
			out = append(out, m)
		}
	}
	return out
}

func littleEndian(bo ByteOrder) bool {
	switch bo {
	case LittleEndian:
		return true
	case BigEndian:
		return false
	default:
		return hostLittleEndian
	}
}

func decodePrimitive(b []byte, k PrimitiveKind, bo ByteOrder) Value {
	le := littleEndian(bo)
	var bits uint64
	switch k.width() {
	case 1:
		bits = uint64(b[0])
	case 2:
		if le {
			bits = uint64(binary.LittleEndian.Uint16(b))
		} else {
			bits = uint64(binary.BigEndian.Uint16(b))
		}
	case 4:
		if le {
			bits = uint64(binary.LittleEndian.Uint32(b))
		} else {
			bits = uint64(binary.BigEndian.Uint32(b))
		}
	case 8:
		if le {
			bits = binary.LittleEndian.Uint64(b)
		} else {
			bits = binary.BigEndian.Uint64(b)
		}
	}
	return scalarValue(Primitive(k), bits)
}

func encodePrimitive(b []byte, k PrimitiveKind, bo ByteOrder, v Value) error {
	if v.typ == nil || v.typ.kind != KindPrimitive || v.typ.prim != k {
		return invalidArgument("Set", "expected %v, got %v", k, v.Kind())
	}
	le := littleEndian(bo)
	bits := v.scalar
	switch k.width() {
	case 1:
		b[0] = byte(bits)
	case 2:
		if le {
			binary.LittleEndian.PutUint16(b, uint16(bits))
		} else {
			binary.BigEndian.PutUint16(b, uint16(bits))
		}
	case 4:
		if le {
			binary.LittleEndian.PutUint32(b, uint32(bits))
		} else {
			binary.BigEndian.PutUint32(b, uint32(bits))
		}
	case 8:
		if le {
			binary.LittleEndian.PutUint64(b, bits)
		} else {
			binary.BigEndian.PutUint64(b, bits)
		}
	}
	return nil
}

func decodeValue(buf []byte, t *TypeDescriptor) Value {
	if t.kind == KindPrimitive {
		return decodePrimitive(buf, t.prim, NativeEndian)
	}

	cl, _ := LayoutOf(t)
	members := fieldsOf(cl)
	fields := make([]Value, len(members))
	for i, m := range members {
		sub := buf[m.Offset : m.Offset+m.Width]
		if _, ok := m.Type.Primitive(); ok {
			fields[i] = decodePrimitive(sub, m.Type.prim, m.ByteOrder)
		} else {
			fields[i] = decodeValue(sub, m.Type)
		}
	}
	return StructValue(t, fields)
}

func encodeValue(buf []byte, t *TypeDescriptor, v Value) error {
	if t.kind == KindPrimitive {
		return encodePrimitive(buf, t.prim, NativeEndian, v)
	}

	cl, err := LayoutOf(t)
	if err != nil {
		return err
	}
	members := fieldsOf(cl)
	if len(v.fields) != len(members) {
		return invalidArgument("Set", "value has %d fields, layout expects %d", len(v.fields), len(members))
	}
	for i, m := range members {
		sub := buf[m.Offset : m.Offset+m.Width]
		if _, ok := m.Type.Primitive(); ok {
			if err := encodePrimitive(sub, m.Type.prim, m.ByteOrder, v.fields[i]); err != nil {
				return err
			}
		} else {
			if err := encodeValue(sub, m.Type, v.fields[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewValue allocates one zeroed element's worth of storage.
func (a *Accessor) NewValue(alloc Allocator) (*Buffer, error) {
	return alloc.Allocate(int(a.layout.Size), int(a.layout.Alignment))
}

// NewValueFrom allocates one element's worth of storage and encodes v into
// it.
func (a *Accessor) NewValueFrom(alloc Allocator, v Value) (*Buffer, error) {
	buf, err := a.NewValue(alloc)
	if err != nil {
		return nil, err
	}
	if err := a.Set(buf, v); err != nil {
		return nil, err
	}
	return buf, nil
}

// NewArray allocates n*stride zeroed bytes.
func (a *Accessor) NewArray(alloc Allocator, n uint64) (*Buffer, error) {
	stride := int64(a.Stride())
	total := stride * int64(n)
	if n > 0 && (total/int64(n) != stride || total > math.MaxInt32) {
		return nil, capacityExceeded("NewArray", "array of %d elements of stride %d overflows", n, stride)
	}
	return alloc.Allocate(int(total), int(a.layout.Alignment))
}

func (a *Accessor) checkBuf(buf *Buffer) error {
	if buf == nil {
		return invalidArgument("Get/Set", "nil buffer")
	}
	if uint64(buf.Len()) < a.layout.Size {
		return invalidArgument("Get/Set", "buffer too small: have %d bytes, need %d", buf.Len(), a.layout.Size)
	}
	if buf.Len() > 0 {
		_, padding := xunsafe.AddrOf(buf.Base()).Misalign(int(a.layout.Alignment))
		if padding != 0 {
			return invalidArgument("Get/Set", "buffer base is not aligned to %d", a.layout.Alignment)
		}
	}
	return nil
}

// Get decodes one element starting at buffer offset 0.
func (a *Accessor) Get(buf *Buffer) (Value, error) {
	if a.bulkErr != nil {
		return Value{}, a.bulkErr
	}
	if err := a.checkBuf(buf); err != nil {
		return Value{}, err
	}
	return decodeValue(buf.Bytes()[:a.layout.Size], a.typ), nil
}

// Set encodes v into the buffer starting at offset 0.
func (a *Accessor) Set(buf *Buffer, v Value) error {
	if a.bulkErr != nil {
		return a.bulkErr
	}
	if err := a.checkBuf(buf); err != nil {
		return err
	}
	return encodeValue(buf.Bytes()[:a.layout.Size], a.typ, v)
}

func (a *Accessor) subBuffer(buf *Buffer, i int) ([]byte, error) {
	if buf == nil {
		return nil, invalidArgument("GetAt/SetAt", "nil buffer")
	}
	if i < 0 {
		return nil, invalidArgument("GetAt/SetAt", "negative index %d", i)
	}
	stride := a.Stride()
	start := i * stride
	end := start + stride
	data := buf.Bytes()
	if stride == 0 || end > len(data) {
		return nil, invalidArgument("GetAt/SetAt", "index %d out of range", i)
	}
	return data[start:end], nil
}

// GetAt decodes the i-th element of buf.
func (a *Accessor) GetAt(buf *Buffer, i int) (Value, error) {
	if a.bulkErr != nil {
		return Value{}, a.bulkErr
	}
	sub, err := a.subBuffer(buf, i)
	if err != nil {
		return Value{}, err
	}
	return decodeValue(sub, a.typ), nil
}

// SetAt encodes v into the i-th element of buf.
func (a *Accessor) SetAt(buf *Buffer, i int, v Value) error {
	if a.bulkErr != nil {
		return a.bulkErr
	}
	sub, err := a.subBuffer(buf, i)
	if err != nil {
		return err
	}
	return encodeValue(sub, a.typ, v)
}

// List returns a random-access view of buf as an array of this accessor's
// type.
func (a *Accessor) List(buf *Buffer) *SequenceView {
	return &SequenceView{acc: a, buf: buf}
}

// Stream returns a lazy, forward-only, splittable sequence over buf.
func (a *Accessor) Stream(buf *Buffer) *LazySeq {
	v := a.List(buf)
	return &LazySeq{view: v, end: v.Len()}
}

// ByteOffset resolves a path with no array steps to a static byte offset.
func (a *Accessor) ByteOffset(path string) (uint64, error) {
	fa, err := a.FieldAccessor(path)
	if err != nil {
		return 0, err
	}
	return fa.ByteOffset()
}

// FieldAccessor parses and resolves path against this accessor's type,
// returning a reusable, index-parameterized field handle.
func (a *Accessor) FieldAccessor(path string) (*TypedFieldAccessor, error) {
	steps, err := pathparse.Parse(path)
	if err != nil {
		return nil, parseError("FieldAccessor", "%v", err)
	}
	if err := validatePath(a.typ, steps); err != nil {
		return nil, err
	}
	return &TypedFieldAccessor{root: a.typ, steps: steps}, nil
}

func validatePath(root *TypeDescriptor, steps []pathparse.Step) error {
	cur := root
	for _, s := range steps {
		switch s.Kind {
		case pathparse.FieldStep:
			f, ok := cur.Field(s.Name)
			if !ok {
				return notFound("FieldAccessor", "no field %q in %v", s.Name, cur)
			}
			cur = f.Type
		case pathparse.ArrayStep:
			if cur.kind != KindArray {
				return invalidArgument("FieldAccessor", "[] step applied to non-array type %v", cur)
			}
			cur = cur.elem
		}
	}
	return nil
}

// TypedFieldAccessor is a path resolved against a specific TypeDescriptor,
// ready to be addressed with zero or more indices (one per [] step) against
// any buffer of that type (spec §4.B, §4.D).
type TypedFieldAccessor struct {
	root  *TypeDescriptor
	steps []pathparse.Step
}

func (fa *TypedFieldAccessor) resolve(indices []int) (offset uint64, typ *TypeDescriptor, bo ByteOrder, err error) {
	cur := fa.root
	curLayout, e := LayoutOf(cur)
	if e != nil {
		err = e
		return
	}

	idx := 0
	for _, s := range fa.steps {
		switch s.Kind {
		case pathparse.FieldStep:
			m, ok := curLayout.FieldByName(s.Name)
			if !ok {
				err = notFound("FieldAccessor", "no field %q in %v", s.Name, cur)
				return
			}
			offset += m.Offset
			bo = m.ByteOrder
			cur = m.Type
			curLayout, e = LayoutOf(cur)
			if e != nil {
				err = e
				return
			}
		case pathparse.ArrayStep:
			if cur.kind != KindArray {
				err = invalidArgument("FieldAccessor", "[] step applied to non-array type %v", cur)
				return
			}
			if idx >= len(indices) {
				err = invalidArgument("FieldAccessor", "missing index for [] step %d", idx)
				return
			}
			elemLayout, e2 := LayoutOf(cur.elem)
			if e2 != nil {
				err = e2
				return
			}
			offset += uint64(indices[idx]) * elemLayout.Size
			idx++
			bo = NativeEndian
			cur = cur.elem
			curLayout = elemLayout
		}
	}

	typ = cur
	return
}

// ByteOffset resolves this path's static offset, given one index per []
// step in path order.
func (fa *TypedFieldAccessor) ByteOffset(indices ...int) (uint64, error) {
	off, _, _, err := fa.resolve(indices)
	return off, err
}

// Get reads the field this path addresses out of buf.
func (fa *TypedFieldAccessor) Get(buf *Buffer, indices ...int) (Value, error) {
	off, typ, bo, err := fa.resolve(indices)
	if err != nil {
		return Value{}, err
	}
	cl, err := LayoutOf(typ)
	if err != nil {
		return Value{}, err
	}
	data := buf.Bytes()
	if off+cl.Size > uint64(len(data)) {
		return Value{}, invalidArgument("Get", "path resolves out of buffer bounds")
	}
	sub := data[off : off+cl.Size]
	if _, ok := typ.Primitive(); ok {
		return decodePrimitive(sub, typ.prim, bo), nil
	}
	return decodeValue(sub, typ), nil
}

// Set writes v into the field this path addresses in buf.
func (fa *TypedFieldAccessor) Set(buf *Buffer, v Value, indices ...int) error {
	off, typ, bo, err := fa.resolve(indices)
	if err != nil {
		return err
	}
	cl, err := LayoutOf(typ)
	if err != nil {
		return err
	}
	data := buf.Bytes()
	if off+cl.Size > uint64(len(data)) {
		return invalidArgument("Set", "path resolves out of buffer bounds")
	}
	sub := data[off : off+cl.Size]
	if _, ok := typ.Primitive(); ok {
		return encodePrimitive(sub, typ.prim, bo, v)
	}
	return encodeValue(sub, typ, v)
}
