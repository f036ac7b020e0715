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
	"fmt"
	"math"

	"github.com/shapesdb/shapes/internal/dbg"
)

const (
	hashEmpty       uint32 = 0x0000_0000
	hashTombstone   uint32 = 0x7FFF_FFFF
	hashOccupiedBit uint32 = 0x8000_0000
)

// Map is the Specialized Map (spec §4.F): an open-addressed hash table
// with linear probing and soft-delete tombstones, whose slots
// ({hash u32; key K; value V}) are laid out by the Layout Engine and
// stored contiguously in one Buffer. Not safe for concurrent mutation.
type Map struct {
	keyType, valueType, slotType *TypeDescriptor
	slotLayout                   *ComputedLayout
	stride                        int
	hashOff, keyOff, valueOff     uint64
	keyWidth, valueWidth          uint64

	hashFn func(Value) uint32
	alloc  Allocator

	buf      *Buffer
	size     int32
	capacity int32
	modCount uint64
}

// NewMap constructs an empty Map for the given key/value types, using
// hashFn as the caller-supplied `user_hash` (spec §4.F). presize seeds the
// initial capacity per `max(2, next_pow2(presize))`.
func NewMap(keyType, valueType *TypeDescriptor, hashFn func(Value) uint32, alloc Allocator, presize int) (*Map, error) {
	if keyType == nil || valueType == nil {
		return nil, invalidArgument("NewMap", "nil key or value type")
	}
	if hashFn == nil {
		return nil, invalidArgument("NewMap", "nil hash function")
	}
	if presize < 0 {
		return nil, invalidArgument("NewMap", "negative presize %d", presize)
	}
	if err := bulkSupport(keyType); err != nil {
		return nil, err
	}
	if err := bulkSupport(valueType); err != nil {
		return nil, err
	}

	slotType := StructOf([]FieldDescriptor{
		{Name: "hash", Type: Primitive(U32)},
		{Name: "key", Type: keyType},
		{Name: "value", Type: valueType},
	}, DefaultLayoutOpts())
	slotLayout, err := LayoutOf(slotType)
	if err != nil {
		return nil, err
	}
	hashM, _ := slotLayout.FieldByName("hash")
	keyM, _ := slotLayout.FieldByName("key")
	valueM, _ := slotLayout.FieldByName("value")

	cap0 := max(2, nextPow2(presize))
	if cap0 > math.MaxInt32 {
		return nil, capacityExceeded("NewMap", "requested capacity overflows")
	}

	buf, err := alloc.Allocate(cap0*int(slotLayout.Size), int(slotLayout.Alignment))
	if err != nil {
		return nil, err
	}

	return &Map{
		keyType: keyType, valueType: valueType, slotType: slotType,
		slotLayout: slotLayout, stride: int(slotLayout.Size),
		hashOff: hashM.Offset, keyOff: keyM.Offset, valueOff: valueM.Offset,
		keyWidth: keyM.Width, valueWidth: valueM.Width,
		hashFn: hashFn, alloc: alloc,
		buf: buf, capacity: int32(cap0),
	}, nil
}

// Size reports the number of live entries.
func (m *Map) Size() int32 { return m.size }

func (m *Map) readHash(data []byte, idx int32) uint32 {
	off := int64(idx)*int64(m.stride) + int64(m.hashOff)
	return binary.LittleEndian.Uint32(data[off : off+4])
}

func (m *Map) writeHash(data []byte, idx int32, h uint32) {
	off := int64(idx)*int64(m.stride) + int64(m.hashOff)
	binary.LittleEndian.PutUint32(data[off:off+4], h)
}

func (m *Map) keyBytes(data []byte, idx int32) []byte {
	off := int64(idx)*int64(m.stride) + int64(m.keyOff)
	return data[off : off+int64(m.keyWidth)]
}

func (m *Map) valueBytes(data []byte, idx int32) []byte {
	off := int64(idx)*int64(m.stride) + int64(m.valueOff)
	return data[off : off+int64(m.valueWidth)]
}

// Get looks up key; ok is false if absent.
func (m *Map) Get(key Value) (value Value, ok bool, err error) {
	data := m.buf.Bytes()
	h := m.hashFn(key)
	tagged := h | hashOccupiedBit
	idx := int32(h & uint32(m.capacity-1))

	for probes := int32(0); probes < m.capacity; probes++ {
		slot := (idx + probes) % m.capacity
		sh := m.readHash(data, slot)
		if sh == hashEmpty {
			return Value{}, false, nil
		}
		if sh == tagged {
			k := decodeValue(m.keyBytes(data, slot), m.keyType)
			if k.Equal(key) {
				return decodeValue(m.valueBytes(data, slot), m.valueType), true, nil
			}
		}
	}
	return Value{}, false, nil
}

// Contains reports whether key is present.
func (m *Map) Contains(key Value) (bool, error) {
	_, ok, err := m.Get(key)
	return ok, err
}

// Put inserts or overwrites key/value, returning the value it replaced (if
// any). Triggers a rehash when load factor reaches 50% after insertion
// (spec §4.F).
func (m *Map) Put(key, value Value) (old Value, existed bool, err error) {
	data := m.buf.Bytes()
	h := m.hashFn(key)
	tagged := h | hashOccupiedBit
	idx := int32(h & uint32(m.capacity-1))

	for probes := int32(0); probes < m.capacity; probes++ {
		slot := (idx + probes) % m.capacity
		sh := m.readHash(data, slot)

		if sh&hashOccupiedBit == 0 { // EMPTY or TOMBSTONE: claim it.
			// Encode into scratch first: a type mismatch must not leave
			// a half-written slot tagged as occupied.
			keyBuf := make([]byte, m.keyWidth)
			if err := encodeValue(keyBuf, m.keyType, key); err != nil {
				return Value{}, false, err
			}
			valueBuf := make([]byte, m.valueWidth)
			if err := encodeValue(valueBuf, m.valueType, value); err != nil {
				return Value{}, false, err
			}

			m.writeHash(data, slot, tagged)
			copy(m.keyBytes(data, slot), keyBuf)
			copy(m.valueBytes(data, slot), valueBuf)
			m.size++
			m.modCount++
			if m.size == m.capacity/2 {
				if err := m.rehash(); err != nil {
					return Value{}, false, err
				}
			}
			return Value{}, false, nil
		}

		if sh == tagged {
			k := decodeValue(m.keyBytes(data, slot), m.keyType)
			if k.Equal(key) {
				valueBuf := make([]byte, m.valueWidth)
				if err := encodeValue(valueBuf, m.valueType, value); err != nil {
					return Value{}, false, err
				}
				old := decodeValue(m.valueBytes(data, slot), m.valueType)
				copy(m.valueBytes(data, slot), valueBuf)
				return old, true, nil
			}
		}
	}

	return Value{}, false, capacityExceeded("Put", "no free slot found at load factor bound")
}

// Remove deletes key, returning the value it held (if any). The vacated
// slot becomes a tombstone.
func (m *Map) Remove(key Value) (old Value, existed bool, err error) {
	data := m.buf.Bytes()
	h := m.hashFn(key)
	tagged := h | hashOccupiedBit
	idx := int32(h & uint32(m.capacity-1))

	for probes := int32(0); probes < m.capacity; probes++ {
		slot := (idx + probes) % m.capacity
		sh := m.readHash(data, slot)
		if sh == hashEmpty {
			return Value{}, false, nil
		}
		if sh == tagged {
			k := decodeValue(m.keyBytes(data, slot), m.keyType)
			if k.Equal(key) {
				old := decodeValue(m.valueBytes(data, slot), m.valueType)
				m.writeHash(data, slot, hashTombstone)
				m.size--
				m.modCount++
				return old, true, nil
			}
		}
	}
	return Value{}, false, nil
}

// rehash doubles capacity, dropping tombstones, re-probing every occupied
// slot from `(stored_hash & (new_capacity-1))` per spec §4.F.
func (m *Map) rehash() error {
	newCap64 := int64(m.capacity) * 2
	if newCap64 > math.MaxInt32 {
		return capacityExceeded("rehash", "map would exceed %d slots", math.MaxInt32)
	}
	newCap := int32(newCap64)

	newBuf, err := m.alloc.Allocate(int(newCap)*m.stride, int(m.slotLayout.Alignment))
	if err != nil {
		return err
	}
	oldData, newData := m.buf.Bytes(), newBuf.Bytes()

	for slot := int32(0); slot < m.capacity; slot++ {
		sh := m.readHash(oldData, slot)
		if sh&hashOccupiedBit == 0 {
			continue
		}
		pos := int32(sh & uint32(newCap-1))
		for m.readHash(newData, pos) != hashEmpty {
			pos = (pos + 1) % newCap
		}
		src := oldData[int(slot)*m.stride : int(slot)*m.stride+m.stride]
		dst := newData[int(pos)*m.stride : int(pos)*m.stride+m.stride]
		copy(dst, src)
	}

	m.buf = newBuf
	m.capacity = newCap
	m.modCount++
	dbg.Log([]any{"%p", m}, "rehash", "%d->%d slots, %d entries", newCap/2, newCap, m.size)
	return nil
}

// Clone returns a deep, independent copy of m (supplemented feature, not
// part of spec §4.F's minimal contract).
func (m *Map) Clone() (*Map, error) {
	newBuf, err := m.alloc.Allocate(int(m.capacity)*m.stride, int(m.slotLayout.Alignment))
	if err != nil {
		return nil, err
	}
	copy(newBuf.Bytes(), m.buf.Bytes())

	clone := *m
	clone.buf = newBuf
	clone.modCount = 0
	return &clone, nil
}

// MapIter walks a Map's entry set (spec §4.F "Iteration"). Created over a
// snapshot of the buffer, capacity, and mod_count; any structural mutation
// other than the iterator's own Remove invalidates it.
type MapIter struct {
	m        *Map
	data     []byte
	capacity int32
	modCount uint64

	cursor   int32
	lastSlot int32
	haveLast bool
}

// Iter returns a new iterator over m's current entries.
func (m *Map) Iter() *MapIter {
	return &MapIter{m: m, data: m.buf.Bytes(), capacity: m.capacity, modCount: m.modCount}
}

func (it *MapIter) advance() {
	for it.cursor < it.capacity && it.m.readHash(it.data, it.cursor)&hashOccupiedBit == 0 {
		it.cursor++
	}
}

// HasNext reports whether Next would succeed.
func (it *MapIter) HasNext() bool {
	it.advance()
	return it.cursor < it.capacity
}

// Next decodes the current entry and advances the cursor.
func (it *MapIter) Next() (key, value Value, err error) {
	if it.modCount != it.m.modCount {
		return Value{}, Value{}, concurrentModification("Next")
	}
	it.advance()
	if it.cursor >= it.capacity {
		return Value{}, Value{}, notFound("Next", "iterator exhausted")
	}

	key = decodeValue(it.m.keyBytes(it.data, it.cursor), it.m.keyType)
	value = decodeValue(it.m.valueBytes(it.data, it.cursor), it.m.valueType)
	it.lastSlot, it.haveLast = it.cursor, true
	it.cursor++
	return key, value, nil
}

// Remove deletes the most-recently-returned entry, keeping the iterator
// usable for subsequent calls (spec §4.F).
func (it *MapIter) Remove() error {
	if !it.haveLast {
		return invalidArgument("Remove", "Next has not been called")
	}
	if it.modCount != it.m.modCount {
		return concurrentModification("Remove")
	}

	it.m.writeHash(it.data, it.lastSlot, hashTombstone)
	it.m.size--
	it.m.modCount++
	it.modCount = it.m.modCount
	it.haveLast = false
	return nil
}

// Format implements fmt.Formatter, printing a compact entry list
// (supplemented feature).
func (m *Map) Format(f fmt.State, verb rune) {
	entries := dbg.Formatter(func(f fmt.State) {
		fmt.Fprint(f, "{")
		it := m.Iter()
		first := true
		for it.HasNext() {
			k, v, err := it.Next()
			if err != nil {
				break
			}
			if !first {
				fmt.Fprint(f, ", ")
			}
			first = false
			fmt.Fprintf(f, "%v: %v", k, v)
		}
		fmt.Fprint(f, "}")
	})
	dbg.Dict(dbg.Fprintf("%p", m), "cap", m.capacity, "entries", entries).Format(f, verb)
}
