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
	"bytes"
	"fmt"
	"math"

	"github.com/shapesdb/shapes/internal/dbg"
)

// Seq is the Specialized Sequence (spec §4.E): a growable, contiguous
// array of same-layout elements backed by one Buffer. Capacity is always a
// power of two and at least 2; growth doubles capacity and copies the live
// prefix into a fresh buffer. Seq is not safe for concurrent mutation; no
// outstanding SequenceView/LazySeq survives a growth, since growth
// replaces the backing buffer outright.
type Seq struct {
	acc   *Accessor
	alloc Allocator

	buf      *Buffer
	size     int32
	capacity int32
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// NewSeq constructs an empty Seq for elements of acc's type, sized from the
// presize hint per spec §4.E (`capacity = max(2, next_pow2(presize))`).
func NewSeq(acc *Accessor, alloc Allocator, presize int) (*Seq, error) {
	if acc == nil {
		return nil, invalidArgument("NewSeq", "nil accessor")
	}
	if presize < 0 {
		return nil, invalidArgument("NewSeq", "negative presize %d", presize)
	}
	cap0 := max(2, nextPow2(presize))

	buf, err := acc.NewArray(alloc, uint64(cap0))
	if err != nil {
		return nil, err
	}
	return &Seq{acc: acc, alloc: alloc, buf: buf, capacity: int32(cap0)}, nil
}

// Len reports the number of live elements.
func (s *Seq) Len() int32 { return s.size }

// Cap reports the current backing capacity.
func (s *Seq) Cap() int32 { return s.capacity }

// Get decodes the element at index i.
func (s *Seq) Get(i int32) (Value, error) {
	if i < 0 || i >= s.size {
		return Value{}, invalidArgument("Get", "index %d out of range [0, %d)", i, s.size)
	}
	return s.acc.GetAt(s.buf, int(i))
}

// Set encodes v at index i, overwriting whatever was there.
func (s *Seq) Set(i int32, v Value) error {
	if i < 0 || i >= s.size {
		return invalidArgument("Set", "index %d out of range [0, %d)", i, s.size)
	}
	return s.acc.SetAt(s.buf, int(i), v)
}

func (s *Seq) growIfFull() error {
	if s.size < s.capacity {
		return nil
	}
	newCap := int64(s.capacity) * 2
	if newCap > math.MaxInt32 {
		return capacityExceeded("grow", "sequence would exceed %d elements", math.MaxInt32)
	}

	newBuf, err := s.acc.NewArray(s.alloc, uint64(newCap))
	if err != nil {
		return err
	}
	stride := s.acc.Stride()
	copy(newBuf.Bytes(), s.buf.Bytes()[:int(s.size)*stride])

	s.buf = newBuf
	s.capacity = int32(newCap)
	dbg.Log([]any{"%p", s}, "grow", "%d->%d", s.size, newCap)
	return nil
}

// Push appends v, growing the backing buffer (amortized O(1)) if full.
func (s *Seq) Push(v Value) error {
	if err := s.growIfFull(); err != nil {
		return err
	}
	if err := s.acc.SetAt(s.buf, int(s.size), v); err != nil {
		return err
	}
	s.size++
	return nil
}

// Insert shifts elements [i, size) one stride right and writes v at i.
func (s *Seq) Insert(i int32, v Value) error {
	if i < 0 || i > s.size {
		return invalidArgument("Insert", "index %d out of range [0, %d]", i, s.size)
	}
	if err := s.growIfFull(); err != nil {
		return err
	}

	stride := s.acc.Stride()
	data := s.buf.Bytes()
	src := data[int(i)*stride : int(s.size)*stride]
	dst := data[int(i)*stride+stride : int(s.size)*stride+stride]
	copy(dst, src)

	if err := s.acc.SetAt(s.buf, int(i), v); err != nil {
		return err
	}
	s.size++
	return nil
}

// Remove shifts elements [i+1, size) one stride left, returning the
// removed element.
func (s *Seq) Remove(i int32) (Value, error) {
	if i < 0 || i >= s.size {
		return Value{}, invalidArgument("Remove", "index %d out of range [0, %d)", i, s.size)
	}
	old, err := s.acc.GetAt(s.buf, int(i))
	if err != nil {
		return Value{}, err
	}

	stride := s.acc.Stride()
	data := s.buf.Bytes()
	dst := data[int(i)*stride : (int(s.size)-1)*stride]
	src := data[int(i)*stride+stride : int(s.size)*stride]
	copy(dst, src)

	s.size--
	return old, nil
}

// Clip shrinks capacity down to max(2, next_pow2(size)), releasing unused
// backing storage (supplemented feature, not part of spec §4.E's minimal
// contract).
func (s *Seq) Clip() error {
	target := int32(max(2, nextPow2(int(s.size))))
	if target >= s.capacity {
		return nil
	}

	newBuf, err := s.acc.NewArray(s.alloc, uint64(target))
	if err != nil {
		return err
	}
	stride := s.acc.Stride()
	copy(newBuf.Bytes(), s.buf.Bytes()[:int(s.size)*stride])

	s.buf = newBuf
	s.capacity = target
	return nil
}

// Equals compares two sequences per spec §4.E: a raw byte-prefix memcmp
// when both have the same concrete element type, element-wise otherwise.
func (s *Seq) Equals(other *Seq) bool {
	if other == nil || s.size != other.size {
		return false
	}
	n := int(s.size) * s.acc.Stride()
	if s.acc.typ == other.acc.typ {
		return bytes.Equal(s.buf.Bytes()[:n], other.buf.Bytes()[:n])
	}
	for i := int32(0); i < s.size; i++ {
		a, errA := s.Get(i)
		b, errB := other.Get(i)
		if errA != nil || errB != nil || !a.Equal(b) {
			return false
		}
	}
	return true
}

// Format implements fmt.Formatter, printing a compact element list.
func (s *Seq) Format(f fmt.State, verb rune) {
	elems := dbg.Formatter(func(f fmt.State) {
		fmt.Fprint(f, "[")
		for i := int32(0); i < s.size; i++ {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			v, err := s.Get(i)
			if err != nil {
				fmt.Fprintf(f, "<%v>", err)
				continue
			}
			fmt.Fprint(f, v)
		}
		fmt.Fprint(f, "]")
	})
	dbg.Dict(dbg.Fprintf("%p", s), "cap", s.capacity, "elems", elems).Format(f, verb)
}
