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

// SequenceView is a random-access view of a Buffer as an array of T (spec
// §4.D). It holds no state of its own beyond the accessor and buffer it
// was constructed from.
type SequenceView struct {
	acc *Accessor
	buf *Buffer
}

// Len reports how many elements fit in the underlying buffer.
func (s *SequenceView) Len() int {
	stride := s.acc.Stride()
	if stride == 0 {
		return 0
	}
	return s.buf.Len() / stride
}

// Get decodes the i-th element.
func (s *SequenceView) Get(i int) (Value, error) {
	return s.acc.GetAt(s.buf, i)
}

// Set encodes v at index i, returning the element it replaced.
func (s *SequenceView) Set(i int, v Value) (Value, error) {
	old, err := s.acc.GetAt(s.buf, i)
	if err != nil {
		return Value{}, err
	}
	if err := s.acc.SetAt(s.buf, i, v); err != nil {
		return Value{}, err
	}
	return old, nil
}
