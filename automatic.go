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

// automaticAllocator produces GC-backed Buffers: each Buffer owns its own
// backing slice, reclaimed by the garbage collector once unreferenced
// (spec §4.C, "Automatic").
type automaticAllocator struct{}

// NewAutomaticAllocator returns an Allocator whose Buffers are ordinary
// garbage-collected allocations with no explicit release.
func NewAutomaticAllocator() Allocator { return automaticAllocator{} }

func (automaticAllocator) Allocate(size, align int) (*Buffer, error) {
	return newBuffer(size, align)
}
