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

// Package xunsafe provides a more convenient interface for performing
// unsafe pointer arithmetic than Go's built-in package unsafe. It is used
// by the buffer allocators and the arena for address alignment and raw
// stores, and by the access engine for its buffer alignment check and
// host-endianness probe.
package xunsafe

import (
	"sync"

	"github.com/shapesdb/shapes/internal/xunsafe/layout"
)

// NoCopy is a type that go vet will complain about having been moved.
//
// It does so by being an array of [sync.Mutex], which vet's copylocks check
// treats as a lock.
type NoCopy [0]sync.Mutex

// Int is any integer type.
type Int = layout.Int
