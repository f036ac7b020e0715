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

package dbg

import (
	"fmt"
	"os"
)

// Enabled controls whether Log and Assert do any work. It is a variable,
// rather than a build tag, so that tests can flip it on for a single
// table/test run without a separate build of the package; production
// builds leave it false, at which point Log and Assert are a single
// branch with no formatting cost.
var Enabled = os.Getenv("SHAPES_DEBUG") != ""

// Log prints a lazily-formatted trace line for a mutating operation,
// prefixed by a lazily-formatted "subject" (such as a pointer and a
// buffer's bounds). Callers are expected to pass args that are themselves
// cheap (i.e. not already-formatted strings), since Fprintf defers the
// actual work of calling Sprintf's verbs until Enabled gates it.
func Log(subject []any, op, format string, args ...any) {
	if !Enabled {
		return
	}

	prefix := fmt.Sprintf(subject[0].(string), subject[1:]...)
	fmt.Fprintf(os.Stderr, "%s: %s: %s\n", prefix, op, Fprintf(format, args...))
}

// Assert panics with the given message if cond is false. Like Log, it is a
// no-op unless Enabled; callers use it for invariants that would be too
// costly to check in every build (e.g. probing loops that should always
// terminate because a table can never be completely full).
func Assert(cond bool, format string, args ...any) {
	if !Enabled || cond {
		return
	}
	panic(fmt.Sprintf("shapes: assertion failed: "+format, args...))
}
