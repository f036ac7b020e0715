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

// Package pathparse parses the compact path-string grammar used to address
// a scalar field inside a composite layout (spec §4.B, §6).
package pathparse

import (
	"fmt"
	"strings"
)

// StepKind discriminates the two kinds of path step.
type StepKind int

const (
	FieldStep StepKind = iota
	ArrayStep
)

// Step is one atom of a parsed path: either a named field descent or an
// array index descent.
type Step struct {
	Kind StepKind
	Name string // Only meaningful for FieldStep.
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// Parse parses a path string per the grammar `path := ("." ident | "[]")*`,
// requiring at least one step.
func Parse(path string) ([]Step, error) {
	if path == "" {
		return nil, fmt.Errorf("pathparse: empty path")
	}

	var steps []Step
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			j := i + 1
			if j >= len(path) || !isIdentStart(path[j]) {
				return nil, fmt.Errorf("pathparse: expected identifier after '.' at offset %d in %q", i, path)
			}
			k := j + 1
			for k < len(path) && isIdentCont(path[k]) {
				k++
			}
			steps = append(steps, Step{Kind: FieldStep, Name: path[j:k]})
			i = k

		case '[':
			if i+1 >= len(path) || path[i+1] != ']' {
				return nil, fmt.Errorf("pathparse: expected ']' at offset %d in %q", i+1, path)
			}
			steps = append(steps, Step{Kind: ArrayStep})
			i += 2

		default:
			return nil, fmt.Errorf("pathparse: unexpected character %q at offset %d in %q", path[i], i, path)
		}
	}

	return steps, nil
}

// String renders steps back into path-string form, for diagnostics.
func String(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		if s.Kind == ArrayStep {
			b.WriteString("[]")
		} else {
			b.WriteByte('.')
			b.WriteString(s.Name)
		}
	}
	return b.String()
}
