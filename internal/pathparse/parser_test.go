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

package pathparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapesdb/shapes/internal/pathparse"
)

func TestParseFieldChain(t *testing.T) {
	steps, err := pathparse.Parse(".x.y")
	require.NoError(t, err)
	assert.Equal(t, []pathparse.Step{
		{Kind: pathparse.FieldStep, Name: "x"},
		{Kind: pathparse.FieldStep, Name: "y"},
	}, steps)
}

func TestParseArrayThenField(t *testing.T) {
	steps, err := pathparse.Parse("[].v")
	require.NoError(t, err)
	assert.Equal(t, []pathparse.Step{
		{Kind: pathparse.ArrayStep},
		{Kind: pathparse.FieldStep, Name: "v"},
	}, steps)
}

func TestParseNestedArrays(t *testing.T) {
	steps, err := pathparse.Parse("[][].v")
	require.NoError(t, err)
	assert.Equal(t, []pathparse.Step{
		{Kind: pathparse.ArrayStep},
		{Kind: pathparse.ArrayStep},
		{Kind: pathparse.FieldStep, Name: "v"},
	}, steps)
}

func TestParseMissingLeadingStep(t *testing.T) {
	_, err := pathparse.Parse("x.y")
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	_, err := pathparse.Parse("")
	assert.Error(t, err)
}

func TestParseMalformedArray(t *testing.T) {
	_, err := pathparse.Parse("[.v")
	assert.Error(t, err)
}

func TestParseMalformedIdent(t *testing.T) {
	_, err := pathparse.Parse(".1abc")
	assert.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	for _, p := range []string{".x.y", "[].v", "[][].v", ".foo"} {
		steps, err := pathparse.Parse(p)
		require.NoError(t, err)
		assert.Equal(t, p, pathparse.String(steps))
	}
}
