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
	"fmt"
	"strings"
	"sync"
)

// MemberKind discriminates the two kinds of entry in a struct's member
// list (spec §3).
type MemberKind int

const (
	MemberPadding MemberKind = iota
	MemberField
)

// Member is one entry of a struct's ComputedLayout, in declaration order
// (including synthesized Padding entries). For a Union, only MemberField
// entries appear, all at offset 0.
type Member struct {
	Kind MemberKind

	// MemberPadding.
	PadBytes uint64

	// MemberField.
	Name      string
	Type      *TypeDescriptor
	Offset    uint64
	Width     uint64
	ByteOrder ByteOrder
}

// ComputedLayout is the deterministic byte-level outcome of applying the
// layout rules in spec §4.A to a TypeDescriptor.
type ComputedLayout struct {
	Size      uint64
	Alignment uint64
	Members   []Member // Only meaningful for Struct/Union descriptors.
}

// FieldByName looks up a computed Member by its effective name. Ok is
// false if no such field exists at this layout's top level.
func (c *ComputedLayout) FieldByName(name string) (Member, bool) {
	for _, m := range c.Members {
		if m.Kind == MemberField && m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Dump renders a human-readable offset table, for diagnosing layout
// mismatches.
func (c *ComputedLayout) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "size=%d align=%d\n", c.Size, c.Alignment)
	for _, m := range c.Members {
		if m.Kind == MemberPadding {
			fmt.Fprintf(&b, "  <padding %d>\n", m.PadBytes)
			continue
		}
		fmt.Fprintf(&b, "  %-16s @%-4d width=%-3d %v\n", m.Name, m.Offset, m.Width, m.Type)
	}
	return b.String()
}

var layoutCache sync.Map // *TypeDescriptor -> *ComputedLayout

// LayoutOf computes (and memoizes, process-wide, keyed on the descriptor's
// pointer identity per spec §9) the byte-level layout of t, per the
// algorithm in spec §4.A.
func LayoutOf(t *TypeDescriptor) (*ComputedLayout, error) {
	if t == nil {
		return nil, invalidArgument("LayoutOf", "nil TypeDescriptor")
	}
	if cached, ok := layoutCache.Load(t); ok {
		return cached.(*ComputedLayout), nil
	}

	c, err := computeLayout(t)
	if err != nil {
		return nil, err
	}
	actual, _ := layoutCache.LoadOrStore(t, c)
	return actual.(*ComputedLayout), nil
}

func computeLayout(t *TypeDescriptor) (*ComputedLayout, error) {
	switch t.kind {
	case KindPrimitive:
		w := uint64(t.prim.width())
		return &ComputedLayout{Size: w, Alignment: w}, nil

	case KindArray:
		elem, err := LayoutOf(t.elem)
		if err != nil {
			return nil, err
		}
		return &ComputedLayout{Size: elem.Size * t.count, Alignment: elem.Alignment}, nil

	case KindUnion:
		return computeUnion(t)

	default:
		return computeStruct(t)
	}
}

func computeUnion(t *TypeDescriptor) (*ComputedLayout, error) {
	var size, align uint64 = 0, 1
	members := make([]Member, 0, len(t.fields))

	for _, f := range t.fields {
		if f.Opts.ByteOrder != NativeEndian {
			if _, ok := f.Type.Primitive(); !ok {
				return nil, invalidLayout("LayoutOf", "byte_order override on non-primitive field %q", f.Name)
			}
		}
		if f.Opts.AlignmentOverride != 0 && !isPow2(f.Opts.AlignmentOverride) {
			return nil, invalidLayout("LayoutOf", "alignment override for field %q is not a power of two", f.Name)
		}

		cl, err := LayoutOf(f.Type)
		if err != nil {
			return nil, err
		}

		a := cl.Alignment
		if f.Opts.AlignmentOverride != 0 {
			a = f.Opts.AlignmentOverride
		}
		align = max(align, a)
		size = max(size, cl.Size)

		members = append(members, Member{
			Kind:      MemberField,
			Name:      f.Opts.effectiveName(f.Name),
			Type:      f.Type,
			Offset:    0,
			Width:     cl.Size,
			ByteOrder: f.Opts.ByteOrder,
		})
	}

	return &ComputedLayout{Size: size, Alignment: align, Members: members}, nil
}

func computeStruct(t *TypeDescriptor) (*ComputedLayout, error) {
	var offset, maxAlign uint64 = 0, 1
	var members []Member

	for _, f := range t.fields {
		if f.Opts.ByteOrder != NativeEndian {
			if _, ok := f.Type.Primitive(); !ok {
				return nil, invalidLayout("LayoutOf", "byte_order override on non-primitive field %q", f.Name)
			}
		}
		if f.Opts.AlignmentOverride != 0 && !isPow2(f.Opts.AlignmentOverride) {
			return nil, invalidLayout("LayoutOf", "alignment override for field %q is not a power of two", f.Name)
		}

		cl, err := LayoutOf(f.Type)
		if err != nil {
			return nil, err
		}

		a := cl.Alignment
		if f.Opts.AlignmentOverride != 0 {
			a = f.Opts.AlignmentOverride
		}
		maxAlign = max(maxAlign, a)

		var pad uint64
		if f.Opts.PaddingBefore != nil {
			pad = *f.Opts.PaddingBefore
		} else if t.opts.AutoPadding {
			pad = (a - offset%a) % a
		}

		if pad > 0 {
			members = append(members, Member{Kind: MemberPadding, PadBytes: pad})
			offset += pad
		}

		members = append(members, Member{
			Kind:      MemberField,
			Name:      f.Opts.effectiveName(f.Name),
			Type:      f.Type,
			Offset:    offset,
			Width:     cl.Size,
			ByteOrder: f.Opts.ByteOrder,
		})
		offset += cl.Size
	}

	size := offset
	if t.opts.AutoPadding {
		switch ep := t.opts.endPadding(); {
		case ep == EndPaddingAuto:
			pad := (maxAlign - size%maxAlign) % maxAlign
			if pad > 0 {
				members = append(members, Member{Kind: MemberPadding, PadBytes: pad})
			}
			size += pad
		case ep > 0:
			members = append(members, Member{Kind: MemberPadding, PadBytes: uint64(ep)})
			size += uint64(ep)
		}
	} else if ep := t.opts.endPadding(); ep > 0 {
		members = append(members, Member{Kind: MemberPadding, PadBytes: uint64(ep)})
		size += uint64(ep)
	}

	return &ComputedLayout{Size: size, Alignment: maxAlign, Members: members}, nil
}

func isPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}
