// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

package domain

import (
	"sort"
	"strings"

	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"golang.org/x/exp/slices"
)

// A StringSet is an immutable set of strings, ordered by the set operations. The zero value is the empty set.
// Operations never modify their receiver, which makes StringSet safe to copy and share.
type StringSet struct {
	elems []string // sorted, no duplicates
}

// FeatureSet is a set of feature names.
type FeatureSet = StringSet

// NameSet is a set of names, such as the model generators of a model or the origins of a frame.
type NameSet = StringSet

// NewStringSet returns the set of the given elements.
func NewStringSet(elems ...string) StringSet {
	if len(elems) == 0 {
		return StringSet{}
	}
	s := append([]string(nil), elems...)
	slices.Sort(s)
	return StringSet{elems: slices.Compact(s)}
}

// Len returns the number of elements of the set.
func (s StringSet) Len() int { return len(s.elems) }

// IsEmpty returns true when the set has no element.
func (s StringSet) IsEmpty() bool { return len(s.elems) == 0 }

// IsBottom is IsEmpty: the empty set is the bottom of the powerset lattice.
func (s StringSet) IsBottom() bool { return len(s.elems) == 0 }

// Contains returns true when x is in s.
func (s StringSet) Contains(x string) bool {
	_, found := slices.BinarySearch(s.elems, x)
	return found
}

// Elements returns the elements in increasing order. The result may be modified.
func (s StringSet) Elements() []string {
	return append([]string(nil), s.elems...)
}

// Add returns the set s ∪ {x}.
func (s StringSet) Add(x string) StringSet {
	if s.Contains(x) {
		return s
	}
	return s.Union(StringSet{elems: []string{x}})
}

// Remove returns the set s \ {x}.
func (s StringSet) Remove(x string) StringSet {
	i, found := slices.BinarySearch(s.elems, x)
	if !found {
		return s
	}
	r := make([]string, 0, len(s.elems)-1)
	r = append(r, s.elems[:i]...)
	return StringSet{elems: append(r, s.elems[i+1:]...)}
}

// Union returns s ∪ t.
func (s StringSet) Union(t StringSet) StringSet {
	if len(t.elems) == 0 {
		return s
	}
	if len(s.elems) == 0 {
		return t
	}
	r := make([]string, 0, len(s.elems)+len(t.elems))
	i, j := 0, 0
	for i < len(s.elems) && j < len(t.elems) {
		switch {
		case s.elems[i] < t.elems[j]:
			r = append(r, s.elems[i])
			i++
		case s.elems[i] > t.elems[j]:
			r = append(r, t.elems[j])
			j++
		default:
			r = append(r, s.elems[i])
			i++
			j++
		}
	}
	r = append(r, s.elems[i:]...)
	r = append(r, t.elems[j:]...)
	return StringSet{elems: r}
}

// Intersection returns s ∩ t.
func (s StringSet) Intersection(t StringSet) StringSet {
	var r []string
	for _, x := range s.elems {
		if t.Contains(x) {
			r = append(r, x)
		}
	}
	return StringSet{elems: r}
}

// Difference returns s \ t.
func (s StringSet) Difference(t StringSet) StringSet {
	var r []string
	for _, x := range s.elems {
		if !t.Contains(x) {
			r = append(r, x)
		}
	}
	return StringSet{elems: r}
}

// Join is Union.
func (s StringSet) Join(t StringSet) StringSet { return s.Union(t) }

// Leq is set inclusion.
func (s StringSet) Leq(t StringSet) bool {
	if len(s.elems) > len(t.elems) {
		return false
	}
	for _, x := range s.elems {
		if !t.Contains(x) {
			return false
		}
	}
	return true
}

// Equal returns true when both sets have the same elements.
func (s StringSet) Equal(t StringSet) bool {
	return slices.Equal(s.elems, t.elems)
}

func (s StringSet) String() string {
	return "{" + strings.Join(s.elems, ", ") + "}"
}

// A RootSet is an immutable set of roots, e.g. the via-type-of ports of a frame. The zero value is empty.
type RootSet struct {
	roots []access.Root // sorted by access.Root.Less
}

// NewRootSet returns the set of the given roots.
func NewRootSet(roots ...access.Root) RootSet {
	var s RootSet
	for _, r := range roots {
		s = s.Add(r)
	}
	return s
}

// Add returns the set s ∪ {r}.
func (s RootSet) Add(r access.Root) RootSet {
	i := sort.Search(len(s.roots), func(i int) bool { return !s.roots[i].Less(r) })
	if i < len(s.roots) && s.roots[i] == r {
		return s
	}
	roots := make([]access.Root, 0, len(s.roots)+1)
	roots = append(roots, s.roots[:i]...)
	roots = append(roots, r)
	return RootSet{roots: append(roots, s.roots[i:]...)}
}

// Contains returns true when r is in s.
func (s RootSet) Contains(r access.Root) bool {
	return slices.Contains(s.roots, r)
}

// Union returns s ∪ t.
func (s RootSet) Union(t RootSet) RootSet {
	for _, r := range t.roots {
		s = s.Add(r)
	}
	return s
}

// Leq is set inclusion.
func (s RootSet) Leq(t RootSet) bool {
	for _, r := range s.roots {
		if !t.Contains(r) {
			return false
		}
	}
	return true
}

// Equal returns true when both sets have the same roots.
func (s RootSet) Equal(t RootSet) bool { return slices.Equal(s.roots, t.roots) }

// IsEmpty returns true when the set has no root.
func (s RootSet) IsEmpty() bool { return len(s.roots) == 0 }

// Elements returns the roots in increasing order.
func (s RootSet) Elements() []access.Root { return append([]access.Root(nil), s.roots...) }

// Strings returns the string representation of each root, in order.
func (s RootSet) Strings() []string {
	r := make([]string, len(s.roots))
	for i, root := range s.roots {
		r[i] = root.String()
	}
	return r
}
