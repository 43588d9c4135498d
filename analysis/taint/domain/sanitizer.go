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
	"fmt"
	"strings"

	"github.com/awslabs/argot-taint-models/internal/jsonvalidation"
)

// SanitizerKind is the kind of flow a sanitizer removes taint from.
type SanitizerKind uint8

const (
	SanitizeSources      SanitizerKind = iota // Remove source taint
	SanitizeSinks                             // Remove sink taint
	SanitizePropagations                      // Remove taint flowing through propagations
	numSanitizerKinds
)

func (k SanitizerKind) String() string {
	switch k {
	case SanitizeSources:
		return "sources"
	case SanitizeSinks:
		return "sinks"
	case SanitizePropagations:
		return "propagations"
	default:
		return "unknown"
	}
}

// SanitizerKindFromString parses a sanitizer kind.
func SanitizerKindFromString(s string) (SanitizerKind, error) {
	for k := SanitizeSources; k < numSanitizerKinds; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid sanitizer kind %q", s)
}

// A KindFilter is the set of taint kinds a sanitizer applies to: either all kinds or a set of kinds. The zero
// value matches no kind.
type KindFilter struct {
	all   bool
	kinds StringSet
}

// AllKinds returns the filter matching every kind.
func AllKinds() KindFilter { return KindFilter{all: true} }

// OnlyKinds returns the filter matching the given kinds.
func OnlyKinds(kinds ...string) KindFilter { return KindFilter{kinds: NewStringSet(kinds...)} }

// IsAll returns true when the filter matches every kind.
func (f KindFilter) IsAll() bool { return f.all }

// IsEmpty returns true when the filter matches no kind.
func (f KindFilter) IsEmpty() bool { return !f.all && f.kinds.IsEmpty() }

// Kinds returns the kinds of a filter that does not match all kinds.
func (f KindFilter) Kinds() StringSet { return f.kinds }

// Matches returns true when the filter applies to kind k.
func (f KindFilter) Matches(k Kind) bool {
	return f.all || f.kinds.Contains(k.String())
}

// Join returns the filter matching the kinds of f and g.
func (f KindFilter) Join(g KindFilter) KindFilter {
	if f.all || g.all {
		return AllKinds()
	}
	return KindFilter{kinds: f.kinds.Union(g.kinds)}
}

// Leq returns true when f matches fewer kinds than g.
func (f KindFilter) Leq(g KindFilter) bool {
	if g.all {
		return true
	}
	return !f.all && f.kinds.Leq(g.kinds)
}

// Equal returns true when f and g match the same kinds.
func (f KindFilter) Equal(g KindFilter) bool {
	return f.all == g.all && f.kinds.Equal(g.kinds)
}

func (f KindFilter) String() string {
	if f.all {
		return "all"
	}
	return f.kinds.String()
}

// A Sanitizer removes the taint of some kinds from one kind of flow.
type Sanitizer struct {
	Kind  SanitizerKind
	Kinds KindFilter
}

// Validate rejects sanitizers that match no kind.
func (s Sanitizer) Validate() error {
	if s.Kind >= numSanitizerKinds {
		return &jsonvalidation.Error{Field: "sanitize", Expected: "`sources`, `sinks` or `propagations`"}
	}
	if s.Kinds.IsEmpty() {
		return &jsonvalidation.Error{Field: "kinds", Expected: "a non-empty array of kinds"}
	}
	return nil
}

// Sanitizes returns true if s removes taint of kind k from flows of kind flow.
func (s Sanitizer) Sanitizes(flow SanitizerKind, k Kind) bool {
	return s.Kind == flow && s.Kinds.Matches(k)
}

func (s Sanitizer) String() string {
	return "Sanitizer(" + s.Kind.String() + ", kinds=" + s.Kinds.String() + ")"
}

// ToJSON returns the sanitizer object of s.
func (s Sanitizer) ToJSON() map[string]any {
	out := map[string]any{"sanitize": s.Kind.String()}
	if !s.Kinds.all {
		out["kinds"] = s.Kinds.kinds.Elements()
	}
	return out
}

// SanitizerFromJSON parses a sanitizer object. A missing kinds member means all kinds.
func SanitizerFromJSON(obj jsonvalidation.Object, checkUnexpected bool) (Sanitizer, error) {
	if checkUnexpected {
		if err := jsonvalidation.CheckUnexpectedMembers(obj, "sanitize", "kinds", "port"); err != nil {
			return Sanitizer{}, err
		}
	}
	name, err := obj.String("sanitize")
	if err != nil {
		return Sanitizer{}, err
	}
	kind, err := SanitizerKindFromString(name)
	if err != nil {
		return Sanitizer{}, &jsonvalidation.Error{Field: "sanitize",
			Expected: "`sources`, `sinks` or `propagations`", Err: err}
	}
	s := Sanitizer{Kind: kind, Kinds: AllKinds()}
	if _, ok := obj["kinds"]; ok {
		var kinds []string
		if err := obj.Decode("kinds", "an array of kinds", &kinds); err != nil {
			return Sanitizer{}, err
		}
		s.Kinds = OnlyKinds(kinds...)
	}
	return s, s.Validate()
}

// A SanitizerSet holds at most one sanitizer per sanitizer kind: adding a sanitizer of a kind already present
// joins their kinds. SanitizerSet is a value.
type SanitizerSet struct {
	byKind [numSanitizerKinds]KindFilter
}

// NewSanitizerSet returns the set containing sanitizers.
func NewSanitizerSet(sanitizers ...Sanitizer) SanitizerSet {
	var s SanitizerSet
	for _, x := range sanitizers {
		s = s.Add(x)
	}
	return s
}

// Add returns the set with x added.
func (s SanitizerSet) Add(x Sanitizer) SanitizerSet {
	s.byKind[x.Kind] = s.byKind[x.Kind].Join(x.Kinds)
	return s
}

// Join returns the union of s and o.
func (s SanitizerSet) Join(o SanitizerSet) SanitizerSet {
	for i := range s.byKind {
		s.byKind[i] = s.byKind[i].Join(o.byKind[i])
	}
	return s
}

// Leq returns true when every sanitizer of s is included in a sanitizer of o.
func (s SanitizerSet) Leq(o SanitizerSet) bool {
	for i := range s.byKind {
		if !s.byKind[i].Leq(o.byKind[i]) {
			return false
		}
	}
	return true
}

// Equal returns true when s and o hold the same sanitizers.
func (s SanitizerSet) Equal(o SanitizerSet) bool {
	for i := range s.byKind {
		if !s.byKind[i].Equal(o.byKind[i]) {
			return false
		}
	}
	return true
}

// IsBottom returns true for the empty set.
func (s SanitizerSet) IsBottom() bool {
	for _, f := range s.byKind {
		if !f.IsEmpty() {
			return false
		}
	}
	return true
}

// Sanitizes returns true if a sanitizer of s removes taint of kind k from flows of kind flow.
func (s SanitizerSet) Sanitizes(flow SanitizerKind, k Kind) bool {
	return s.byKind[flow].Matches(k)
}

// SanitizesAll returns true if a sanitizer of s removes all taint from flows of kind flow.
func (s SanitizerSet) SanitizesAll(flow SanitizerKind) bool {
	return s.byKind[flow].IsAll()
}

// Elements returns the sanitizers of s ordered by kind.
func (s SanitizerSet) Elements() []Sanitizer {
	var out []Sanitizer
	for i, f := range s.byKind {
		if !f.IsEmpty() {
			out = append(out, Sanitizer{Kind: SanitizerKind(i), Kinds: f})
		}
	}
	return out
}

func (s SanitizerSet) String() string {
	elems := s.Elements()
	parts := make([]string, len(elems))
	for i, x := range elems {
		parts[i] = x.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
