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

package model

import (
	"fmt"
	"math/bits"
	"strings"
)

// A Mode changes how the analysis handles a method.
type Mode uint32

const (
	// SkipAnalysis is set on methods whose code must not be analyzed.
	SkipAnalysis Mode = 0x1
	// AddViaObscureFeature adds the via-obscure feature to taint flowing through the method.
	AddViaObscureFeature Mode = 0x2
	// TaintInTaintOut propagates the taint of every argument to the return value.
	TaintInTaintOut Mode = 0x4
	// TaintInTaintThis propagates the taint of every argument to the receiver.
	TaintInTaintThis Mode = 0x8
	// NoJoinVirtualOverrides prevents joining the models of overrides at call sites.
	NoJoinVirtualOverrides Mode = 0x10
	// NoCollapseOnPropagation keeps the access paths of taint when a propagation is applied.
	NoCollapseOnPropagation Mode = 0x40
	// AliasMemoryLocationOnInvoke aliases the memory locations of the result and the arguments at call sites.
	AliasMemoryLocationOnInvoke Mode = 0x80
	// StrongWriteOnPropagation overwrites the output of propagations instead of joining into it.
	StrongWriteOnPropagation Mode = 0x100
)

var allModes = []Mode{
	SkipAnalysis,
	AddViaObscureFeature,
	TaintInTaintOut,
	TaintInTaintThis,
	NoJoinVirtualOverrides,
	NoCollapseOnPropagation,
	AliasMemoryLocationOnInvoke,
	StrongWriteOnPropagation,
}

func (m Mode) String() string {
	switch m {
	case SkipAnalysis:
		return "skip-analysis"
	case AddViaObscureFeature:
		return "add-via-obscure-feature"
	case TaintInTaintOut:
		return "taint-in-taint-out"
	case TaintInTaintThis:
		return "taint-in-taint-this"
	case NoJoinVirtualOverrides:
		return "no-join-virtual-overrides"
	case NoCollapseOnPropagation:
		return "no-collapse-on-propagation"
	case AliasMemoryLocationOnInvoke:
		return "alias-memory-location-on-invoke"
	case StrongWriteOnPropagation:
		return "strong-write-on-propagation"
	default:
		return fmt.Sprintf("mode(%#x)", uint32(m))
	}
}

// ModeFromString parses the name of a mode.
func ModeFromString(s string) (Mode, error) {
	for _, m := range allModes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid mode %q", s)
}

// Modes is a set of modes. The zero value is the normal mode.
type Modes uint32

// NewModes returns the set of modes ms.
func NewModes(ms ...Mode) Modes {
	var res Modes
	for _, m := range ms {
		res |= Modes(m)
	}
	return res
}

// Has returns true when m is in the set.
func (s Modes) Has(m Mode) bool { return uint32(s)&uint32(m) != 0 }

// Union returns the modes in s or t.
func (s Modes) Union(t Modes) Modes { return s | t }

// Intersection returns the modes in both s and t.
func (s Modes) Intersection(t Modes) Modes { return s & t }

// IsSubsetOf returns true when every mode of s is in t.
func (s Modes) IsSubsetOf(t Modes) bool { return s&^t == 0 }

// IsNormal returns true when no mode is set.
func (s Modes) IsNormal() bool { return s == 0 }

// Len returns the number of modes in the set.
func (s Modes) Len() int { return bits.OnesCount32(uint32(s)) }

// Elements returns the modes of s in increasing order.
func (s Modes) Elements() []Mode {
	var res []Mode
	for _, m := range allModes {
		if s.Has(m) {
			res = append(res, m)
		}
	}
	return res
}

// Names returns the names of the modes of s.
func (s Modes) Names() []string {
	var res []string
	for _, m := range s.Elements() {
		res = append(res, m.String())
	}
	return res
}

func (s Modes) String() string { return "{" + strings.Join(s.Names(), ", ") + "}" }

// A FreezeKind is a category of a model that can be frozen. Frozen categories are not modified by inference.
type FreezeKind uint32

const (
	FreezeGenerations      FreezeKind = 0x1
	FreezeParameterSources FreezeKind = 0x2
	FreezeSinks            FreezeKind = 0x4
	FreezePropagations     FreezeKind = 0x8
)

var allFreezeKinds = []FreezeKind{FreezeGenerations, FreezeParameterSources, FreezeSinks, FreezePropagations}

func (k FreezeKind) String() string {
	switch k {
	case FreezeGenerations:
		return "generations"
	case FreezeParameterSources:
		return "parameter_sources"
	case FreezeSinks:
		return "sinks"
	case FreezePropagations:
		return "propagations"
	default:
		return fmt.Sprintf("freeze(%#x)", uint32(k))
	}
}

// FreezeKindFromString parses the name of a freeze kind.
func FreezeKindFromString(s string) (FreezeKind, error) {
	for _, k := range allFreezeKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid freeze kind %q", s)
}

// Frozen is a set of freeze kinds. The zero value freezes nothing.
type Frozen uint32

// NewFrozen returns the set of freeze kinds ks.
func NewFrozen(ks ...FreezeKind) Frozen {
	var res Frozen
	for _, k := range ks {
		res |= Frozen(k)
	}
	return res
}

// Has returns true when k is in the set.
func (f Frozen) Has(k FreezeKind) bool { return uint32(f)&uint32(k) != 0 }

// Union returns the freeze kinds in f or g.
func (f Frozen) Union(g Frozen) Frozen { return f | g }

// Intersection returns the freeze kinds in both f and g.
func (f Frozen) Intersection(g Frozen) Frozen { return f & g }

// IsSubsetOf returns true when every freeze kind of f is in g.
func (f Frozen) IsSubsetOf(g Frozen) bool { return f&^g == 0 }

// Names returns the names of the freeze kinds of f.
func (f Frozen) Names() []string {
	var res []string
	for _, k := range allFreezeKinds {
		if f.Has(k) {
			res = append(res, k.String())
		}
	}
	return res
}

func (f Frozen) String() string { return "{" + strings.Join(f.Names(), ", ") + "}" }
