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
	"strings"

	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"golang.org/x/exp/slices"
)

// Lattice is implemented by the values of a RootPartition. Values must be immutable: Join returns a new value.
type Lattice[T any] interface {
	Join(T) T
	Leq(T) bool
	Equal(T) bool
	IsBottom() bool
	String() string
}

// A RootPartition maps roots to lattice values. Roots that are not in the map are bottom.
//
// The zero RootPartition is empty and ready to use.
type RootPartition[T Lattice[T]] struct {
	values map[access.Root]T
}

// Get returns the value at root r, the zero value of T (bottom) if none.
func (p RootPartition[T]) Get(r access.Root) T {
	return p.values[r]
}

// Update joins x into the value at root r.
func (p *RootPartition[T]) Update(r access.Root, x T) {
	if x.IsBottom() {
		return
	}
	if p.values == nil {
		p.values = map[access.Root]T{}
	}
	if old, ok := p.values[r]; ok {
		p.values[r] = old.Join(x)
	} else {
		p.values[r] = x
	}
}

// JoinWith joins every value of o into p.
func (p *RootPartition[T]) JoinWith(o RootPartition[T]) {
	for r, x := range o.values {
		p.Update(r, x)
	}
}

// Leq returns true when every value of p is less than the value at the same root in o.
func (p RootPartition[T]) Leq(o RootPartition[T]) bool {
	for r, x := range p.values {
		y, ok := o.values[r]
		if !ok {
			if !x.IsBottom() {
				return false
			}
			continue
		}
		if !x.Leq(y) {
			return false
		}
	}
	return true
}

// Equal returns true when p and o map the same roots to equal values.
func (p RootPartition[T]) Equal(o RootPartition[T]) bool {
	return p.Leq(o) && o.Leq(p)
}

// IsBottom returns true when no root has a value.
func (p RootPartition[T]) IsBottom() bool { return len(p.values) == 0 }

// Roots returns the roots with a value, in order.
func (p RootPartition[T]) Roots() []access.Root {
	roots := make([]access.Root, 0, len(p.values))
	for r := range p.values {
		roots = append(roots, r)
	}
	slices.SortFunc(roots, access.Root.Less)
	return roots
}

// Clone returns a partition that does not share its map with p.
func (p RootPartition[T]) Clone() RootPartition[T] {
	if len(p.values) == 0 {
		return RootPartition[T]{}
	}
	values := make(map[access.Root]T, len(p.values))
	for r, x := range p.values {
		values[r] = x
	}
	return RootPartition[T]{values: values}
}

func (p RootPartition[T]) String() string {
	roots := p.Roots()
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = r.String() + " -> " + p.values[r].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FeaturePartition maps ports to the features attached to them.
type FeaturePartition = RootPartition[FeatureSet]

// SanitizerPartition maps ports to their sanitizers.
type SanitizerPartition = RootPartition[SanitizerSet]
