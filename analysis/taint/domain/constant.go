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
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
)

type constantState uint8

const (
	constantBottom constantState = iota
	constantValue
	constantTop
)

// A ConstantDomain holds either nothing (bottom), a single value, or top when several values were joined.
// The zero value is bottom.
type ConstantDomain[T interface {
	Equal(T) bool
	String() string
}] struct {
	state constantState
	value T
}

// Constant returns the domain holding x.
func Constant[T interface {
	Equal(T) bool
	String() string
}](x T) ConstantDomain[T] {
	return ConstantDomain[T]{state: constantValue, value: x}
}

// Top returns the top element.
func Top[T interface {
	Equal(T) bool
	String() string
}]() ConstantDomain[T] {
	return ConstantDomain[T]{state: constantTop}
}

// IsBottom returns true for the bottom element.
func (c ConstantDomain[T]) IsBottom() bool { return c.state == constantBottom }

// IsTop returns true for the top element.
func (c ConstantDomain[T]) IsTop() bool { return c.state == constantTop }

// Get returns the value and true when c holds a single value.
func (c ConstantDomain[T]) Get() (T, bool) {
	return c.value, c.state == constantValue
}

// Join returns the least upper bound of c and d: different values join to top.
func (c ConstantDomain[T]) Join(d ConstantDomain[T]) ConstantDomain[T] {
	switch {
	case c.state == constantBottom:
		return d
	case d.state == constantBottom:
		return c
	case c.state == constantValue && d.state == constantValue && c.value.Equal(d.value):
		return c
	default:
		return ConstantDomain[T]{state: constantTop}
	}
}

// Leq returns true when c is bottom, d is top, or both hold the same value.
func (c ConstantDomain[T]) Leq(d ConstantDomain[T]) bool {
	switch {
	case c.state == constantBottom || d.state == constantTop:
		return true
	case c.state == constantTop || d.state == constantBottom:
		return false
	default:
		return c.value.Equal(d.value)
	}
}

// Equal returns true when c and d are the same element.
func (c ConstantDomain[T]) Equal(d ConstantDomain[T]) bool {
	return c.state == d.state && (c.state != constantValue || c.value.Equal(d.value))
}

func (c ConstantDomain[T]) String() string {
	switch c.state {
	case constantBottom:
		return "_|_"
	case constantTop:
		return "T"
	default:
		return c.value.String()
	}
}

// A SetterAccessPath describes a setter: the value at Value is written to Target.
type SetterAccessPath struct {
	Target access.AccessPath
	Value  access.AccessPath
}

// Equal returns true when both setters have the same target and value.
func (s SetterAccessPath) Equal(o SetterAccessPath) bool {
	return s.Target.Equal(o.Target) && s.Value.Equal(o.Value)
}

func (s SetterAccessPath) String() string {
	return "SetterAccessPath(target=" + s.Target.String() + ", value=" + s.Value.String() + ")"
}

// AccessPathConstant is the inline-as-getter domain.
type AccessPathConstant = ConstantDomain[access.AccessPath]

// SetterAccessPathConstant is the inline-as-setter domain.
type SetterAccessPathConstant = ConstantDomain[SetterAccessPath]
