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
)

// A FeatureMayAlwaysSet is a pair of feature sets: the features that may be present and the features that are
// always present. Always features are also may features.
//
// The zero value is bottom, which is different from the empty set: joining bottom with x gives x, while joining
// the empty set with x drops every always feature of x.
type FeatureMayAlwaysSet struct {
	may     FeatureSet
	always  FeatureSet
	isValue bool
}

// NewFeatureMayAlwaysSet returns the set with may features may ∪ always and always features always.
func NewFeatureMayAlwaysSet(may FeatureSet, always FeatureSet) FeatureMayAlwaysSet {
	return FeatureMayAlwaysSet{may: may.Union(always), always: always, isValue: true}
}

// MakeAlways returns the set where every feature of features is always present.
func MakeAlways(features FeatureSet) FeatureMayAlwaysSet {
	return FeatureMayAlwaysSet{may: features, always: features, isValue: true}
}

// MakeMay returns the set where every feature of features may be present.
func MakeMay(features FeatureSet) FeatureMayAlwaysSet {
	return FeatureMayAlwaysSet{may: features, isValue: true}
}

// IsBottom returns true for the bottom element.
func (f FeatureMayAlwaysSet) IsBottom() bool { return !f.isValue }

// IsEmpty returns true when there is no feature, including for bottom.
func (f FeatureMayAlwaysSet) IsEmpty() bool { return f.may.IsEmpty() }

// May returns all the features that may be present, including the always features.
func (f FeatureMayAlwaysSet) May() FeatureSet { return f.may }

// MayOnly returns the features that may be present but are not always present.
func (f FeatureMayAlwaysSet) MayOnly() FeatureSet { return f.may.Difference(f.always) }

// Always returns the features that are always present.
func (f FeatureMayAlwaysSet) Always() FeatureSet { return f.always }

// Join returns the least upper bound: may features are unioned, always features intersected.
func (f FeatureMayAlwaysSet) Join(g FeatureMayAlwaysSet) FeatureMayAlwaysSet {
	if !f.isValue {
		return g
	}
	if !g.isValue {
		return f
	}
	return FeatureMayAlwaysSet{may: f.may.Union(g.may), always: f.always.Intersection(g.always), isValue: true}
}

// Add returns the set where the features of g are added to f: both may and always features are unioned.
// This is not a join: adding an always feature makes it always present.
func (f FeatureMayAlwaysSet) Add(g FeatureMayAlwaysSet) FeatureMayAlwaysSet {
	if !f.isValue {
		return g
	}
	if !g.isValue {
		return f
	}
	return FeatureMayAlwaysSet{may: f.may.Union(g.may), always: f.always.Union(g.always), isValue: true}
}

// Leq is the order of the join: f ⊑ g if g may have more features and has fewer always features.
func (f FeatureMayAlwaysSet) Leq(g FeatureMayAlwaysSet) bool {
	if !f.isValue {
		return true
	}
	if !g.isValue {
		return false
	}
	return f.may.Leq(g.may) && g.always.Leq(f.always)
}

// Equal returns true when both sets are equal.
func (f FeatureMayAlwaysSet) Equal(g FeatureMayAlwaysSet) bool {
	return f.isValue == g.isValue && f.may.Equal(g.may) && f.always.Equal(g.always)
}

func (f FeatureMayAlwaysSet) String() string {
	if !f.isValue {
		return "_|_"
	}
	var parts []string
	for _, x := range f.always.Elements() {
		parts = append(parts, "always="+x)
	}
	for _, x := range f.MayOnly().Elements() {
		parts = append(parts, "may="+x)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
