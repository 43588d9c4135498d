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

// Leq returns true when every component of m is less than the same component of o. The frozen categories and the
// method are not part of the order.
func (m *Model) Leq(o *Model) bool {
	if !m.modes.IsSubsetOf(o.modes) {
		return false
	}
	for _, c := range allCategories {
		if !m.tree(c).Leq(*o.tree(c)) {
			return false
		}
	}
	return m.globalSanitizers.Leq(o.globalSanitizers) &&
		m.portSanitizers.Leq(o.portSanitizers) &&
		m.attachToSources.Leq(o.attachToSources) &&
		m.attachToSinks.Leq(o.attachToSinks) &&
		m.attachToPropagations.Leq(o.attachToPropagations) &&
		m.addFeaturesToArguments.Leq(o.addFeaturesToArguments) &&
		m.inlineAsGetter.Leq(o.inlineAsGetter) &&
		m.inlineAsSetter.Leq(o.inlineAsSetter) &&
		m.modelGenerators.Leq(o.modelGenerators) &&
		m.issues.Leq(o.issues)
}

// Equal returns true when m and o are the same element of the lattice, i.e. m.Leq(o) and o.Leq(m).
func (m *Model) Equal(o *Model) bool {
	return m.Leq(o) && o.Leq(m)
}

// JoinWith joins o into m, component by component. Frozen categories are joined too: joining two declared models
// of a method keeps the facts of both. Joining models of different methods is an invariant violation.
func (m *Model) JoinWith(o *Model) {
	if m == o {
		return
	}
	mine, mok := m.method.Get()
	theirs, ook := o.method.Get()
	switch {
	case mok && ook && mine.Signature() != theirs.Signature():
		invariantViolation("joining the model of %s with the model of %s", mine.Signature(), theirs.Signature())
	case !mok && ook:
		m.method = o.method
	}
	if m.heuristics == nil {
		m.heuristics = o.heuristics
	}

	m.modes = m.modes.Union(o.modes)
	m.frozen = m.frozen.Union(o.frozen)
	for _, c := range allCategories {
		m.tree(c).JoinWith(*o.tree(c))
	}
	m.globalSanitizers = m.globalSanitizers.Join(o.globalSanitizers)
	m.portSanitizers.JoinWith(o.portSanitizers)
	m.attachToSources.JoinWith(o.attachToSources)
	m.attachToSinks.JoinWith(o.attachToSinks)
	m.attachToPropagations.JoinWith(o.attachToPropagations)
	m.addFeaturesToArguments.JoinWith(o.addFeaturesToArguments)
	m.inlineAsGetter = m.inlineAsGetter.Join(o.inlineAsGetter)
	m.inlineAsSetter = m.inlineAsSetter.Join(o.inlineAsSetter)
	m.modelGenerators = m.modelGenerators.Union(o.modelGenerators)
	m.issues.JoinWith(o.issues)
}

// IsEmpty returns true when the model has no mode and no fact.
func (m *Model) IsEmpty() bool {
	return m.Equal(Empty())
}
