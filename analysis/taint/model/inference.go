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
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
)

// AddInferredGenerations joins taint inferred by the analysis into the generations at port. Sanitized sources are
// removed first. The widening features are added to the taint if port is truncated. Does nothing when the
// generations are frozen.
func (m *Model) AddInferredGenerations(port access.AccessPath, taint domain.Taint,
	widening domain.FeatureMayAlwaysSet) error {
	if m.IsFrozen(FreezeGenerations) {
		return nil
	}
	return m.addInferred(generationsCategory, port,
		m.ApplySourceSinkSanitizers(domain.SanitizeSources, taint, port.Root()), widening)
}

// AddInferredSinks joins taint inferred by the analysis into the sinks at port. Sanitized sinks are removed first.
// Does nothing when the sinks are frozen.
func (m *Model) AddInferredSinks(port access.AccessPath, taint domain.Taint,
	widening domain.FeatureMayAlwaysSet) error {
	if m.IsFrozen(FreezeSinks) {
		return nil
	}
	return m.addInferred(sinksCategory, port,
		m.ApplySourceSinkSanitizers(domain.SanitizeSinks, taint, port.Root()), widening)
}

// AddInferredCallEffectSinks joins taint inferred by the analysis into the call effect sinks at port. Does nothing
// when the sinks are frozen.
func (m *Model) AddInferredCallEffectSinks(port access.AccessPath, taint domain.Taint,
	widening domain.FeatureMayAlwaysSet) error {
	if m.IsFrozen(FreezeSinks) {
		return nil
	}
	return m.addInferred(callEffectSinksCategory, port,
		m.ApplySourceSinkSanitizers(domain.SanitizeSinks, taint, port.Root()), widening)
}

// AddInferredPropagations joins propagations inferred by the analysis at the input port. Nothing is added when
// the propagations are frozen or when a sanitizer removes every propagation from the input.
func (m *Model) AddInferredPropagations(input access.AccessPath, taint domain.Taint,
	widening domain.FeatureMayAlwaysSet) error {
	if m.IsFrozen(FreezePropagations) || m.HasGlobalPropagationSanitizer() ||
		m.portSanitizers.Get(input.Root()).SanitizesAll(domain.SanitizePropagations) {
		return nil
	}
	return m.addInferred(propagationsCategory, input, taint, widening)
}

// addInferred checks port and the frames of taint, then joins taint into the tree of category c.
// Frames with a propagation kind are only valid in propagations, and propagations only have such frames. Every
// frame must satisfy the trace rules of TaintConfig.Validate.
func (m *Model) addInferred(c category, port access.AccessPath, taint domain.Taint,
	widening domain.FeatureMayAlwaysSet) error {
	if err := m.checkPort(c, port); err != nil {
		return err
	}
	for _, frame := range taint.Frames() {
		if err := frame.Config().Validate(); err != nil {
			invariantViolation("invalid frame %s inferred for %s: %v", frame, c, err)
		}
		isPropagation := frame.Kind().IsPropagation()
		if isPropagation != (c == propagationsCategory) {
			invariantViolation("frame %s cannot be added to %s", frame, c)
		}
		if isPropagation {
			if err := m.checkRoot(c, frame.Kind().PropagationOutput()); err != nil {
				return err
			}
		}
	}
	if taint.IsBottom() {
		return nil
	}
	updateTaintTree(m.tree(c), port, c.maxPortDepth(m.bounds()), checkedTaint{taint: taint.Clone()}, widening)
	return nil
}

// RemoveKinds removes the frames of the given kinds from the sources and sinks of the model.
func (m *Model) RemoveKinds(kinds []domain.Kind) {
	remove := func(t domain.Taint) domain.Taint {
		return t.Filter(func(f domain.Frame) bool {
			for _, k := range kinds {
				if f.Kind() == k {
					return false
				}
			}
			return true
		})
	}
	for _, c := range allCategories {
		if c != propagationsCategory {
			m.tree(c).Transform(remove)
		}
	}
}
