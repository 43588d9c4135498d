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
	"go/types"

	"github.com/awslabs/argot-taint-models/analysis/methods"
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
	"github.com/awslabs/argot-taint-models/internal/funcutil"
)

const (
	viaTypeOfPrefix  = "via-type:"
	viaValueOfPrefix = "via-value:"
	unknownFeature   = "unknown"
)

// AtCallsite returns the model of the call to the method of m at position in caller. The sources, sinks and call
// effects of m are propagated through the call: their frames get the method as callee, the port of the fact as
// callee port and position as call position. Frames already at the maximum source-sink distance are dropped.
//
// registerTypes and constantArguments give, for each argument of the call, the type of the value and its
// constant value, if known. They are used to compute the via-type-of and via-value-of features.
//
// m is not modified. m must be bound to a method: the frames of a template have no callee to point to.
func (m *Model) AtCallsite(caller methods.Method, position domain.Position, ctx *Context,
	registerTypes []types.Type, constantArguments []funcutil.Optional[string]) *Model {
	if m.method.IsNone() {
		invariantViolation("at_callsite on template model")
	}
	callee := m.signature()
	maxDistance := ctx.Config.Heuristics.MaxSourceSinkDistance
	if caller != nil {
		ctx.Logger.Tracef("instantiating model of %s at %s in %s", callee, position, caller.Signature())
	}

	viaFeatures := func(f domain.Frame) domain.FeatureSet {
		var features []string
		for _, root := range f.ViaTypeOf().Elements() {
			features = append(features, viaTypeOfPrefix+typeAt(registerTypes, root))
		}
		for _, root := range f.ViaValueOf().Elements() {
			features = append(features, viaValueOfPrefix+constantAt(constantArguments, root))
		}
		return domain.NewStringSet(features...)
	}
	propagate := func(from domain.TaintTree, to *domain.TaintTree, attach func(access.Root) domain.FeatureSet) {
		for _, elem := range from.Elements() {
			t := elem.Taint.Propagate(callee, elem.Port, position, maxDistance, viaFeatures)
			if attach != nil {
				if features := attach(elem.Port.Root()); !features.IsEmpty() {
					t = t.AddLocallyInferredFeatures(domain.MakeAlways(features))
				}
			}
			to.Write(elem.Port, t)
		}
	}

	res := &Model{
		method:                 m.method,
		modes:                  m.modes,
		frozen:                 m.frozen,
		globalSanitizers:       m.globalSanitizers,
		portSanitizers:         m.portSanitizers.Clone(),
		addFeaturesToArguments: m.addFeaturesToArguments.Clone(),
		inlineAsGetter:         m.inlineAsGetter,
		inlineAsSetter:         m.inlineAsSetter,
		modelGenerators:        m.modelGenerators,
		heuristics:             m.heuristics,
	}
	propagate(m.generations, &res.generations, m.AttachToSources)
	propagate(m.sinks, &res.sinks, m.AttachToSinks)
	propagate(m.callEffectSources, &res.callEffectSources, nil)
	propagate(m.callEffectSinks, &res.callEffectSinks, nil)

	for _, elem := range m.propagations.Elements() {
		t := elem.Taint
		if features := m.AttachToPropagations(elem.Port.Root()); !features.IsEmpty() {
			t = t.AddLocallyInferredFeatures(domain.MakeAlways(features))
		}
		res.propagations.Write(elem.Port, t)
	}
	return res
}

// typeAt returns the name of the type of the argument root, or unknown.
func typeAt(registerTypes []types.Type, root access.Root) string {
	if !root.IsArgument() {
		return unknownFeature
	}
	i := root.ParameterPosition()
	if i >= len(registerTypes) || registerTypes[i] == nil {
		return unknownFeature
	}
	return types.TypeString(registerTypes[i], nil)
}

// constantAt returns the constant value of the argument root, or unknown.
func constantAt(constantArguments []funcutil.Optional[string], root access.Root) string {
	if !root.IsArgument() {
		return unknownFeature
	}
	i := root.ParameterPosition()
	if i >= len(constantArguments) {
		return unknownFeature
	}
	return constantArguments[i].ValueOr(unknownFeature)
}
