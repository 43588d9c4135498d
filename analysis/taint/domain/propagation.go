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
	"github.com/awslabs/argot-taint-models/internal/jsonvalidation"
)

// A PropagationConfig describes a flow from the Input access path to the Output access path of a method.
type PropagationConfig struct {
	Input            access.AccessPath
	Output           access.AccessPath
	InferredFeatures FeatureMayAlwaysSet
	UserFeatures     FeatureSet
}

// TaintConfig returns the frame config of the propagation: a leaf frame with the propagation kind of the output
// root, the output path and the features. Returns an error when taint cannot flow into the output root.
func (p PropagationConfig) TaintConfig() (TaintConfig, error) {
	kind, ok := PropagationKindTo(p.Output.Root())
	if !ok {
		return TaintConfig{}, &jsonvalidation.Error{Field: "output", Expected: "`Return` or `Argument(x)`"}
	}
	return TaintConfig{
		Kind:             kind,
		CalleePort:       access.NewAccessPath(access.Leaf()),
		InferredFeatures: p.InferredFeatures,
		UserFeatures:     p.UserFeatures,
		OutputPaths:      NewStringSet(p.Output.Path().String()),
	}, nil
}

// PropagationConfigFromJSON parses a propagation object {input, output, features...}.
func PropagationConfigFromJSON(obj jsonvalidation.Object, checkUnexpected bool) (PropagationConfig, error) {
	var p PropagationConfig
	if checkUnexpected {
		err := jsonvalidation.CheckUnexpectedMembers(obj,
			"input", "output", "features", "may_features", "always_features")
		if err != nil {
			return p, err
		}
	}
	for _, x := range []struct {
		field string
		ap    *access.AccessPath
	}{{"input", &p.Input}, {"output", &p.Output}} {
		s, err := obj.String(x.field)
		if err != nil {
			return p, err
		}
		if *x.ap, err = access.FromString(s); err != nil {
			return p, &jsonvalidation.Error{Field: x.field, Expected: "an access path", Err: err}
		}
	}
	var err error
	if p.InferredFeatures, err = featuresFromJSON(obj); err != nil {
		return p, err
	}
	features, err := obj.NullOrStringArray("features")
	if err != nil {
		return p, err
	}
	p.UserFeatures = NewStringSet(features...)
	return p, nil
}
