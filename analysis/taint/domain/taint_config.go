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

	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/internal/funcutil"
	"github.com/awslabs/argot-taint-models/internal/jsonvalidation"
)

// A TaintConfig describes one frame before it is added to a model. Frames are only created from configs.
type TaintConfig struct {
	Kind                    Kind
	CalleePort              access.AccessPath
	Callee                  string
	CallPosition            funcutil.Optional[Position]
	Distance                int
	CallKind                CallKind
	Origins                 NameSet
	InferredFeatures        FeatureMayAlwaysSet
	LocallyInferredFeatures FeatureMayAlwaysSet
	UserFeatures            FeatureSet
	ViaTypeOf               RootSet
	ViaValueOf              RootSet
	OutputPaths             StringSet
}

// LeafConfig returns the config of a declared frame of the given kind, with user features.
func LeafConfig(kind Kind, userFeatures ...string) TaintConfig {
	return TaintConfig{Kind: kind, UserFeatures: NewStringSet(userFeatures...)}
}

// Validate checks the trace information of the config: a leaf frame has a leaf callee port, no call position and
// a zero distance; a frame with a callee has a non-leaf callee port, a call position and a non-zero distance.
func (c TaintConfig) Validate() error {
	if c.Kind == (Kind{}) {
		return &jsonvalidation.Error{Field: "kind", Expected: "a non-empty kind"}
	}
	if c.Distance < 0 {
		return &jsonvalidation.Error{Field: "distance", Expected: "a non-negative distance"}
	}
	root := c.CalleePort.Root()
	if root.IsAnchor() || root.IsProducer() {
		return &jsonvalidation.Error{
			Field:    "callee_port",
			Expected: "canonical_names to be specified with `Anchor` or `Producer` callee_port",
		}
	}
	if c.Callee == "" {
		switch {
		case !root.IsLeafPort():
			return &jsonvalidation.Error{Field: "callee_port", Expected: "`Leaf`, `Anchor` or `Producer`"}
		case c.CallPosition.IsSome():
			return &jsonvalidation.Error{Field: "call_position", Expected: "unspecified position for leaf taint"}
		case c.Distance != 0:
			return &jsonvalidation.Error{Field: "distance", Expected: "a value of 0"}
		}
		return nil
	}
	switch {
	case root.IsLeafPort():
		return &jsonvalidation.Error{Field: "callee_port", Expected: "`Argument(x)` or `Return`"}
	case c.CallPosition.IsNone():
		return &jsonvalidation.Error{Field: "call_position", Expected: "non-null position"}
	case c.Distance == 0:
		return &jsonvalidation.Error{Field: "distance", Expected: "non-zero distance"}
	}
	return nil
}

// taintConfigMembers are the members accepted in a frame object. Port members are those of the enclosing fact.
var taintConfigMembers = []string{
	"port", "caller_port", "type",
	"kind", "callee_port", "callee", "call_position", "distance", "call_kind", "origins",
	"features", "may_features", "always_features", "local_features",
	"via_type_of", "via_value_of", "output_paths",
}

// TaintConfigFromJSON parses a frame object. When checkUnexpected is set, unknown members are errors.
func TaintConfigFromJSON(obj jsonvalidation.Object, checkUnexpected bool) (TaintConfig, error) {
	var c TaintConfig
	if checkUnexpected {
		if err := jsonvalidation.CheckUnexpectedMembers(obj, taintConfigMembers...); err != nil {
			return c, err
		}
	}
	kind, err := obj.String("kind")
	if err != nil {
		return c, err
	}
	if kind == "" {
		return c, &jsonvalidation.Error{Field: "kind", Expected: "a non-empty string"}
	}
	c.Kind = KindFromString(kind)

	c.CalleePort = access.NewAccessPath(access.Leaf())
	if port, ok, err := obj.OptionalString("callee_port"); err != nil {
		return c, err
	} else if ok {
		if c.CalleePort, err = access.FromString(port); err != nil {
			return c, &jsonvalidation.Error{Field: "callee_port", Expected: "an access path", Err: err}
		}
	}
	if c.Callee, _, err = obj.OptionalString("callee"); err != nil {
		return c, err
	}
	if obj.Has("call_position") {
		var pos Position
		if err := obj.Decode("call_position", "a position", &pos); err != nil {
			return c, err
		}
		c.CallPosition = funcutil.Some(pos)
	}
	if c.Distance, err = obj.Integer("distance", 0); err != nil {
		return c, err
	}
	if s, ok, err := obj.OptionalString("call_kind"); err != nil {
		return c, err
	} else if ok {
		if c.CallKind, err = CallKindFromString(s); err != nil {
			return c, &jsonvalidation.Error{Field: "call_kind", Expected: "a call kind", Err: err}
		}
	}
	origins, err := obj.NullOrStringArray("origins")
	if err != nil {
		return c, err
	}
	c.Origins = NewStringSet(origins...)

	if c.InferredFeatures, err = featuresFromJSON(obj); err != nil {
		return c, err
	}
	if obj.Has("local_features") {
		local, err := obj.Object("local_features")
		if err != nil {
			return c, err
		}
		if c.LocallyInferredFeatures, err = featuresFromJSON(local); err != nil {
			return c, err
		}
	}
	userFeatures, err := obj.NullOrStringArray("features")
	if err != nil {
		return c, err
	}
	c.UserFeatures = NewStringSet(userFeatures...)

	if c.ViaTypeOf, err = rootsFromJSON(obj, "via_type_of"); err != nil {
		return c, err
	}
	if c.ViaValueOf, err = rootsFromJSON(obj, "via_value_of"); err != nil {
		return c, err
	}
	outputPaths, err := obj.NullOrStringArray("output_paths")
	if err != nil {
		return c, err
	}
	c.OutputPaths = NewStringSet(outputPaths...)

	return c, c.Validate()
}

// featuresFromJSON parses may_features and always_features; the result is bottom when both are absent.
func featuresFromJSON(obj jsonvalidation.Object) (FeatureMayAlwaysSet, error) {
	if !obj.Has("may_features") && !obj.Has("always_features") {
		return FeatureMayAlwaysSet{}, nil
	}
	may, err := obj.NullOrStringArray("may_features")
	if err != nil {
		return FeatureMayAlwaysSet{}, err
	}
	always, err := obj.NullOrStringArray("always_features")
	if err != nil {
		return FeatureMayAlwaysSet{}, err
	}
	return NewFeatureMayAlwaysSet(NewStringSet(may...), NewStringSet(always...)), nil
}

func featuresToJSON(f FeatureMayAlwaysSet, out map[string]any) {
	if f.IsBottom() {
		return
	}
	out["may_features"] = f.MayOnly().Elements()
	out["always_features"] = f.Always().Elements()
}

func rootsFromJSON(obj jsonvalidation.Object, field string) (RootSet, error) {
	names, err := obj.NullOrStringArray(field)
	if err != nil {
		return RootSet{}, err
	}
	var roots RootSet
	for i, name := range names {
		root, err := access.RootFromString(name)
		if err != nil {
			return RootSet{}, &jsonvalidation.Error{Field: fmt.Sprintf("%s[%d]", field, i), Expected: "a root", Err: err}
		}
		roots = roots.Add(root)
	}
	return roots, nil
}

// ToJSON returns the frame object of f. Fields holding their default value are omitted.
func (f Frame) ToJSON() map[string]any {
	out := map[string]any{"kind": f.kind.String()}
	if !f.calleePort.Root().IsLeaf() || f.calleePort.Path().Len() > 0 {
		out["callee_port"] = f.calleePort.String()
	}
	if f.callee != "" {
		out["callee"] = f.callee
	}
	if pos, ok := f.callPosition.Get(); ok {
		out["call_position"] = pos
	}
	if f.distance != 0 {
		out["distance"] = f.distance
	}
	if f.callKind != Declaration {
		out["call_kind"] = f.callKind.String()
	}
	if !f.origins.IsEmpty() {
		out["origins"] = f.origins.Elements()
	}
	featuresToJSON(f.inferredFeatures, out)
	if !f.locallyInferredFeatures.IsBottom() {
		local := map[string]any{}
		featuresToJSON(f.locallyInferredFeatures, local)
		out["local_features"] = local
	}
	if !f.userFeatures.IsEmpty() {
		out["features"] = f.userFeatures.Elements()
	}
	if !f.viaTypeOf.IsEmpty() {
		out["via_type_of"] = f.viaTypeOf.Strings()
	}
	if !f.viaValueOf.IsEmpty() {
		out["via_value_of"] = f.viaValueOf.Strings()
	}
	if !f.outputPaths.IsEmpty() {
		out["output_paths"] = f.outputPaths.Elements()
	}
	return out
}
