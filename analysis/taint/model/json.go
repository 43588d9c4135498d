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
	"encoding/json"
	"fmt"

	"github.com/awslabs/argot-taint-models/analysis/methods"
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
	"github.com/awslabs/argot-taint-models/internal/jsonvalidation"
)

const topValue = "top"

var modelMembers = []string{
	"method",
	"position",
	"modes",
	"freeze",
	"generations",
	"parameter_sources",
	"sinks",
	"call_effect_sources",
	"call_effect_sinks",
	"propagations",
	"sanitizers",
	"attach_to_sources",
	"attach_to_sinks",
	"attach_to_propagations",
	"add_features_to_arguments",
	"inline_as_getter",
	"inline_as_setter",
	"model_generators",
	"issues",
}

// ToJSON returns the document of m. Empty components are omitted.
func (m *Model) ToJSON() map[string]any {
	out := map[string]any{}
	if sig := m.signature(); sig != "" {
		out["method"] = sig
	}
	if !m.modes.IsNormal() {
		out["modes"] = m.modes.Names()
	}
	if frozen := m.frozen.Names(); len(frozen) > 0 {
		out["freeze"] = frozen
	}
	for _, c := range allCategories {
		elems := m.tree(c).Elements()
		if len(elems) == 0 {
			continue
		}
		entries := make([]map[string]any, len(elems))
		for i, elem := range elems {
			entries[i] = map[string]any{"port": elem.Port.String(), "taint": elem.Taint.ToJSON()}
		}
		out[c.String()] = entries
	}

	var sanitizers []map[string]any
	for _, s := range m.globalSanitizers.Elements() {
		sanitizers = append(sanitizers, s.ToJSON())
	}
	for _, root := range m.portSanitizers.Roots() {
		for _, s := range m.portSanitizers.Get(root).Elements() {
			entry := s.ToJSON()
			entry["port"] = root.String()
			sanitizers = append(sanitizers, entry)
		}
	}
	if len(sanitizers) > 0 {
		out["sanitizers"] = sanitizers
	}

	for _, a := range m.attachments() {
		var entries []map[string]any
		for _, root := range a.partition.Roots() {
			entries = append(entries, map[string]any{
				"port":     root.String(),
				"features": a.partition.Get(root).Elements(),
			})
		}
		if len(entries) > 0 {
			out[a.name] = entries
		}
	}

	if m.inlineAsGetter.IsTop() {
		out["inline_as_getter"] = topValue
	} else if ap, ok := m.inlineAsGetter.Get(); ok {
		out["inline_as_getter"] = ap.String()
	}
	if m.inlineAsSetter.IsTop() {
		out["inline_as_setter"] = topValue
	} else if s, ok := m.inlineAsSetter.Get(); ok {
		out["inline_as_setter"] = map[string]any{"target": s.Target.String(), "value": s.Value.String()}
	}

	if !m.modelGenerators.IsEmpty() {
		out["model_generators"] = m.modelGenerators.Elements()
	}
	if !m.issues.IsBottom() {
		issues := m.issues.Elements()
		entries := make([]map[string]any, len(issues))
		for i, issue := range issues {
			entries[i] = issue.ToJSON()
		}
		out["issues"] = entries
	}
	return out
}

// ToJSONWithPosition returns the document of m with the position of its method, when known.
func (m *Model) ToJSONWithPosition(ctx *Context) map[string]any {
	out := m.ToJSON()
	method, ok := m.method.Get()
	if !ok {
		return out
	}
	if pos := domain.PositionFromToken(method.Position()); pos.IsValid() {
		out["position"] = pos
	} else {
		ctx.Logger.Debugf("no position for method %s", method.Signature())
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToJSON())
}

type namedPartition struct {
	name      string
	partition domain.FeaturePartition
}

func (m *Model) attachments() []namedPartition {
	return []namedPartition{
		{"attach_to_sources", m.attachToSources},
		{"attach_to_sinks", m.attachToSinks},
		{"attach_to_propagations", m.attachToPropagations},
		{"add_features_to_arguments", m.addFeaturesToArguments},
	}
}

// FromJSON parses a model document. When method is nil, the method named in the document is looked up in the
// methods of ctx, and a template is returned when it is not found. The facts of the document are checked as in
// New, or dropped as in NewLenient when the configuration asks for lenient models. When checkUnexpected is set,
// unknown members of the document are errors.
func FromJSON(method methods.Method, data []byte, ctx *Context, checkUnexpected bool) (*Model, error) {
	obj, err := jsonvalidation.ParseObject(data)
	if err != nil {
		return nil, err
	}
	return fromObject(method, obj, ctx, checkUnexpected)
}

func fromObject(method methods.Method, obj jsonvalidation.Object, ctx *Context,
	checkUnexpected bool) (*Model, error) {
	if checkUnexpected {
		if err := jsonvalidation.CheckUnexpectedMembers(obj, modelMembers...); err != nil {
			return nil, err
		}
	}
	if method == nil {
		sig, ok, err := obj.OptionalString("method")
		if err != nil {
			return nil, err
		}
		if ok {
			if found, isFound := ctx.Methods.Get(sig).Get(); isFound {
				method = found
			} else {
				ctx.Logger.Debugf("method %s is not loaded, parsing its model as a template", sig)
			}
		}
	}
	facts, err := factsFromObject(obj, checkUnexpected)
	if err != nil {
		return nil, err
	}
	if ctx.Config.LenientModels {
		return NewLenient(method, ctx, facts), nil
	}
	return New(method, ctx, facts)
}

func factsFromObject(obj jsonvalidation.Object, checkUnexpected bool) (Facts, error) {
	var facts Facts
	modes, err := obj.NullOrStringArray("modes")
	if err != nil {
		return facts, err
	}
	for _, name := range modes {
		mode, err := ModeFromString(name)
		if err != nil {
			return facts, &jsonvalidation.Error{Field: "modes", Expected: "valid modes", Err: err}
		}
		facts.Modes = facts.Modes.Union(NewModes(mode))
	}
	freeze, err := obj.NullOrStringArray("freeze")
	if err != nil {
		return facts, err
	}
	for _, name := range freeze {
		kind, err := FreezeKindFromString(name)
		if err != nil {
			return facts, &jsonvalidation.Error{Field: "freeze", Expected: "valid freeze kinds", Err: err}
		}
		facts.Frozen = facts.Frozen.Union(NewFrozen(kind))
	}

	targets := map[category]*[]PortTaintConfig{
		generationsCategory:       &facts.Generations,
		parameterSourcesCategory:  &facts.ParameterSources,
		sinksCategory:             &facts.Sinks,
		callEffectSourcesCategory: &facts.CallEffectSources,
		callEffectSinksCategory:   &facts.CallEffectSinks,
		propagationsCategory:      &facts.PropagationFrames,
	}
	for _, c := range allCategories {
		entries, err := obj.NullOrObjectArray(c.String())
		if err != nil {
			return facts, err
		}
		for _, entry := range entries {
			if c == propagationsCategory && entry.Has("input") {
				p, err := domain.PropagationConfigFromJSON(entry, checkUnexpected)
				if err != nil {
					return facts, err
				}
				facts.Propagations = append(facts.Propagations, p)
				continue
			}
			configs, err := portTaintConfigsFromJSON(entry, checkUnexpected)
			if err != nil {
				return facts, err
			}
			*targets[c] = append(*targets[c], configs...)
		}
	}

	sanitizers, err := obj.NullOrObjectArray("sanitizers")
	if err != nil {
		return facts, err
	}
	for _, entry := range sanitizers {
		s, err := domain.SanitizerFromJSON(entry, checkUnexpected)
		if err != nil {
			return facts, err
		}
		if !entry.Has("port") {
			facts.GlobalSanitizers = append(facts.GlobalSanitizers, s)
			continue
		}
		root, err := rootFromJSON(entry, "port")
		if err != nil {
			return facts, err
		}
		facts.PortSanitizers = append(facts.PortSanitizers, PortSanitizer{Port: root, Sanitizer: s})
	}

	for _, a := range []struct {
		name   string
		target *[]PortFeatures
	}{
		{"attach_to_sources", &facts.AttachToSources},
		{"attach_to_sinks", &facts.AttachToSinks},
		{"attach_to_propagations", &facts.AttachToPropagations},
		{"add_features_to_arguments", &facts.AddFeaturesToArguments},
	} {
		entries, err := obj.NullOrObjectArray(a.name)
		if err != nil {
			return facts, err
		}
		for _, entry := range entries {
			if checkUnexpected {
				if err := jsonvalidation.CheckUnexpectedMembers(entry, "port", "features"); err != nil {
					return facts, err
				}
			}
			root, err := rootFromJSON(entry, "port")
			if err != nil {
				return facts, err
			}
			features, err := entry.NullOrStringArray("features")
			if err != nil {
				return facts, err
			}
			*a.target = append(*a.target, PortFeatures{Port: root, Features: domain.NewStringSet(features...)})
		}
	}

	if facts.InlineAsGetter, err = inlineAsGetterFromJSON(obj); err != nil {
		return facts, err
	}
	if facts.InlineAsSetter, err = inlineAsSetterFromJSON(obj); err != nil {
		return facts, err
	}
	if facts.ModelGenerators, err = obj.NullOrStringArray("model_generators"); err != nil {
		return facts, err
	}
	issues, err := obj.NullOrObjectArray("issues")
	if err != nil {
		return facts, err
	}
	for _, entry := range issues {
		issue, err := domain.IssueFromJSON(entry, checkUnexpected)
		if err != nil {
			return facts, err
		}
		facts.Issues = append(facts.Issues, issue)
	}
	return facts, nil
}

// portTaintConfigsFromJSON parses either an entry {port, taint: [frames]} or a frame with a port member.
func portTaintConfigsFromJSON(entry jsonvalidation.Object, checkUnexpected bool) ([]PortTaintConfig, error) {
	port, err := accessPathFromJSON(entry, "port")
	if err != nil {
		return nil, err
	}
	if !entry.Has("taint") {
		config, err := domain.TaintConfigFromJSON(entry, checkUnexpected)
		if err != nil {
			return nil, err
		}
		return []PortTaintConfig{{Port: port, Config: config}}, nil
	}
	if checkUnexpected {
		if err := jsonvalidation.CheckUnexpectedMembers(entry, "port", "taint"); err != nil {
			return nil, err
		}
	}
	frames, err := entry.NullOrObjectArray("taint")
	if err != nil {
		return nil, err
	}
	var res []PortTaintConfig
	for _, frame := range frames {
		config, err := domain.TaintConfigFromJSON(frame, checkUnexpected)
		if err != nil {
			return nil, err
		}
		res = append(res, PortTaintConfig{Port: port, Config: config})
	}
	return res, nil
}

func accessPathFromJSON(obj jsonvalidation.Object, field string) (access.AccessPath, error) {
	s, err := obj.String(field)
	if err != nil {
		return access.AccessPath{}, err
	}
	ap, err := access.FromString(s)
	if err != nil {
		return access.AccessPath{}, &jsonvalidation.Error{Field: field, Expected: "an access path", Err: err}
	}
	return ap, nil
}

func rootFromJSON(obj jsonvalidation.Object, field string) (access.Root, error) {
	s, err := obj.String(field)
	if err != nil {
		return access.Root{}, err
	}
	root, err := access.RootFromString(s)
	if err != nil {
		return access.Root{}, &jsonvalidation.Error{Field: field, Expected: "a root", Err: err}
	}
	return root, nil
}

func inlineAsGetterFromJSON(obj jsonvalidation.Object) (domain.AccessPathConstant, error) {
	s, ok, err := obj.OptionalString("inline_as_getter")
	switch {
	case err != nil:
		return domain.AccessPathConstant{}, err
	case !ok:
		return domain.AccessPathConstant{}, nil
	case s == topValue:
		return domain.Top[access.AccessPath](), nil
	}
	ap, err := accessPathFromJSON(obj, "inline_as_getter")
	if err != nil {
		return domain.AccessPathConstant{}, err
	}
	return domain.Constant(ap), nil
}

func inlineAsSetterFromJSON(obj jsonvalidation.Object) (domain.SetterAccessPathConstant, error) {
	if !obj.Has("inline_as_setter") {
		return domain.SetterAccessPathConstant{}, nil
	}
	var top string
	if err := json.Unmarshal(obj["inline_as_setter"], &top); err == nil {
		if top != topValue {
			return domain.SetterAccessPathConstant{}, &jsonvalidation.Error{
				Field:    "inline_as_setter",
				Expected: fmt.Sprintf("%q or an object {target, value}", topValue),
			}
		}
		return domain.Top[domain.SetterAccessPath](), nil
	}
	setter, err := obj.Object("inline_as_setter")
	if err != nil {
		return domain.SetterAccessPathConstant{}, err
	}
	target, err := accessPathFromJSON(setter, "target")
	if err != nil {
		return domain.SetterAccessPathConstant{}, err
	}
	value, err := accessPathFromJSON(setter, "value")
	if err != nil {
		return domain.SetterAccessPathConstant{}, err
	}
	return domain.Constant(domain.SetterAccessPath{Target: target, Value: value}), nil
}
