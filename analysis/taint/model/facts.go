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

// checkedTaint is taint whose frames were built by the model from checked configs, or inferred taint whose port
// and frames were checked by the model. Only checked taint is written into the trees of a model.
type checkedTaint struct {
	taint domain.Taint
}

// makeTaint checks config and returns the taint of the frame it describes. Declared frames of a bound model
// have the method as origin.
func (m *Model) makeTaint(c category, port access.AccessPath, config domain.TaintConfig) (checkedTaint, error) {
	if err := m.checkPort(c, port); err != nil {
		return checkedTaint{}, err
	}
	if err := m.checkConfig(c, port, config); err != nil {
		return checkedTaint{}, err
	}
	frame := domain.NewFrame(config)
	if sig := m.signature(); sig != "" && frame.IsLeaf() && c != propagationsCategory {
		frame = frame.WithOrigins(domain.NewStringSet(sig))
	}
	return checkedTaint{taint: domain.NewTaint(frame)}, nil
}

// updateTaintTree joins t into tree at port. Ports deeper than maxDepth are truncated, and the widening features
// are added to the taint written at a truncated port.
func updateTaintTree(tree *domain.TaintTree, port access.AccessPath, maxDepth int, t checkedTaint,
	widening domain.FeatureMayAlwaysSet) {
	if port.Path().Len() > maxDepth {
		port = port.Truncate(maxDepth)
		t.taint = t.taint.AddLocallyInferredFeatures(widening)
	}
	tree.Write(port, t.taint)
}

// addDeclared adds the frame described by config at port of category c. Declared facts are added even to frozen
// categories.
func (m *Model) addDeclared(c category, port access.AccessPath, config domain.TaintConfig) error {
	t, err := m.makeTaint(c, port, config)
	if err != nil {
		return err
	}
	updateTaintTree(m.tree(c), port, c.maxPortDepth(m.bounds()), t, domain.FeatureMayAlwaysSet{})
	return nil
}

// AddGeneration declares that the method generates the taint described by config at port.
func (m *Model) AddGeneration(port access.AccessPath, config domain.TaintConfig) error {
	return m.addDeclared(generationsCategory, port, config)
}

// AddParameterSource declares that the method receives the taint described by config from the parameter port.
func (m *Model) AddParameterSource(port access.AccessPath, config domain.TaintConfig) error {
	return m.addDeclared(parameterSourcesCategory, port, config)
}

// AddSink declares that port is a sink described by config.
func (m *Model) AddSink(port access.AccessPath, config domain.TaintConfig) error {
	return m.addDeclared(sinksCategory, port, config)
}

// AddCallEffectSource declares that calling the method generates the taint described by config.
func (m *Model) AddCallEffectSource(port access.AccessPath, config domain.TaintConfig) error {
	return m.addDeclared(callEffectSourcesCategory, port, config)
}

// AddCallEffectSink declares that calling the method is a sink described by config.
func (m *Model) AddCallEffectSink(port access.AccessPath, config domain.TaintConfig) error {
	return m.addDeclared(callEffectSinksCategory, port, config)
}

// AddPropagation declares that taint flows from the input to the output of p.
func (m *Model) AddPropagation(p domain.PropagationConfig) error {
	if err := m.checkRoot(propagationsCategory, p.Output.Root()); err != nil {
		return err
	}
	config, err := p.TaintConfig()
	if err != nil {
		return err
	}
	return m.addDeclared(propagationsCategory, p.Input, config)
}

// AddGlobalSanitizer adds a sanitizer applying to every port of the method.
func (m *Model) AddGlobalSanitizer(s domain.Sanitizer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.globalSanitizers = m.globalSanitizers.Add(s)
	return nil
}

// AddPortSanitizer adds a sanitizer applying to root.
func (m *Model) AddPortSanitizer(s domain.Sanitizer, root access.Root) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return m.AddPortSanitizers(domain.NewSanitizerSet(s), root)
}

// AddPortSanitizers adds sanitizers applying to root.
func (m *Model) AddPortSanitizers(sanitizers domain.SanitizerSet, root access.Root) error {
	if sanitizers.IsBottom() {
		return m.consistencyError(categoryName("sanitizers"), root, "empty sanitizer")
	}
	if err := m.checkRoot(categoryName("sanitizers"), root); err != nil {
		return err
	}
	m.portSanitizers.Update(root, sanitizers)
	return nil
}

func (m *Model) addFeatures(p *domain.FeaturePartition, name string, features domain.FeatureSet,
	root access.Root) error {
	if err := m.checkRoot(categoryName(name), root); err != nil {
		return err
	}
	p.Update(root, features)
	return nil
}

// AddAttachToSources adds features to the sources flowing out of root.
func (m *Model) AddAttachToSources(features domain.FeatureSet, root access.Root) error {
	return m.addFeatures(&m.attachToSources, "attach_to_sources", features, root)
}

// AddAttachToSinks adds features to the taint flowing into the sinks of root.
func (m *Model) AddAttachToSinks(features domain.FeatureSet, root access.Root) error {
	return m.addFeatures(&m.attachToSinks, "attach_to_sinks", features, root)
}

// AddAttachToPropagations adds features to the taint propagated from root.
func (m *Model) AddAttachToPropagations(features domain.FeatureSet, root access.Root) error {
	return m.addFeatures(&m.attachToPropagations, "attach_to_propagations", features, root)
}

// AddAddFeaturesToArguments adds features to every value flowing through the argument root.
func (m *Model) AddAddFeaturesToArguments(features domain.FeatureSet, root access.Root) error {
	if !root.IsArgument() {
		return m.consistencyError(categoryName("add_features_to_arguments"), root, "expected an argument")
	}
	return m.addFeatures(&m.addFeaturesToArguments, "add_features_to_arguments", features, root)
}

// AttachToSources returns the features attached to the sources flowing out of root.
func (m *Model) AttachToSources(root access.Root) domain.FeatureSet { return m.attachToSources.Get(root) }

// AttachToSinks returns the features attached to the taint flowing into the sinks of root.
func (m *Model) AttachToSinks(root access.Root) domain.FeatureSet { return m.attachToSinks.Get(root) }

// AttachToPropagations returns the features attached to the taint propagated from root.
func (m *Model) AttachToPropagations(root access.Root) domain.FeatureSet {
	return m.attachToPropagations.Get(root)
}

// AddFeaturesToArguments returns the features added to every value flowing through the argument root, even
// when no propagation is inferred.
func (m *Model) AddFeaturesToArguments(root access.Root) domain.FeatureSet {
	return m.addFeaturesToArguments.Get(root)
}

// HasAddFeaturesToArguments returns true when features are added to some argument.
func (m *Model) HasAddFeaturesToArguments() bool { return !m.addFeaturesToArguments.IsBottom() }

// AddInlineAsGetter joins getter into the inline-as-getter value of the model. The path of the getter must be
// rooted at an argument.
func (m *Model) AddInlineAsGetter(getter domain.AccessPathConstant) error {
	if ap, ok := getter.Get(); ok {
		if err := m.checkAccessPathArgument("inline_as_getter", ap); err != nil {
			return err
		}
	}
	m.inlineAsGetter = m.inlineAsGetter.Join(getter)
	return nil
}

// AddInlineAsSetter joins setter into the inline-as-setter value of the model. The target and the value of the
// setter must be rooted at arguments.
func (m *Model) AddInlineAsSetter(setter domain.SetterAccessPathConstant) error {
	if s, ok := setter.Get(); ok {
		if err := m.checkAccessPathArgument("inline_as_setter", s.Target); err != nil {
			return err
		}
		if err := m.checkAccessPathArgument("inline_as_setter", s.Value); err != nil {
			return err
		}
	}
	m.inlineAsSetter = m.inlineAsSetter.Join(setter)
	return nil
}
