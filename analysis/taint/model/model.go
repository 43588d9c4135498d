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
	"github.com/awslabs/argot-taint-models/analysis/config"
	"github.com/awslabs/argot-taint-models/analysis/methods"
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
	"github.com/awslabs/argot-taint-models/internal/funcutil"
)

// ViaObscureFeature is the user feature of the propagations added by the taint-in-taint-out modes when the
// add-via-obscure-feature mode is set.
const ViaObscureFeature = "via-obscure"

// A Model is the summary of a method for the taint analysis: the taint it generates, the taint it receives from
// its parameters, the sinks it calls, the propagations from its inputs to its outputs, its sanitizers and the
// features attached to its ports.
//
// A model may be bound to a method or be a template, which is bound later with Instantiate.
//
// A Model is not safe for concurrent mutation. Models read concurrently (e.g. by AtCallsite) must not be mutated.
type Model struct {
	method funcutil.Optional[methods.Method]
	modes  Modes
	frozen Frozen

	generations       domain.TaintTree
	parameterSources  domain.TaintTree
	sinks             domain.TaintTree
	callEffectSources domain.TaintTree
	callEffectSinks   domain.TaintTree
	propagations      domain.TaintTree

	globalSanitizers       domain.SanitizerSet
	portSanitizers         domain.SanitizerPartition
	attachToSources        domain.FeaturePartition
	attachToSinks          domain.FeaturePartition
	attachToPropagations   domain.FeaturePartition
	addFeaturesToArguments domain.FeaturePartition

	inlineAsGetter domain.AccessPathConstant
	inlineAsSetter domain.SetterAccessPathConstant

	modelGenerators domain.NameSet
	issues          domain.IssueSet

	// heuristics are the bounds of the context the model was built with, nil for the package heuristics
	heuristics *config.Heuristics
}

// A PortTaintConfig is a frame declared at a port.
type PortTaintConfig struct {
	Port   access.AccessPath
	Config domain.TaintConfig
}

// A PortSanitizer is a sanitizer that only applies to one port.
type PortSanitizer struct {
	Port      access.Root
	Sanitizer domain.Sanitizer
}

// PortFeatures are features attached to a port.
type PortFeatures struct {
	Port     access.Root
	Features domain.FeatureSet
}

// Facts are the initial content of a model. Every fact is checked when the model is constructed.
type Facts struct {
	Modes  Modes
	Frozen Frozen

	Generations       []PortTaintConfig
	ParameterSources  []PortTaintConfig
	Sinks             []PortTaintConfig
	CallEffectSources []PortTaintConfig
	CallEffectSinks   []PortTaintConfig
	Propagations      []domain.PropagationConfig
	// PropagationFrames are propagations given as frames of the propagation tree, indexed by input port
	PropagationFrames []PortTaintConfig

	GlobalSanitizers       []domain.Sanitizer
	PortSanitizers         []PortSanitizer
	AttachToSources        []PortFeatures
	AttachToSinks          []PortFeatures
	AttachToPropagations   []PortFeatures
	AddFeaturesToArguments []PortFeatures

	InlineAsGetter domain.AccessPathConstant
	InlineAsSetter domain.SetterAccessPathConstant

	ModelGenerators []string
	Issues          []domain.Issue
}

// Empty returns the empty template model.
func Empty() *Model {
	return &Model{}
}

// New returns the model of method built from facts. A nil method gives a template model. New fails with a
// *ConsistencyError (or a *MalformedDocumentError for invalid frames) on the first invalid fact.
func New(method methods.Method, ctx *Context, facts Facts) (*Model, error) {
	return build(method, ctx, facts, func(err error) error { return err })
}

// NewLenient returns the model of method built from facts, dropping the invalid facts. Every dropped fact is
// recorded as a diagnostic of ctx and logged as a warning.
func NewLenient(method methods.Method, ctx *Context, facts Facts) *Model {
	m, _ := build(method, ctx, facts, func(err error) error {
		if err == nil {
			return nil
		}
		ctx.AddDiagnostic(err)
		ctx.Logger.Warnf("dropping invalid fact: %v", err)
		return nil
	})
	return m
}

// build adds every fact to a new model. onError decides whether an invalid fact stops the construction, by
// returning a non-nil error.
func build(method methods.Method, ctx *Context, facts Facts, onError func(error) error) (*Model, error) {
	m := &Model{}
	if method != nil {
		m.method = funcutil.Some(method)
	}
	if ctx != nil && ctx.Config != nil {
		h := ctx.Config.Heuristics
		m.heuristics = &h
	}
	for _, mode := range facts.Modes.Elements() {
		if err := onError(m.AddMode(mode, ctx)); err != nil {
			return nil, err
		}
	}

	declared := []struct {
		category category
		facts    []PortTaintConfig
	}{
		{generationsCategory, facts.Generations},
		{parameterSourcesCategory, facts.ParameterSources},
		{sinksCategory, facts.Sinks},
		{callEffectSourcesCategory, facts.CallEffectSources},
		{callEffectSinksCategory, facts.CallEffectSinks},
		{propagationsCategory, facts.PropagationFrames},
	}
	for _, d := range declared {
		for _, fact := range d.facts {
			if err := onError(m.addDeclared(d.category, fact.Port, fact.Config)); err != nil {
				return nil, err
			}
		}
	}
	for _, p := range facts.Propagations {
		if err := onError(m.AddPropagation(p)); err != nil {
			return nil, err
		}
	}

	for _, s := range facts.GlobalSanitizers {
		if err := onError(m.AddGlobalSanitizer(s)); err != nil {
			return nil, err
		}
	}
	for _, s := range facts.PortSanitizers {
		if err := onError(m.AddPortSanitizer(s.Sanitizer, s.Port)); err != nil {
			return nil, err
		}
	}
	attachments := []struct {
		add   func(domain.FeatureSet, access.Root) error
		facts []PortFeatures
	}{
		{m.AddAttachToSources, facts.AttachToSources},
		{m.AddAttachToSinks, facts.AttachToSinks},
		{m.AddAttachToPropagations, facts.AttachToPropagations},
		{m.AddAddFeaturesToArguments, facts.AddFeaturesToArguments},
	}
	for _, a := range attachments {
		for _, fact := range a.facts {
			if err := onError(a.add(fact.Features, fact.Port)); err != nil {
				return nil, err
			}
		}
	}

	if err := onError(m.AddInlineAsGetter(facts.InlineAsGetter)); err != nil {
		return nil, err
	}
	if err := onError(m.AddInlineAsSetter(facts.InlineAsSetter)); err != nil {
		return nil, err
	}
	for _, g := range facts.ModelGenerators {
		m.AddModelGenerator(g)
	}
	for _, issue := range facts.Issues {
		m.AddIssue(issue)
	}

	// Freezing last so that the facts above are added to frozen categories.
	m.frozen = facts.Frozen
	return m, nil
}

// Method returns the method the model is bound to, none for templates.
func (m *Model) Method() funcutil.Optional[methods.Method] { return m.method }

// signature returns the signature of the method of the model, empty for templates.
func (m *Model) signature() string {
	if method, ok := m.method.Get(); ok {
		return method.Signature()
	}
	return ""
}

// bounds returns the heuristics bounding the trees of the model.
func (m *Model) bounds() config.Heuristics {
	if m.heuristics != nil {
		return *m.heuristics
	}
	return CurrentHeuristics()
}

// Modes returns the modes of the model.
func (m *Model) Modes() Modes { return m.modes }

// Frozen returns the frozen categories of the model.
func (m *Model) Frozen() Frozen { return m.frozen }

// IsFrozen returns true when the category k is frozen.
func (m *Model) IsFrozen(k FreezeKind) bool { return m.frozen.Has(k) }

// Freeze freezes the categories of k.
func (m *Model) Freeze(k Frozen) { m.frozen = m.frozen.Union(k) }

// SkipAnalysis returns true when the code of the method must not be analyzed.
func (m *Model) SkipAnalysis() bool { return m.modes.Has(SkipAnalysis) }

// AddViaObscureFeature returns true when the via-obscure feature is added to taint flowing through the method.
func (m *Model) AddViaObscureFeature() bool { return m.modes.Has(AddViaObscureFeature) }

// IsTaintInTaintOut returns true when the taint of the arguments flows to the return value.
func (m *Model) IsTaintInTaintOut() bool { return m.modes.Has(TaintInTaintOut) }

// IsTaintInTaintThis returns true when the taint of the arguments flows to the receiver.
func (m *Model) IsTaintInTaintThis() bool { return m.modes.Has(TaintInTaintThis) }

// NoJoinVirtualOverrides returns true when the models of overrides are not joined at call sites.
func (m *Model) NoJoinVirtualOverrides() bool { return m.modes.Has(NoJoinVirtualOverrides) }

// NoCollapseOnPropagation returns true when access paths are kept when propagations are applied.
func (m *Model) NoCollapseOnPropagation() bool { return m.modes.Has(NoCollapseOnPropagation) }

// AliasMemoryLocationOnInvoke returns true when the result of a call aliases its arguments.
func (m *Model) AliasMemoryLocationOnInvoke() bool { return m.modes.Has(AliasMemoryLocationOnInvoke) }

// StrongWriteOnPropagation returns true when propagations overwrite their output.
func (m *Model) StrongWriteOnPropagation() bool { return m.modes.Has(StrongWriteOnPropagation) }

// Generations returns the taint generated by the method. The tree must not be modified.
func (m *Model) Generations() domain.TaintTree { return m.generations }

// ParameterSources returns the taint the method receives from its parameters. The tree must not be modified.
func (m *Model) ParameterSources() domain.TaintTree { return m.parameterSources }

// Sinks returns the sinks of the method. The tree must not be modified.
func (m *Model) Sinks() domain.TaintTree { return m.sinks }

// CallEffectSources returns the taint generated by calling the method. The tree must not be modified.
func (m *Model) CallEffectSources() domain.TaintTree { return m.callEffectSources }

// CallEffectSinks returns the sinks reached by calling the method. The tree must not be modified.
func (m *Model) CallEffectSinks() domain.TaintTree { return m.callEffectSinks }

// Propagations returns the propagations of the method, indexed by input port. The tree must not be modified.
func (m *Model) Propagations() domain.TaintTree { return m.propagations }

// GlobalSanitizers returns the sanitizers applying to the whole method.
func (m *Model) GlobalSanitizers() domain.SanitizerSet { return m.globalSanitizers }

// PortSanitizers returns the sanitizers of each port.
func (m *Model) PortSanitizers() domain.SanitizerPartition { return m.portSanitizers }

// InlineAsGetter returns the access path the method can be inlined as, when it is a getter.
func (m *Model) InlineAsGetter() domain.AccessPathConstant { return m.inlineAsGetter }

// InlineAsSetter returns the setter the method can be inlined as.
func (m *Model) InlineAsSetter() domain.SetterAccessPathConstant { return m.inlineAsSetter }

// ModelGenerators returns the names of the generators that produced facts of the model.
func (m *Model) ModelGenerators() domain.NameSet { return m.modelGenerators }

// Issues returns the issues found in the method.
func (m *Model) Issues() domain.IssueSet { return m.issues }

// AddModelGenerator records that the generator called name contributed to the model.
func (m *Model) AddModelGenerator(name string) {
	m.modelGenerators = m.modelGenerators.Add(name)
}

// AddModelGeneratorIfEmpty records the generator called name if no generator is recorded yet.
func (m *Model) AddModelGeneratorIfEmpty(name string) {
	if m.modelGenerators.IsEmpty() {
		m.AddModelGenerator(name)
	}
}

// AddIssue adds an issue found in the method.
func (m *Model) AddIssue(issue domain.Issue) {
	m.issues.Add(issue)
}

// AddMode adds mode to the model. On a bound model, taint-in-taint-out adds a propagation from every argument to
// the return value and taint-in-taint-this adds a propagation from every argument to the receiver.
func (m *Model) AddMode(mode Mode, ctx *Context) error {
	m.modes = m.modes.Union(NewModes(mode))
	method, ok := m.method.Get()
	if !ok {
		return nil
	}
	var userFeatures domain.FeatureSet
	if m.modes.Has(AddViaObscureFeature) {
		userFeatures = domain.NewStringSet(ViaObscureFeature)
	}
	if (mode == TaintInTaintOut || (mode == AddViaObscureFeature && m.modes.Has(TaintInTaintOut))) &&
		!returnsVoid(method) {
		for i := 0; i < method.NumberOfParameters(); i++ {
			err := m.AddPropagation(domain.PropagationConfig{
				Input:        access.NewAccessPath(access.Argument(i)),
				Output:       access.NewAccessPath(access.Return()),
				UserFeatures: userFeatures,
			})
			if err != nil {
				return err
			}
		}
	}
	if (mode == TaintInTaintThis || (mode == AddViaObscureFeature && m.modes.Has(TaintInTaintThis))) &&
		!method.IsStatic() {
		for i := 1; i < method.NumberOfParameters(); i++ {
			err := m.AddPropagation(domain.PropagationConfig{
				Input:        access.NewAccessPath(access.Argument(i)),
				Output:       access.NewAccessPath(access.Receiver()),
				UserFeatures: userFeatures,
			})
			if err != nil {
				return err
			}
		}
	}
	if ctx != nil {
		ctx.Logger.Tracef("added mode %s to model of %s", mode, m.signature())
	}
	return nil
}

func returnsVoid(method methods.Method) bool {
	v, ok := method.(interface{ ReturnsVoid() bool })
	return ok && v.ReturnsVoid()
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	c := *m
	c.generations = m.generations.Clone()
	c.parameterSources = m.parameterSources.Clone()
	c.sinks = m.sinks.Clone()
	c.callEffectSources = m.callEffectSources.Clone()
	c.callEffectSinks = m.callEffectSinks.Clone()
	c.propagations = m.propagations.Clone()
	c.portSanitizers = m.portSanitizers.Clone()
	c.attachToSources = m.attachToSources.Clone()
	c.attachToSinks = m.attachToSinks.Clone()
	c.attachToPropagations = m.attachToPropagations.Clone()
	c.addFeaturesToArguments = m.addFeaturesToArguments.Clone()
	c.issues = m.issues.Clone()
	return &c
}

// Instantiate returns a copy of the template m bound to method. Every fact is checked again against method.
func (m *Model) Instantiate(method methods.Method, ctx *Context) (*Model, error) {
	res, err := New(method, ctx, Facts{Modes: m.modes})
	if err != nil {
		return nil, err
	}
	for _, c := range allCategories {
		for _, elem := range m.tree(c).Elements() {
			for _, frame := range elem.Taint.Frames() {
				if err := res.addDeclared(c, elem.Port, frame.Config()); err != nil {
					return nil, err
				}
			}
		}
	}
	res.globalSanitizers = m.globalSanitizers
	partitions := []struct {
		add  func(domain.FeatureSet, access.Root) error
		from domain.FeaturePartition
	}{
		{res.AddAttachToSources, m.attachToSources},
		{res.AddAttachToSinks, m.attachToSinks},
		{res.AddAttachToPropagations, m.attachToPropagations},
		{res.AddAddFeaturesToArguments, m.addFeaturesToArguments},
	}
	for _, p := range partitions {
		for _, root := range p.from.Roots() {
			if err := p.add(p.from.Get(root), root); err != nil {
				return nil, err
			}
		}
	}
	for _, root := range m.portSanitizers.Roots() {
		if err := res.AddPortSanitizers(m.portSanitizers.Get(root), root); err != nil {
			return nil, err
		}
	}
	if err := res.AddInlineAsGetter(m.inlineAsGetter); err != nil {
		return nil, err
	}
	if err := res.AddInlineAsSetter(m.inlineAsSetter); err != nil {
		return nil, err
	}
	res.modelGenerators = m.modelGenerators
	res.issues = m.issues.Clone()
	res.frozen = m.frozen
	return res, nil
}

// InitialModelForIteration returns the model a fixpoint iteration on the method starts from: m without the facts
// inferred by the analysis. Frozen categories are kept.
func (m *Model) InitialModelForIteration() *Model {
	res := &Model{
		method:                 m.method,
		modes:                  m.modes,
		frozen:                 m.frozen,
		globalSanitizers:       m.globalSanitizers,
		portSanitizers:         m.portSanitizers.Clone(),
		attachToSources:        m.attachToSources.Clone(),
		attachToSinks:          m.attachToSinks.Clone(),
		attachToPropagations:   m.attachToPropagations.Clone(),
		addFeaturesToArguments: m.addFeaturesToArguments.Clone(),
		inlineAsGetter:         m.inlineAsGetter,
		inlineAsSetter:         m.inlineAsSetter,
		modelGenerators:        m.modelGenerators,
		heuristics:             m.heuristics,
	}
	for _, c := range allCategories {
		if m.IsFrozen(c.freezeKind()) {
			*res.tree(c) = m.tree(c).Clone()
		}
	}
	return res
}
