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
	"errors"
	"fmt"
	"go/types"
	"strings"
	"testing"

	"github.com/awslabs/argot-taint-models/analysis/config"
	"github.com/awslabs/argot-taint-models/analysis/methods"
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
	"github.com/awslabs/argot-taint-models/internal/funcutil"
)

func newTestContext() *Context {
	cfg := config.NewDefault()
	cfg.LogLevel = int(config.ErrLevel)
	return NewContext(cfg)
}

func port(t *testing.T, s string) access.AccessPath {
	t.Helper()
	ap, err := access.FromString(s)
	if err != nil {
		t.Fatalf("invalid port %q: %v", s, err)
	}
	return ap
}

func leafConfig(kind string, features ...string) domain.TaintConfig {
	return domain.LeafConfig(domain.NamedKind(kind), features...)
}

func leafTaint(kinds ...string) domain.Taint {
	var t domain.Taint
	for _, k := range kinds {
		t.Add(domain.NewFrame(leafConfig(k)))
	}
	return t
}

func mustNew(t *testing.T, method methods.Method, ctx *Context, facts Facts) *Model {
	t.Helper()
	m, err := New(method, ctx, facts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestNewRejectsInvalidPorts(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 2, Static: true}
	tests := []struct {
		name     string
		facts    Facts
		category string
		port     string
	}{
		{
			name:     "sink out of arity",
			facts:    Facts{Sinks: []PortTaintConfig{{Port: port(t, "Argument(5)"), Config: leafConfig("SQL")}}},
			category: "sinks",
			port:     "Argument(5)",
		},
		{
			name: "parameter source on return",
			facts: Facts{ParameterSources: []PortTaintConfig{
				{Port: port(t, "Return"), Config: leafConfig("UserInput")}}},
			category: "parameter_sources",
			port:     "Return",
		},
		{
			name: "generation on call effect port",
			facts: Facts{Generations: []PortTaintConfig{
				{Port: port(t, "call-chain"), Config: leafConfig("UserInput")}}},
			category: "generations",
			port:     "call-chain",
		},
		{
			name: "call effect sink on argument",
			facts: Facts{CallEffectSinks: []PortTaintConfig{
				{Port: port(t, "Argument(0)"), Config: leafConfig("Exec")}}},
			category: "call_effect_sinks",
			port:     "Argument(0)",
		},
		{
			name: "propagation to missing argument",
			facts: Facts{Propagations: []domain.PropagationConfig{
				{Input: port(t, "Argument(0)"), Output: port(t, "Argument(3)")}}},
			category: "propagations",
			port:     "Argument(3)",
		},
		{
			name: "propagation from return",
			facts: Facts{Propagations: []domain.PropagationConfig{
				{Input: port(t, "Return"), Output: port(t, "Argument(0)")}}},
			category: "propagations",
			port:     "Return",
		},
		{
			name:     "attachment out of arity",
			facts:    Facts{AttachToSinks: []PortFeatures{{Port: access.Argument(2), Features: domain.NewStringSet("x")}}},
			category: "attach_to_sinks",
			port:     "Argument(2)",
		},
		{
			name:     "getter on return",
			facts:    Facts{InlineAsGetter: domain.Constant(port(t, "Return.x"))},
			category: "inline_as_getter",
			port:     "Return.x",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := New(method, ctx, test.facts)
			if m != nil {
				t.Errorf("no model should be returned on error")
			}
			var consistencyErr *ConsistencyError
			if !errors.As(err, &consistencyErr) {
				t.Fatalf("expected a consistency error, got %v", err)
			}
			if consistencyErr.Category != test.category || consistencyErr.Port != test.port {
				t.Errorf("expected an error on %s port %s, got %v", test.category, test.port, err)
			}
			if consistencyErr.Method != "pkg.f" {
				t.Errorf("error should name the method: %v", err)
			}
		})
	}
}

func TestNewRejectsEmptySanitizer(t *testing.T) {
	ctx := newTestContext()
	_, err := New(nil, ctx, Facts{GlobalSanitizers: []domain.Sanitizer{
		{Kind: domain.SanitizeSinks, Kinds: domain.OnlyKinds()}}})
	var docErr *MalformedDocumentError
	if !errors.As(err, &docErr) || docErr.Field != "kinds" {
		t.Errorf("expected an error on the kinds of the sanitizer, got %v", err)
	}
}

func TestNewLenientDropsInvalidFacts(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 2, Static: true}
	m := NewLenient(method, ctx, Facts{
		Sinks: []PortTaintConfig{
			{Port: port(t, "Argument(5)"), Config: leafConfig("SQL")},
			{Port: port(t, "Argument(1)"), Config: leafConfig("SQL")},
		},
	})
	if len(ctx.Diagnostics()) != 1 {
		t.Errorf("expected one diagnostic, got %v", ctx.Diagnostics())
	}
	if got := m.Sinks().Elements(); len(got) != 1 || got[0].Port.String() != "Argument(1)" {
		t.Errorf("valid sink should be kept, got %s", m.Sinks())
	}
}

func TestDeclaredFramesHaveOrigin(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}
	m := mustNew(t, method, ctx, Facts{
		Generations: []PortTaintConfig{{Port: port(t, "Return"), Config: leafConfig("UserInput")}},
	})
	frames := m.Generations().Read(port(t, "Return")).Frames()
	if len(frames) != 1 || !frames[0].Origins().Equal(domain.NewStringSet("pkg.f")) {
		t.Errorf("expected a frame with origin pkg.f, got %v", frames)
	}
}

func latticeModels(t *testing.T, ctx *Context) (*Model, *Model, *Model) {
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 3}
	a := mustNew(t, method, ctx, Facts{
		Generations: []PortTaintConfig{{Port: port(t, "Return"), Config: leafConfig("UserInput", "a")}},
	})
	b := mustNew(t, method, ctx, Facts{
		Modes:            NewModes(SkipAnalysis),
		Sinks:            []PortTaintConfig{{Port: port(t, "Argument(1).x"), Config: leafConfig("SQL")}},
		GlobalSanitizers: []domain.Sanitizer{{Kind: domain.SanitizeSources, Kinds: domain.OnlyKinds("Other")}},
		ModelGenerators:  []string{"b"},
	})
	c := mustNew(t, method, ctx, Facts{
		Generations:     []PortTaintConfig{{Port: port(t, "Return"), Config: leafConfig("UserInput", "c")}},
		AttachToSinks:   []PortFeatures{{Port: access.Argument(1), Features: domain.NewStringSet("attached")}},
		InlineAsGetter:  domain.Constant(port(t, "Argument(0).x")),
		ModelGenerators: []string{"c"},
	})
	return a, b, c
}

func join(ms ...*Model) *Model {
	res := ms[0].Clone()
	for _, m := range ms[1:] {
		res.JoinWith(m)
	}
	return res
}

func TestLatticeLaws(t *testing.T) {
	ctx := newTestContext()
	a, b, c := latticeModels(t, ctx)

	for _, m := range []*Model{a, b, c} {
		if !m.Leq(m) {
			t.Errorf("leq should be reflexive for %s", m)
		}
		if !join(m, m).Equal(m) {
			t.Errorf("join should be idempotent for %s", m)
		}
	}
	if !join(a, b).Equal(join(b, a)) {
		t.Errorf("join should be commutative")
	}
	if !join(join(a, b), c).Equal(join(a, join(b, c))) {
		t.Errorf("join should be associative")
	}
	ab := join(a, b)
	if !a.Leq(ab) || !b.Leq(ab) {
		t.Errorf("join should be an upper bound")
	}
	if ab.Leq(a) {
		t.Errorf("join should be strictly greater than a")
	}
	if !join(ab, b).Equal(ab) {
		t.Errorf("joining a smaller model should not change the model")
	}
	if a.Leq(c) || c.Leq(a) {
		t.Errorf("models with different user features should not be comparable")
	}
	if !Empty().Leq(a) || !Empty().IsEmpty() || a.IsEmpty() {
		t.Errorf("the empty model should be bottom")
	}
}

func TestJoinDifferentMethodsPanics(t *testing.T) {
	ctx := newTestContext()
	f := mustNew(t, &methods.Descriptor{Name: "f"}, ctx, Facts{})
	g := mustNew(t, &methods.Descriptor{Name: "g"}, ctx, Facts{})
	defer func() {
		if recover() == nil {
			t.Errorf("joining models of different methods should panic")
		}
	}()
	f.JoinWith(g)
}

func TestFrozenCategoriesAreNotInferred(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 2, Static: true}
	m := mustNew(t, method, ctx, Facts{
		Frozen:       NewFrozen(FreezeGenerations, FreezePropagations),
		Generations:  []PortTaintConfig{{Port: port(t, "Return"), Config: leafConfig("UserInput")}},
		Propagations: []domain.PropagationConfig{{Input: port(t, "Argument(0)"), Output: port(t, "Return")}},
	})
	generations := m.Generations().Clone()
	propagations := m.Propagations().Clone()

	if err := m.AddInferredGenerations(port(t, "Return"), leafTaint("Other"), domain.FeatureMayAlwaysSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	propagation := domain.NewTaint(domain.NewFrame(domain.TaintConfig{
		Kind: domain.LocalReturnKind(), OutputPaths: domain.NewStringSet("")}))
	if err := m.AddInferredPropagations(port(t, "Argument(1)"), propagation, domain.FeatureMayAlwaysSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Generations().Equal(generations) || !m.Propagations().Equal(propagations) {
		t.Errorf("frozen categories should not change, got %s", m)
	}

	if err := m.AddInferredSinks(port(t, "Argument(1)"), leafTaint("SQL"), domain.FeatureMayAlwaysSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Sinks().IsBottom() {
		t.Errorf("sinks are not frozen and should be inferred")
	}
}

func TestAddInferredChecksPort(t *testing.T) {
	ctx := newTestContext()
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}, ctx, Facts{})
	err := m.AddInferredSinks(port(t, "Argument(3)"), leafTaint("SQL"), domain.FeatureMayAlwaysSet{})
	var consistencyErr *ConsistencyError
	if !errors.As(err, &consistencyErr) {
		t.Errorf("expected a consistency error, got %v", err)
	}
	if !m.Sinks().IsBottom() {
		t.Errorf("no sink should be added on error")
	}
}

func TestAddInferredPropagationKindInGenerationsPanics(t *testing.T) {
	ctx := newTestContext()
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}, ctx, Facts{})
	propagation := domain.NewTaint(domain.NewFrame(domain.TaintConfig{Kind: domain.LocalReturnKind()}))
	defer func() {
		if recover() == nil {
			t.Errorf("adding a propagation frame to the generations should panic")
		}
	}()
	_ = m.AddInferredGenerations(port(t, "Return"), propagation, domain.FeatureMayAlwaysSet{})
}

func TestAddInferredInvalidFramePanics(t *testing.T) {
	ctx := newTestContext()
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}, ctx, Facts{})
	position := funcutil.Some(domain.Position{Path: "x.go", Line: 1})

	valid := domain.NewTaint(domain.NewFrame(domain.TaintConfig{
		Kind:         domain.NamedKind("UserInput"),
		CalleePort:   port(t, "Return"),
		Callee:       "pkg.g",
		CallPosition: position,
		Distance:     1,
	}))
	if err := m.AddInferredGenerations(port(t, "Return"), valid, domain.FeatureMayAlwaysSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := []domain.TaintConfig{
		{Kind: domain.NamedKind("UserInput"), CallPosition: position, Distance: -3},
		{Kind: domain.NamedKind("UserInput"), CalleePort: port(t, "Return"), Distance: 1},
		{Kind: domain.NamedKind("UserInput"), CalleePort: port(t, "Return"), Callee: "pkg.g", Distance: 1},
	}
	for _, cfg := range invalid {
		t.Run(domain.NewFrame(cfg).String(), func(t *testing.T) {
			before := m.Clone()
			defer func() {
				if recover() == nil {
					t.Errorf("adding an invalid frame should panic")
				}
				if !m.Equal(before) {
					t.Errorf("the model should not change, got %s", m)
				}
			}()
			_ = m.AddInferredGenerations(port(t, "Return"), domain.NewTaint(domain.NewFrame(cfg)),
				domain.FeatureMayAlwaysSet{})
		})
	}
}

func TestAddInferredNeverDecreases(t *testing.T) {
	ctx := newTestContext()
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}, ctx, Facts{})
	widening := domain.MakeAlways(domain.NewStringSet("widened"))
	for i := 0; i < 12; i++ {
		before := m.Clone()
		p := port(t, "Return"+strings.Repeat(".a", i))
		if err := m.AddInferredGenerations(p, leafTaint(fmt.Sprintf("K%d", i%4)), widening); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !before.Generations().Leq(m.Generations()) {
			t.Fatalf("generations decreased when adding %s:\nbefore %s\nafter %s", p, before.Generations(),
				m.Generations())
		}
		again := m.Clone()
		if err := m.AddInferredGenerations(p, leafTaint(fmt.Sprintf("K%d", i%4)), widening); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.Equal(again) {
			t.Errorf("adding the same taint twice should not change the model, got %s", m.Generations())
		}
	}
}

func TestAddInferredTruncatesPorts(t *testing.T) {
	ctx := newTestContext()
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}, ctx, Facts{})
	widening := domain.MakeAlways(domain.NewStringSet("widened"))
	if err := m.AddInferredGenerations(port(t, "Return.a.b.c.d.e"), leafTaint("UserInput"), widening); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elems := m.Generations().Elements()
	if len(elems) != 1 || elems[0].Port.String() != "Return.a.b.c.d" {
		t.Fatalf("port should be truncated to the maximum output depth, got %s", m.Generations())
	}
	for _, f := range elems[0].Taint.Frames() {
		if !f.Features().Always().Contains("widened") {
			t.Errorf("truncated taint should have the widening features, got %s", f)
		}
	}

	if err := m.AddInferredGenerations(port(t, "Return.a"), leafTaint("Other"), widening); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range m.Generations().ReadExact(port(t, "Return.a")).Frames() {
		if f.Features().May().Contains("widened") {
			t.Errorf("taint that is not truncated should not have the widening features, got %s", f)
		}
	}
}

func TestSanitizers(t *testing.T) {
	ctx := newTestContext()
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 3, Static: true}, ctx, Facts{
		GlobalSanitizers: []domain.Sanitizer{{Kind: domain.SanitizeSources, Kinds: domain.OnlyKinds("A")}},
		PortSanitizers: []PortSanitizer{
			{Port: access.Argument(1), Sanitizer: domain.Sanitizer{Kind: domain.SanitizeSources,
				Kinds: domain.OnlyKinds("B")}},
			{Port: access.Argument(2), Sanitizer: domain.Sanitizer{Kind: domain.SanitizeSinks,
				Kinds: domain.AllKinds()}},
		},
	})
	taint := leafTaint("A", "B", "C")

	onArg1 := m.ApplySourceSinkSanitizers(domain.SanitizeSources, taint, access.Argument(1))
	if kinds := onArg1.Kinds(); len(kinds) != 1 || kinds[0] != domain.NamedKind("C") {
		t.Errorf("expected only C to remain, got %s", onArg1)
	}
	if twice := m.ApplySourceSinkSanitizers(domain.SanitizeSources, onArg1, access.Argument(1)); !twice.Equal(onArg1) {
		t.Errorf("applying sanitizers should be idempotent")
	}
	if onArg0 := m.ApplySourceSinkSanitizers(domain.SanitizeSources, taint, access.Argument(0)); onArg0.Len() != 2 {
		t.Errorf("expected B and C to remain, got %s", onArg0)
	}
	if sinks := m.ApplySourceSinkSanitizers(domain.SanitizeSinks, taint, access.Argument(1)); !sinks.Equal(taint) {
		t.Errorf("source sanitizers should not apply to sinks, got %s", sinks)
	}

	if err := m.AddInferredGenerations(port(t, "Argument(1)"), taint, domain.FeatureMayAlwaysSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Generations().Read(port(t, "Argument(1)")); got.Len() != 1 {
		t.Errorf("sanitized taint should not be added, got %s", got)
	}
	if err := m.AddInferredSinks(port(t, "Argument(2)"), taint, domain.FeatureMayAlwaysSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Sinks().IsBottom() {
		t.Errorf("every sink on Argument(2) is sanitized, got %s", m.Sinks())
	}
	if m.HasGlobalPropagationSanitizer() {
		t.Errorf("no propagation sanitizer expected")
	}
}

func TestTaintInTaintOutModes(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "(*pkg.T).f", Parameters: 2}
	m := mustNew(t, method, ctx, Facts{
		Modes: NewModes(TaintInTaintOut, TaintInTaintThis, AddViaObscureFeature),
	})
	fromArg1 := m.Propagations().ReadExact(port(t, "Argument(1)"))
	kinds := fromArg1.Kinds()
	if len(kinds) != 2 {
		t.Fatalf("expected propagations to the return value and the receiver, got %s", fromArg1)
	}
	for _, f := range fromArg1.Frames() {
		if !f.UserFeatures().Contains(ViaObscureFeature) {
			t.Errorf("propagation should have the via-obscure feature, got %s", f)
		}
	}
	if got := m.Propagations().ReadExact(port(t, "Argument(0)")); got.Len() != 1 {
		t.Errorf("the receiver should only propagate to the return value, got %s", got)
	}

	template := mustNew(t, nil, ctx, Facts{Modes: NewModes(TaintInTaintOut)})
	if !template.Propagations().IsBottom() || !template.IsTaintInTaintOut() {
		t.Errorf("templates only record the mode, got %s", template)
	}
}

func TestAtCallsite(t *testing.T) {
	ctx := newTestContext()
	callee := &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}
	caller := &methods.Descriptor{Name: "pkg.main", Static: true}
	m := mustNew(t, callee, ctx, Facts{
		Generations:     []PortTaintConfig{{Port: port(t, "Return"), Config: leafConfig("UserInput")}},
		ModelGenerators: []string{"sources"},
	})
	before := m.Clone()
	position := domain.Position{Path: "main.go", Line: 12}

	res := m.AtCallsite(caller, position, ctx, nil, nil)

	if !m.Equal(before) {
		t.Errorf("the callee model should not change")
	}
	elems := res.Generations().Elements()
	if len(elems) != 1 || elems[0].Port.String() != "Return" {
		t.Fatalf("expected a generation on the return value, got %s", res.Generations())
	}
	frames := elems[0].Taint.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one frame, got %s", elems[0].Taint)
	}
	f := frames[0]
	if f.Kind() != domain.NamedKind("UserInput") || f.Callee() != "pkg.f" || f.CalleePort().String() != "Return" {
		t.Errorf("unexpected frame %s", f)
	}
	if pos, ok := f.CallPosition().Get(); !ok || pos != position {
		t.Errorf("expected call position %s, got %s", position, f.CallPosition())
	}
	if f.Distance() != 1 || f.CallKind() != domain.Origin {
		t.Errorf("unexpected distance or call kind in %s", f)
	}
	if !f.Origins().Contains("pkg.f") {
		t.Errorf("origins should be kept, got %s", f.Origins())
	}
	if !res.ModelGenerators().Contains("sources") {
		t.Errorf("model generators should be kept, got %s", res.ModelGenerators())
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if _, err := FromJSON(callee, data, ctx, true); err != nil {
		t.Errorf("the model at the call site should be a valid document: %v", err)
	}
}

func TestAtCallsiteOnTemplatePanics(t *testing.T) {
	ctx := newTestContext()
	template := mustNew(t, nil, ctx, Facts{
		Generations: []PortTaintConfig{{Port: port(t, "Return"), Config: leafConfig("UserInput")}},
	})
	defer func() {
		if recover() == nil {
			t.Errorf("a template has no callee and cannot be instantiated at a call site")
		}
	}()
	template.AtCallsite(nil, domain.Position{Path: "f.go", Line: 3}, ctx, nil, nil)
}

func TestAtCallsiteFeaturesAndDistance(t *testing.T) {
	ctx := newTestContext()
	callee := &methods.Descriptor{Name: "pkg.exec", Parameters: 3, Static: true}
	sink := leafConfig("Exec", "user")
	sink.ViaTypeOf = domain.NewRootSet(access.Argument(0), access.Argument(2))
	sink.ViaValueOf = domain.NewRootSet(access.Argument(1))
	far := domain.TaintConfig{
		Kind:         domain.NamedKind("Exec"),
		CalleePort:   port(t, "Argument(0)"),
		Callee:       "pkg.inner",
		CallPosition: funcutil.Some(domain.Position{Path: "exec.go", Line: 1}),
		Distance:     ctx.Config.Heuristics.MaxSourceSinkDistance,
	}
	m := mustNew(t, callee, ctx, Facts{
		Sinks: []PortTaintConfig{
			{Port: port(t, "Argument(1)"), Config: sink},
			{Port: port(t, "Argument(2)"), Config: far},
		},
		AttachToSinks: []PortFeatures{{Port: access.Argument(1), Features: domain.NewStringSet("attached")}},
	})

	res := m.AtCallsite(nil, domain.Position{Path: "main.go", Line: 3}, ctx,
		[]types.Type{types.Typ[types.String]},
		[]funcutil.Optional[string]{funcutil.None[string](), funcutil.Some("ls")})

	if got := res.Sinks().Read(port(t, "Argument(2)")); !got.IsBottom() {
		t.Errorf("frames at the maximum distance should be dropped, got %s", got)
	}
	frames := res.Sinks().Read(port(t, "Argument(1)")).Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one sink frame, got %v", frames)
	}
	expected := domain.NewStringSet("attached", "user", "via-type:string", "via-type:unknown", "via-value:ls")
	if got := frames[0].Features().Always(); !got.Equal(expected) {
		t.Errorf("expected features %s, got %s", expected, got)
	}
}

func TestInstantiate(t *testing.T) {
	ctx := newTestContext()
	template := mustNew(t, nil, ctx, Facts{
		Sinks:     []PortTaintConfig{{Port: port(t, "Argument(2)"), Config: leafConfig("SQL")}},
		Frozen:    NewFrozen(FreezeSinks),
		Modes:     NewModes(TaintInTaintOut),
		AttachToSources: []PortFeatures{{Port: access.Return(), Features: domain.NewStringSet("x")}},
	})
	if _, err := template.Instantiate(&methods.Descriptor{Name: "pkg.small", Parameters: 2}, ctx); err == nil {
		t.Errorf("instantiating on a method with too few parameters should fail")
	}
	m, err := template.Instantiate(&methods.Descriptor{Name: "pkg.g", Parameters: 3, Static: true}, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig := m.Method().Value().Signature(); sig != "pkg.g" {
		t.Errorf("expected model of pkg.g, got %s", sig)
	}
	frames := m.Sinks().Read(port(t, "Argument(2)")).Frames()
	if len(frames) != 1 || !frames[0].Origins().Contains("pkg.g") {
		t.Errorf("instantiated frames should have the method as origin, got %v", frames)
	}
	if !m.IsFrozen(FreezeSinks) || m.Propagations().IsBottom() {
		t.Errorf("modes and freeze kinds should be kept, got %s", m)
	}
	if !m.AttachToSources(access.Return()).Contains("x") {
		t.Errorf("attachments should be kept, got %s", m)
	}
	if template.Method().IsSome() {
		t.Errorf("the template should not be modified")
	}
}

func TestInitialModelForIteration(t *testing.T) {
	ctx := newTestContext()
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 2, Static: true}, ctx, Facts{
		Frozen:           NewFrozen(FreezeGenerations),
		Generations:      []PortTaintConfig{{Port: port(t, "Return"), Config: leafConfig("UserInput")}},
		Sinks:            []PortTaintConfig{{Port: port(t, "Argument(1)"), Config: leafConfig("SQL")}},
		GlobalSanitizers: []domain.Sanitizer{{Kind: domain.SanitizeSinks, Kinds: domain.OnlyKinds("XSS")}},
		ModelGenerators:  []string{"gen"},
		Issues: []domain.Issue{{Sources: leafTaint("UserInput"), Sinks: leafTaint("SQL"), Rule: "r",
			Position: domain.Position{Path: "a.go", Line: 1}}},
	})
	initial := m.InitialModelForIteration()
	if !initial.Generations().Equal(m.Generations()) {
		t.Errorf("frozen generations should be kept")
	}
	if !initial.Sinks().IsBottom() || !initial.Issues().IsBottom() {
		t.Errorf("inferred facts should be reset, got %s", initial)
	}
	if !initial.GlobalSanitizers().Equal(m.GlobalSanitizers()) || !initial.ModelGenerators().Equal(m.ModelGenerators()) {
		t.Errorf("sanitizers and generators should be kept, got %s", initial)
	}
	if !initial.Leq(m) {
		t.Errorf("the initial model should be less than the model")
	}
}

func TestApproximate(t *testing.T) {
	ctx := newTestContext()
	ctx.Config.Heuristics.MaxTreeHeight = 1

	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}, ctx, Facts{})
	for _, p := range []string{"Return.a.b", "Return.c"} {
		if err := m.AddInferredGenerations(port(t, p), leafTaint("K"+p), domain.FeatureMayAlwaysSet{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	before := m.Clone()
	m.Approximate(domain.MakeAlways(domain.NewStringSet("widened")))

	if got := m.Generations().ReadExact(port(t, "Return.a")); got.Len() != 1 {
		t.Errorf("Return.a.b should be collapsed into Return.a, got %s", m.Generations())
	}
	if got := m.Generations().ReadExact(port(t, "Return.c")); got.Len() != 1 {
		t.Errorf("Return.c should be kept, got %s", m.Generations())
	}
	if len(m.Generations().Elements()) != 2 {
		t.Errorf("unexpected generations %s", m.Generations())
	}
	if before.Equal(m) {
		t.Errorf("approximation should have changed the model")
	}
}

func TestInferenceConverges(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}
	widening := domain.MakeAlways(domain.NewStringSet("widened"))
	var ports []string
	for i := 0; i < 30; i++ {
		ports = append(ports, fmt.Sprintf("Return.f%d", i))
	}
	for i := 1; i < 8; i++ {
		ports = append(ports, "Return"+strings.Repeat(".a", i))
	}
	kinds := []string{"UserInput", "Intent", "Cookie"}
	period := len(ports) * len(kinds)
	limit := ctx.Config.Heuristics.WideningThreshold + 4*period

	current := mustNew(t, method, ctx, Facts{})
	// The inputs repeat with the period, so a whole period without growth is a fixpoint.
	stable := 0
	for i := 0; stable < period; i++ {
		if i > limit {
			t.Fatalf("no fixpoint after %d iterations, generations %s", i, current.Generations())
		}
		inferred := mustNew(t, method, ctx, Facts{})
		p := port(t, ports[i%len(ports)])
		kind := kinds[(i/len(ports))%len(kinds)]
		if err := inferred.AddInferredGenerations(p, leafTaint(kind), widening); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		next := current.Clone()
		next.JoinWith(inferred)
		if !current.Leq(next) || !inferred.Leq(next) {
			t.Fatalf("join is not an upper bound at iteration %d", i)
		}
		if ctx.ShouldWiden(i) {
			next.Approximate(widening)
		}
		if next.Leq(current) {
			stable++
		} else {
			stable = 0
		}
		current = next
	}

	root := current.Generations().Read(port(t, "Return"))
	if len(root.Kinds()) != len(kinds) || !current.Generations().Read(port(t, "Return.f0")).Leq(root) {
		t.Errorf("every kind should be collapsed into Return, got %s", current.Generations())
	}
	if leaves := len(current.Generations().Elements()); leaves > ctx.Config.Heuristics.MaxTreeLeaves {
		t.Errorf("the fixpoint should have at most %d ports, got %d", ctx.Config.Heuristics.MaxTreeLeaves, leaves)
	}
}

func TestModelsKeepTheBoundsOfTheirContext(t *testing.T) {
	shallow := newTestContext()
	shallow.Config.Heuristics.MaxOutputPathDepth = 1
	deep := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}

	a := mustNew(t, method, shallow, Facts{})
	b := mustNew(t, method, deep, Facts{})
	c := a.Clone()
	for _, m := range []*Model{a, b, c} {
		if err := m.AddInferredGenerations(port(t, "Return.a.b.c"), leafTaint("UserInput"),
			domain.FeatureMayAlwaysSet{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	expected := map[*Model]string{a: "Return.a", b: "Return.a.b.c", c: "Return.a"}
	for m, p := range expected {
		if elems := m.Generations().Elements(); len(elems) != 1 || elems[0].Port.String() != p {
			t.Errorf("expected a generation on %s, got %s", p, m.Generations())
		}
	}

	h := config.DefaultHeuristics()
	h.MaxOutputPathDepth = 2
	SetHeuristics(h)
	defer SetHeuristics(config.DefaultHeuristics())
	empty := Empty()
	if err := empty.AddInferredGenerations(port(t, "Return.a.b.c"), leafTaint("UserInput"),
		domain.FeatureMayAlwaysSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elems := empty.Generations().Elements(); len(elems) != 1 || elems[0].Port.String() != "Return.a.b" {
		t.Errorf("models built without a context should use the package bounds, got %s", empty.Generations())
	}
}

func TestCollapseInvalidPaths(t *testing.T) {
	ctx := newTestContext()
	ctx.Config.Heuristics.MaxAccessPathDepth = 1
	m := mustNew(t, &methods.Descriptor{Name: "pkg.f", Parameters: 1, Static: true}, ctx, Facts{
		Sinks: []PortTaintConfig{{Port: port(t, "Argument(0).a.b"), Config: leafConfig("SQL")}},
	})
	m.CollapseInvalidPaths(ctx)
	frames := m.Sinks().ReadExact(port(t, "Argument(0).a")).Frames()
	if len(frames) != 1 || !frames[0].Features().Always().Contains(CollapseFeature) {
		t.Errorf("expected a collapsed sink on Argument(0).a, got %s", m.Sinks())
	}
}

func roundTripModel(t *testing.T, ctx *Context, method methods.Method) *Model {
	setter := domain.SetterAccessPath{Target: port(t, "Argument(0).x"), Value: port(t, "Argument(1)")}
	sink := leafConfig("SQL")
	sink.ViaTypeOf = domain.NewRootSet(access.Argument(1))
	return mustNew(t, method, ctx, Facts{
		Modes:             NewModes(TaintInTaintOut),
		Frozen:            NewFrozen(FreezeSinks),
		Generations:       []PortTaintConfig{{Port: port(t, "Return.x"), Config: leafConfig("UserInput", "a")}},
		ParameterSources:  []PortTaintConfig{{Port: port(t, "Argument(1)"), Config: leafConfig("Param")}},
		Sinks:             []PortTaintConfig{{Port: port(t, "Argument(2)"), Config: sink}},
		CallEffectSources: []PortTaintConfig{{Port: port(t, "call-chain"), Config: leafConfig("Chain")}},
		CallEffectSinks:   []PortTaintConfig{{Port: port(t, "call-intent"), Config: leafConfig("Intent")}},
		Propagations: []domain.PropagationConfig{{
			Input:            port(t, "Argument(1)"),
			Output:           port(t, "Argument(0).y"),
			InferredFeatures: domain.NewFeatureMayAlwaysSet(domain.NewStringSet("may"), domain.NewStringSet()),
		}},
		GlobalSanitizers: []domain.Sanitizer{{Kind: domain.SanitizeSources, Kinds: domain.OnlyKinds("A")}},
		PortSanitizers: []PortSanitizer{{Port: access.Argument(1),
			Sanitizer: domain.Sanitizer{Kind: domain.SanitizeSinks, Kinds: domain.AllKinds()}}},
		AttachToSources:        []PortFeatures{{Port: access.Return(), Features: domain.NewStringSet("attached")}},
		AddFeaturesToArguments: []PortFeatures{{Port: access.Argument(1), Features: domain.NewStringSet("arg")}},
		InlineAsGetter:         domain.Constant(port(t, "Argument(0).x")),
		InlineAsSetter:         domain.Constant(setter),
		ModelGenerators:        []string{"gen"},
		Issues: []domain.Issue{{Sources: leafTaint("UserInput"), Sinks: leafTaint("SQL"), Rule: "r",
			Callee: "pkg.sink", Position: domain.Position{Path: "a.go", Line: 7}}},
	})
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 3}
	ctx.Methods.Register(method)
	m := roundTripModel(t, ctx, method)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	parsed, err := FromJSON(nil, data, ctx, true)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", data, err)
	}
	if !parsed.Equal(m) {
		t.Errorf("round trip changed the model:\n%s\n%s", m, parsed)
	}
	if parsed.Frozen() != m.Frozen() {
		t.Errorf("round trip changed the frozen categories: %s != %s", parsed.Frozen(), m.Frozen())
	}
	if parsed.Method().Value() != method {
		t.Errorf("the method should be resolved through the registry")
	}
}

func TestToJSONWithPosition(t *testing.T) {
	ctx := newTestContext()
	method := &methods.Descriptor{Name: "pkg.f", Parameters: 1}
	method.Pos.Filename = "f.go"
	method.Pos.Line = 3
	m := mustNew(t, method, ctx, Facts{})
	out := m.ToJSONWithPosition(ctx)
	if out["position"] != (domain.Position{Path: "f.go", Line: 3}) {
		t.Errorf("unexpected position %v", out["position"])
	}
	if _, ok := m.ToJSON()["position"]; ok {
		t.Errorf("ToJSON should not emit positions")
	}
}

func TestFromJSONErrors(t *testing.T) {
	ctx := newTestContext()
	tests := []struct {
		name     string
		document string
		strict   bool
		field    string
	}{
		{"unexpected member", `{"method": "pkg.f", "unknown": 1}`, true, "unknown"},
		{"bad mode", `{"modes": ["fast"]}`, false, "modes"},
		{"missing kind", `{"sinks": [{"port": "Argument(0)"}]}`, false, "kind"},
		{"bad port", `{"sinks": [{"port": "Argument(x)", "kind": "K"}]}`, false, "port"},
		{"bad setter", `{"inline_as_setter": "bottom"}`, false, "inline_as_setter"},
		{"generations not an array", `{"generations": {}}`, false, "generations"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FromJSON(nil, []byte(test.document), ctx, test.strict)
			var docErr *MalformedDocumentError
			if !errors.As(err, &docErr) || docErr.Field != test.field {
				t.Errorf("expected an error on field %s, got %v", test.field, err)
			}
		})
	}
	if _, err := FromJSON(nil, []byte(`{"method": "pkg.f", "unknown": 1}`), ctx, false); err != nil {
		t.Errorf("unexpected members should be ignored when not checked: %v", err)
	}
}

func TestFromJSONLenient(t *testing.T) {
	ctx := newTestContext()
	ctx.Config.LenientModels = true
	ctx.Methods.Register(&methods.Descriptor{Name: "pkg.f", Parameters: 1})
	m, err := FromJSON(nil, []byte(`{
		"method": "pkg.f",
		"sinks": [{"port": "Argument(4)", "kind": "SQL"}, {"port": "Argument(0)", "kind": "SQL"}]
	}`), ctx, true)
	if err != nil {
		t.Fatalf("lenient parsing should not fail: %v", err)
	}
	if len(m.Sinks().Elements()) != 1 || len(ctx.Diagnostics()) != 1 {
		t.Errorf("expected the invalid sink to be dropped, got %s and %v", m.Sinks(), ctx.Diagnostics())
	}
}

func TestReadModelFile(t *testing.T) {
	ctx := newTestContext()
	models, err := ReadModelFile("testdata/models.yaml", ctx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Method().IsSome() {
		t.Errorf("methods that are not registered should give templates")
	}
	if !models[0].ModelGenerators().Contains("sources") {
		t.Errorf("unexpected model generators %s", models[0].ModelGenerators())
	}
	query, err := models[1].Instantiate(&methods.Descriptor{Name: "example.Query", Parameters: 2, Static: true}, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query.Sinks().Read(port(t, "Argument(1)")).IsBottom() || query.Propagations().IsBottom() {
		t.Errorf("unexpected model %s", query)
	}

	ctx.Methods.Register(&methods.Descriptor{Name: "example.Query", Parameters: 2})
	_, err = ReadModelFile("testdata/bad-port.json", ctx, true)
	var consistencyErr *ConsistencyError
	if !errors.As(err, &consistencyErr) || consistencyErr.Category != "parameter_sources" {
		t.Errorf("expected a consistency error on the parameter sources, got %v", err)
	}
}
