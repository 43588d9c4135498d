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
	"fmt"

	"github.com/awslabs/argot-taint-models/analysis/config"
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
)

// category is one of the taint trees of a model.
type category uint8

const (
	generationsCategory category = iota
	parameterSourcesCategory
	sinksCategory
	callEffectSourcesCategory
	callEffectSinksCategory
	propagationsCategory
)

var allCategories = []category{
	generationsCategory,
	parameterSourcesCategory,
	sinksCategory,
	callEffectSourcesCategory,
	callEffectSinksCategory,
	propagationsCategory,
}

// String returns the name of the category, which is also its member name in model documents.
func (c category) String() string {
	switch c {
	case generationsCategory:
		return "generations"
	case parameterSourcesCategory:
		return "parameter_sources"
	case sinksCategory:
		return "sinks"
	case callEffectSourcesCategory:
		return "call_effect_sources"
	case callEffectSinksCategory:
		return "call_effect_sinks"
	default:
		return "propagations"
	}
}

func (c category) freezeKind() FreezeKind {
	switch c {
	case generationsCategory:
		return FreezeGenerations
	case parameterSourcesCategory, callEffectSourcesCategory:
		return FreezeParameterSources
	case sinksCategory, callEffectSinksCategory:
		return FreezeSinks
	default:
		return FreezePropagations
	}
}

func (c category) isCallEffect() bool {
	return c == callEffectSourcesCategory || c == callEffectSinksCategory
}

// maxPortDepth returns the maximum length of the path of the ports of the category.
func (c category) maxPortDepth(h config.Heuristics) int {
	switch c {
	case generationsCategory, callEffectSourcesCategory:
		return h.MaxOutputPathDepth
	default:
		return h.MaxInputPathDepth
	}
}

func (m *Model) tree(c category) *domain.TaintTree {
	switch c {
	case generationsCategory:
		return &m.generations
	case parameterSourcesCategory:
		return &m.parameterSources
	case sinksCategory:
		return &m.sinks
	case callEffectSourcesCategory:
		return &m.callEffectSources
	case callEffectSinksCategory:
		return &m.callEffectSinks
	default:
		return &m.propagations
	}
}

func (m *Model) consistencyError(c fmt.Stringer, port fmt.Stringer, reason string) *ConsistencyError {
	return &ConsistencyError{Method: m.signature(), Category: c.String(), Port: port.String(), Reason: reason}
}

type categoryName string

func (n categoryName) String() string { return string(n) }

// checkRoot checks that root is a port of the method: an argument within the arity of the method or the return
// value. Templates accept any argument.
func (m *Model) checkRoot(c fmt.Stringer, root access.Root) error {
	switch {
	case root.IsReturn():
		if method, ok := m.method.Get(); ok && returnsVoid(method) {
			return m.consistencyError(c, root, "the method does not return a value")
		}
		return nil
	case root.IsArgument():
		if method, ok := m.method.Get(); ok && root.ParameterPosition() >= method.NumberOfParameters() {
			return m.consistencyError(c, root,
				fmt.Sprintf("the method has %d parameters", method.NumberOfParameters()))
		}
		return nil
	default:
		return m.consistencyError(c, root, "expected `Argument(x)` or `Return`")
	}
}

// checkPort checks that port is a valid port for a fact of category c.
func (m *Model) checkPort(c category, port access.AccessPath) error {
	root := port.Root()
	if c.isCallEffect() {
		if !root.IsCallEffect() {
			return m.consistencyError(c, port, "expected a call effect port")
		}
		return nil
	}
	if c == propagationsCategory && !root.IsArgument() {
		return m.consistencyError(c, port, "propagation inputs must be arguments")
	}
	if c == parameterSourcesCategory && root.IsReturn() {
		return m.consistencyError(c, port, "parameter sources cannot be on the return value")
	}
	return m.checkRoot(c, root)
}

// checkConfig checks that config is a valid frame for category c.
func (m *Model) checkConfig(c category, port access.AccessPath, config domain.TaintConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if c == propagationsCategory {
		if !config.Kind.IsPropagation() {
			return m.consistencyError(c, port, "propagations must have a propagation kind, got "+config.Kind.String())
		}
		return m.checkRoot(c, config.Kind.PropagationOutput())
	}
	if config.Kind.IsPropagation() {
		return m.consistencyError(c, port, "unexpected propagation kind "+config.Kind.String())
	}
	return nil
}

// checkAccessPathArgument checks that ap is rooted at an argument of the method.
func (m *Model) checkAccessPathArgument(name string, ap access.AccessPath) error {
	if !ap.Root().IsArgument() {
		return m.consistencyError(categoryName(name), ap, "expected an argument")
	}
	return m.checkRoot(categoryName(name), ap.Root())
}
