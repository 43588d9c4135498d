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
	"strconv"
	"strings"

	"github.com/awslabs/argot-taint-models/analysis/taint/access"
)

// A Kind is the kind of a frame. Sources and sinks have named kinds such as "UserInput". Propagation frames have
// a propagation kind naming the port the taint flows to: LocalReturn or LocalArgument(i).
//
// Kind is comparable.
type Kind struct {
	name        string
	propagation bool
	output      access.Root
}

// NamedKind returns the source or sink kind called name.
func NamedKind(name string) Kind { return Kind{name: name} }

// LocalReturnKind is the kind of propagations to the return value.
func LocalReturnKind() Kind { return Kind{propagation: true, output: access.Return()} }

// LocalArgumentKind is the kind of propagations to the argument i.
func LocalArgumentKind(i int) Kind { return Kind{propagation: true, output: access.Argument(i)} }

// PropagationKindTo returns the propagation kind for flows into root, and false if taint cannot flow into root.
func PropagationKindTo(root access.Root) (Kind, bool) {
	switch {
	case root.IsReturn():
		return LocalReturnKind(), true
	case root.IsArgument():
		return LocalArgumentKind(root.ParameterPosition()), true
	default:
		return Kind{}, false
	}
}

// IsPropagation returns true for propagation kinds.
func (k Kind) IsPropagation() bool { return k.propagation }

// PropagationOutput returns the root a propagation kind flows into. Only meaningful for propagation kinds.
func (k Kind) PropagationOutput() access.Root { return k.output }

func (k Kind) String() string {
	if !k.propagation {
		return k.name
	}
	if k.output.IsReturn() {
		return "LocalReturn"
	}
	return "LocalArgument(" + strconv.Itoa(k.output.ParameterPosition()) + ")"
}

// KindFromString returns the kind represented by s; propagation kinds are recognized by their names.
func KindFromString(s string) Kind {
	if s == "LocalReturn" {
		return LocalReturnKind()
	}
	if inner, ok := strings.CutPrefix(s, "LocalArgument("); ok {
		if digits, ok := strings.CutSuffix(inner, ")"); ok {
			if n, err := strconv.Atoi(digits); err == nil && n >= 0 {
				return LocalArgumentKind(n)
			}
		}
	}
	return NamedKind(s)
}
