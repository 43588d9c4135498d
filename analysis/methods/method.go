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

// Package methods provides the handles models use to refer to the methods of the analyzed program, and a
// registry to resolve method signatures found in model documents.
package methods

import (
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// A Method is a handle to a method of the analyzed program. Models only use the signature, the number of
// parameters and the position of the method.
type Method interface {
	// Signature uniquely identifies the method.
	Signature() string
	// NumberOfParameters counts the parameters of the method, including the receiver.
	NumberOfParameters() int
	// IsStatic returns true for functions without receiver.
	IsStatic() bool
	// Position returns the position of the declaration of the method, if known.
	Position() token.Position
}

// A Descriptor is a method known only by its signature and arity, e.g. a method of a library whose code is not
// loaded.
type Descriptor struct {
	Name       string
	Parameters int
	Static     bool
	Pos        token.Position
}

// Signature returns the name of the descriptor.
func (d *Descriptor) Signature() string { return d.Name }

// NumberOfParameters returns the number of parameters of the descriptor.
func (d *Descriptor) NumberOfParameters() int { return d.Parameters }

// IsStatic returns true if the method has no receiver.
func (d *Descriptor) IsStatic() bool { return d.Static }

// Position returns the position of the descriptor.
func (d *Descriptor) Position() token.Position { return d.Pos }

func (d *Descriptor) String() string { return d.Name }

// SSAMethod is a method of a program loaded in SSA form.
type SSAMethod struct {
	Function *ssa.Function
}

// NewSSAMethod returns the handle of function f.
func NewSSAMethod(f *ssa.Function) *SSAMethod {
	return &SSAMethod{Function: f}
}

// Signature returns the fully qualified name of the function, e.g. (*net/http.Client).Do
func (m *SSAMethod) Signature() string {
	return m.Function.String()
}

// NumberOfParameters returns the number of parameters of the function, including the receiver.
func (m *SSAMethod) NumberOfParameters() int {
	n := m.Function.Signature.Params().Len()
	if m.Function.Signature.Recv() != nil {
		n++
	}
	return n
}

// IsStatic returns true for functions without receiver.
func (m *SSAMethod) IsStatic() bool {
	return m.Function.Signature.Recv() == nil
}

// ReturnsVoid returns true when the function has no result.
func (m *SSAMethod) ReturnsVoid() bool {
	return m.Function.Signature.Results().Len() == 0
}

// Position returns the position of the function in the program.
func (m *SSAMethod) Position() token.Position {
	if m.Function.Prog == nil {
		return token.Position{}
	}
	return m.Function.Prog.Fset.Position(m.Function.Pos())
}

// ParameterTypes returns the types of the parameters of the function, including the receiver.
func (m *SSAMethod) ParameterTypes() []types.Type {
	var res []types.Type
	if recv := m.Function.Signature.Recv(); recv != nil {
		res = append(res, recv.Type())
	}
	params := m.Function.Signature.Params()
	for i := 0; i < params.Len(); i++ {
		res = append(res, params.At(i).Type())
	}
	return res
}

func (m *SSAMethod) String() string { return m.Signature() }

// ShortName returns the signature without the package path, for display.
func ShortName(m Method) string {
	sig := m.Signature()
	if i := strings.LastIndex(sig, "/"); i >= 0 {
		return sig[i+1:]
	}
	return sig
}
