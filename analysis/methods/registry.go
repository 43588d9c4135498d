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

package methods

import (
	"sync"

	"github.com/awslabs/argot-taint-models/internal/funcutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// A Registry maps signatures to methods. It is safe for concurrent use.
type Registry struct {
	mutex   sync.RWMutex
	methods map[string]Method
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{methods: map[string]Method{}}
}

// Register adds m to the registry, replacing any method with the same signature.
func (r *Registry) Register(m Method) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.methods[m.Signature()] = m
}

// Get returns the method with signature sig.
func (r *Registry) Get(sig string) funcutil.Optional[Method] {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if m, ok := r.methods[sig]; ok {
		return funcutil.Some(m)
	}
	return funcutil.None[Method]()
}

// Len returns the number of registered methods.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.methods)
}

// Signatures returns the sorted signatures of the registered methods.
func (r *Registry) Signatures() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	sigs := maps.Keys(r.methods)
	slices.Sort(sigs)
	return sigs
}

// AddProgram registers every function of the program that has a body or is declared in a package, and returns
// the number of functions registered.
func (r *Registry) AddProgram(prog *ssa.Program) int {
	count := 0
	for f := range ssautil.AllFunctions(prog) {
		if f.Pkg == nil && f.Blocks == nil {
			continue
		}
		r.Register(NewSSAMethod(f))
		count++
	}
	return count
}
