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

package analysis

import (
	"fmt"
	"go/token"
	"os"
	"sort"

	"github.com/awslabs/argot-taint-models/analysis/config"
	"github.com/awslabs/argot-taint-models/analysis/methods"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// PkgLoadMode is the loading mode used to bind models to functions. Syntax is not needed once the program has
// been type checked and built.
const PkgLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes |
	packages.NeedModule

// LoadedProgram represents a loaded program.
type LoadedProgram struct {
	// Program is the SSA version of the program.
	Program *ssa.Program
	// Packages is a list of the packages that were requested.
	Packages []*packages.Package
	// Methods contains every function of the program, by signature.
	Methods *methods.Registry
}

// LoadProgram loads a program on platform "platform" using the buildmode provided and the args, and registers
// its functions. To understand how to specify the args, look at the documentation of packages.Load.
func LoadProgram(cfg *packages.Config,
	platform string,
	buildmode ssa.BuilderMode,
	args []string,
	logger *config.LogGroup) (LoadedProgram, error) {

	if cfg == nil {
		cfg = &packages.Config{
			Mode:  PkgLoadMode,
			Tests: false,
			Fset:  token.NewFileSet(),
		}
	}

	if platform != "" {
		cfg.Env = append(os.Environ(), fmt.Sprintf("GOOS=%s", platform))
	}

	// load, parse and type check the given packages
	initialPackages, err := packages.Load(cfg, args...)
	if err != nil {
		return LoadedProgram{}, fmt.Errorf("failed to load packages: %v", err)
	}

	if len(initialPackages) == 0 {
		return LoadedProgram{}, fmt.Errorf("no packages")
	}

	if packages.PrintErrors(initialPackages) > 0 {
		return LoadedProgram{}, fmt.Errorf("errors found, exiting")
	}

	// Construct SSA for all the packages we have loaded
	program, ssaPackages := ssautil.AllPackages(initialPackages, buildmode)

	for i, p := range ssaPackages {
		if p == nil {
			return LoadedProgram{}, fmt.Errorf("cannot build SSA for package %s", initialPackages[i])
		}
	}

	// Build SSA for entire program
	program.Build()

	registry := methods.NewRegistry()
	n := registry.AddProgram(program)
	logger.Infof("loaded %d packages, %d functions", len(initialPackages), n)

	return LoadedProgram{Program: program, Packages: initialPackages, Methods: registry}, nil
}

// PackagePaths returns the sorted paths of the packages that were requested.
func (p LoadedProgram) PackagePaths() []string {
	paths := make([]string, 0, len(p.Packages))
	for _, pkg := range p.Packages {
		paths = append(paths, pkg.PkgPath)
	}
	sort.Strings(paths)
	return paths
}
