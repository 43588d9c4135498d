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

// Package tools contains utility types and functions for Argot tool frontends.
package tools

import (
	"flag"
	"fmt"
	"os"

	"github.com/awslabs/argot-taint-models/analysis"
	"github.com/awslabs/argot-taint-models/analysis/config"
	"github.com/awslabs/argot-taint-models/analysis/taint/model"
	"golang.org/x/tools/go/ssa"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
	Lenient    *bool
	Program    *string
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config,
// -verbose, -lenient and -program but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	lenient := cmd.Bool("lenient", false, "drop invalid facts instead of rejecting the model")
	program := cmd.String("program", "", "package pattern of the program the models are bound to")
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
		Lenient:    lenient,
		Program:    program,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `argot check ...`, "check" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
	Lenient    bool
	Program    string
}

// Parse parses args and returns the parsed flags.
func (f UnparsedCommonFlags) Parse(args []string, cmdUsage string) (CommonFlags, error) {
	SetUsage(f.FlagSet, cmdUsage)
	if err := f.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", f.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:    f.FlagSet,
		ConfigPath: *f.ConfigPath,
		Verbose:    *f.Verbose,
		Lenient:    *f.Lenient,
		Program:    *f.Program,
	}, nil
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	return NewUnparsedCommonFlags(name).Parse(args, cmdUsage)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath. The default configuration is returned when no path is given.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefault(), nil
	}
	config.SetGlobalConfig(configPath)
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
	}

	return cfg, nil
}

// NewContext returns the model context for the flags: the configuration is loaded and overridden by the command
// line, and the methods of the program are registered when a program is given.
func NewContext(flags CommonFlags) (*model.Context, error) {
	cfg, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	if flags.Lenient {
		cfg.LenientModels = true
	}
	ctx := model.NewContext(cfg)
	if flags.Program != "" {
		program, err := analysis.LoadProgram(nil, "", ssa.InstantiateGenerics, []string{flags.Program}, ctx.Logger)
		if err != nil {
			return nil, fmt.Errorf("could not load program: %v", err)
		}
		ctx.Methods = program.Methods
	}
	return ctx, nil
}

// ModelFiles returns the model files given on the command line followed by those of the configuration.
func ModelFiles(flags CommonFlags, cfg *config.Config) []string {
	return append(append([]string(nil), flags.FlagSet.Args()...), cfg.ModelFiles...)
}
