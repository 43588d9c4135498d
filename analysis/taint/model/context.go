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
	"sync"

	"github.com/awslabs/argot-taint-models/analysis/config"
	"github.com/awslabs/argot-taint-models/analysis/methods"
)

// A Context holds what models need from the analysis: the configuration, the logger, the registry used to
// resolve method signatures and the diagnostics recorded when invalid facts are dropped.
//
// A Context is safe for concurrent use.
type Context struct {
	Config  *config.Config
	Logger  *config.LogGroup
	Methods *methods.Registry

	mutex       sync.Mutex
	diagnostics []error
}

// NewContext returns a context for the configuration cfg, with an empty method registry. Models built with the
// context are bounded by the heuristics of cfg.
func NewContext(cfg *config.Config) *Context {
	return &Context{
		Config:  cfg,
		Logger:  config.NewLogGroup(cfg),
		Methods: methods.NewRegistry(),
	}
}

// ShouldWiden returns true when a fixpoint iteration numbered iteration, starting at 0, must approximate the model
// it computes.
func (c *Context) ShouldWiden(iteration int) bool {
	return iteration >= c.Config.Heuristics.WideningThreshold
}

// AddDiagnostic records an error that did not stop the analysis.
func (c *Context) AddDiagnostic(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.diagnostics = append(c.diagnostics, err)
}

// Diagnostics returns the errors recorded so far.
func (c *Context) Diagnostics() []error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]error(nil), c.diagnostics...)
}
