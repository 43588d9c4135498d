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
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
)

// CollapseFeature is added to the taint of paths merged by CollapseInvalidPaths.
const CollapseFeature = "via-collapse"

// Approximate widens every taint tree of m: paths longer than the maximum tree height are collapsed, then trees
// with more leaves than the maximum are collapsed to their roots. The widening features are added to the
// collapsed taint.
func (m *Model) Approximate(widening domain.FeatureMayAlwaysSet) {
	h := m.bounds()
	for _, c := range allCategories {
		t := m.tree(c)
		t.CollapseDeeperThan(h.MaxTreeHeight, widening)
		t.LimitLeaves(h.MaxTreeLeaves, widening)
	}
}

// CollapseInvalidPaths merges the taint of every path longer than the maximum access path depth of the
// configuration into its ancestor at that depth.
func (m *Model) CollapseInvalidPaths(ctx *Context) {
	features := domain.MakeAlways(domain.NewStringSet(CollapseFeature))
	for _, c := range allCategories {
		m.tree(c).CollapseDeeperThan(ctx.Config.Heuristics.MaxAccessPathDepth, features)
	}
}
