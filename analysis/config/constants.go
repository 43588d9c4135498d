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

package config

const (
	// DefaultMaxInputPathDepth bounds the access path length of sink and propagation input ports
	DefaultMaxInputPathDepth = 4
	// DefaultMaxOutputPathDepth bounds the access path length of generation ports
	DefaultMaxOutputPathDepth = 4
	// DefaultMaxTreeHeight is the height at which taint trees are collapsed when a model is approximated
	DefaultMaxTreeHeight = 4
	// DefaultMaxTreeLeaves is the maximum number of leaves of a taint tree after approximation
	DefaultMaxTreeLeaves = 20
	// DefaultMaxSourceSinkDistance is the number of call hops after which a source or sink frame is dropped
	DefaultMaxSourceSinkDistance = 8
	// DefaultMaxAccessPathDepth is the deepest access path kept when collapsing invalid paths
	DefaultMaxAccessPathDepth = 6
	// DefaultWideningThreshold is the number of fixpoint iterations on one method before models get approximated
	DefaultWideningThreshold = 10
)
