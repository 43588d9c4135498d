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
)

var (
	heuristicsMutex sync.RWMutex
	heuristics      = config.DefaultHeuristics()
)

// SetHeuristics sets the bounds of the models built without a context, such as Empty.
func SetHeuristics(h config.Heuristics) {
	heuristicsMutex.Lock()
	defer heuristicsMutex.Unlock()
	heuristics = h
}

// CurrentHeuristics returns the bounds of the models built without a context.
func CurrentHeuristics() config.Heuristics {
	heuristicsMutex.RLock()
	defer heuristicsMutex.RUnlock()
	return heuristics
}
