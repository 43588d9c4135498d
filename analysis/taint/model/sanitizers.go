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
	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/analysis/taint/domain"
)

// ApplySourceSinkSanitizers returns taint without the frames removed by a global sanitizer of kind, or by a
// sanitizer of kind on root. kind must be SanitizeSources or SanitizeSinks.
func (m *Model) ApplySourceSinkSanitizers(kind domain.SanitizerKind, taint domain.Taint,
	root access.Root) domain.Taint {
	if kind != domain.SanitizeSources && kind != domain.SanitizeSinks {
		invariantViolation("cannot apply %s sanitizers to sources or sinks", kind)
	}
	port := m.portSanitizers.Get(root)
	if m.globalSanitizers.IsBottom() && port.IsBottom() {
		return taint
	}
	return taint.Filter(func(f domain.Frame) bool {
		return !m.globalSanitizers.Sanitizes(kind, f.Kind()) && !port.Sanitizes(kind, f.Kind())
	})
}

// HasGlobalPropagationSanitizer returns true when no taint propagates through the method.
func (m *Model) HasGlobalPropagationSanitizer() bool {
	return m.globalSanitizers.SanitizesAll(domain.SanitizePropagations)
}
