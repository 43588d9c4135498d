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
	"strings"

	"github.com/awslabs/argot-taint-models/internal/formatutil"
)

func (m *Model) String() string {
	var b strings.Builder
	b.WriteString("Model(method=")
	if sig := m.signature(); sig != "" {
		b.WriteString(sig)
	} else {
		b.WriteString("<template>")
	}
	write := func(name string, empty bool, value interface{ String() string }) {
		if !empty {
			b.WriteString(",\n  " + name + "=" + value.String())
		}
	}
	write("modes", m.modes.IsNormal(), m.modes)
	write("freeze", m.frozen == 0, m.frozen)
	for _, c := range allCategories {
		t := m.tree(c)
		write(c.String(), t.IsBottom(), t)
	}
	write("global_sanitizers", m.globalSanitizers.IsBottom(), m.globalSanitizers)
	write("port_sanitizers", m.portSanitizers.IsBottom(), m.portSanitizers)
	for _, a := range m.attachments() {
		write(a.name, a.partition.IsBottom(), a.partition)
	}
	write("inline_as_getter", m.inlineAsGetter.IsBottom(), m.inlineAsGetter)
	write("inline_as_setter", m.inlineAsSetter.IsBottom(), m.inlineAsSetter)
	write("model_generators", m.modelGenerators.IsEmpty(), m.modelGenerators)
	write("issues", m.issues.IsBottom(), m.issues)
	b.WriteString(")")
	return b.String()
}

// Summary returns a one line description of m for terminal output.
func (m *Model) Summary() string {
	name := m.signature()
	if name == "" {
		name = "<template>"
	}
	var parts []string
	for _, c := range allCategories {
		if n := len(m.tree(c).Elements()); n > 0 {
			parts = append(parts, c.String()+":"+formatutil.Cyan(n))
		}
	}
	if n := m.issues.Len(); n > 0 {
		parts = append(parts, "issues:"+formatutil.Red(n))
	}
	return formatutil.Bold(formatutil.Sanitize(name)) + " " + strings.Join(parts, " ")
}
