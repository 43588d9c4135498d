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

package access

import (
	"fmt"
	"strings"
)

// ElementKind is the kind of a path element
type ElementKind uint8

const (
	Field    ElementKind = iota // A Field element accesses a named field, written ".name"
	Index                       // An Index element accesses a constant index or key, written "[key]"
	AnyIndex                    // An AnyIndex element accesses any index, written "[*]"
)

// A PathElement is one access in a path. PathElement is comparable.
type PathElement struct {
	kind ElementKind
	name string
}

// FieldElement returns the element accessing field name.
func FieldElement(name string) PathElement { return PathElement{kind: Field, name: name} }

// IndexElement returns the element accessing the constant index or key.
func IndexElement(key string) PathElement { return PathElement{kind: Index, name: key} }

// AnyIndexElement returns the element accessing an unknown index.
func AnyIndexElement() PathElement { return PathElement{kind: AnyIndex} }

// Kind returns the kind of the element.
func (e PathElement) Kind() ElementKind { return e.kind }

// Name returns the field name or index key of the element; empty for AnyIndex.
func (e PathElement) Name() string { return e.name }

func (e PathElement) String() string {
	switch e.kind {
	case Field:
		return "." + e.name
	case Index:
		return "[" + e.name + "]"
	default:
		return "[*]"
	}
}

// A Path is a sequence of accesses from a root. The empty path designates the root itself.
type Path []PathElement

// Len returns the number of accesses in the path.
func (p Path) Len() int { return len(p) }

// Truncate returns the prefix of p of length at most n. The result does not share memory with p.
func (p Path) Truncate(n int) Path {
	if n < 0 {
		n = 0
	}
	if len(p) < n {
		n = len(p)
	}
	return append(Path{}, p[:n]...)
}

// Append returns a new path with e appended.
func (p Path) Append(e PathElement) Path {
	q := make(Path, len(p), len(p)+1)
	copy(q, p)
	return append(q, e)
}

// Concat returns a new path with the elements of p followed by those of q.
func (p Path) Concat(q Path) Path {
	r := make(Path, 0, len(p)+len(q))
	return append(append(r, p...), q...)
}

// IsPrefixOf returns true when p is a prefix of q.
func (p Path) IsPrefixOf(q Path) bool {
	if len(p) > len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Equal returns true when both paths have the same elements.
func (p Path) Equal(q Path) bool {
	return len(p) == len(q) && p.IsPrefixOf(q)
}

func (p Path) String() string {
	var b strings.Builder
	for _, e := range p {
		b.WriteString(e.String())
	}
	return b.String()
}

// PathFromString parses a path such as ".x[*].y[key]". The empty string is the empty path.
func PathFromString(s string) (Path, error) {
	var p Path
	for i := 0; i < len(s); {
		switch s[i] {
		case '.':
			j := i + 1
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("empty field name at offset %d in path %q", i, s)
			}
			p = append(p, FieldElement(s[i+1:j]))
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index at offset %d in path %q", i, s)
			}
			key := s[i+1 : i+end]
			switch key {
			case "":
				return nil, fmt.Errorf("empty index at offset %d in path %q", i, s)
			case "*":
				p = append(p, AnyIndexElement())
			default:
				p = append(p, IndexElement(key))
			}
			i += end + 1
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d in path %q", s[i], i, s)
		}
	}
	return p, nil
}
