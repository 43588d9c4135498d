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

// An AccessPath is a root followed by a path, e.g. "Argument(1).x[*]" designates any element of the field x of the
// second argument.
type AccessPath struct {
	root Root
	path Path
}

// NewAccessPath returns the access path root.path. The path is copied.
func NewAccessPath(root Root, path ...PathElement) AccessPath {
	return AccessPath{root: root, path: append(Path(nil), path...)}
}

// Root returns the root of the access path.
func (a AccessPath) Root() Root { return a.root }

// Path returns the path of the access path. The result must not be modified.
func (a AccessPath) Path() Path { return a.path }

// Append returns the access path extended with e.
func (a AccessPath) Append(e PathElement) AccessPath {
	return AccessPath{root: a.root, path: a.path.Append(e)}
}

// Truncate returns the access path with a path of length at most n.
func (a AccessPath) Truncate(n int) AccessPath {
	return AccessPath{root: a.root, path: a.path.Truncate(n)}
}

// Equal returns true when both access paths have the same root and path.
func (a AccessPath) Equal(b AccessPath) bool {
	return a.root == b.root && a.path.Equal(b.path)
}

// Less is a total order on access paths: by root, then by the path representation.
func (a AccessPath) Less(b AccessPath) bool {
	if a.root != b.root {
		return a.root.Less(b.root)
	}
	return a.path.String() < b.path.String()
}

func (a AccessPath) String() string {
	return a.root.String() + a.path.String()
}

// FromString parses an access path such as "Argument(1).x[*]". It is the inverse of AccessPath.String.
func FromString(s string) (AccessPath, error) {
	split := strings.IndexAny(s, ".[")
	rootStr, pathStr := s, ""
	if split >= 0 {
		rootStr, pathStr = s[:split], s[split:]
	}
	root, err := RootFromString(rootStr)
	if err != nil {
		return AccessPath{}, fmt.Errorf("invalid access path %q: %w", s, err)
	}
	path, err := PathFromString(pathStr)
	if err != nil {
		return AccessPath{}, fmt.Errorf("invalid access path %q: %w", s, err)
	}
	return AccessPath{root: root, path: path}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (a AccessPath) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccessPath) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
