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

package domain

import (
	"go/token"
	"strconv"
)

// A Position is a location in the analyzed program. Position is comparable.
type Position struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// PositionFromToken converts a go/token position.
func PositionFromToken(pos token.Position) Position {
	return Position{Path: pos.Filename, Line: pos.Line}
}

// IsValid returns true for positions with a path.
func (p Position) IsValid() bool { return p.Path != "" }

func (p Position) String() string {
	return p.Path + ":" + strconv.Itoa(p.Line)
}

// Less orders positions by path, then line.
func (p Position) Less(q Position) bool {
	if p.Path != q.Path {
		return p.Path < q.Path
	}
	return p.Line < q.Line
}
