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
	"fmt"
	"strings"

	"github.com/awslabs/argot-taint-models/internal/jsonvalidation"
	"golang.org/x/exp/slices"
)

// An Issue is a flow from sources to a sink found in a method, for a given rule.
type Issue struct {
	Sources   Taint
	Sinks     Taint
	Rule      string
	Callee    string
	SinkIndex int
	Position  Position
}

type issueKey struct {
	rule      string
	callee    string
	sinkIndex int
	position  Position
}

func (i Issue) key() issueKey {
	return issueKey{rule: i.Rule, callee: i.Callee, sinkIndex: i.SinkIndex, position: i.Position}
}

func (k issueKey) less(o issueKey) bool {
	switch {
	case k.rule != o.rule:
		return k.rule < o.rule
	case k.position != o.position:
		return k.position.Less(o.position)
	case k.callee != o.callee:
		return k.callee < o.callee
	default:
		return k.sinkIndex < o.sinkIndex
	}
}

// IsBottom returns true when the issue has no source or no sink.
func (i Issue) IsBottom() bool { return i.Sources.IsBottom() || i.Sinks.IsBottom() }

// Leq returns true when i and o are for the same flow and i has fewer frames.
func (i Issue) Leq(o Issue) bool {
	return i.key() == o.key() && i.Sources.Leq(o.Sources) && i.Sinks.Leq(o.Sinks)
}

func (i Issue) String() string {
	return fmt.Sprintf("Issue(rule=%s, position=%s, callee=%s, sink_index=%d, sources=%s, sinks=%s)",
		i.Rule, i.Position, i.Callee, i.SinkIndex, i.Sources, i.Sinks)
}

// ToJSON returns the issue object of i.
func (i Issue) ToJSON() map[string]any {
	out := map[string]any{
		"rule":       i.Rule,
		"position":   i.Position,
		"sink_index": i.SinkIndex,
		"sources":    i.Sources.ToJSON(),
		"sinks":      i.Sinks.ToJSON(),
	}
	if i.Callee != "" {
		out["callee"] = i.Callee
	}
	return out
}

// IssueFromJSON parses an issue object.
func IssueFromJSON(obj jsonvalidation.Object, checkUnexpected bool) (Issue, error) {
	var i Issue
	if checkUnexpected {
		err := jsonvalidation.CheckUnexpectedMembers(obj, "rule", "position", "callee", "sink_index", "sources", "sinks")
		if err != nil {
			return i, err
		}
	}
	var err error
	if i.Rule, err = obj.String("rule"); err != nil {
		return i, err
	}
	if err = obj.Decode("position", "a position", &i.Position); err != nil {
		return i, err
	}
	if i.Callee, _, err = obj.OptionalString("callee"); err != nil {
		return i, err
	}
	if i.SinkIndex, err = obj.Integer("sink_index", 0); err != nil {
		return i, err
	}
	if i.Sources, err = taintFromJSON(obj, "sources", checkUnexpected); err != nil {
		return i, err
	}
	if i.Sinks, err = taintFromJSON(obj, "sinks", checkUnexpected); err != nil {
		return i, err
	}
	if i.IsBottom() {
		return i, &jsonvalidation.Error{Field: "sources", Expected: "non-empty sources and sinks"}
	}
	return i, nil
}

func taintFromJSON(obj jsonvalidation.Object, field string, checkUnexpected bool) (Taint, error) {
	frames, err := obj.NullOrObjectArray(field)
	if err != nil {
		return Taint{}, err
	}
	var t Taint
	for _, f := range frames {
		config, err := TaintConfigFromJSON(f, checkUnexpected)
		if err != nil {
			return Taint{}, err
		}
		t.Add(NewFrame(config))
	}
	return t, nil
}

// An IssueSet is a set of issues where issues for the same flow are joined. The zero value is empty.
type IssueSet struct {
	issues map[issueKey]Issue
}

// Add joins issue i into s. Bottom issues are ignored.
func (s *IssueSet) Add(i Issue) {
	if i.IsBottom() {
		return
	}
	if s.issues == nil {
		s.issues = map[issueKey]Issue{}
	}
	k := i.key()
	if old, ok := s.issues[k]; ok {
		old.Sources = old.Sources.Join(i.Sources)
		old.Sinks = old.Sinks.Join(i.Sinks)
		s.issues[k] = old
	} else {
		i.Sources = i.Sources.Clone()
		i.Sinks = i.Sinks.Clone()
		s.issues[k] = i
	}
}

// JoinWith joins every issue of o into s.
func (s *IssueSet) JoinWith(o IssueSet) {
	for _, i := range o.issues {
		s.Add(i)
	}
}

// Clone returns a set that does not share memory with s.
func (s IssueSet) Clone() IssueSet {
	var c IssueSet
	c.JoinWith(s)
	return c
}

// Len returns the number of issues.
func (s IssueSet) Len() int { return len(s.issues) }

// IsBottom returns true for the empty set.
func (s IssueSet) IsBottom() bool { return len(s.issues) == 0 }

// Leq returns true when every issue of s is less than an issue of o.
func (s IssueSet) Leq(o IssueSet) bool {
	for k, i := range s.issues {
		j, ok := o.issues[k]
		if !ok || !i.Leq(j) {
			return false
		}
	}
	return true
}

// Equal returns true when s and o hold the same issues.
func (s IssueSet) Equal(o IssueSet) bool {
	return s.Leq(o) && o.Leq(s)
}

// Elements returns the issues in a deterministic order.
func (s IssueSet) Elements() []Issue {
	keys := make([]issueKey, 0, len(s.issues))
	for k := range s.issues {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, issueKey.less)
	out := make([]Issue, len(keys))
	for i, k := range keys {
		out[i] = s.issues[k]
	}
	return out
}

func (s IssueSet) String() string {
	issues := s.Elements()
	parts := make([]string, len(issues))
	for i, x := range issues {
		parts[i] = x.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
