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
	"strings"

	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"golang.org/x/exp/slices"
)

type node struct {
	taint    Taint
	children map[access.PathElement]*node
}

func (n *node) clone() *node {
	c := &node{taint: n.taint.Clone()}
	if len(n.children) > 0 {
		c.children = make(map[access.PathElement]*node, len(n.children))
		for e, child := range n.children {
			c.children[e] = child.clone()
		}
	}
	return c
}

func (n *node) child(e access.PathElement) *node {
	if n.children == nil {
		n.children = map[access.PathElement]*node{}
	}
	c, ok := n.children[e]
	if !ok {
		c = &node{}
		n.children[e] = c
	}
	return c
}

func (n *node) joinWith(o *node) {
	n.taint.JoinWith(o.taint)
	for e, oc := range o.children {
		n.child(e).joinWith(oc)
	}
}

// collapse returns the join of the taint of every descendant of n, with features added to it.
func (n *node) collapse(features FeatureMayAlwaysSet) Taint {
	var t Taint
	for _, c := range n.children {
		t.JoinWith(c.taint.AddLocallyInferredFeatures(features))
		t.JoinWith(c.collapse(features))
	}
	return t
}

func (n *node) collapseDeeperThan(height int, features FeatureMayAlwaysSet) {
	if height <= 0 {
		n.taint.JoinWith(n.collapse(features))
		n.children = nil
		return
	}
	for _, c := range n.children {
		c.collapseDeeperThan(height-1, features)
	}
}

func (n *node) leaves() int {
	if len(n.children) == 0 {
		return 1
	}
	count := 0
	for _, c := range n.children {
		count += c.leaves()
	}
	return count
}

// pruneCovered removes from the descendants of n the taint that is less than the taint of their ancestors, which
// is above for the children of n.
func (n *node) pruneCovered(above Taint) {
	for e, c := range n.children {
		if c.taint.Leq(above) {
			c.taint = Taint{}
		}
		c.pruneCovered(above.Join(c.taint))
		if c.taint.IsBottom() && len(c.children) == 0 {
			delete(n.children, e)
		}
	}
}

// prune removes the subtrees without taint and returns true if n itself is empty.
func (n *node) prune() bool {
	for e, c := range n.children {
		if c.prune() {
			delete(n.children, e)
		}
	}
	return n.taint.IsBottom() && len(n.children) == 0
}

// leq compares the taint of n with the taint read at the same port of the tree of o, where above is the taint of
// the ancestors of o.
func (n *node) leq(o *node, above Taint) bool {
	if o != nil && !o.taint.IsBottom() {
		above = above.Join(o.taint)
	}
	if !n.taint.IsBottom() && !n.taint.Leq(above) {
		return false
	}
	for e, c := range n.children {
		var oc *node
		if o != nil {
			oc = o.children[e]
		}
		if !c.leq(oc, above) {
			return false
		}
	}
	return true
}

func (n *node) transform(f func(Taint) Taint) {
	n.taint = f(n.taint)
	for _, c := range n.children {
		c.transform(f)
	}
}

func (n *node) elements(prefix access.AccessPath, out *[]TreeElement) {
	if !n.taint.IsBottom() {
		*out = append(*out, TreeElement{Port: prefix, Taint: n.taint})
	}
	for e, c := range n.children {
		c.elements(prefix.Append(e), out)
	}
}

// A TreeElement is a port of a tree with the taint stored at that port.
type TreeElement struct {
	Port  access.AccessPath
	Taint Taint
}

// A TaintTree maps access paths to taint. Taint written at an access path applies to every access path it is a
// prefix of.
//
// The zero TaintTree is empty and ready to use. Trees are mutable: use Clone to copy one.
type TaintTree struct {
	roots map[access.Root]*node
}

func (t *TaintTree) rootNode(r access.Root) *node {
	if t.roots == nil {
		t.roots = map[access.Root]*node{}
	}
	n, ok := t.roots[r]
	if !ok {
		n = &node{}
		t.roots[r] = n
	}
	return n
}

// Write joins taint into the tree at port. Nothing is written when the taint of the prefixes of port already
// covers taint, and the taint of the descendants of port covered by the result is removed.
func (t *TaintTree) Write(port access.AccessPath, taint Taint) {
	if taint.IsBottom() {
		return
	}
	if path := port.Path(); path.Len() > 0 && taint.Leq(t.Read(port.Truncate(path.Len()-1))) {
		return
	}
	n := t.rootNode(port.Root())
	for _, e := range port.Path() {
		n = n.child(e)
	}
	n.taint.JoinWith(taint)
	n.pruneCovered(t.Read(port))
}

// Read returns the taint at port: the join of the taint stored at port and at every prefix of port.
func (t TaintTree) Read(port access.AccessPath) Taint {
	n, ok := t.roots[port.Root()]
	if !ok {
		return Taint{}
	}
	r := n.taint.Clone()
	for _, e := range port.Path() {
		if n = n.children[e]; n == nil {
			break
		}
		r.JoinWith(n.taint)
	}
	return r
}

// ReadExact returns the taint stored at port, ignoring its prefixes.
func (t TaintTree) ReadExact(port access.AccessPath) Taint {
	n, ok := t.roots[port.Root()]
	if !ok {
		return Taint{}
	}
	for _, e := range port.Path() {
		if n = n.children[e]; n == nil {
			return Taint{}
		}
	}
	return n.taint
}

// IsBottom returns true when no port has taint.
func (t TaintTree) IsBottom() bool {
	for r, n := range t.roots {
		var out []TreeElement
		if n.elements(access.NewAccessPath(r), &out); len(out) > 0 {
			return false
		}
	}
	return true
}

// Elements returns the ports with taint, ordered by access path.
func (t TaintTree) Elements() []TreeElement {
	var out []TreeElement
	for r, n := range t.roots {
		n.elements(access.NewAccessPath(r), &out)
	}
	slices.SortFunc(out, func(a, b TreeElement) bool { return a.Port.Less(b.Port) })
	return out
}

// Roots returns the roots that have taint in the tree, in order.
func (t TaintTree) Roots() []access.Root {
	var roots []access.Root
	for _, e := range t.Elements() {
		if len(roots) == 0 || roots[len(roots)-1] != e.Port.Root() {
			roots = append(roots, e.Port.Root())
		}
	}
	return roots
}

// JoinWith joins o into t.
func (t *TaintTree) JoinWith(o TaintTree) {
	for r, n := range o.roots {
		joined := t.rootNode(r)
		joined.joinWith(n)
		joined.pruneCovered(joined.taint)
	}
}

// Clone returns a tree that does not share memory with t.
func (t TaintTree) Clone() TaintTree {
	if len(t.roots) == 0 {
		return TaintTree{}
	}
	roots := make(map[access.Root]*node, len(t.roots))
	for r, n := range t.roots {
		roots[r] = n.clone()
	}
	return TaintTree{roots: roots}
}

// Leq returns true when the taint read at every port of t is less than the taint read at the same port in o.
func (t TaintTree) Leq(o TaintTree) bool {
	for r, n := range t.roots {
		if !n.leq(o.roots[r], Taint{}) {
			return false
		}
	}
	return true
}

// Equal returns true when t and o have the same taint at every port.
func (t TaintTree) Equal(o TaintTree) bool {
	return t.Leq(o) && o.Leq(t)
}

// Transform applies f to the taint of every port of t, then removes the ports left without taint.
func (t *TaintTree) Transform(f func(Taint) Taint) {
	for r, n := range t.roots {
		n.transform(f)
		if n.prune() {
			delete(t.roots, r)
		}
	}
}

// CollapseDeeperThan joins the taint of every port with a path longer than height into its ancestor at depth
// height, adding features to the collapsed taint.
func (t *TaintTree) CollapseDeeperThan(height int, features FeatureMayAlwaysSet) {
	for _, n := range t.roots {
		n.collapseDeeperThan(height, features)
	}
}

// LimitLeaves collapses the tree of every root with more than maxLeaves leaves into the root, adding features to
// the collapsed taint. A negative maxLeaves means no limit.
func (t *TaintTree) LimitLeaves(maxLeaves int, features FeatureMayAlwaysSet) {
	if maxLeaves < 0 {
		return
	}
	for _, n := range t.roots {
		n.prune()
		if n.leaves() > maxLeaves {
			n.collapseDeeperThan(0, features)
		}
	}
}

func (t TaintTree) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, e := range t.Elements() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Port.String() + " -> " + e.Taint.String())
	}
	b.WriteString("}")
	return b.String()
}
