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
	"testing"
)

func TestAccessPathStringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"Return",
		"Argument(0)",
		"Argument(12).x",
		"Argument(1).x[*].y",
		"Return[key].z",
		"call-chain",
		"call-intent.extra",
		"Leaf",
		"Anchor",
		"Producer",
	} {
		ap, err := FromString(s)
		if err != nil {
			t.Errorf("failed to parse %q: %v", s, err)
			continue
		}
		if ap.String() != s {
			t.Errorf("expected %q, got %q", s, ap.String())
		}
	}
}

func TestAccessPathParseErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"Argument(-1)",
		"Argument(x)",
		"Arg(1)",
		"Return.",
		"Return[",
		"Return[]",
		"Return..x",
		"Returnx",
	} {
		if _, err := FromString(s); err == nil {
			t.Errorf("expected an error when parsing %q", s)
		}
	}
}

func TestRootPredicates(t *testing.T) {
	if !Receiver().IsArgument() || Receiver().ParameterPosition() != 0 {
		t.Errorf("receiver should be argument 0")
	}
	if !CallEffectIntent().IsCallEffect() || Return().IsCallEffect() {
		t.Errorf("unexpected call effect predicate")
	}
	for _, r := range []Root{Leaf(), Anchor(), Producer()} {
		if !r.IsLeafPort() {
			t.Errorf("%s should be a leaf port", r)
		}
	}
	if Argument(1).IsLeafPort() {
		t.Errorf("arguments are not leaf ports")
	}
	if !Argument(1).Less(Argument(2)) || !Argument(5).Less(Return()) {
		t.Errorf("unexpected root order")
	}
}

func TestPathTruncate(t *testing.T) {
	ap, err := FromString("Argument(1).a.b.c")
	if err != nil {
		t.Fatal(err)
	}
	truncated := ap.Truncate(1)
	if truncated.String() != "Argument(1).a" {
		t.Errorf("expected Argument(1).a, got %s", truncated)
	}
	if ap.String() != "Argument(1).a.b.c" {
		t.Errorf("truncation should not modify the original path, got %s", ap)
	}
	if ap.Truncate(10).String() != ap.String() {
		t.Errorf("truncating to a larger length should be the identity")
	}
	if !truncated.Path().IsPrefixOf(ap.Path()) {
		t.Errorf("truncated path should be a prefix")
	}
}

func TestAccessPathOrder(t *testing.T) {
	a := NewAccessPath(Argument(0), FieldElement("x"))
	b := NewAccessPath(Argument(0), FieldElement("y"))
	if !a.Less(b) || b.Less(a) {
		t.Errorf("expected %s < %s", a, b)
	}
	if a.Less(a) {
		t.Errorf("order should be strict")
	}
	if !a.Equal(NewAccessPath(Argument(0), FieldElement("x"))) {
		t.Errorf("equal access paths should be equal")
	}
}
