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

package funcutil

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOptional(t *testing.T) {
	x := Some(3)
	if v, ok := x.Get(); !ok || v != 3 || x.IsNone() {
		t.Errorf("expected some 3, got %s", x)
	}
	var none Optional[int]
	if none.IsSome() || none.ValueOr(5) != 5 || none.String() != "none" {
		t.Errorf("the zero optional should be none, got %s", none)
	}
	if s := MapOption(x, strconv.Itoa); s.Value() != "3" {
		t.Errorf("expected some \"3\", got %s", s)
	}
	if MapOption(none, strconv.Itoa).IsSome() {
		t.Errorf("mapping none should give none")
	}
	if MaybeOr(none, x) != x || MaybeOr(x, Some(4)) != x {
		t.Errorf("MaybeOr should return the first optional that is some")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("Value on none should panic")
		}
	}()
	none.Value()
}

func TestMapParallel(t *testing.T) {
	var in []int
	for i := 0; i < 100; i++ {
		in = append(in, i)
	}
	square := func(x int) int { return x * x }
	for _, routines := range []int{0, 1, 7} {
		if diff := cmp.Diff(Map(in, square), MapParallel(in, square, routines)); diff != "" {
			t.Errorf("results with %d routines differ (-want +got):\n%s", routines, diff)
		}
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "c": 2, "a": 3}
	if diff := cmp.Diff([]string{"a", "b", "c"}, SortedKeys(m)); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	set := map[string]bool{"c": true, "a": true, "b": false}
	if diff := cmp.Diff([]string{"a", "c"}, SetToOrderedSlice(set)); diff != "" {
		t.Errorf("unexpected elements (-want +got):\n%s", diff)
	}
}

func TestFilterExists(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	if diff := cmp.Diff([]int{2, 4}, Filter([]int{1, 2, 3, 4}, even)); diff != "" {
		t.Errorf("unexpected filter result (-want +got):\n%s", diff)
	}
	if Exists([]int{1, 3}, even) || !Exists([]int{1, 2}, even) {
		t.Errorf("unexpected Exists result")
	}
}
