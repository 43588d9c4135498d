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

package merge

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/awslabs/argot-taint-models/analysis/config"
	"github.com/awslabs/argot-taint-models/analysis/methods"
	"github.com/awslabs/argot-taint-models/analysis/taint/model"
	"github.com/awslabs/argot-taint-models/cmd/argot/check"
	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
)

func newContext() *model.Context {
	cfg := config.NewDefault()
	cfg.LogLevel = int(config.ErrLevel)
	ctx := model.NewContext(cfg)
	ctx.Methods.Register(&methods.Descriptor{Name: "pkg.f", Parameters: 2, Static: true})
	return ctx
}

func readAll(t *testing.T, ctx *model.Context, files ...string) []*model.Model {
	var models []*model.Model
	for _, res := range check.Files(ctx, files, true) {
		if res.Err != nil {
			t.Fatalf("unexpected error in %s: %v", res.File, res.Err)
		}
		models = append(models, res.Models...)
	}
	return models
}

func TestMergeJoinsModelsOfTheSameMethod(t *testing.T) {
	ctx := newContext()
	models := readAll(t, ctx, filepath.Join("testdata", "a.json"), filepath.Join("testdata", "b.yaml"))
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}
	merged := Models(models)
	if len(merged) != 2 {
		t.Fatalf("expected a merged model and a template, got %d models", len(merged))
	}
	f := merged[0]
	if len(f.Sinks().Elements()) != 2 || !f.ModelGenerators().Contains("b") {
		t.Errorf("unexpected merged model %s", f)
	}
	if merged[1].Method().IsSome() {
		t.Errorf("the template should come last")
	}
	if !models[0].Leq(f) || !models[2].Leq(f) {
		t.Errorf("the merged model should be greater than the models it joins")
	}
	if len(models[0].Sinks().Elements()) != 1 {
		t.Errorf("merging should not modify the input models")
	}
}

func TestWrite(t *testing.T) {
	ctx := newContext()
	models := Models(readAll(t, ctx, filepath.Join("testdata", "b.yaml")))
	var buf bytes.Buffer
	if err := Write(&buf, ctx, models); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatalf("output is not a json array: %v", err)
	}
	expected := []map[string]any{{
		"method": "pkg.f",
		"sinks": []any{map[string]any{
			"port":  "Argument(1)",
			"taint": []any{map[string]any{"kind": "Exec", "origins": []any{"pkg.f"}}},
		}},
		"model_generators": []any{"b"},
	}}
	if diff := cmp.Diff(expected, docs); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestCheckReportsInvalidFiles(t *testing.T) {
	ctx := newContext()
	results := check.Files(ctx, []string{filepath.Join("testdata", "bad.json"), filepath.Join("testdata", "a.json")},
		true)
	if results[0].Err == nil || results[1].Err != nil {
		t.Errorf("only the first file is invalid, got %v and %v", results[0].Err, results[1].Err)
	}
	var consistencyErr *model.ConsistencyError
	if !errors.As(results[0].Err, &consistencyErr) || consistencyErr.Port != "Argument(7)" {
		t.Errorf("expected a consistency error on Argument(7), got %v", results[0].Err)
	}
}

func TestWriteMergedGolden(t *testing.T) {
	ctx := newContext()
	models := Models(readAll(t, ctx, filepath.Join("testdata", "a.json"), filepath.Join("testdata", "b.yaml")))
	var buf bytes.Buffer
	if err := Write(&buf, ctx, models); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	goldie.New(t).Assert(t, "merged", buf.Bytes())
}
