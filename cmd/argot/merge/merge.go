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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/argot-taint-models/analysis/taint/model"
	"github.com/awslabs/argot-taint-models/cmd/argot/check"
	"github.com/awslabs/argot-taint-models/cmd/argot/tools"
	"github.com/awslabs/argot-taint-models/internal/funcutil"
)

// Usage is the usage of the merge command.
const Usage = ` Merge model documents.
Usage:
  argot merge [options] <model file(s)>
Examples:
  % argot merge -program ./... -o merged.json models.json generated.yaml
`

// Flags represents the parsed flags of the merge command.
type Flags struct {
	tools.CommonFlags
	output string
}

// NewFlags returns the parsed flags of the merge command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("merge")
	output := flags.FlagSet.String("o", "", "output file")
	common, err := flags.Parse(args, Usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, output: *output}, nil
}

// Models joins the models of the same method. Bound models come first, sorted by method, followed by the
// templates in their original order.
func Models(models []*model.Model) []*model.Model {
	bound := map[string]*model.Model{}
	var templates []*model.Model
	for _, m := range models {
		method, ok := m.Method().Get()
		if !ok {
			templates = append(templates, m)
			continue
		}
		sig := method.Signature()
		if prev, ok := bound[sig]; ok {
			prev.JoinWith(m)
		} else {
			bound[sig] = m.Clone()
		}
	}
	res := make([]*model.Model, 0, len(bound)+len(templates))
	for _, sig := range funcutil.SortedKeys(bound) {
		res = append(res, bound[sig])
	}
	return append(res, templates...)
}

// Write writes the models as an indented json array.
func Write(w io.Writer, ctx *model.Context, models []*model.Model) error {
	docs := funcutil.Map(models, func(m *model.Model) map[string]any {
		if ctx.Config.EmitPositions {
			return m.ToJSONWithPosition(ctx)
		}
		return m.ToJSON()
	})
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("could not serialize models: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

// Run merges the model files of flags.
func Run(flags Flags) error {
	ctx, err := tools.NewContext(flags.CommonFlags)
	if err != nil {
		return err
	}
	files := tools.ModelFiles(flags.CommonFlags, ctx.Config)
	if len(files) == 0 {
		return fmt.Errorf("no model files to merge")
	}
	var models []*model.Model
	for _, res := range check.Files(ctx, files, ctx.Config.StrictModels) {
		if res.Err != nil {
			return res.Err
		}
		models = append(models, res.Models...)
	}
	merged := Models(models)
	ctx.Logger.Infof("merged %d models into %d", len(models), len(merged))

	out := os.Stdout
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return Write(out, ctx, merged)
}
