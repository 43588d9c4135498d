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

package check

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/awslabs/argot-taint-models/analysis"
	"github.com/awslabs/argot-taint-models/analysis/taint/model"
	"github.com/awslabs/argot-taint-models/cmd/argot/tools"
	"github.com/awslabs/argot-taint-models/internal/formatutil"
	"github.com/awslabs/argot-taint-models/internal/funcutil"
)

// Usage is the usage of the check command.
const Usage = ` Check model documents.
Usage:
  argot check [options] <model file(s)>
Examples:
  % argot check -program ./... models.json
`

// Flags represents the parsed flags of the check command.
type Flags struct {
	tools.CommonFlags
	strict  bool
	summary bool
}

// NewFlags returns the parsed flags of the check command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("check")
	strict := flags.FlagSet.Bool("strict", true, "reject documents with unknown members")
	summary := flags.FlagSet.Bool("summary", false, "print a summary of every model")
	common, err := flags.Parse(args, Usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, strict: *strict, summary: *summary}, nil
}

// Result is the outcome of checking one model file.
type Result struct {
	File   string
	Models []*model.Model
	Err    error
}

// Files checks every file in parallel. The results are in the order of files.
func Files(ctx *model.Context, files []string, checkUnexpected bool) []Result {
	return funcutil.MapParallel(files, func(file string) Result {
		models, err := model.ReadModelFile(file, ctx, checkUnexpected)
		return Result{File: file, Models: models, Err: err}
	}, runtime.NumCPU())
}

// Run checks the model files of flags, and returns an error if some file is invalid.
func Run(flags Flags) error {
	logger := log.New(os.Stdout, "", log.Flags())
	ctx, err := tools.NewContext(flags.CommonFlags)
	if err != nil {
		return err
	}
	files := tools.ModelFiles(flags.CommonFlags, ctx.Config)
	if len(files) == 0 {
		return fmt.Errorf("no model files to check")
	}
	logger.Printf(formatutil.Faint("Argot model checker - " + analysis.Version))

	results := Files(ctx, files, flags.strict && ctx.Config.StrictModels)
	for _, res := range results {
		if res.Err != nil {
			logger.Printf("%s %s: %v\n", formatutil.Red("✗"), res.File, res.Err)
			if hint := tools.HintForErrorMessage(res.Err.Error()); hint != "" {
				logger.Printf("  Hint: %s\n", hint)
			}
			continue
		}
		logger.Printf("%s %s: %d models\n", formatutil.Green("✓"), res.File, len(res.Models))
		if flags.summary {
			for _, m := range res.Models {
				logger.Print(m.Summary())
			}
		}
	}
	for _, d := range ctx.Diagnostics() {
		logger.Printf("%s %v\n", formatutil.Yellow("dropped:"), d)
	}
	if failed := funcutil.Filter(results, func(r Result) bool { return r.Err != nil }); len(failed) > 0 {
		return fmt.Errorf("%d of %d model files are invalid", len(failed), len(files))
	}
	return nil
}
