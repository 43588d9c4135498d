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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/argot-taint-models/analysis"
	"github.com/awslabs/argot-taint-models/cmd/argot/check"
	"github.com/awslabs/argot-taint-models/cmd/argot/merge"
	"github.com/awslabs/argot-taint-models/cmd/argot/tools"
)

const usage = `Argot: taint model tools
Usage:
  argot [tool] [options] <model file(s)>
Tools:
  - check: reads model documents and reports the invalid ones
  - merge: joins the models of several documents and prints the result as json
Examples:
  Check models against a program: argot check -program ./... models.json
  Merge models: argot merge -config config.yaml -o merged.json`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "check":
		flags, err := check.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := check.Run(flags); err != nil {
			errExit(err)
		}
	case "merge":
		flags, err := merge.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := merge.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
