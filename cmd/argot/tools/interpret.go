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

package tools

import "regexp"

// Captures errors happening before any model is read (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when you put a flag at the end instead of the package pattern
var namedFilesMustBeGoFiles = regexp.MustCompile("-: named files must be .go files: -(\\w)")

// Captures ports that do not exist in the method the model is bound to
var invalidArgumentPort = regexp.MustCompile("has an invalid port `Argument\\(\\d+\\)")

// Captures members that are not part of a model document
var unexpectedMember = regexp.MustCompile("expected one of the members")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if namedFilesMustBeGoFiles.MatchString(errMsg) {
			return "all command line flags should be before the model files"
		}
		return "make sure the -program flag is a package pattern that loads without errors"
	}
	if invalidArgumentPort.MatchString(errMsg) {
		return "arguments are numbered from 0 and the receiver of a method is Argument(0)"
	}
	if unexpectedMember.MatchString(errMsg) {
		return "run with -strict=false to ignore unknown members of model documents"
	}
	return ""
}
