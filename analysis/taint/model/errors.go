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

package model

import (
	"fmt"

	"github.com/awslabs/argot-taint-models/internal/jsonvalidation"
)

// A ConsistencyError is returned when a fact cannot be added to a model because its port is not valid for the
// method or for the category of the fact.
type ConsistencyError struct {
	// Method is the signature of the method, empty for a model that is not bound to a method
	Method string
	// Category is the category of the fact, e.g. "sinks"
	Category string
	// Port is the offending port
	Port string
	// Reason explains why the port is invalid
	Reason string
}

func (e *ConsistencyError) Error() string {
	method := e.Method
	if method == "" {
		method = "<template>"
	}
	return fmt.Sprintf("model for method `%s` has an invalid port `%s` in %s: %s",
		method, e.Port, e.Category, e.Reason)
}

// MalformedDocumentError is returned when a model document is missing a field, has a field of the wrong shape or,
// when unexpected members are checked, has an unknown member.
type MalformedDocumentError = jsonvalidation.Error

// invariantViolation panics: it reports a programming error in the caller, not an invalid input.
func invariantViolation(format string, args ...any) {
	panic(fmt.Sprintf("model: invariant violation: "+format, args...))
}
