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

/*
Package model implements the taint model of a method: what the method generates, where taint it receives ends
up in a sink, how taint propagates from its arguments to its return value or other arguments, and how its
behavior at a call site is summarized for its callers.

A Model is either bound to a method, in which case every port is checked against the arity of the method, or a
template that is bound later with Instantiate. Models are built from Facts with New (the first invalid fact is an
error) or NewLenient (invalid facts are dropped and recorded as diagnostics of the Context).

Models form a lattice (Leq, JoinWith) used by the fixpoint iteration: the analysis adds inferred taint with the
AddInferred* methods, and calls Approximate when the model of a method does not stabilize. Categories marked as
frozen keep their declared taint.

Models are read from and written to JSON documents, see FromJSON, ReadModelFile and Model.ToJSON.
*/
package model
