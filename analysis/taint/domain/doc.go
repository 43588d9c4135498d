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
Package domain contains the abstract domains taint models are built from.

A Frame is one element of taint: a kind, where it comes from (callee, callee port, call position, distance) and
the features collected along its trace. A Taint is a set of frames, and a TaintTree maps access paths to taint.
Frames are only created from a TaintConfig, which is validated before the frame is added to a model.

The remaining domains are small lattices: feature sets (FeatureSet, FeatureMayAlwaysSet), sanitizers
(SanitizerSet), maps from roots to values (RootPartition), constants (ConstantDomain) and issues (IssueSet).
Every domain has a Leq and a Join (or JoinWith) operation.
*/
package domain
