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
Package merge implements the front-end that joins the models of several documents. Models of the same method
are joined, and the result is written as a json array of model documents sorted by method.

Usage:

	argot merge [flags] -program ./... models.json...

Models of methods that are not in the program are templates: they are written unchanged, after the bound
models. The flags are those of argot check, plus:

	-o path           write the merged models to path instead of the standard output
*/
package merge
