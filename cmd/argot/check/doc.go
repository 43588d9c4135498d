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
Package check implements the front-end to the model checker, which reads model documents and reports the
documents that are malformed or whose ports do not exist in the methods they describe.

Usage:

	argot check [flags] models.json...

The flags are:

	-config path      a path to the configuration file, whose model files are checked too

	-program pattern  a package pattern; models are bound to the functions of the program it loads

	-lenient          drop invalid facts instead of rejecting the models, and report them

	-strict           reject documents with unknown members (default true)

	-summary          print a summary of every model

	-verbose=false    setting verbose mode, overrides config file options if set
*/
package check
