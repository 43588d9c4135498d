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
	"os"
	"path/filepath"

	"github.com/awslabs/argot-taint-models/analysis/methods"
	"github.com/awslabs/argot-taint-models/internal/jsonvalidation"
	"sigs.k8s.io/yaml"
)

// FromYAML parses a model document written in yaml. See FromJSON.
func FromYAML(method methods.Method, data []byte, ctx *Context, checkUnexpected bool) (*Model, error) {
	b, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("could not convert yaml model: %w", err)
	}
	return FromJSON(method, b, ctx, checkUnexpected)
}

// ReadModelFile reads the models of a file holding a model document or an array of model documents. Files with a
// .yaml or .yml extension are parsed as yaml, other files as json.
func ReadModelFile(filename string, ctx *Context, checkUnexpected bool) ([]*Model, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if b, err = yaml.YAMLToJSON(b); err != nil {
			return nil, fmt.Errorf("could not convert yaml model file %s: %w", filename, err)
		}
	}
	objs, err := jsonvalidation.ParseObjectOrArray(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	models := make([]*Model, 0, len(objs))
	for i, obj := range objs {
		m, err := fromObject(nil, obj, ctx, checkUnexpected)
		if err != nil {
			return nil, fmt.Errorf("%s: model %d: %w", filename, i, err)
		}
		models = append(models, m)
	}
	ctx.Logger.Debugf("read %d models from %s", len(models), filename)
	return models, nil
}
