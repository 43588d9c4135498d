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

// Package jsonvalidation decodes JSON documents field by field, reporting which field of the document is
// malformed instead of a generic decoding failure.
package jsonvalidation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Error is returned when a document has a missing required field, a field of the wrong shape or an unexpected
// member.
type Error struct {
	// Field is the offending field; empty when the error is about the object itself
	Field string
	// Expected describes what was expected at Field
	Expected string
	// Err is the underlying decoding error, if any
	Err error
}

func (e *Error) Error() string {
	msg := "malformed document: expected " + e.Expected
	if e.Field != "" {
		msg += " for field `" + e.Field + "`"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Object is a decoded JSON object whose members are not yet decoded.
type Object map[string]json.RawMessage

// ParseObject decodes data as a JSON object.
func ParseObject(data []byte) (Object, error) {
	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &Error{Expected: "an object", Err: err}
	}
	if obj == nil {
		return nil, &Error{Expected: "a non-null object"}
	}
	return obj, nil
}

// ParseObjectOrArray decodes data as either a single JSON object or an array of objects.
func ParseObjectOrArray(data []byte) ([]Object, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var objs []Object
		if err := json.Unmarshal(trimmed, &objs); err != nil {
			return nil, &Error{Expected: "an array of objects", Err: err}
		}
		return objs, nil
	}
	obj, err := ParseObject(trimmed)
	if err != nil {
		return nil, err
	}
	return []Object{obj}, nil
}

// CheckUnexpectedMembers returns an error naming the first member of obj (in sorted order) that is not in allowed.
func CheckUnexpectedMembers(obj Object, allowed ...string) error {
	var unexpected []string
	for member := range obj {
		if !slices.Contains(allowed, member) {
			unexpected = append(unexpected, member)
		}
	}
	if len(unexpected) == 0 {
		return nil
	}
	slices.Sort(unexpected)
	return &Error{
		Field:    unexpected[0],
		Expected: "one of the members [" + strings.Join(allowed, ", ") + "]",
	}
}

// Has returns true when obj has a non-null member field.
func (obj Object) Has(field string) bool {
	raw, ok := obj[field]
	return ok && !isNull(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Decode decodes the member field of obj into v. A missing or null member is an error.
func (obj Object) Decode(field string, expected string, v any) error {
	if !obj.Has(field) {
		return &Error{Field: field, Expected: expected}
	}
	if err := json.Unmarshal(obj[field], v); err != nil {
		return &Error{Field: field, Expected: expected, Err: err}
	}
	return nil
}

// DecodeOptional decodes the member field of obj into v if it is present and not null.
func (obj Object) DecodeOptional(field string, expected string, v any) error {
	if !obj.Has(field) {
		return nil
	}
	return obj.Decode(field, expected, v)
}

// String returns the string member field of obj.
func (obj Object) String(field string) (string, error) {
	var s string
	err := obj.Decode(field, "a string", &s)
	return s, err
}

// OptionalString returns the string member field and true if present.
func (obj Object) OptionalString(field string) (string, bool, error) {
	if !obj.Has(field) {
		return "", false, nil
	}
	s, err := obj.String(field)
	return s, err == nil, err
}

// Integer returns the integer member field of obj, or defaultValue when it is absent.
func (obj Object) Integer(field string, defaultValue int) (int, error) {
	n := defaultValue
	err := obj.DecodeOptional(field, "an integer", &n)
	return n, err
}

// NullOrStringArray returns the string elements of the member field; a missing or null member is empty.
func (obj Object) NullOrStringArray(field string) ([]string, error) {
	var s []string
	err := obj.DecodeOptional(field, "an array of strings", &s)
	return s, err
}

// NullOrObjectArray returns the object elements of the member field; a missing or null member is empty.
func (obj Object) NullOrObjectArray(field string) ([]Object, error) {
	var objs []Object
	if err := obj.DecodeOptional(field, "an array of objects", &objs); err != nil {
		return nil, err
	}
	for i, o := range objs {
		if o == nil {
			return nil, &Error{Field: fmt.Sprintf("%s[%d]", field, i), Expected: "an object"}
		}
	}
	return objs, nil
}

// Object returns the object member field of obj.
func (obj Object) Object(field string) (Object, error) {
	var o Object
	if err := obj.Decode(field, "an object", &o); err != nil {
		return nil, err
	}
	return o, nil
}

// Raw returns the undecoded member field and true when it is present and not null.
func (obj Object) Raw(field string) (json.RawMessage, bool) {
	if !obj.Has(field) {
		return nil, false
	}
	return obj[field], true
}
