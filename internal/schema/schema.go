// Package schema validates response bodies against JSON schemas.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/ansel1/merry"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalid is returned by Validate when the document violates the schema.
var ErrInvalid = merry.New("response does not match schema")

const resourceName = "schema.json"

// Schema is a compiled JSON schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Load compiles the schema in the file at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, merry.Prepend(err, "reading schema file")
	}
	return Compile(data)
}

// Compile compiles a schema document.
func Compile(data []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceName, bytes.NewReader(data)); err != nil {
		return nil, merry.Prepend(err, "invalid schema")
	}
	s, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, merry.Prepend(err, "invalid schema")
	}
	return &Schema{schema: s}, nil
}

// Validate checks a JSON document against the schema.  Violations are
// reported as an ErrInvalid listing each failed location.
func (s *Schema) Validate(doc []byte) error {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return merry.Prepend(err, "invalid JSON")
	}

	err := s.schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return merry.Wrap(err)
	}
	return merry.Prepend(ErrInvalid, strings.Join(Violations(ve), "; "))
}

// Violations flattens a validation error into one message per failed
// location, leaves only.
func Violations(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + err.Message}
	}
	var msgs []string
	for _, c := range err.Causes {
		msgs = append(msgs, Violations(c)...)
	}
	return msgs
}
