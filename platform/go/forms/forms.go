// Package forms validates write payloads against embedded JSON Schemas and reports one
// human-readable message per offending field.
package forms

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// PayloadField keys errors that are not tied to a single field.
const PayloadField = "payload"

// Form couples a compiled schema with the message shown for each field.
type Form struct {
	name     string
	schema   *jsonschema.Schema
	messages map[string]string
	fallback string
}

var (
	compileOnce sync.Once
	compiled    map[string]*Form
	compileErr  error
)

var definitions = map[string]struct {
	file     string
	messages map[string]string
	fallback string
}{
	"invite": {
		file: "schemas/invite.json",
		messages: map[string]string{
			"name":  "Name must be at least 2 characters.",
			"email": "Please enter a valid email address.",
			"role":  "Please select a role.",
		},
		fallback: "Invalid data provided.",
	},
	"maintenance": {
		file: "schemas/maintenance.json",
		messages: map[string]string{
			"propertyId":  "Please select a property.",
			"description": "Description must be at least 10 characters.",
		},
		fallback: "Invalid data provided.",
	},
	"activity": {
		file: "schemas/activity.json",
		messages: map[string]string{
			"description": "Please enter a note between 1 and 2000 characters.",
		},
		fallback: "Invalid data provided.",
	},
	"maintenance_update": {
		file: "schemas/maintenance_update.json",
		messages: map[string]string{
			"status":   "Please select a valid status.",
			"vendorId": "Please select a vendor.",
		},
		fallback: "Provide a status or a vendor to update.",
	},
}

// Lookup returns the named form. Schemas are compiled once on first use.
func Lookup(name string) (*Form, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*Form, len(definitions))
		for key, def := range definitions {
			form, err := compile(key, def.file, def.messages, def.fallback)
			if err != nil {
				compileErr = errors.Join(compileErr, err)
				continue
			}
			compiled[key] = form
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}

	form, ok := compiled[name]
	if !ok {
		return nil, fmt.Errorf("unknown form %q", name)
	}
	return form, nil
}

// MustLookup panics when the form cannot be compiled; schemas are embedded so this only fails on
// a broken build.
func MustLookup(name string) *Form {
	form, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return form
}

func compile(name, file string, messages map[string]string, fallback string) (*Form, error) {
	raw, err := schemaFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", file, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	url := "memory://forms/" + file
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", name, err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	return &Form{name: name, schema: schema, messages: messages, fallback: fallback}, nil
}

// Validate checks payload (any JSON-marshalable value) and returns field -> messages. An empty
// result means the payload is valid.
func (f *Form) Validate(payload any) map[string][]string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return map[string][]string{PayloadField: {f.fallback}}
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return map[string][]string{PayloadField: {f.fallback}}
	}

	verr := f.schema.Validate(document)
	if verr == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(verr, &validationErr) {
		return map[string][]string{PayloadField: {f.fallback}}
	}

	fields := map[string][]string{}
	for _, leaf := range leaves(validationErr) {
		for _, field := range fieldsOf(leaf) {
			msg, ok := f.messages[field]
			if !ok {
				field, msg = PayloadField, f.fallback
			}
			if !contains(fields[field], msg) {
				fields[field] = append(fields[field], msg)
			}
		}
	}

	if len(fields) == 0 {
		fields[PayloadField] = []string{f.fallback}
	}
	return fields
}

func leaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

// fieldsOf maps a leaf error to the top-level properties it concerns. Missing required properties
// report at the object root, so their names are taken from the quoted list in the message.
func fieldsOf(err *jsonschema.ValidationError) []string {
	loc := strings.TrimPrefix(err.InstanceLocation, "/")
	if loc != "" {
		if i := strings.Index(loc, "/"); i >= 0 {
			loc = loc[:i]
		}
		return []string{loc}
	}

	if !strings.HasSuffix(err.KeywordLocation, "/required") {
		return []string{PayloadField}
	}

	var names []string
	parts := strings.Split(err.Message, "'")
	for i := 1; i < len(parts); i += 2 {
		names = append(names, parts[i])
	}
	if len(names) == 0 {
		return []string{PayloadField}
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
