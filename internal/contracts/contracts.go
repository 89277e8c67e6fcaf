// Package contracts validates inbound payloads against embedded JSON schemas.
package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names.
const (
	DraftInput = "draft"
)

var compiled = map[string]*jsonschema.Schema{}

func init() {
	compiler := jsonschema.NewCompiler()
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		panic(fmt.Sprintf("contracts: read schemas: %v", err))
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p := path.Join("schemas", e.Name())
		b, err := schemaFS.ReadFile(p)
		if err != nil {
			panic(fmt.Sprintf("contracts: read %s: %v", p, err))
		}
		if err := compiler.AddResource(p, bytes.NewReader(b)); err != nil {
			panic(fmt.Sprintf("contracts: add %s: %v", p, err))
		}
		schema, err := compiler.Compile(p)
		if err != nil {
			panic(fmt.Sprintf("contracts: compile %s: %v", p, err))
		}
		compiled[strings.TrimSuffix(e.Name(), ".json")] = schema
	}
}

// Validate checks raw JSON against the named schema.
func Validate(name string, raw []byte) error {
	schema, ok := compiled[name]
	if !ok {
		return fmt.Errorf("contracts: unknown schema %q", name)
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return schema.Validate(v)
}
