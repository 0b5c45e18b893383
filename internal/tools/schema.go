package tools

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ee99ee/codemagic-mcp-improved/internal/jsonx"
)

// schemaFor builds a JSON Schema for T using the base generator and
// enriches it from struct tags: `mcp` overrides the description, `default`
// sets a default literal and `enum` restricts the value to a
// comma-separated set.
func schemaFor[T any]() (*jsonschema.Schema, error) {
	sch, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, err
	}

	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool arguments must be a struct, got %s", t)
	}

	if sch.Properties == nil {
		sch.Properties = make(map[string]*jsonschema.Schema)
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		p, ok := sch.Properties[name]
		if !ok || p == nil {
			p = &jsonschema.Schema{}
			sch.Properties[name] = p
		}

		if desc := f.Tag.Get("mcp"); desc != "" {
			p.Description = desc
		}
		if def := f.Tag.Get("default"); def != "" {
			p.Default = defaultLiteral(def)
		}
		if enum := f.Tag.Get("enum"); enum != "" {
			for _, v := range strings.Split(enum, ",") {
				p.Enum = append(p.Enum, v)
			}
		}
	}

	return sch, nil
}

// defaultLiteral encodes a default tag value as a JSON literal: numbers and
// booleans verbatim, anything else as a string.
func defaultLiteral(def string) []byte {
	if _, err := strconv.ParseFloat(def, 64); err == nil {
		return []byte(def)
	}
	if def == "true" || def == "false" {
		return []byte(def)
	}
	b, _ := jsonx.Marshal(def)
	return b
}
