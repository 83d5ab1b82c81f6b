package params

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// FieldSchema is the static description of one mapped struct field.
type FieldSchema struct {
	// GoName is the declared field name.
	GoName string
	// WireName is the parameter name sent on the wire.
	WireName string
	// Required fields are mapped even when they hold the zero value.
	Required bool
	// OmitEmpty opts an enum field out of the enum-required default.
	OmitEmpty bool

	index  []int
	tagged bool
}

// Schema lists the mapped fields of a struct type in declaration order.
type Schema struct {
	Type   reflect.Type
	Fields []FieldSchema
}

var schemas sync.Map // reflect.Type -> *Schema

// Register installs a hand-written schema for the struct type of sample,
// replacing the one derived from struct tags. Fields not listed are not mapped.
func Register(sample any, fields ...FieldSchema) error {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("params: cannot register schema for %T, a struct is required", sample)
	}

	resolved := make([]FieldSchema, 0, len(fields))
	for _, f := range fields {
		sf, ok := t.FieldByName(f.GoName)
		if !ok {
			return fmt.Errorf("params: %s has no field %s", t, f.GoName)
		}
		if !sf.IsExported() {
			return fmt.Errorf("params: field %s.%s is not exported", t, f.GoName)
		}
		if f.WireName == "" {
			f.WireName = f.GoName
		}
		f.index = sf.Index
		resolved = append(resolved, f)
	}

	schemas.Store(t, &Schema{Type: t, Fields: resolved})
	return nil
}

// SchemaOf returns the schema of struct type t, deriving it from the `param`
// and `json` struct tags on first use.
//
// Fields of embedded structs are promoted with the encoding/json rules: when
// several fields share a wire name, the shallowest wins, a tagged field wins
// among equally shallow ones, and names left ambiguous are not mapped.
//
// Tag forms:
//
//	`param:"name"`            wire name override
//	`param:"name,required"`   map even when zero
//	`param:",omitempty"`      enum field mapped only when non-zero
//	`param:"-"`               never mapped (json:"-" has the same effect)
func SchemaOf(t reflect.Type) *Schema {
	if cached, ok := schemas.Load(t); ok {
		return cached.(*Schema)
	}
	var fields []FieldSchema
	collectFields(t, nil, map[reflect.Type]bool{t: true}, &fields)
	schema := &Schema{Type: t, Fields: dominantFields(fields)}
	actual, _ := schemas.LoadOrStore(t, schema)
	return actual.(*Schema)
}

// collectFields appends the fields of t depth first in declaration order. path
// holds the struct types being walked so recursive embedding terminates.
func collectFields(t reflect.Type, parent []int, path map[reflect.Type]bool, out *[]FieldSchema) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i

		if isIgnored(sf) {
			continue
		}
		if sf.Anonymous && !hasExplicitName(sf) {
			embedded := sf.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				if !path[embedded] {
					path[embedded] = true
					collectFields(embedded, index, path, out)
					delete(path, embedded)
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		field := parseTags(sf)
		field.index = index
		*out = append(*out, field)
	}
}

// dominantFields resolves wire name conflicts between promoted fields, keeping
// the declaration order of the survivors.
func dominantFields(fields []FieldSchema) []FieldSchema {
	byName := make(map[string][]int, len(fields))
	for i, f := range fields {
		byName[f.WireName] = append(byName[f.WireName], i)
	}

	keep := make([]bool, len(fields))
	for _, candidates := range byName {
		if winner, ok := dominantField(fields, candidates); ok {
			keep[winner] = true
		}
	}

	out := make([]FieldSchema, 0, len(fields))
	for i, f := range fields {
		if keep[i] {
			out = append(out, f)
		}
	}
	return out
}

func dominantField(fields []FieldSchema, candidates []int) (int, bool) {
	depth := len(fields[candidates[0]].index)
	for _, i := range candidates[1:] {
		depth = min(depth, len(fields[i].index))
	}

	var shallow, tagged []int
	for _, i := range candidates {
		if len(fields[i].index) != depth {
			continue
		}
		shallow = append(shallow, i)
		if fields[i].tagged {
			tagged = append(tagged, i)
		}
	}

	switch {
	case len(shallow) == 1:
		return shallow[0], true
	case len(tagged) == 1:
		return tagged[0], true
	}
	return 0, false
}

func isIgnored(sf reflect.StructField) bool {
	paramTag, hasParam := sf.Tag.Lookup("param")
	if paramTag == "-" {
		return true
	}
	_, jsonIgnored := jsonTagName(sf)
	return jsonIgnored && !hasParam
}

func parseTags(sf reflect.StructField) FieldSchema {
	field := FieldSchema{GoName: sf.Name}
	paramTag := sf.Tag.Get("param")
	jsonName, _ := jsonTagName(sf)

	name, options, _ := strings.Cut(paramTag, ",")
	for _, opt := range strings.Split(options, ",") {
		switch strings.TrimSpace(opt) {
		case "required":
			field.Required = true
		case "omitempty":
			field.OmitEmpty = true
		}
	}

	field.tagged = name != "" || jsonName != ""
	switch {
	case name != "":
		field.WireName = name
	case jsonName != "":
		field.WireName = jsonName
	default:
		field.WireName = sf.Name
	}
	return field
}

func jsonTagName(sf reflect.StructField) (name string, ignored bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

func hasExplicitName(sf reflect.StructField) bool {
	if name, _, _ := strings.Cut(sf.Tag.Get("param"), ","); name != "" {
		return true
	}
	name, _ := jsonTagName(sf)
	return name != ""
}
