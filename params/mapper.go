package params

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-api-rest-client/enums"
	"github.com/deploymenttheory/go-api-rest-client/serializer"
)

// Field is one key-value pair supplied by a Source.
type Field struct {
	Name     string
	Value    any
	Required bool
}

// Source is implemented by objects that list their own parameters instead of
// being walked through their struct schema.
type Source interface {
	Parameters() []Field
}

// Mapper turns data objects into request parameters. Values that are neither
// strings, enums, scalars nor sequences are encoded with Serializer.
type Mapper struct {
	Serializer serializer.Serializer
}

// NewMapper returns a Mapper encoding complex values with s.
func NewMapper(s serializer.Serializer) *Mapper {
	return &Mapper{Serializer: s}
}

// Default is the Mapper used by the package-level Apply.
var Default = NewMapper(serializer.NewJSON())

// Apply maps obj onto target using the default mapper.
func Apply(target Target, obj any, loc Location, mode enums.Mode) error {
	return Default.Apply(target, obj, loc, mode)
}

// Apply adds one parameter to target for every eligible field of obj.
//
// A field is eligible when it holds a non-zero value, when it is marked
// required, or when it is a non-pointer enum not marked omitempty. Nil
// objects and values that are neither structs, maps nor Sources are ignored.
// obj is never modified.
func (m *Mapper) Apply(target Target, obj any, loc Location, mode enums.Mode) error {
	if target == nil || obj == nil {
		return nil
	}
	if src, ok := obj.(Source); ok {
		return m.applySource(target, src, loc, mode)
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return m.applyStruct(target, rv, loc, mode)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return m.applyMap(target, rv, loc, mode)
		}
	}
	return nil
}

func (m *Mapper) applyStruct(target Target, rv reflect.Value, loc Location, mode enums.Mode) error {
	schema := SchemaOf(rv.Type())
	for _, field := range schema.Fields {
		fv, err := rv.FieldByIndexErr(field.index)
		if err != nil {
			// nil embedded pointer: none of its fields are present
			continue
		}
		required := field.Required || (enums.IsEnum(fv.Type()) && !field.OmitEmpty)
		if !required && fv.IsZero() {
			continue
		}
		value, err := m.convert(fv, mode)
		if err != nil {
			return fmt.Errorf("params: field %s: %w", field.GoName, err)
		}
		target.AddParameter(field.WireName, value, loc)
	}
	return nil
}

func (m *Mapper) applyMap(target Target, rv reflect.Value, loc Location, mode enums.Mode) error {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	for _, key := range keys {
		fv := rv.MapIndex(key)
		if isZeroEntry(fv) {
			continue
		}
		value, err := m.convert(fv, mode)
		if err != nil {
			return fmt.Errorf("params: key %s: %w", key.String(), err)
		}
		target.AddParameter(key.String(), value, loc)
	}
	return nil
}

func (m *Mapper) applySource(target Target, src Source, loc Location, mode enums.Mode) error {
	for _, field := range src.Parameters() {
		fv := reflect.ValueOf(field.Value)
		if !field.Required && isZeroEntry(fv) {
			continue
		}
		value, err := m.convert(fv, mode)
		if err != nil {
			return fmt.Errorf("params: parameter %s: %w", field.Name, err)
		}
		target.AddParameter(field.Name, value, loc)
	}
	return nil
}

// isZeroEntry reports whether a map or Source value counts as absent. Values
// stored in an interface are judged by their dynamic type.
func isZeroEntry(v reflect.Value) bool {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	return !v.IsValid() || v.IsZero()
}

func (m *Mapper) convert(v reflect.Value, mode enums.Mode) (any, error) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}

	if resolved, ok := enums.ResolveValue(v, mode); ok {
		return resolved, nil
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v.Interface(), nil
	case reflect.Slice, reflect.Array:
		return m.join(v, mode), nil
	}

	if m.Serializer == nil {
		return nil, fmt.Errorf("no serializer for %s", v.Type())
	}
	text, err := m.Serializer.Serialize(v.Interface())
	if err != nil {
		return nil, err
	}
	return strings.Trim(text, `"`), nil
}

// join flattens a sequence into a comma separated list. Enum elements are
// resolved individually.
func (m *Mapper) join(v reflect.Value, mode enums.Mode) string {
	items := make([]string, v.Len())
	for i := range items {
		ev := v.Index(i)
		for ev.Kind() == reflect.Pointer || ev.Kind() == reflect.Interface {
			if ev.IsNil() {
				break
			}
			ev = ev.Elem()
		}
		if (ev.Kind() == reflect.Pointer || ev.Kind() == reflect.Interface) && ev.IsNil() {
			continue
		}
		if resolved, ok := enums.ResolveValue(ev, mode); ok {
			items[i] = FormatValue(resolved)
			continue
		}
		items[i] = FormatValue(ev.Interface())
	}
	return strings.Join(items, ",")
}
