// Package enums decides how integer-backed enumeration types travel on the
// wire: as their ordinal, or as a member name or tag.
//
// Go has no enum declarations, so every type that should be treated as an
// enum is registered once with a Definition. The registry is consulted by the
// params package when mapping request fields and by the JSON helpers in this
// package when (de)serializing bodies.
package enums

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Mode selects how an enum value is rendered.
type Mode int

const (
	// Auto renders data-contract enums as strings and plain enums as numbers.
	Auto Mode = iota
	// Number always renders the ordinal.
	Number
	// String always renders the member tag, or the member name when no tag is declared.
	String
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Number:
		return "Number"
	case String:
		return "String"
	default:
		return "Auto"
	}
}

// ParseMode converts a configuration value into a Mode. Matching is
// case-insensitive and an empty string yields Auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "number":
		return Number, nil
	case "string":
		return String, nil
	}
	return Auto, fmt.Errorf("enums: unknown serialization mode %q", s)
}

// Integer is the set of types an enum may be declared on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Member describes one declared value of an enum.
type Member[E Integer] struct {
	Value E
	Name  string
	// Tag overrides Name on the wire when set.
	Tag string
}

// Definition is the registration table for one enum type.
type Definition[E Integer] struct {
	// DataContract marks the enum as having a stable string wire format.
	DataContract bool
	Members      []Member[E]
	// Default is used when an unknown tag is read back from JSON.
	Default *E
}

type member struct {
	name string
	tag  string
}

func (m member) wire() string {
	if m.tag != "" {
		return m.tag
	}
	return m.name
}

// Type is the type-erased form of a registered Definition.
type Type struct {
	goType       reflect.Type
	unsigned     bool
	DataContract bool
	members      map[int64]member
	lookup       map[string]int64
	fallback     *int64
}

var (
	registryMu sync.RWMutex
	registry   = map[reflect.Type]*Type{}
)

// Register records the definition for E, replacing any earlier one.
func Register[E Integer](def Definition[E]) *Type {
	goType := reflect.TypeFor[E]()
	t := &Type{
		goType:       goType,
		unsigned:     isUnsigned(goType.Kind()),
		DataContract: def.DataContract,
		members:      make(map[int64]member, len(def.Members)),
		lookup:       make(map[string]int64, len(def.Members)*2),
	}
	for _, m := range def.Members {
		ordinal := int64(m.Value)
		t.members[ordinal] = member{name: m.Name, tag: m.Tag}
		t.lookup[strings.ToLower(m.Name)] = ordinal
		if m.Tag != "" {
			t.lookup[strings.ToLower(m.Tag)] = ordinal
		}
	}
	if def.Default != nil {
		ordinal := int64(*def.Default)
		t.fallback = &ordinal
	}

	registryMu.Lock()
	registry[goType] = t
	registryMu.Unlock()
	return t
}

// Lookup returns the registered definition for t, if any. Pointer types are
// not dereferenced.
func Lookup(t reflect.Type) (*Type, bool) {
	if t == nil {
		return nil, false
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	et, ok := registry[t]
	return et, ok
}

// IsEnum reports whether t is a registered enum type.
func IsEnum(t reflect.Type) bool {
	_, ok := Lookup(t)
	return ok
}

// Resolve renders v according to mode. The result is an int64 ordinal or a
// string; ok is false when v is not a registered enum.
func Resolve(v any, mode Mode) (any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	return ResolveValue(rv, mode)
}

// ResolveValue is Resolve for callers that already hold a reflect.Value.
func ResolveValue(rv reflect.Value, mode Mode) (any, bool) {
	t, ok := Lookup(rv.Type())
	if !ok {
		return nil, false
	}
	return t.Resolve(ordinalOf(rv), mode), true
}

// Resolve renders the ordinal of this enum according to mode.
func (t *Type) Resolve(ordinal int64, mode Mode) any {
	if mode == Number || (mode == Auto && !t.DataContract) {
		return ordinal
	}
	if m, ok := t.members[ordinal]; ok {
		return m.wire()
	}
	return t.format(ordinal)
}

// Name returns the declared member name for ordinal.
func (t *Type) Name(ordinal int64) (string, bool) {
	m, ok := t.members[ordinal]
	return m.name, ok
}

// Parse finds the ordinal whose tag or name matches s, ignoring case.
func (t *Type) Parse(s string) (int64, bool) {
	ordinal, ok := t.lookup[strings.ToLower(strings.TrimSpace(s))]
	return ordinal, ok
}

func (t *Type) format(ordinal int64) string {
	if t.unsigned {
		return strconv.FormatUint(uint64(ordinal), 10)
	}
	return strconv.FormatInt(ordinal, 10)
}

func ordinalOf(rv reflect.Value) int64 {
	if isUnsigned(rv.Kind()) {
		return int64(rv.Uint())
	}
	return rv.Int()
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func init() {
	weekdays := make([]Member[time.Weekday], 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekdays = append(weekdays, Member[time.Weekday]{Value: d, Name: d.String()})
	}
	Register(Definition[time.Weekday]{Members: weekdays})

	months := make([]Member[time.Month], 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, Member[time.Month]{Value: m, Name: m.String()})
	}
	Register(Definition[time.Month]{Members: months})
}
