package enums

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// MarshalJSON writes v the way the serializer expects enums on the wire:
// data-contract members as their tag string, everything else as a number.
// Enum types call it from their own MarshalJSON method.
func MarshalJSON[E Integer](v E) ([]byte, error) {
	t, ok := Lookup(reflect.TypeFor[E]())
	if !ok {
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	}
	ordinal := int64(v)
	if t.DataContract {
		if m, found := t.members[ordinal]; found {
			return json.Marshal(m.wire())
		}
	}
	return []byte(t.format(ordinal)), nil
}

// UnmarshalJSON reads a number or a tag/name string into v. Unknown strings
// fall back to the registered default member when one is declared.
func UnmarshalJSON[E Integer](data []byte, v *E) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	t, registered := Lookup(reflect.TypeFor[E]())

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		if registered {
			if ordinal, ok := t.Parse(text); ok {
				*v = E(ordinal)
				return nil
			}
		}
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			*v = E(n)
			return nil
		}
		if registered && t.fallback != nil {
			*v = E(*t.fallback)
			return nil
		}
		return fmt.Errorf("enums: unknown %s value %q", reflect.TypeFor[E]().Name(), text)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(s, 10, 64)
		if uerr != nil {
			return fmt.Errorf("enums: cannot read %s from %s: %w", reflect.TypeFor[E]().Name(), s, err)
		}
		n = int64(u)
	}
	*v = E(n)
	return nil
}
