// Package probe provides runtime helpers for debugging failed map-key and
// attribute lookups. Each helper is a drop-in replacement for the failing
// access: on success it prints a short note and returns the value; on
// failure it prints the available keys or attributes (with similarity-ranked
// suggestions for attributes) and returns a typed error carrying the same
// failure the direct access would have produced. The helpers add visibility;
// they never mask the failure.
package probe

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"

	"pkgscout/internal/namedist"
)

// Output receives all diagnostic printing. Swappable for tests.
var Output io.Writer = os.Stdout

// maxAttrSuggestions caps the similarity-ranked suggestion list.
const maxAttrSuggestions = 10

// KeyError reports a missing map key.
type KeyError struct {
	Key any
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key not found: %v", e.Key)
}

// AttrError reports a missing field or method.
type AttrError struct {
	Name string
	Type string
}

func (e *AttrError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.Type, e.Name)
}

// TryKey attempts m[key]. On success it prints a short note (warning when
// the stored value is nil) and returns the value; on a miss it prints the
// missing key, dumps the available keys, and returns a *KeyError.
func TryKey[M ~map[K]V, K comparable, V any](m M, key K) (V, error) {
	value, ok := m[key]
	if !ok {
		fmt.Fprintf(Output, "KeyError: missing key -> %v\n", key)
		DumpKeysOrAttrs(m)
		return value, &KeyError{Key: key}
	}
	if isNil(reflect.ValueOf(value)) {
		fmt.Fprintf(Output, "[probe_key] Found key %v but value is nil; verify the intended key or upstream logic.\n", key)
	} else {
		fmt.Fprintf(Output, "[probe_key] OK: key %v is present (type=%T). If the earlier failure was at a different site, probe that line instead.\n", key, value)
	}
	return value, nil
}

// TryAttr attempts to read a field or call-less method reference named name
// from obj via reflection. Exported fields (including fields promoted from
// embedded structs) are returned as values; methods are returned as bound
// method values. On a miss it dumps the available attributes, prints
// similarity-ranked name suggestions gathered across the embedded-type
// chain, and returns an *AttrError.
func TryAttr(obj any, name string) (any, error) {
	v := reflect.ValueOf(obj)
	if v.IsValid() {
		if value, ok := lookupAttr(v, name); ok {
			if isNil(value) {
				fmt.Fprintf(Output, "[probe_attr] Found attribute %q but value is nil; verify the intended attribute or upstream logic.\n", name)
			} else {
				fmt.Fprintf(Output, "[probe_attr] OK: attribute %q is present (type=%s). If the earlier failure was at a different site, probe that line instead.\n", name, value.Type())
			}
			return value.Interface(), nil
		}
	}

	typeName := fmt.Sprintf("%T", obj)
	fmt.Fprintf(Output, "AttributeError: missing attribute -> %q\n", name)
	DumpKeysOrAttrs(obj)

	if suggestions := rankedAttrs(obj, name); len(suggestions) > 0 {
		fmt.Fprintf(Output, "SUGGEST_ATTRS (maybe related by name similarity): %v\n", suggestions)
		fmt.Fprintln(Output, "HINT: Suggestions are based on string similarity; try them directly or probe nested attributes if needed.")
	}
	return nil, &AttrError{Name: name, Type: typeName}
}

// DumpKeysOrAttrs prints everything reachable on obj: sorted keys for maps,
// declared keys for values exposing Keys() []string, else exported field and
// method names. Always prints the runtime type.
func DumpKeysOrAttrs(obj any) {
	switch o := obj.(type) {
	case interface{ Keys() []string }:
		keys := append([]string(nil), o.Keys()...)
		sort.Strings(keys)
		fmt.Fprintf(Output, "MODEL_KEYS: %v\n", keys)
	default:
		v := reflect.ValueOf(obj)
		if v.IsValid() && v.Kind() == reflect.Map {
			keys := make([]string, 0, v.Len())
			for _, k := range v.MapKeys() {
				keys = append(keys, fmt.Sprintf("%v", k.Interface()))
			}
			sort.Strings(keys)
			fmt.Fprintf(Output, "MAP_KEYS: %v\n", keys)
			break
		}
		attrs := attrNames(obj)
		fmt.Fprintf(Output, "ATTRS: %v\n", attrs)
		fmt.Fprintln(Output, "HINT: Attributes may themselves contain nested attributes; probe them individually if needed.")
	}
	fmt.Fprintf(Output, "TYPE: %T\n", obj)
}

// lookupAttr resolves name as an exported field (promoted fields included)
// or a method on the value or pointer receiver.
func lookupAttr(v reflect.Value, name string) (reflect.Value, bool) {
	deref := v
	for deref.Kind() == reflect.Pointer {
		if deref.IsNil() {
			return reflect.Value{}, false
		}
		deref = deref.Elem()
	}

	if deref.Kind() == reflect.Struct {
		if field := deref.FieldByName(name); field.IsValid() && field.CanInterface() {
			return field, true
		}
	}
	if m := v.MethodByName(name); m.IsValid() {
		return m, true
	}
	// Pointer-receiver methods need an addressable value.
	if v.Kind() != reflect.Pointer && v.CanAddr() {
		if m := v.Addr().MethodByName(name); m.IsValid() {
			return m, true
		}
	}
	if v.Kind() != reflect.Pointer && deref.Kind() == reflect.Struct {
		ptr := reflect.New(deref.Type())
		ptr.Elem().Set(deref)
		if m := ptr.MethodByName(name); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}

// attrNames collects exported field names (walking the embedded-type chain)
// and method names of both the value and pointer receiver.
func attrNames(obj any) []string {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return nil
	}
	set := make(map[string]struct{})

	t := v.Type()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		collectFields(t, set)
	}
	for i := 0; i < v.Type().NumMethod(); i++ {
		set[v.Type().Method(i).Name] = struct{}{}
	}
	if t.Kind() == reflect.Struct {
		pt := reflect.PointerTo(t)
		for i := 0; i < pt.NumMethod(); i++ {
			set[pt.Method(i).Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// collectFields walks a struct type's fields, descending into embedded
// structs, the analogue of scanning a class hierarchy for declared
// attributes.
func collectFields(t reflect.Type, set map[string]struct{}) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() {
			set[f.Name] = struct{}{}
		}
		if f.Anonymous {
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFields(ft, set)
			}
		}
	}
}

func rankedAttrs(obj any, name string) []string {
	names := attrNames(obj)
	if len(names) == 0 {
		return nil
	}
	ranked := namedist.RankNames(names, name)
	if len(ranked) > maxAttrSuggestions {
		ranked = ranked[:maxAttrSuggestions]
	}
	return ranked
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
