package codec

import (
	"encoding/hex"
	"fmt"
	"net"
	"reflect"
	"sort"
	"strings"
)

// Render produces a multi-line, indented human-readable representation
// suitable for logging: nested elements (options inside options, relay
// chains) are rendered recursively with deeper indentation.
func Render(e Element) string {
	var b strings.Builder
	renderInto(&b, e, 0)
	return b.String()
}

func renderInto(b *strings.Builder, e Element, depth int) {
	indent := strings.Repeat("  ", depth)
	name := className(e)
	fmt.Fprintf(b, "%s%s\n", indent, name)

	if u, ok := e.(Unknown); ok {
		fmt.Fprintf(b, "%s  raw: %s\n", indent, renderBytes(u.Raw()))
		return
	}

	v := reflect.ValueOf(e)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	renderFields(b, v, depth+1)
}

func renderFields(b *strings.Builder, v reflect.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)

		// Embedded struct (e.g. relayMessage): inline its fields at the
		// same depth instead of naming the embedded field.
		if f.Anonymous && fv.Kind() == reflect.Struct {
			renderFields(b, fv, depth)
			continue
		}

		switch {
		case isElementSlice(fv):
			fmt.Fprintf(b, "%s%s:\n", indent, f.Name)
			for j := 0; j < fv.Len(); j++ {
				child := fv.Index(j).Interface().(Element)
				renderInto(b, child, depth+1)
			}
		case isElement(fv):
			fmt.Fprintf(b, "%s%s:\n", indent, f.Name)
			renderInto(b, fv.Interface().(Element), depth+1)
		default:
			fmt.Fprintf(b, "%s%s: %s\n", indent, f.Name, renderScalar(fv))
		}
	}
}

func isElement(v reflect.Value) bool {
	if !v.IsValid() || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(Element)
	return ok
}

func isElementSlice(v reflect.Value) bool {
	if v.Kind() != reflect.Slice {
		return false
	}
	et := v.Type().Elem()
	return et.Implements(reflect.TypeOf((*Element)(nil)).Elem())
}

func renderScalar(v reflect.Value) string {
	switch iv := v.Interface().(type) {
	case net.IP:
		return iv.String()
	case []byte:
		return renderBytes(iv)
	}
	if v.Kind() == reflect.Array && v.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, v.Len())
		for i := 0; i < v.Len(); i++ {
			b[i] = byte(v.Index(i).Uint())
		}
		return renderBytes(b)
	}
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Slice {
		// classData and similar [][]byte fields.
		parts := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts[i] = renderScalar(v.Index(i))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v.Interface())
}

func renderBytes(b []byte) string {
	if isASCIIPrintable(b) {
		return string(b)
	}
	return "hex:" + hex.EncodeToString(b)
}

func isASCIIPrintable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func className(e Element) string {
	v := reflect.ValueOf(e)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return v.Type().Name()
}

// ToJSON produces a machine-readable form: each element renders as
// {"ClassName": {field: value, ...}}, with IPv6 addresses as canonical
// strings, ASCII-printable byte strings as strings, and non-printable byte
// strings as "hex:....".
func ToJSON(e Element) interface{} {
	return map[string]interface{}{className(e): jsonFields(e)}
}

func jsonFields(e Element) interface{} {
	if u, ok := e.(Unknown); ok {
		return map[string]interface{}{"raw": jsonBytes(u.Raw())}
	}

	v := reflect.ValueOf(e)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	out := map[string]interface{}{}
	collectJSONFields(v, out)
	return out
}

func collectJSONFields(v reflect.Value, out map[string]interface{}) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)

		if f.Anonymous && fv.Kind() == reflect.Struct {
			collectJSONFields(fv, out)
			continue
		}

		switch {
		case isElementSlice(fv):
			items := make([]interface{}, fv.Len())
			for j := 0; j < fv.Len(); j++ {
				items[j] = ToJSON(fv.Index(j).Interface().(Element))
			}
			out[f.Name] = items
		case isElement(fv):
			out[f.Name] = ToJSON(fv.Interface().(Element))
		default:
			out[f.Name] = jsonScalar(fv)
		}
	}
}

func jsonScalar(v reflect.Value) interface{} {
	switch iv := v.Interface().(type) {
	case net.IP:
		return iv.String()
	case []byte:
		return jsonBytes(iv)
	}
	if v.Kind() == reflect.Array && v.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, v.Len())
		for i := 0; i < v.Len(); i++ {
			b[i] = byte(v.Index(i).Uint())
		}
		return jsonBytes(b)
	}
	if v.Kind() == reflect.Slice {
		items := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = jsonScalar(v.Index(i))
		}
		return items
	}
	return v.Interface()
}

func jsonBytes(b []byte) string { return renderBytes(b) }

// sortedClasses returns the classes of a grammar rule set in sorted order,
// for deterministic iteration.
func sortedClasses(m map[Class]Occurrence) []Class {
	out := make([]Class, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
