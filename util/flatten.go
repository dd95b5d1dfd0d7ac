// Package util holds small helpers shared by config printers.
package util

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Flatten walks the exported fields of struct v and returns sorted
// `path, value` rows, nested structs joined with dots under prefix.
// Fields implementing fmt.Stringer are rendered with String, interface typed
// fields (loggers, reporters) are left out.
func Flatten(prefix string, v interface{}) [][]string {
	rows := make(map[string]string)
	flatten(rows, prefix, reflect.ValueOf(v))

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, []string{k, rows[k]})
	}
	return out
}

func flatten(rows map[string]string, parent string, v reflect.Value) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		if parent != `` {
			rows[parent] = toString(v)
		}
		return
	}

	types := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := types.Field(i)
		if field.PkgPath != `` {
			continue
		}

		path := field.Name
		if parent != `` {
			path = parent + `.` + path
		}

		f := v.Field(i)
		switch {
		case f.Kind() == reflect.Interface:
			continue
		case isNil(f):
			rows[path] = `<nil>`
		case f.Type() == durationType:
			rows[path] = time.Duration(f.Int()).String()
		case f.Kind() != reflect.Struct && f.Type().Implements(reflect.TypeOf((*fmt.Stringer)(nil)).Elem()):
			rows[path] = f.Interface().(fmt.Stringer).String()
		case f.Kind() == reflect.Ptr, f.Kind() == reflect.Struct:
			flatten(rows, path, f)
		default:
			rows[path] = toString(f)
		}
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func:
		return v.IsNil()
	}
	return false
}

func toString(value reflect.Value) string {
	switch value.Kind() {
	case reflect.Map, reflect.Array, reflect.Slice:
		return fmt.Sprintf(`%+v`, value.Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf(`%d`, value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf(`%d`, value.Uint())
	case reflect.Bool:
		return fmt.Sprint(value.Bool())
	case reflect.Float64, reflect.Float32:
		return fmt.Sprint(value.Float())
	case reflect.Func:
		return runtime.FuncForPC(value.Pointer()).Name()
	default:
		return value.String()
	}
}
