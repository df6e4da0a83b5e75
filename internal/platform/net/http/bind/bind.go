// Package bind decodes query strings into option structs and validates them
package bind

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/validate"
)

// Query fills the fields of T tagged `query:"name"` from the request query string,
// then validates T. Supported kinds are string, bool, ints and comma separated []string.
// Absent or blank parameters leave the field at its zero value
func Query[T any](r *http.Request) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	if rv.Kind() != reflect.Struct {
		return dst, perr.Internalf("bind: %T is not a struct", dst)
	}
	q := r.URL.Query()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := sf.Tag.Get("query")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		if err := set(rv.Field(i), raw); err != nil {
			return dst, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s: %v", name, err), name)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

func set(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return perr.Newf(perr.ErrorCodeValidation, "must be a boolean")
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return perr.Newf(perr.ErrorCodeValidation, "must be an integer")
		}
		f.SetInt(n)
	case reflect.Slice:
		if f.Type().Elem().Kind() != reflect.String {
			return perr.Internalf("unsupported slice type %s", f.Type())
		}
		var out []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		f.Set(reflect.ValueOf(out))
	default:
		return perr.Internalf("unsupported field type %s", f.Type())
	}
	return nil
}
