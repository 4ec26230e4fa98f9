package binder

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	errNotStructPointer = errors.New("target must be a non-nil pointer to struct")
	errSliceUnsupported = errors.New("slices are not supported")
)

// taggedField is a settable struct field bound to one request parameter.
type taggedField struct {
	name  string
	param string
	value reflect.Value
}

// taggedFields returns the exported fields of the struct v points to that
// carry tag. Untagged fields and fields tagged "-" are not bound.
func taggedFields(v any, tag string) ([]taggedField, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, errNotStructPointer
	}
	rv = rv.Elem()

	rt := rv.Type()
	var fields []taggedField
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		param, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
		if param == "" || param == "-" {
			continue
		}
		fields = append(fields, taggedField{
			name:  sf.Name,
			param: param,
			value: rv.Field(i),
		})
	}
	return fields, nil
}

// bindValues assigns values[param] to every field tagged with tag. Missing
// parameters leave the field untouched.
func bindValues(v any, tag string, values map[string][]string, bindErr error) error {
	fields, err := taggedFields(v, tag)
	if err != nil {
		return fmt.Errorf("%w: %v", bindErr, err)
	}
	for _, f := range fields {
		raw := values[f.param]
		if len(raw) == 0 {
			continue
		}
		if err := assign(f.value, raw); err != nil {
			return fmt.Errorf("%w: field %s: %v", bindErr, f.name, err)
		}
	}
	return nil
}

// assign parses raw into dst. Pointers are allocated on demand; slices take
// every value, splitting comma-separated ones; scalars take the first.
func assign(dst reflect.Value, raw []string) error {
	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assign(dst.Elem(), raw)

	case reflect.Slice:
		var items []string
		for _, r := range raw {
			for _, item := range strings.Split(r, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := parseScalar(out.Index(i), item); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	default:
		return parseScalar(dst, raw[0])
	}
}

func parseScalar(dst reflect.Value, s string) error {
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", s)
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		dst.SetFloat(n)
	case reflect.Bool:
		b, err := parseBool(s)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	default:
		return fmt.Errorf("unsupported type %s", dst.Type())
	}
	return nil
}

// parseBool accepts strconv.ParseBool forms plus on/off and yes/no.
func parseBool(s string) (bool, error) {
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
