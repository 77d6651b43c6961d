// Package env fills configuration structs from environment variables.
//
// Fields opt in with an env tag naming the variable and may carry a default:
//
//	Port    string        `env:"CYCLESYNC_HTTP_PORT" default:"8080"`
//	Timeout time.Duration `env:"CYCLESYNC_MODEL_TIMEOUT" default:"30s"`
//
// Nested structs are walked recursively. After a nested struct is filled its
// Validate method runs, if it has one; the root is validated last.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotStructPointer is returned when Load is not given a pointer to a struct.
	ErrNotStructPointer = errors.New("env: argument must be a pointer to a struct")

	// ErrUnsupportedType is returned for a tagged field of a type Load cannot set.
	ErrUnsupportedType = errors.New("env: unsupported field type")
)

// Validator is implemented by config structs that check themselves.
type Validator interface {
	Validate() error
}

// FieldError reports a variable whose value could not be parsed into its field.
type FieldError struct {
	Var   string
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s=%q (field %s): %v", e.Var, e.Value, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

// Load fills *v from the environment and validates it.
//
// An unset variable leaves the field at its default tag value, or untouched
// without one. A variable that is set but empty is parsed as given: string
// fields become empty and numeric fields fail.
//
// Supported kinds: string, bool, signed integers (range checked), floats,
// time.Duration and []string (comma separated, blanks dropped).
func Load(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrNotStructPointer, v)
	}
	if err := fill(rv.Elem()); err != nil {
		return err
	}
	return validate(rv)
}

func fill(val reflect.Value) error {
	for _, sf := range reflect.VisibleFields(val.Type()) {
		// Promoted fields are reached through their embedded struct.
		if !sf.IsExported() || len(sf.Index) > 1 {
			continue
		}
		field := val.FieldByIndex(sf.Index)

		if sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
			if err := fill(field); err != nil {
				return err
			}
			if err := validate(field.Addr()); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := os.LookupEnv(name)
		if !ok {
			if raw, ok = sf.Tag.Lookup("default"); !ok {
				continue
			}
		}
		if err := set(field, raw); err != nil {
			return &FieldError{Var: name, Field: sf.Name, Value: raw, Err: err}
		}
	}
	return nil
}

func validate(ptr reflect.Value) error {
	if v, ok := ptr.Interface().(Validator); ok {
		return v.Validate()
	}
	return nil
}

func set(field reflect.Value, raw string) error {
	typ := field.Type()
	if typ == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch typ.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, typ.Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, typ.Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		if typ.Elem().Kind() != reflect.String {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
		}
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
