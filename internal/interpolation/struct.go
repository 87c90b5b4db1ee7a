package interpolation

import (
	"errors"
	"fmt"
	"reflect"
)

// InterpolateStruct expands environment variable references in string fields
// tagged `env_interpolation:"yes"`. The struct is modified in place; fields
// without the tag are left untouched.
func InterpolateStruct(v any) error {
	if v == nil {
		return nil
	}

	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("expected non-nil pointer to struct, got %T", v)
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("expected pointer to struct, got %T", v)
	}

	typ := val.Type()
	var errs []error
	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.Tag.Get("env_interpolation") != "yes" {
			continue
		}

		fv := val.Field(i)
		if fv.Kind() != reflect.String || !fv.CanSet() {
			errs = append(errs, fmt.Errorf("field %s: env_interpolation requires a settable string field", field.Name))
			continue
		}

		expanded, err := ExpandEnvVars(fv.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", field.Name, err))
			continue
		}
		fv.SetString(expanded)
	}
	return errors.Join(errs...)
}
