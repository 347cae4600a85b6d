package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"

	"github.com/idelchi/minizip/internal/encryption"
)

// registerValidations adds the custom validators with their error messages and
// reports fields by their label.
func registerValidations(validator *validator.Validator) error {
	if err := validator.RegisterValidationAndTranslation(
		"exclusive",
		validateExclusive,
		"{0} is mutually exclusive with {1}",
	); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	names := make([]string, 0, len(encryption.Algorithms()))
	for _, alg := range encryption.Algorithms() {
		names = append(names, alg.String())
	}

	if err := validator.RegisterValidationAndTranslation(
		"algorithm",
		validateAlgorithm,
		"{0} must be one of "+strings.Join(names, ", "),
	); err != nil {
		return fmt.Errorf("registering algorithm validation: %w", err)
	}

	validator.Validator().RegisterTagNameFunc(labelOf)

	return nil
}

func labelOf(fld reflect.StructField) string {
	const splitSize = 2

	name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
	if name == "" || name == "-" {
		return fld.Name
	}

	return name
}

// fieldByLabel returns the field of the struct parent whose label is label.
func fieldByLabel(parent reflect.Value, label string) reflect.Value {
	parent = reflect.Indirect(parent)

	if parent.Kind() != reflect.Struct {
		return reflect.Value{}
	}

	for i := range parent.NumField() {
		if labelOf(parent.Type().Field(i)) == label {
			return parent.Field(i)
		}
	}

	return reflect.Value{}
}

// validateExclusive checks that a field and the field labelled by the parameter are
// not both set. Strings count as set when non-empty, booleans when true.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	other := fieldByLabel(fl.Parent(), fl.Param())

	if !field.IsValid() || !other.IsValid() {
		return true
	}

	return !(isSet(field) && isSet(other))
}

func isSet(v reflect.Value) bool {
	switch v.Kind() { //nolint:exhaustive // only the kinds used in Config
	case reflect.String:
		return v.String() != ""
	case reflect.Bool:
		return v.Bool()
	default:
		return !v.IsZero()
	}
}

// validateAlgorithm accepts the empty string (default algorithm) and every known name.
func validateAlgorithm(fl validator.FieldLevel) bool {
	_, err := encryption.ParseAlgorithm(fl.Field().String())

	return err == nil
}
