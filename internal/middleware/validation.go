package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "csvaudit/internal/errors"
)

// Validator checks request structs against their validate tags
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their query or
// json tag name and knows the csvfile tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registering a static function on a fresh instance cannot fail.
	_ = v.RegisterValidation("csvfile", isCSVFileName)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct and returns an APIError listing every
// failed field, or nil.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.ErrValidation("", err.Error())
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "csvfile":
		return fmt.Sprintf("%s must be a plain .csv file name", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isCSVFileName accepts a bare file name ending in .csv
func isCSVFileName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || name != filepath.Base(name) {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// QueryInt reads an integer query parameter. Absent parameters yield def.
func QueryInt(r *http.Request, param string, def int) (int, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param))
	}
	return n, nil
}

// QueryOptionalInt reads an integer query parameter, returning nil when
// it is absent or empty
func QueryOptionalInt(r *http.Request, param string) (*int, error) {
	if r.URL.Query().Get(param) == "" {
		return nil, nil
	}
	n, err := QueryInt(r, param, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// QueryBool reads a boolean query parameter. Absent parameters yield def;
// a bare "?full" counts as true.
func QueryBool(r *http.Request, param string, def bool) (bool, error) {
	q := r.URL.Query()
	if !q.Has(param) {
		return def, nil
	}

	value := q.Get(param)
	if value == "" {
		return true, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a boolean", param))
	}
	return b, nil
}
