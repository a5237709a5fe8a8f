package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for the users payloads.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure applies the tag name function and aliases to v.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("username", "max=50")
	v.RegisterAlias("personname", "max=100")
	v.RegisterAlias("uuid4", "uuid")
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + param + " is present"
	case "required_without":
		return "is required when " + param + " is not present"

	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"

	case "len":
		if param != "" {
			return fmt.Sprintf("must be exactly %s characters long", param)
		}
		return "invalid length"
	case "min":
		if param != "" {
			if isNumberKind(fe.Kind()) {
				return "must be at least " + param
			}
			return "must be at least " + param + " characters long"
		}
		return "too small"
	case "max":
		if param != "" {
			if isNumberKind(fe.Kind()) {
				return "must be at most " + param
			}
			return "must be at most " + param + " characters long"
		}
		return "too large"

	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "alphanum":
		return "must contain alphanumeric characters only"
	case "printascii":
		return "must contain printable ASCII characters only"
	case "datetime":
		if param != "" {
			return "must match datetime format: " + param
		}
		return "must be a valid datetime"

	case "username":
		return "must be at most 50 characters long"
	case "personname":
		return "must be at most 100 characters long"

	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
