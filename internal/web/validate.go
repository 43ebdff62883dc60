package web

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// pgIdentRegex matches an unquoted PostgreSQL identifier (max 63 bytes).
var pgIdentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// newValidator returns a validator that reports JSON field names and knows
// the pgident tag.
func newValidator() *validator.Validate {
	v := validator.New()

	if err := v.RegisterValidation("pgident", isPgIdent); err != nil {
		panic(fmt.Sprintf("register pgident validator: %v", err))
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isPgIdent(fl validator.FieldLevel) bool {
	return pgIdentRegex.MatchString(fl.Field().String())
}

// validateStruct returns one message per failing field and an error
// wrapping errInvalidRequest.
func (s *Server) validateStruct(v any) ([]string, error) {
	err := s.validate.Struct(v)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, formatValidationError(fe))
	}
	return details, fmt.Errorf("%w: %s", errInvalidRequest, strings.Join(details, "; "))
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "pgident":
		return fmt.Sprintf("%s must start with a letter or underscore and contain only letters, digits and underscores (max 63)", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
