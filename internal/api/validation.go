package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/darkinowls/recipe-app-api/internal/models"
)

var validatorOnce sync.Once

// ConfigureValidator makes gin's validator report JSON field names.
func ConfigureValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
}

// bindingFields converts a binding failure into per-field messages. The
// boolean is false when the body could not be decoded at all.
func bindingFields(err error) (map[string][]string, bool) {
	fields := make(map[string][]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], friendlyMessage(fe))
		}
		return fields, true
	}

	for _, perr := range []error{models.ErrInvalidPrice, models.ErrPriceNegative, models.ErrPricePlaces, models.ErrPriceTooLarge} {
		if errors.Is(err, perr) {
			fields["price"] = []string{perr.Error()}
			return fields, true
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields[typeErr.Field] = []string{fmt.Sprintf("expected %s", typeErr.Type.Kind())}
		return fields, true
	}

	return nil, false
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
