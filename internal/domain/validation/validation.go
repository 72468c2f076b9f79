package validation

import (
	stderrors "errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared struct validator with the engine's custom tags registered
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report json field names instead of Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		v.RegisterValidation("finite", validateFinite)
		validate = v
	})
	return validate
}

// Struct validates s and converts failures into a validation AppError carrying
// one detail entry per offending field. code is the AppError code to use.
func Struct(s interface{}, code string) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(code, "invalid input").WithCause(err)
	}

	details := make(map[string]interface{}, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := describe(fe)
		details[fe.Namespace()] = msg
		messages = append(messages, fmt.Sprintf("%s %s", fe.Field(), msg))
	}

	return errors.NewValidationError(code, strings.Join(messages, "; ")).WithDetails(details)
}

// ValidateProbability checks p lies in [0,1]
func ValidateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, p)
	}
	return nil
}

// ValidateFinite rejects NaN and infinities
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	return nil
}

func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "finite":
		return "must be a finite number"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
