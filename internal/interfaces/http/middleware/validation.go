package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator reports JSON field names in errors and lets numeric rules
// such as gt=0 apply to decimal amounts.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

// decimalValue exposes a decimal to the validator as float64. Only the sign
// and rough magnitude matter for the rules in use; exact checks stay in the
// domain.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// FormatValidationErrors formats validation errors into the response envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, e := range ve {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
				Tag:     e.Tag(),
			})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation envelope
func HandleValidationError(c *gin.Context, err error) {
	resp := FormatValidationErrors(err, c.GetString(RequestIDKey))
	c.JSON(dto.GetHTTPStatus(dto.ErrCodeValidation), resp)
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must have at least " + e.Param() + " items"
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
