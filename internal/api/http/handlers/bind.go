package handlers

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// maxBytes limits the byte length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// bindJSON parses the body into out and validates it. Details map each
// offending JSON field to a message key.
func bindJSON(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errorutil.NewValidationError(map[string]any{"body": "invalidBody"})
	}
	return validateStruct(out)
}

func validateStruct(out interface{}) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errorutil.NewInternalError(err)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := details[fe.Field()]; seen {
			continue
		}
		details[fe.Field()] = messageKey(fe.Field(), fe.Tag())
	}
	return errorutil.NewValidationError(details)
}

func messageKey(field, rule string) string {
	switch rule {
	case "required":
		return "fieldRequired"
	case "email":
		return "invalidEmail"
	case "maxbytes":
		if field == "password" {
			return "passwordMaxLength"
		}
	case "oneof":
		if field == "role" {
			return "invalidRole"
		}
	case "min":
		switch field {
		case "password":
			return "passwordMinLength"
		case "name":
			return "nameMinLength"
		}
	}
	return "validationFailed"
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorutil.NewValidationError(map[string]any{"id": "invalidID"})
	}
	return id, nil
}
