package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds and validates the request body, answering the 400 itself so
// handlers only deal with valid input.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, bindErrorMessage(err, out))

		return false
	}

	return true
}

func bindErrorMessage(err error, out interface{}) string {
	// validator errors (struct bind tags)

	var validatorErrors validator.ValidationErrors

	if errors.As(err, &validatorErrors) {
		parts := make([]string, 0, len(validatorErrors))

		for _, fieldError := range validatorErrors {
			field := jsonFieldName(out, fieldError.StructField())
			parts = append(parts, field+" "+validationMessage(fieldError.Tag(), fieldError.Param()))
		}

		return strings.Join(parts, "; ") + "."
	}

	// type mismatch

	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		field := typeError.Field

		if field == "" {
			field = "body"
		}

		return fmt.Sprintf("Field %q must be of type %s.", field, typeError.Type.String())
	}

	// bad json, truncated body, wrong content

	return "Invalid request body."
}

// jsonFieldName maps a struct field back to its json tag name.
func jsonFieldName(out interface{}, structField string) string {
	t := reflect.TypeOf(out)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	sf, ok := t.FieldByName(structField)

	if !ok {
		return structField
	}

	tag := sf.Tag.Get("json")

	name, _, _ := strings.Cut(tag, ",")

	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
