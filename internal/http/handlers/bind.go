package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes and validates the body into out, answering 400 on failure
// and 413 once MaxBodyBytes cuts the body off.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	var tooLarge *http.MaxBytesError

	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", gin.H{"limit": tooLarge.Limit})
		return false
	}

	if err != nil {
		RespondBadRequest(ctx, "invalid_request", bindErrorMessage(err, out), parseBindError(err, out))

		return false
	}

	return true
}

func bindErrorMessage(err error, out interface{}) string {
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		rootType := baseStructType(out)
		names := make([]string, 0, len(validatorError))
		for _, fe := range validatorError {
			names = append(names, jsonFieldName(rootType, fe.StructField()))
		}
		return "Missing required fields: " + strings.Join(names, ", ")
	}

	return "Invalid request body"
}

func parseBindError(err error, out interface{}) interface{} {
	rootType := baseStructType(out)

	// validator errors (struct bind tags)
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			fields = append(fields, FieldError{
				Field:   jsonFieldName(rootType, fieldError.StructField()),
				Rule:    fieldError.Tag(),
				Message: validationMessage(fieldError.Tag()),
			})
		}
		return gin.H{"fields": fields}
	}

	// empty body
	if errors.Is(err, io.EOF) {
		return gin.H{"json": "empty_body"}
	}

	// in the event of bad json
	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	// in the event of a type mismatch
	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := jsonFieldName(rootType, unmatchedTypeError.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{
				{
					Field:   field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
				},
			},
		}
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// jsonFieldName maps a Go field name to its json tag. Request bodies here are
// flat, so only top-level fields are resolved.
func jsonFieldName(rootType reflect.Type, name string) string {
	name = strings.TrimSpace(name)

	if rootType == nil || name == "" {
		return name
	}

	sf, ok := rootType.FieldByName(name)
	if !ok {
		// UnmarshalTypeError already reports the json name
		return name
	}

	tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return sf.Name
	}

	return tag
}

func validationMessage(rule string) string {
	switch rule {
	case "required":
		return "is required"
	default:
		return "failed " + rule + " validation"
	}
}
