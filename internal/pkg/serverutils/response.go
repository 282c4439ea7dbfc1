package serverutils

import (
	"fmt"
	"strings"

	"ai-chat-be/internal/apperr"

	"github.com/go-playground/validator/v10"
)

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

var validate = validator.New()

// ValidateRequest checks struct tags and folds violations into a single
// validation-failure error the handler middleware turns into a 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	ok := false
	if validationErrs, ok = err.(validator.ValidationErrors); !ok {
		return apperr.Wrap(apperr.KindValidationFailure, "invalid request body", err)
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperr.New(apperr.KindValidationFailure, "invalid request: "+strings.Join(fields, ", "))
}
