package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/flicky/e-games-api/internal/apperror"
)

// respondError writes err as the JSON error payload. Errors that are not
// *apperror.Error are attached to the context for the request logger and
// surface as a generic 500.
func respondError(c *gin.Context, err error) {
	if appErr := apperror.From(err); appErr != nil {
		c.AbortWithStatusJSON(appErr.Status, appErr.Response())
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, apperror.Internal().Response())
}

// bindError converts a gin binding failure into a validation error.
func bindError(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apperror.Validation(msgs...)
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperror.Validation(fmt.Sprintf("The value '%s' is not valid.", numErr.Num))
	}
	return apperror.Validation("The request body is invalid.")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must be at most %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s field must be one of: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return fmt.Sprintf("The %s field is not a valid e-mail address.", field)
	case "url":
		return fmt.Sprintf("The %s field is not a valid URL.", field)
	case "phone":
		return fmt.Sprintf("The %s field is not a valid phone number.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation(fmt.Sprintf("The value '%s' is not valid.", raw))
	}
	return id, nil
}
