package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError describes a single invalid field in a request body.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// RespondBindError writes a 400 for a failed body bind. Validator failures get
// field-level detail, anything else a generic message.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: fieldErrorMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}

func fieldErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "gt":
		return err.Field() + " must be greater than " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}
