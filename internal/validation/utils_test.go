package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,min=2"`
	Mode  string `validate:"omitempty,oneof=fast slow"`
}

func TestExtractValidationErrorFromTags(t *testing.T) {
	err := validator.New().Struct(signupPayload{Email: "not-an-email", Name: "A", Mode: "warp"})
	require.Error(t, err)

	msg, fieldErrors := ExtractValidationError(err)

	assert.Equal(t, "Validation failed", msg)
	require.Len(t, fieldErrors, 3)

	byField := map[string]string{}
	for _, fe := range fieldErrors {
		byField[fe.Field] = fe.Error
	}
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be at least 2 characters", byField["name"])
	assert.Equal(t, "must be one of: fast slow", byField["mode"])
}

func TestExtractValidationErrorFromCustomErrors(t *testing.T) {
	err := CustomValidationErrors{
		{Field: "meetingLink", Message: "is required"},
	}

	msg, fieldErrors := ExtractValidationError(err)

	assert.Equal(t, "Validation failed", msg)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "meetingLink", fieldErrors[0].Field)
	assert.Equal(t, "is required", fieldErrors[0].Error)
}

func TestExtractValidationErrorUnknownType(t *testing.T) {
	msg, fieldErrors := ExtractValidationError(assert.AnError)

	assert.Equal(t, assert.AnError.Error(), msg)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "", fieldErrors[0].Field)
}
