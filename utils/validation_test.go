package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Role  string `validate:"required,oneof=admin member"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Email: "a@example.com", Role: "admin"})
		assert.NoError(t, err)
	})

	t.Run("invalid struct reports fields", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Email: "not-an-email", Role: "owner"})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "Email")
		assert.Contains(t, fields, "Role")
	})

	t.Run("non validation error passes through", func(t *testing.T) {
		assert.False(t, IsValidationError(assert.AnError))
		assert.Nil(t, GetValidationFields(assert.AnError))
	})
}

func TestParseUUID(t *testing.T) {
	want := uuid.New()

	id, err := ParseUUID(want.String(), "company_id")
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = ParseUUID("not-a-uuid", "company_id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company_id")
}
