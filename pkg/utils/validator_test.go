package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Ana"))
	assert.NoError(t, ValidateName("João Conceição"))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName("abcdefghijklmnopqrstuvwxyzabcdefghij"))
}

func TestValidateEmailAndPassword(t *testing.T) {
	assert.NoError(t, ValidateEmail("ana@aroeira.pt"))
	assert.Error(t, ValidateEmail("ana"))

	assert.NoError(t, ValidatePassword("12345678"))
	assert.Error(t, ValidatePassword("1234567"))

	assert.NoError(t, ValidatePasswordConfirmation("segredo12", "segredo12"))
	assert.Error(t, ValidatePasswordConfirmation("segredo12", "segredo13"))
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidations(v))

	assert.NoError(t, v.Struct(models.UpdateRoleRequest{Role: models.RoleModerator}))
	assert.Error(t, v.Struct(models.UpdateRoleRequest{Role: "owner"}))
}
