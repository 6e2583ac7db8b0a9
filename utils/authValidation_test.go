package utils

import (
	"testing"

	"Samagra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserData(t *testing.T) {
	assert.NoError(t, ValidateUserData("asha@example.com", "Str0ng!pass"))

	err := ValidateUserData("not-an-email", "Str0ng!pass")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "email")

	err = ValidateUserData("asha@example.com", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrPasswordTooShort.Error())

	err = ValidateUserData("asha@example.com", "alllowercase1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrPasswordNotComplex.Error())
}

func TestValidatePatientProfile(t *testing.T) {
	p := models.Patient{FirstName: "Asha", Phone: "9876543210", Gender: "female"}
	assert.NoError(t, ValidatePatientProfile(p))

	p.Phone = "1234567890"
	assert.Error(t, ValidatePatientProfile(p))

	p.Phone = "9876543210"
	p.Gender = "unknown"
	assert.Error(t, ValidatePatientProfile(p))
}

func TestValidateDoctorProfileNeedsSpecialization(t *testing.T) {
	d := models.Doctor{FirstName: "Ravi", Phone: "9123456789", Gender: "male"}
	err := ValidateDoctorProfile(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specialization")

	d.Specialization = "Nutrition"
	assert.NoError(t, ValidateDoctorProfile(d))
}

func TestValidatePasswordReset(t *testing.T) {
	assert.NoError(t, ValidatePasswordReset("012345", "N3w!password"))
	assert.Error(t, ValidatePasswordReset("", "N3w!password"))
	assert.Error(t, ValidatePasswordReset("12ab56", "N3w!password"))
	assert.Error(t, ValidatePasswordReset("012345", "weak"))
}
