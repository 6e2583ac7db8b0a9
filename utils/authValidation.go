package utils

import (
	"Samagra/models"
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation errors
var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNotComplex = errors.New("password must include at least one uppercase letter, one lowercase letter, one digit, and one special character")
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[@$!%*?&]`)
	phoneRegex     = regexp.MustCompile(`^[6-9]\d{9}$`)
	resetCodeRegex = regexp.MustCompile(`^\d{6}$`)
)

var genderRule = validation.In("male", "female").Error("must be male or female")

// ValidateUserData validates login credentials for a new account.
func ValidateUserData(email, password string) error {
	return AsValidation(validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.EmailFormat),
		"password": validation.Validate(password, validation.Required.Error("password cannot be blank"), validation.By(validatePassword)),
	}.Filter())
}

// ValidatePatientProfile validates the fields collected at patient signup.
func ValidatePatientProfile(p models.Patient) error {
	return AsValidation(validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.LastName, validation.Length(0, 100)),
		validation.Field(&p.Phone, validation.Required, validation.Match(phoneRegex).Error("must be a 10 digit mobile number")),
		validation.Field(&p.Gender, validation.Required, genderRule),
		validation.Field(&p.DateOfBirth, validation.Date(DateLayout).Error("must be in YYYY-MM-DD format")),
		validation.Field(&p.Age, validation.Min(0), validation.Max(150)),
	))
}

// ValidateDoctorProfile validates the fields collected at doctor signup.
func ValidateDoctorProfile(d models.Doctor) error {
	return AsValidation(validation.ValidateStruct(&d,
		validation.Field(&d.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&d.LastName, validation.Length(0, 100)),
		validation.Field(&d.Phone, validation.Required, validation.Match(phoneRegex).Error("must be a 10 digit mobile number")),
		validation.Field(&d.Gender, validation.Required, genderRule),
		validation.Field(&d.Specialization, validation.Required),
		validation.Field(&d.Experience, validation.Min(0), validation.Max(80)),
		validation.Field(&d.DateOfBirth, validation.Date(DateLayout).Error("must be in YYYY-MM-DD format")),
		validation.Field(&d.Age, validation.Min(0), validation.Max(150)),
	))
}

// ValidatePasswordReset validates the reset code and new password.
func ValidatePasswordReset(resetCode, newPassword string) error {
	return AsValidation(validation.Errors{
		"resetCode": validation.Validate(resetCode, validation.Required.Error("invalid reset code"), validation.Match(resetCodeRegex).Error("invalid reset code")),
		"password":  validation.Validate(newPassword, validation.Required, validation.By(validatePassword)),
	}.Filter())
}

// validatePassword checks the password for length and complexity.
func validatePassword(value interface{}) error {
	password, _ := value.(string)
	if password == "" {
		return nil
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if !lowercaseRegex.MatchString(password) ||
		!uppercaseRegex.MatchString(password) ||
		!digitRegex.MatchString(password) ||
		!specialRegex.MatchString(password) {
		return ErrPasswordNotComplex
	}
	return nil
}
