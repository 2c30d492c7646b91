// Package validation holds the field formats shared by request decoding and services.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	phonePattern    = regexp.MustCompile(`^\+?([6-9]{1})\)?[-. ]?([0-9]{4})[-. ]?([0-9]{5})$`)
	emailPattern    = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*]{8,15}$`)
	pincodePattern  = regexp.MustCompile(`^[1-9]{1}[0-9]{5}$`)
)

// Custom validator tags registered by Register.
const (
	TagPhone    = "phone"
	TagEmail    = "cl_email"
	TagPassword = "password"
	TagPincode  = "pincode"
)

// IsPhone reports whether value is a ten digit mobile number starting with 6-9.
func IsPhone(value string) bool {
	return phonePattern.MatchString(strings.TrimSpace(value))
}

func IsEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// IsPassword accepts 8 to 15 characters from letters, digits and !@#$%^&*.
func IsPassword(value string) bool {
	return passwordPattern.MatchString(value)
}

func IsPincode(value string) bool {
	return pincodePattern.MatchString(strings.TrimSpace(value))
}

// IsID reports whether value is a well-formed resource identifier.
func IsID(value string) bool {
	_, err := uuid.Parse(strings.TrimSpace(value))
	return err == nil
}

// IsPresent reports whether value has content after trimming.
func IsPresent(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Register installs the custom tags on a validator instance.
func Register(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagPhone:    IsPhone,
		TagEmail:    IsEmail,
		TagPassword: IsPassword,
		TagPincode:  IsPincode,
	}
	for tag, check := range rules {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}
