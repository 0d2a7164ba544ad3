package customvalidator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,18}[0-9]$`)
	otpRegex   = regexp.MustCompile(`^[0-9]{4}$`)
	empIDRegex = regexp.MustCompile(`^[A-Z]+[0-9]+$`)
)

// New returns a validator with the custom rules registered and JSON field
// names reported in errors.
func New() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)
	if err := RegisterCustomValidations(v); err != nil {
		return nil, err
	}
	return v, nil
}

func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	if err := v.RegisterValidation("phone", isPhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("otp", isOTP); err != nil {
		return err
	}
	if err := v.RegisterValidation("emp_id", isEmployeeID); err != nil {
		return err
	}
	return nil
}

func jsonTagName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func isPhoneNumber(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func isOTP(fl validator.FieldLevel) bool {
	return otpRegex.MatchString(fl.Field().String())
}

func isEmployeeID(fl validator.FieldLevel) bool {
	return empIDRegex.MatchString(fl.Field().String())
}
