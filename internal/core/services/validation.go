package services

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	aadhaarRegex = regexp.MustCompile(`^\d{12}$`)
	phoneRegex   = regexp.MustCompile(`^[6-9]\d{9}$`)
	ifscRegex    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// Validator returns the shared validator instance with the portal's custom
// rules registered:
//
//	aadhaar  - 12 digit Aadhaar number
//	inphone  - 10 digit Indian mobile number starting 6-9
//	ifsc     - 11 character bank IFSC code
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("aadhaar", func(fl validator.FieldLevel) bool {
			return aadhaarRegex.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
			return phoneRegex.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
			return ifscRegex.MatchString(fl.Field().String())
		})
	})
	return validate
}
