package user

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/registrar/core"
)

var (
	userTypeTag  = "usertype"
	userTypeText = "invalid user type"

	studentIDTag  = "studentid"
	studentIDText = "student usernames must be the numeric student ID"

	// password policy
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	// bcrypt only accepts up to 72 bytes
	pwdMaxLen     = 72
	pwdMaxLenTag  = "pwdmaxlen"
	pwdMaxLenText = fmt.Sprintf("password must not exceed %d bytes", pwdMaxLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// InitValidators registers the user validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(userTypeTag, userTypeValidation)
	core.RegisterCustomTranslation(validate, translator, userTypeTag, userTypeText)

	_ = validate.RegisterValidation(pwdMaxLenTag, pwdMaxLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdMaxLenTag, pwdMaxLenText)

	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(validate, translator, studentIDTag, studentIDText)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

func userTypeValidation(fl validator.FieldLevel) bool {
	_, err := ParseType(fl.Field().String())
	return err == nil
}

func pwdMaxLenValidation(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= pwdMaxLen
}

// newUserStructValidation does struct level validation on NewUser.
func newUserStructValidation(sl validator.StructLevel) {
	nu, ok := sl.Current().Interface().(NewUser)
	if !ok {
		return
	}
	if typ, err := ParseType(nu.Type); err == nil && typ == TypeStudent && !isNumeric(nu.Username) {
		sl.ReportError(nu.Username, "username", "Username", studentIDTag, "")
	}
	validatePassword(nu.Password, nu.Name, nu.Username, sl)
}

// validatePassword applies the password policy to provided password:
// - minLen: 6
// - maxLen: 72 bytes (reported by the pwdmaxlen field tag)
// - no whitespace
// - no user attrs similarity
func validatePassword(pwd, name, uname string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if len([]rune(pwd)) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	if len(pwd) > pwdMaxLen {
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
	}

	if tooSimilar(pwd, name) || tooSimilar(pwd, uname) {
		reportErr(pwdAttrSimTag)
	}
}

func tooSimilar(pwd, usrAttr string) bool {
	if usrAttr == "" {
		return false
	}
	pass := strings.Split(strings.ToLower(pwd), "")
	attr := strings.Split(strings.ToLower(usrAttr), "")
	return difflib.NewMatcher(pass, attr).QuickRatio() >= pwdMaxSim
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if !unicode.IsDigit(char) {
			return false
		}
	}
	return true
}
