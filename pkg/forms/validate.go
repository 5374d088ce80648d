package forms

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
)

// Field names as posted by the forms and used as keys in Errors
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	// FieldAPI holds the single submission error
	FieldAPI = "api"
)

// notSpace is a non-whitespace character as browsers define \S.
const notSpace = `[^\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

// emailPattern is unanchored: containing an address is enough.
var emailPattern = regexp.MustCompile(notSpace + `+@` + notSpace + `+\.` + notSpace + `+`)

var messages = map[string]map[string]string{
	FieldName: {
		"notblank": "Имя обязательно",
		"trimmin":  "Имя слишком короткое",
	},
	FieldEmail: {
		"required":   "Email обязателен",
		"looseemail": "Email некорректен",
	},
	FieldPassword: {
		"required": "Пароль обязателен",
		"utf16min": "Пароль должен быть не менее 6 символов",
	},
	FieldConfirmPassword: {
		"eqfield": "Пароли не совпадают",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]validator.Func{
		"looseemail": looseEmail,
		"notblank":   notBlank,
		"trimmin":    trimMin,
		"utf16min":   utf16Min,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic("forms: register " + tag + ": " + err.Error())
		}
	}
	return v
}

func looseEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func trimMin(fl validator.FieldLevel) bool {
	return utf16Len(strings.TrimSpace(fl.Field().String())) >= intParam(fl)
}

// utf16Min bounds the length in UTF-16 code units, the unit browsers
// report for input values, so a character outside the BMP counts twice.
func utf16Min(fl validator.FieldLevel) bool {
	return utf16Len(fl.Field().String()) >= intParam(fl)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func intParam(fl validator.FieldLevel) int {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic("forms: " + fl.GetTag() + " needs an integer parameter: " + fl.Param())
	}
	return n
}

// validateStruct runs every field rule of s and returns a fresh Errors.
func validateStruct(s any) Errors {
	errs := Errors{}

	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs[FieldAPI] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		errs[fe.Field()] = msg
	}
	return errs
}
