package core

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	amountTag   = "amount"
	amountText  = "{0} must be a positive amount with at most 2 decimal places"
	amountRegex = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

	moneyTag  = "money"
	moneyText = "{0} must be a non-negative amount with at most 2 decimal places"

	pincodeTag   = "pincode"
	pincodeText  = "{0} must be a valid 6 digit PIN code"
	pincodeRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(amountTag, amountValidation)
	RegisterCustomTranslation(validate, translator, amountTag, amountText)

	_ = validate.RegisterValidation(moneyTag, moneyValidation)
	RegisterCustomTranslation(validate, translator, moneyTag, moneyText)

	_ = validate.RegisterValidation(pincodeTag, pincodeValidation)
	RegisterCustomTranslation(validate, translator, pincodeTag, pincodeText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldPath returns the JSON path of a failed field without its root struct, eg. "donor.email".
func FieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Custom Global Validators

// amountValidation accepts strictly positive decimals with up to 2 fractional digits.
func amountValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !amountRegex.MatchString(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f > 0
}

// moneyValidation accepts zero or positive decimals with up to 2 fractional digits.
func moneyValidation(fl validator.FieldLevel) bool {
	return amountRegex.MatchString(fl.Field().String())
}

func pincodeValidation(fl validator.FieldLevel) bool {
	return pincodeRegex.MatchString(fl.Field().String())
}
