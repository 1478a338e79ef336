package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "cashOnDelivery"
	CreditCard     PaymentMethod = "creditCard"
)

type ShippingForm struct {
	FirstName     string        `json:"firstName" validate:"required"`
	LastName      string        `json:"lastName" validate:"required"`
	Email         string        `json:"email" validate:"required,shop_email"`
	Phone         string        `json:"phone" validate:"required,eg_phone"`
	Address       string        `json:"address" validate:"required"`
	City          string        `json:"city" validate:"required"`
	State         string        `json:"state" validate:"required"`
	Zip           string        `json:"zip" validate:"required,zip5"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"oneof=cashOnDelivery creditCard"`
}

var (
	emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^(\+20|0)?1[0-9]{9}$`)
	zipPattern   = regexp.MustCompile(`^[0-9]{5}$`)
)

// Translation keys understood by the storefront UI.
var fieldMessages = map[string]string{
	"required":   "validation.required",
	"shop_email": "validation.invalid_email",
	"eg_phone":   "validation.invalid_phone",
	"zip5":       "validation.invalid_zip",
	"oneof":      "validation.invalid_payment_method",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "shop_email", emailPattern)
	mustRegister(v, "eg_phone", phonePattern)
	mustRegister(v, "zip5", zipPattern)
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// Normalized trims every field and applies the default payment method.
func (f ShippingForm) Normalized() ShippingForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.Zip = strings.TrimSpace(f.Zip)
	if f.PaymentMethod == "" {
		f.PaymentMethod = CashOnDelivery
	}
	return f
}

// Validate checks required fields and the email, phone and zip patterns.
func (f ShippingForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "validation.invalid"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}
