package order

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Messages shown next to invalid fields.
const (
	MessageRequired = "This field is required!"
	MessagePhone    = "Please enter a valid phone number"
)

// Message keys, for callers that localise the messages above.
const (
	KeyRequired = "validation.required"
	KeyPhone    = "validation.phone"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	fieldRules   map[string]string
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		validate = v

		fieldRules = make(map[string]string, len(Fields))
		typ := reflect.TypeOf(Draft{})
		for i := 0; i < typ.NumField(); i++ {
			sf := typ.Field(i)
			fieldRules[jsonFieldName(sf)] = sf.Tag.Get("validate")
		}
	})
	return validate
}

func jsonFieldName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return sf.Name
	}
	return name
}

// Validate normalises the draft and checks every field. It returns nil when the
// draft can be submitted.
func Validate(d Draft) FieldErrors {
	d = Normalize(d)
	err := validatorInstance().Struct(d)
	if err == nil {
		return nil
	}

	var fe FieldErrors
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fe.Add("", err.Error())
	}
	for _, ve := range verrs {
		fe = fe.Add(ve.Field(), formatValidationError(ve))
	}
	return fe
}

// ValidateField checks a single field, as a form does on blur.
func ValidateField(field, value string) ([]string, error) {
	v := validatorInstance()
	rule, ok := fieldRules[field]
	if !ok {
		return nil, ErrUnknownField
	}
	err := v.Var(Sanitize(value), rule)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		msgs = append(msgs, formatValidationError(ve))
	}
	return msgs, nil
}

// MessageKey maps a rendered message back to its localisation key.
func MessageKey(message string) string {
	switch message {
	case MessageRequired:
		return KeyRequired
	case MessagePhone:
		return KeyPhone
	default:
		return ""
	}
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return MessageRequired
	case "min":
		return MessagePhone
	default:
		return err.Field() + " failed " + err.Tag() + " validation"
	}
}
