package platform

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// MinPasswordLength applies to new accounts only.
const MinPasswordLength = 8

func validateCredentials(c session.Credentials) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&c.Password, validation.Required),
	)
	return invalidInput(err)
}

func validateProfile(p session.Profile) error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.DisplayName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(MinPasswordLength, 128)),
	)
	return invalidInput(err)
}

// invalidInput turns validation errors into KindInvalidCredentials so no
// request is made for input the backend would reject.
func invalidInput(err error) error {
	if err == nil {
		return nil
	}
	ctx := map[string]interface{}{}
	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			ctx[field] = fieldErr.Error()
		}
	}
	return session.WrapError(session.KindInvalidCredentials, err.Error(), err, ctx)
}
