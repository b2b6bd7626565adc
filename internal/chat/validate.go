package chat

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs struct-tag validation and reports the first failing
// field as ErrInvalidArgument.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%w: field %s failed on %q (value %v)", ErrInvalidArgument, e.Field(), e.Tag(), e.Value())
	}
	return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
}
