package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			return NewBadRequestError(fmt.Sprintf("Field '%s' failed on '%s' validation", fe.Field(), fe.Tag()))
		}
		return NewBadRequestError("Invalid request payload")
	}
	return nil
}
