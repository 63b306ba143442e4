package config

import (
	"reflect"
	"strings"

	"KeikoHub/internal/curriculum"
	"KeikoHub/internal/entity"

	"github.com/go-playground/validator/v10"
)

// NewValidator registers the domain tags: "position" accepts any known stance label
// and "voice" a "<Language>/<Voice>" reference.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("position", func(fl validator.FieldLevel) bool {
		_, ok := curriculum.ParsePosition(fl.Field().String())
		return ok
	})

	_ = validate.RegisterValidation("voice", func(fl validator.FieldLevel) bool {
		_, _, ok := entity.SplitVoiceRef(fl.Field().String())
		return ok
	})

	return validate
}
