package service

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

const (
	TagPhone = "phone"
)

var (
	validate *validator.Validate

	phoneRegex = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
)

func InitializeServices() {
	validate = initValidator() // used for validating struct fields
}

func initValidator() *validator.Validate {
	log.Info("initializing validator")
	validate := validator.New(validator.WithRequiredStructEnabled())

	// This makes error.Field() return "first_name" instead of "FirstName"
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// digits, spaces, dashes, plus and parentheses
	if err := validate.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return validate
}
