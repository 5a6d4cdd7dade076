package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/smallsteps/backend/internal/models"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the domain tags (activity_category,
// insight_category, age_range) on gin's validator and makes field errors
// report json/form names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(wireName)

		validations := map[string]validator.Func{
			"activity_category": func(fl validator.FieldLevel) bool {
				return models.ActivityCategory(fl.Field().String()).Valid()
			},
			"insight_category": func(fl validator.FieldLevel) bool {
				return models.InsightCategory(fl.Field().String()).Valid()
			},
			"age_range": func(fl validator.FieldLevel) bool {
				return models.AgeRange(fl.Field().String()).Valid()
			},
		}
		for tag, fn := range validations {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}
