package httpapi

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/stillmind/stillmind/internal/mood"
	"github.com/stillmind/stillmind/internal/worry"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the domain validation tags to gin's binding
// engine. Safe to call from every Router build.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
			return mood.ValidMood(fl.Field().String())
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return worry.ValidClock(fl.Field().String())
		})
	})
}
