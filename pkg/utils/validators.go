package utils

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"clubfees/internal/billing"
)

var registerOnce sync.Once

// RegisterValidators adds the "period" (YYYY-MM) and "currency" (three letters) tags
// to gin's binding validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
			_, err := billing.ParsePeriod(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return billing.ValidCurrencyCode(fl.Field().String())
		})
	})
}
