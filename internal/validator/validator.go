// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"marketplace/internal/models"
)

// Statuses are free-form, but stay short single words or phrases.
var listingStatusRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z _-]{0,31}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("listing_status", validateListingStatus)
		_ = v.RegisterValidation("role", validateRole)
	}
}

func validateListingStatus(fl validator.FieldLevel) bool {
	return listingStatusRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateRole(fl validator.FieldLevel) bool {
	return models.ParseRole(fl.Field().String()).IsValid()
}
