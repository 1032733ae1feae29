package notification

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/openlearn/lms-api/internal/model"
)

// The notificationtype binding tag restricts request payloads to the
// known event types before they reach the service.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("notificationtype", func(fl validator.FieldLevel) bool {
			return model.NotificationType(fl.Field().String()).Valid()
		})
	}
}
