package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn/lms-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code       int      `json:"code"`
	Message    string   `json:"message"`
	InvalidIDs []string `json:"invalid_ids,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal server error"
	var invalidIDs []string

	if appErr, ok := err.(*errors.AppError); ok {
		statusCode = appErr.StatusCode()
		message = appErr.Message
		invalidIDs = appErr.InvalidIDs
	}

	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:       statusCode,
			Message:    message,
			InvalidIDs: invalidIDs,
		},
	})
}
