package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope. Errors carry only a message, no success flag.
type ErrorBody struct {
	Error string `json:"error"`
}

// OK sends 200 with success:true alongside the given fields.
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, ErrorBody{Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: err})
}
