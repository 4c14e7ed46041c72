package utils

import (
	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request ID middleware writes.
const RequestIDKey = "request_id"

// APIResponse is the envelope every JSON endpoint answers with. RequestID
// echoes the X-Request-ID assigned to the request so clients can quote it.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func respond(c *gin.Context, code int, resp APIResponse) {
	resp.RequestID = c.GetString(RequestIDKey)
	c.JSON(code, resp)
}

func SuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	respond(c, code, APIResponse{Success: true, Message: message, Data: data})
}

func ErrorResponse(c *gin.Context, code int, message string, err error) {
	resp := APIResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	respond(c, code, resp)
}

// FailureResponse reports a failed request that still carries a body, such
// as an unhealthy health report.
func FailureResponse(c *gin.Context, code int, message string, data interface{}) {
	respond(c, code, APIResponse{Message: message, Data: data})
}

// DomainErrorResponse picks the status code from the error itself.
func DomainErrorResponse(c *gin.Context, message string, err error) {
	ErrorResponse(c, domain.StatusCode(err), message, err)
}
