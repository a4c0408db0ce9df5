package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"createkit-backend/internal/shared/apperr"
	"createkit-backend/internal/shared/telemetry"
)

// OK writes a 200 JSON payload. Payloads are typed per route.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Text writes a plain-text body, used by the health route.
func Text(c *gin.Context, status int, body string) {
	c.String(status, body)
}

// ErrorResponse is the failure envelope. Generation routes fill Error,
// account and feed routes fill Message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error sends {success:false, error} with the given status.
func Error(c *gin.Context, status int, message string) {
	logFailure(c, status, message, nil)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// Message sends {success:false, message} with the given status.
func Message(c *gin.Context, status int, message string) {
	logFailure(c, status, message, nil)
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

// Fail maps err through the apperr taxonomy and sends {success:false, error}.
func Fail(c *gin.Context, err error, fallback string) {
	status, message := resolve(err, fallback)
	logFailure(c, status, message, err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// FailMessage is Fail for routes whose envelope uses the message field.
func FailMessage(c *gin.Context, err error, fallback string) {
	status, message := resolve(err, fallback)
	logFailure(c, status, message, err)
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

func resolve(err error, fallback string) (int, string) {
	e, ok := apperr.As(err)
	if !ok {
		return apperr.Status(apperr.KindInternal), fallback
	}
	message := e.Message
	if message == "" {
		message = fallback
	}
	return apperr.Status(e.Kind), message
}

func logFailure(c *gin.Context, status int, message string, err error) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if err != nil {
		fields["error"] = err.Error()
		fields["kind"] = string(apperr.KindOf(err))
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
		return
	}
	telemetry.Info("http.error", fields)
}
