package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/business-school/campus-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	write(c, status, envelope)
}

// List sends a collection with its size in meta.total. A nil slice renders as [].
func List[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Error sends the typed form of err and records the cause on the gin context
// so the access log can report it.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	write(c, appErr.Status, Envelope{Error: appErr})
}

func write(c *gin.Context, status int, envelope Envelope) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, envelope)
}
