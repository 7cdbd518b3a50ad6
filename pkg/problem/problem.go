// Package problem renders domain errors as ProblemDetails responses.
package problem

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"procurement/pkg/apperr"
)

// TraceIDKey is the gin context key holding the per-request trace id.
const TraceIDKey = "trace_id"

// Details is the wire shape of every error response.
type Details struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Status      int    `json:"status"`
	Detail      string `json:"detail"`
	DetailCode  int    `json:"detail_code"`
	InnerDetail string `json:"inner_detail,omitempty"`
	TraceID     string `json:"trace_id"`
}

var typeByStatus = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc7231#section-6.5.1",
	http.StatusForbidden:           "https://tools.ietf.org/html/rfc7231#section-6.5.3",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc7231#section-6.5.4",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc7231#section-6.6.1",
}

// TraceID returns the trace id assigned to this request, minting one
// when the middleware did not run (tests hitting handlers directly).
func TraceID(c *gin.Context) string {
	if id, ok := c.Get(TraceIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	id := uuid.NewString()
	c.Set(TraceIDKey, id)
	return id
}

// Abort writes a ProblemDetails response for a domain error and stops
// the handler chain. Unknown errors become a generic 500.
func Abort(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		AbortError(c, e)
		return
	}
	status := http.StatusInternalServerError
	c.AbortWithStatusJSON(status, Details{
		Type:    typeByStatus[status],
		Title:   "An error occurred while processing your request.",
		Status:  status,
		TraceID: TraceID(c),
	})
}

// AbortError writes the ProblemDetails response for a domain error.
func AbortError(c *gin.Context, e *apperr.Error) {
	c.AbortWithStatusJSON(e.Status, Details{
		Type:        typeByStatus[e.Status],
		Title:       e.Title,
		Status:      e.Status,
		Detail:      e.Detail,
		DetailCode:  e.Code,
		InnerDetail: e.InnerDetail,
		TraceID:     TraceID(c),
	})
}
