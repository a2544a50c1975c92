package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// OK writes a 200 response with data JSON-encoded.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error maps an engine error to a status code and writes it as a plain text
// body, per the wire contract: 404 for not-found, 400 for illegal state
// transitions, 500 for anything else.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if e, ok := taskmodel.As(err); ok {
		switch e.Kind {
		case taskmodel.KindPlanNotFound, taskmodel.KindTaskNotFound:
			status = http.StatusNotFound
		case taskmodel.KindInvalidTaskState:
			status = http.StatusBadRequest
		}
	}
	c.String(status, err.Error())
}
