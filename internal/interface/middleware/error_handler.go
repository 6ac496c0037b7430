package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// ErrorHandler renders the last error pushed with c.Error into the failure
// envelope. Untyped errors become 500 and keep their message only when
// showInternal is set.
func ErrorHandler(logger *logrus.Logger, showInternal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if ae, ok := apperr.As(err); ok && ae.Kind != apperr.KindInternal {
			status := ae.Status()
			if ae.Kind == apperr.KindDependency && logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("dependency failure")
			}
			response.Error[any](c, status, ae.Message, ae.Details)
			return
		}

		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.Request.URL.Path,
			}).Error("unhandled error")
		}
		msg := "internal server error"
		if showInternal {
			msg = err.Error()
		}
		response.Error[any](c, http.StatusInternalServerError, msg, nil)
	}
}
