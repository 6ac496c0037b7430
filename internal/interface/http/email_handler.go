package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/mailer"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// EmailHandler lets admins push a raw or templated email through the mail
// pipeline, e.g. to check the worker and Mailgun setup.
type EmailHandler struct {
	Mail   application.Mailer
	Logger *logrus.Logger
}

func NewEmailHandler(mail application.Mailer, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{Mail: mail, Logger: logger}
}

type sendEmailRequest struct {
	To       string         `json:"to" binding:"required,email"`
	Template string         `json:"template"` // universal, verify_email, forgot_password, order_created
	Data     map[string]any `json:"data"`
	Subject  string         `json:"subject"` // required without template
	Text     string         `json:"text"`
	HTML     string         `json:"html"`
}

// Send POST /admin/emails
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if !bind(c, &req) {
		return
	}
	if req.Template == "" && (req.Subject == "" || (req.Text == "" && req.HTML == "")) {
		fail(c, apperr.Validation("either template or subject with text/html is required"))
		return
	}

	job := mailer.EmailJob{To: req.To}
	if req.Template != "" {
		job.Template = req.Template
		job.Data = req.Data
	} else {
		job.Subject = req.Subject
		job.Text = req.Text
		job.HTML = req.HTML
	}
	if err := h.Mail.Send(c.Request.Context(), job); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("failed to enqueue email job")
		}
		fail(c, apperr.Dependency("failed to enqueue", err))
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": true}, "email enqueued", nil)
}
