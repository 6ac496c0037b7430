package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Html is optional; Text is recommended as fallback.
// You can also use a template by specifying Template and Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "universal" or a legacy name: "verify_email", "forgot_password", "order_created"
	Data     map[string]any `json:"data,omitempty"`
}

// Publisher is the queue side of the mail pipeline (helpers.RabbitPublisher).
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands jobs to the email worker through the queue.
type QueueSender struct {
	Pub Publisher
}

func NewQueueSender(pub Publisher) *QueueSender { return &QueueSender{Pub: pub} }

func (s *QueueSender) Send(ctx context.Context, job EmailJob) error {
	return s.Pub.PublishJSON(ctx, job)
}

// LogSender only logs jobs. Used when sending is disabled so codes are still
// visible to developers.
type LogSender struct {
	Logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender { return &LogSender{Logger: logger} }

func (s *LogSender) Send(_ context.Context, job EmailJob) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.WithFields(logrus.Fields{
		"to":       job.To,
		"template": job.Template,
		"type":     job.Data["Type"],
		"code":     job.Data["Code"],
	}).Info("mail sending disabled; job logged")
	return nil
}
