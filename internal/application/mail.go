package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

const mailTimeout = 5 * time.Second

// sendBestEffort enqueues job and only logs a failure; the caller's
// operation has already succeeded.
func sendBestEffort(ctx context.Context, m Mailer, logger *logrus.Logger, job mailer.EmailJob) {
	if m == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := m.Send(c, job); err != nil {
		incr(metricMailFailures)
		helpers.LogWarn(logger, "email enqueue failed", err, logrus.Fields{
			"to":   job.To,
			"type": job.Data["Type"],
		})
	}
}

func universalJob(to string, data map[string]any) mailer.EmailJob {
	return mailer.EmailJob{To: to, Template: mailtpl.Universal, Data: data}
}
