package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

// errPermanent marks jobs that will never succeed; they are dropped, not requeued.
var errPermanent = errors.New("permanent failure")

type sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// deliver decodes one queue message, renders it and hands it to s.
func deliver(ctx context.Context, s sender, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: bad payload: %v", errPermanent, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", errPermanent)
	}

	helpers.EnsureRecipientAndEmail(&job)
	helpers.MapLegacyToUniversal(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", errPermanent, job.Template, err)
		}
		text, html = t, h
		if subject == "" {
			subject = helpers.SubjectForUniversal(job.Data)
		}
	}
	if text == "" && html == "" {
		return fmt.Errorf("%w: empty body", errPermanent)
	}
	return s.Send(ctx, job.To, subject, text, html)
}
