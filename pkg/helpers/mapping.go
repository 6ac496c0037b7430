package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

func SubjectForUniversal(data map[string]any) string {
	typeStr := fmt.Sprintf("%v", data["Type"])
	switch strings.ToLower(typeStr) {
	case mailtpl.VerifyEmail:
		return "Verify your email address"
	case mailtpl.ForgotPassword:
		return "Reset your password"
	case mailtpl.OrderCreated:
		if id, ok := data["OrderID"].(string); ok && id != "" {
			return "Order " + id + " received"
		}
		return "Your order was received"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// MapLegacyToUniversal rewrites a job addressed to a per-type template onto
// the universal one, keeping the type in Data.
func MapLegacyToUniversal(job *mailer.EmailJob) {
	switch strings.ToLower(job.Template) {
	case mailtpl.VerifyEmail, mailtpl.ForgotPassword, mailtpl.OrderCreated:
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if _, ok := job.Data["Type"]; !ok || fmt.Sprintf("%v", job.Data["Type"]) == "" {
			job.Data["Type"] = strings.ToLower(job.Template)
		}
		job.Template = mailtpl.Universal
	}
}
