package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/go-storefront/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

func WithActionURL(url string) Option {
	return func(d *EmailData) {
		if s := strings.TrimSpace(url); s != "" {
			d.ActionURL = s
		}
	}
}

// NewBaseEmailData fills the common fields from config, then applies options.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
	}
	if cfg != nil {
		d.CompanyName = cfg.CompanyName
		d.CompanyAddress = cfg.CompanyAddress
		d.AppName = cfg.AppName
		d.LogoURL = cfg.LogoURL
		d.SupportURL = cfg.SupportURL
		d.PrivacyURL = cfg.PrivacyURL
		d.UnsubscribeURL = cfg.UnsubscribeURL
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewVerifyEmailData carries a signup verification code.
func NewVerifyEmailData(cfg *config.Config, name, email, code string, expiresAt time.Time, opts ...Option) map[string]any {
	if cfg != nil {
		opts = append([]Option{WithActionURL(cfg.VerifyEmailURL)}, opts...)
	}
	d := NewBaseEmailData(cfg, VerifyEmail, name, email, append(opts, WithExpiresAt(expiresAt))...)
	d.Code = code
	return ToMap(d)
}

// NewForgotPasswordData carries a password reset code.
func NewForgotPasswordData(cfg *config.Config, name, email, code string, expiresAt time.Time, opts ...Option) map[string]any {
	if cfg != nil {
		opts = append([]Option{WithActionURL(cfg.ResetPasswordURL)}, opts...)
	}
	d := NewBaseEmailData(cfg, ForgotPassword, name, email, append(opts, WithExpiresAt(expiresAt))...)
	d.Code = code
	return ToMap(d)
}

// NewOrderCreatedData summarises an order snapshot for the confirmation mail.
func NewOrderCreatedData(cfg *config.Config, name, email, orderID, status, total string, lines []OrderLine, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, OrderCreated, name, email, opts...)
	d.OrderID = orderID
	d.OrderStatus = status
	d.OrderTotal = total
	d.OrderLines = lines
	return ToMap(d)
}
