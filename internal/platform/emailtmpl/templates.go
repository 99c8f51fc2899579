// Package emailtmpl renders the transactional emails sent by the auth flows.
package emailtmpl

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

//go:embed *.tmpl
var fs embed.FS

// Template names.
const (
	PasswordReset   = "password_reset"
	PasswordChanged = "password_changed"
	Welcome         = "welcome"
)

// Data is the template input shared by every email.
type Data struct {
	AppName   string
	Name      string
	Email     string
	ActionURL string
	ExpiresIn string
	Time      string
}

var funcs = map[string]any{
	"default": func(fallback, value string) string {
		if strings.TrimSpace(value) == "" {
			return fallback
		}
		return value
	},
}

// Render executes the subject, text and html blocks of the named template.
func Render(name string, data Data) (subject, text, html string, err error) {
	file := name + ".tmpl"

	tt, err := texttpl.New(file).Funcs(funcs).ParseFS(fs, file)
	if err != nil {
		return "", "", "", fmt.Errorf("parse %s: %w", name, err)
	}
	ht, err := htmpl.New(file).Funcs(funcs).ParseFS(fs, file)
	if err != nil {
		return "", "", "", fmt.Errorf("parse %s: %w", name, err)
	}

	var sb, tb, hb bytes.Buffer
	if err := tt.ExecuteTemplate(&sb, "subject", data); err != nil {
		return "", "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tt.ExecuteTemplate(&tb, "text", data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	if err := ht.ExecuteTemplate(&hb, "html", data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(tb.String()), hb.String(), nil
}

// Message renders the named template into a message addressed to data.Email.
func Message(name string, data Data) (domain.EmailMessage, error) {
	subject, text, html, err := Render(name, data)
	if err != nil {
		return domain.EmailMessage{}, err
	}
	return domain.EmailMessage{
		To:      data.Email,
		Subject: subject,
		Text:    text,
		HTML:    html,
		Tags:    map[string]string{"template": name},
	}, nil
}

// HumanDuration formats d as "15 minutes" / "1 hour".
func HumanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
