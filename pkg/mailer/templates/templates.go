package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	OTPCode      = "otp_code"
	ListingSaved = "listing_saved"
)

// SubjectFor returns the default subject line for a template.
func SubjectFor(name string) string {
	switch strings.ToLower(name) {
	case OTPCode:
		return "Your verification code"
	case ListingSaved:
		return "Someone saved your listing"
	default:
		return "Notification"
	}
}

// Known reports whether name refers to a bundled template.
func Known(name string) bool {
	switch strings.ToLower(name) {
	case OTPCode, ListingSaved:
		return true
	}
	return false
}

// Render returns the text and HTML bodies for a template.
func Render(name string, data map[string]any) (text string, html string, err error) {
	name = strings.ToLower(name)
	if !Known(name) {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	text, err = renderText(name+".txt.tmpl", data)
	if err != nil {
		return "", "", err
	}
	html, err = renderHTML(name+".html.tmpl", data)
	if err != nil {
		return "", "", err
	}
	return text, html, nil
}

func renderText(filename string, data any) (string, error) {
	t, err := texttpl.ParseFS(FS, filename)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(filename string, data any) (string, error) {
	t, err := htmpl.ParseFS(FS, filename)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
