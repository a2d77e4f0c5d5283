package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the known templates in pkg/mailer/templates;
// Data carries its fields. Subject is derived from the template when empty.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Template string         `json:"template"` // "otp_code" or "listing_saved"
	Data     map[string]any `json:"data,omitempty"`
}
