// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// VerificationEmailData holds data for the signup OTP email.
type VerificationEmailData struct {
	SiteName  string
	Code      string
	ExpiresIn string // e.g., "15 minutes"
}

// BuildVerificationEmail creates the OTP email with HTML and text bodies.
func BuildVerificationEmail(data VerificationEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Your %s verification code", data.SiteName),
		TextBody: buildVerificationText(data),
		HTMLBody: buildVerificationHTML(data),
	}
}

func buildVerificationText(data VerificationEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Your %s verification code is: %s\n\n", data.SiteName, data.Code))
	buf.WriteString(fmt.Sprintf("This code expires in %s.\n\n", data.ExpiresIn))
	buf.WriteString("If you did not sign up, you can safely ignore this email.\n")
	return buf.String()
}

func buildVerificationHTML(data VerificationEmailData) string {
	tmpl := template.Must(template.New("verification").Parse(verificationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const verificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Verification Code</title></head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
    <tr><td align="center" style="padding: 40px 20px;">
      <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
        <tr><td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
          <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
        </td></tr>
        <tr><td style="padding: 32px;">
          <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">Your verification code is:</p>
          <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
            <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #1f2937; font-family: 'Courier New', monospace;">{{.Code}}</span>
          </div>
          <p style="margin: 0; font-size: 14px; color: #6b7280;">This code expires in {{.ExpiresIn}}. If you did not sign up, you can safely ignore this email.</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

// WelcomeEmailData holds data for the post-verification welcome email.
type WelcomeEmailData struct {
	SiteName string
	Name     string
}

// BuildWelcomeEmail creates the welcome email sent after OTP verification.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	text := fmt.Sprintf("Hi %s,\n\nYour %s account is verified. Pick a username to finish setting up your profile, then explore clubs and events on campus.\n",
		data.Name, data.SiteName)
	return Email{
		Subject:  fmt.Sprintf("Welcome to %s", data.SiteName),
		TextBody: text,
		HTMLBody: fmt.Sprintf("<p>Hi %s,</p><p>Your <strong>%s</strong> account is verified. Pick a username to finish setting up your profile, then explore clubs and events on campus.</p>",
			template.HTMLEscapeString(data.Name), template.HTMLEscapeString(data.SiteName)),
	}
}

// TicketEmailData holds data for the event ticket confirmation email.
type TicketEmailData struct {
	SiteName  string
	Name      string
	EventName string
	EventDate string
	Venue     string
	Token     string
}

// BuildTicketEmail creates the registration confirmation carrying the
// ticket token shown at the door.
func BuildTicketEmail(data TicketEmailData) Email {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\nYou're registered for %s on %s.\n", data.Name, data.EventName, data.EventDate))
	if data.Venue != "" {
		buf.WriteString("Venue: " + data.Venue + "\n")
	}
	buf.WriteString("\nYour ticket code: " + data.Token + "\n")
	buf.WriteString("Show this code at check-in.\n")

	tmpl := template.Must(template.New("ticket").Parse(ticketHTMLTemplate))
	var html bytes.Buffer
	_ = tmpl.Execute(&html, data)

	return Email{
		Subject:  fmt.Sprintf("Your ticket for %s", data.EventName),
		TextBody: buf.String(),
		HTMLBody: html.String(),
	}
}

const ticketHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Your Ticket</title></head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
    <tr><td align="center" style="padding: 40px 20px;">
      <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
        <tr><td style="padding: 32px;">
          <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.Name}},</p>
          <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">You're registered for <strong>{{.EventName}}</strong> on {{.EventDate}}.{{if .Venue}} Venue: {{.Venue}}.{{end}}</p>
          <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center;">
            <span style="font-size: 20px; font-weight: 700; letter-spacing: 2px; color: #1f2937; font-family: 'Courier New', monospace;">{{.Token}}</span>
          </div>
          <p style="margin: 16px 0 0; font-size: 14px; color: #6b7280;">Show this code at check-in.</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`
