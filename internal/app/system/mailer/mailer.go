// internal/app/system/mailer/mailer.go
package mailer

import (
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends mail through SendGrid. With an empty API key it logs the
// message instead of sending, which is what dev and test environments use.
type Mailer struct {
	key      string
	from     *sgmail.Email
	siteName string
	log      *zap.Logger
}

func New(apiKey, siteName, fromAddr string, log *zap.Logger) *Mailer {
	return &Mailer{
		key:      apiKey,
		from:     sgmail.NewEmail(siteName, fromAddr),
		siteName: siteName,
		log:      log,
	}
}

// SiteName returns the display name used in templates.
func (m *Mailer) SiteName() string { return m.siteName }

// Send dispatches the email on a goroutine. Failures are logged; callers
// never block on or fail from mail delivery.
func (m *Mailer) Send(e Email) {
	if m.key == "" {
		m.log.Info("mail suppressed (no api key)",
			zap.String("to", e.To),
			zap.String("subject", e.Subject))
		return
	}
	go m.send(e)
}

func (m *Mailer) send(e Email) {
	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", e.To))
	p.Subject = e.Subject
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", e.TextBody),
		sgmail.NewContent("text/html", e.HTMLBody),
	)

	req := sendgrid.GetRequest(m.key, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.API(req)
	if err != nil {
		m.log.Error("mail send failed", zap.String("to", e.To), zap.Error(err))
		return
	}
	if res.StatusCode >= http.StatusBadRequest {
		m.log.Error("mail send rejected",
			zap.String("to", e.To),
			zap.Int("status", res.StatusCode),
			zap.String("body", res.Body))
	}
}
