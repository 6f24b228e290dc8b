package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTPProvider is the last rung of the fallback chain: an authenticated
// SMTP session via gomail. The dialer reconnects per send; gomail reuses
// the connection internally when sends are close together.
type SMTPProvider struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

func NewSMTPProvider(host string, port int, user, password, from, fromName string) *SMTPProvider {
	return &SMTPProvider{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		FromName: fromName,
	}
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Configured() bool {
	return p.Host != "" && p.Port > 0 && p.User != "" && p.From != ""
}

func (p *SMTPProvider) Send(ctx context.Context, msg EmailMessage) (string, error) {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.From, p.FromName)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Subject", msg.Subject)

	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	d := gomail.NewDialer(p.Host, p.Port, p.User, p.Password)
	if err := d.DialAndSend(m); err != nil {
		return "", err
	}

	// SMTP gives no message id back
	return "", nil
}
