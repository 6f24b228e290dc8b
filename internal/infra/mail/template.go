package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your account has been activated. Use the credentials below to log in:</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
    <tr><td><strong>Password</strong></td><td>{{.Password}}</td></tr>
  </table>
  <p><a href="{{.LoginURL}}">Click here to log in</a> and change your password after the first access.</p>
  <p>If you did not expect this email you can safely ignore it.</p>
</body>
</html>`))

// RenderWelcome builds the welcome message body in both HTML and plain text.
func RenderWelcome(data WelcomeEmailData) (htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	if err := welcomeHTML.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render welcome template: %w", err)
	}

	text := fmt.Sprintf(
		"Welcome, %s!\n\nYour account has been activated.\n\nEmail: %s\nPassword: %s\n\nLog in at %s and change your password after the first access.\n",
		data.Name, data.Email, data.Password, data.LoginURL,
	)

	return buf.String(), text, nil
}

// WelcomeSubject is the subject line for activation emails.
func WelcomeSubject(name string) string {
	return fmt.Sprintf("Welcome, %s! Your account is ready", name)
}
