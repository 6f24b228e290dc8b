package mail

// EmailMessage is one outbound message, already rendered.
type EmailMessage struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
	LeadName string
}

// SendResult identifies which provider accepted the message.
type SendResult struct {
	Provider  string
	MessageID string
}

// WelcomeEmailData feeds the welcome template with the one-time credentials.
type WelcomeEmailData struct {
	Name     string
	Email    string
	Password string
	LoginURL string
}
