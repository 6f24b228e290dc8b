package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sendgridDefaultURL = "https://api.sendgrid.com/v3"

type SendGridProvider struct {
	baseURL  string
	apiKey   string
	from     string
	fromName string
	http     *http.Client
}

func NewSendGridProvider(apiKey, from, fromName string) *SendGridProvider {
	return &SendGridProvider{
		baseURL:  sendgridDefaultURL,
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *SendGridProvider) Name() string { return "sendgrid" }

func (p *SendGridProvider) Configured() bool {
	return p.apiKey != "" && p.from != ""
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridRequest struct {
	Personalizations []struct {
		To []sendgridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendgridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (p *SendGridProvider) Send(ctx context.Context, msg EmailMessage) (string, error) {
	url := fmt.Sprintf("%s/mail/send", p.baseURL)

	payload := sendgridRequest{
		From:    sendgridAddress{Email: p.from, Name: p.fromName},
		Subject: msg.Subject,
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []sendgridAddress `json:"to"`
	}{To: []sendgridAddress{{Email: msg.To, Name: msg.ToName}}})

	// plain text first, per the SendGrid content ordering rule
	if msg.TextBody != "" {
		payload.Content = append(payload.Content, struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}{"text/plain", msg.TextBody})
	}
	if msg.HTMLBody != "" {
		payload.Content = append(payload.Content, struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}{"text/html", msg.HTMLBody})
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("sendgrid marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sendgrid send failed (status %d): %s", resp.StatusCode, string(body))
	}

	return resp.Header.Get("X-Message-Id"), nil
}
