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

const brevoDefaultURL = "https://api.brevo.com/v3"

type BrevoProvider struct {
	baseURL  string
	apiKey   string
	from     string
	fromName string
	http     *http.Client
}

func NewBrevoProvider(apiKey, from, fromName string) *BrevoProvider {
	return &BrevoProvider{
		baseURL:  brevoDefaultURL,
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *BrevoProvider) Name() string { return "brevo" }

func (p *BrevoProvider) Configured() bool {
	return p.apiKey != "" && p.from != ""
}

type brevoRequest struct {
	Sender struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	} `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent,omitempty"`
	TextContent string `json:"textContent,omitempty"`
}

func (p *BrevoProvider) Send(ctx context.Context, msg EmailMessage) (string, error) {
	url := fmt.Sprintf("%s/smtp/email", p.baseURL)

	var payload brevoRequest
	payload.Sender.Email = p.from
	payload.Sender.Name = p.fromName
	payload.To = append(payload.To, struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	}{Email: msg.To, Name: msg.ToName})
	payload.Subject = msg.Subject
	payload.HTMLContent = msg.HTMLBody
	payload.TextContent = msg.TextBody

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("brevo send failed (status %d): %s", resp.StatusCode, string(body))
	}

	var response struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("brevo decode: %w", err)
	}
	return response.MessageID, nil
}
