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

const mailjetDefaultURL = "https://api.mailjet.com/v3.1"

type MailjetProvider struct {
	baseURL   string
	apiKey    string
	apiSecret string
	from      string
	fromName  string
	http      *http.Client
}

func NewMailjetProvider(apiKey, apiSecret, from, fromName string) *MailjetProvider {
	return &MailjetProvider{
		baseURL:   mailjetDefaultURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		from:      from,
		fromName:  fromName,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *MailjetProvider) Name() string { return "mailjet" }

func (p *MailjetProvider) Configured() bool {
	return p.apiKey != "" && p.apiSecret != "" && p.from != ""
}

type mailjetMessage struct {
	From struct {
		Email string `json:"Email"`
		Name  string `json:"Name,omitempty"`
	} `json:"From"`
	To []struct {
		Email string `json:"Email"`
		Name  string `json:"Name,omitempty"`
	} `json:"To"`
	Subject  string `json:"Subject"`
	TextPart string `json:"TextPart,omitempty"`
	HTMLPart string `json:"HTMLPart,omitempty"`
}

type mailjetResponse struct {
	Messages []struct {
		Status string `json:"Status"`
		To     []struct {
			MessageUUID string `json:"MessageUUID"`
		} `json:"To"`
	} `json:"Messages"`
}

func (p *MailjetProvider) Send(ctx context.Context, msg EmailMessage) (string, error) {
	url := fmt.Sprintf("%s/send", p.baseURL)

	var m mailjetMessage
	m.From.Email = p.from
	m.From.Name = p.fromName
	m.To = append(m.To, struct {
		Email string `json:"Email"`
		Name  string `json:"Name,omitempty"`
	}{Email: msg.To, Name: msg.ToName})
	m.Subject = msg.Subject
	m.TextPart = msg.TextBody
	m.HTMLPart = msg.HTMLBody

	jsonBody, err := json.Marshal(map[string]any{"Messages": []mailjetMessage{m}})
	if err != nil {
		return "", fmt.Errorf("mailjet marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.apiKey, p.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailjet request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("mailjet send failed (status %d): %s", resp.StatusCode, string(body))
	}

	var response mailjetResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("mailjet decode: %w", err)
	}
	if len(response.Messages) > 0 && len(response.Messages[0].To) > 0 {
		return response.Messages[0].To[0].MessageUUID, nil
	}
	return "", nil
}
