package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const postmarkURL = "https://api.postmarkapp.com/email"

// Postmark sends mail through the Postmark HTTP API.
type Postmark struct {
	serverToken string
	fromEmail   string
	endpoint    string
	httpClient  *http.Client
}

type PostmarkOption func(*Postmark)

func WithHTTPClient(c *http.Client) PostmarkOption {
	return func(p *Postmark) {
		p.httpClient = c
	}
}

func WithEndpoint(url string) PostmarkOption {
	return func(p *Postmark) {
		p.endpoint = url
	}
}

func NewPostmark(serverToken, fromEmail string, opts ...PostmarkOption) *Postmark {
	p := &Postmark{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		endpoint:    postmarkURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configured returns true if the server token is set.
func (p *Postmark) Configured() bool {
	return p.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

func (p *Postmark) Send(ctx context.Context, to, subject, body string) error {
	if !p.Configured() {
		return fmt.Errorf("postmark: %w", ErrNotConfigured)
	}

	payload, err := json.Marshal(postmarkEmail{
		From:     p.fromEmail,
		To:       to,
		Subject:  subject,
		TextBody: body,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", p.serverToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}
	return nil
}
