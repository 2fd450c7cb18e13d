package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Message is a single operator notification.
type Message struct {
	Subject string
	HTML    string
}

// ResendMailer posts messages to the Resend e-mail API with a fixed sender
// and a single fixed recipient.
type ResendMailer struct {
	apiKey   string
	endpoint string
	from     string
	to       string
	client   *http.Client
}

func NewResendMailer(apiKey, endpoint, from, to string, client *http.Client) *ResendMailer {
	if client == nil {
		client = &http.Client{}
	}
	return &ResendMailer{
		apiKey:   apiKey,
		endpoint: endpoint,
		from:     from,
		to:       to,
		client:   client,
	}
}

type resendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(resendRequest{
		From:    m.from,
		To:      m.to,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send notification: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
