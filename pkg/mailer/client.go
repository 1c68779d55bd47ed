package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client sends transactional email through the external provider. Delivery is
// fire-and-forget from the core's perspective; the provider owns retries.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	ToEmail  string
	ToName   string
	Subject  string
	HTMLBody string
}

type httpClient struct {
	baseURL     string
	apiKey      string
	senderEmail string
	senderName  string
	http        *http.Client
	log         *zap.Logger
}

func NewClient(baseURL, apiKey, senderEmail, senderName string, log *zap.Logger) Client {
	return &httpClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		http:        &http.Client{Timeout: 10 * time.Second},
		log:         log.With(zap.String("client", "mailer")),
	}
}

type sendPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func (c *httpClient) Send(ctx context.Context, msg Message) error {
	payload := sendPayload{
		Sender:      map[string]string{"email": c.senderEmail, "name": c.senderName},
		To:          []map[string]string{{"email": msg.ToEmail, "name": msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", msg.ToEmail),
			zap.String("subject", msg.Subject),
		)
		return fmt.Errorf("send email to %s: %w", msg.ToEmail, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.log.Error("Email provider returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("to", msg.ToEmail),
		)
		return fmt.Errorf("email provider status %d", resp.StatusCode)
	}

	c.log.Info("Email dispatched",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject),
	)

	return nil
}
