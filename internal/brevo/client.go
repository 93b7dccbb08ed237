package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const apiURL = "https://api.brevo.com/v3/smtp/email"

// Client sends transactional email through the Brevo API. Calls run behind a
// circuit breaker so a flapping provider fails fast instead of hanging every
// registration on a 10-second timeout.
type Client struct {
	apiKey    string
	fromEmail string
	fromName  string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	log       *zap.SugaredLogger
}

func NewClient(apiKey, fromEmail, fromName string, logger *zap.SugaredLogger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "brevo",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("%s breaker %s -> %s", name, from, to)
		},
	})
	return &Client{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		http:      &http.Client{Timeout: 10 * time.Second},
		breaker:   cb,
		log:       logger,
	}
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	TextContent string              `json:"textContent"`
}

// SendEmail delivers a plain-text email. The error is user-visible at the
// registration endpoint, so it stays terse.
func (c *Client) SendEmail(ctx context.Context, toEmail, subject, text string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, toEmail, subject, text)
	})
	return err
}

// SendOTPEmail formats and sends a verification code.
func (c *Client) SendOTPEmail(ctx context.Context, toEmail, code string) error {
	return c.SendEmail(ctx, toEmail, "Verify Your Email", fmt.Sprintf("Your OTP is: %s", code))
}

func (c *Client) send(ctx context.Context, toEmail, subject, text string) error {
	body, err := json.Marshal(sendEmailReq{
		Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		TextContent: text,
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		c.log.Errorw("brevo rejected email", "status", resp.StatusCode, "body", errBody)
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}
	return nil
}
