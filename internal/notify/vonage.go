package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultVonageBaseURL is the Vonage (Nexmo) REST host.
const DefaultVonageBaseURL = "https://rest.nexmo.com"

// ErrSMSRejected means the gateway answered but did not accept the message.
var ErrSMSRejected = errors.New("sms rejected by gateway")

// VonageSMS sends SMS through the Vonage SMS JSON API.
type VonageSMS struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
}

// NewVonageSMS creates a Vonage client. An empty baseURL uses DefaultVonageBaseURL.
func NewVonageSMS(baseURL, apiKey, apiSecret string, client *http.Client) *VonageSMS {
	if baseURL == "" {
		baseURL = DefaultVonageBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &VonageSMS{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    client,
	}
}

type vonageRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
}

type vonageResponse struct {
	MessageCount string `json:"message-count"`
	Messages     []struct {
		Status    string `json:"status"`
		MessageID string `json:"message-id"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

// SendSMS implements SMSSender. Only a first message status of "0" counts as accepted.
func (v *VonageSMS) SendSMS(ctx context.Context, msg SMS) error {
	body, err := json.Marshal(vonageRequest{
		APIKey:    v.apiKey,
		APISecret: v.apiSecret,
		From:      msg.From,
		To:        msg.To,
		Text:      msg.Text,
	})
	if err != nil {
		return fmt.Errorf("marshal sms: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/sms/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("vonage request: %w", err)
	}
	defer resp.Body.Close()

	var out vonageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode vonage response (status %d): %w", resp.StatusCode, err)
	}
	if len(out.Messages) == 0 {
		return fmt.Errorf("%w: empty response", ErrSMSRejected)
	}
	if first := out.Messages[0]; first.Status != "0" {
		return fmt.Errorf("%w: status %s: %s", ErrSMSRejected, first.Status, first.ErrorText)
	}
	return nil
}
