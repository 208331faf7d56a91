package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const textBeeDefaultBaseURL = "https://api.textbee.dev/api/v1"

// ErrTextBeeCredentials is returned when the API key or device id is missing.
var ErrTextBeeCredentials = errors.New("textbee: api key and device id are required")

// TextBeeConfig configures the TextBee gateway client.
type TextBeeConfig struct {
	// APIKey is sent in the x-api-key header.
	APIKey string
	// DeviceID selects the Android gateway device that sends the message.
	DeviceID string
	// BaseURL overrides the production API (tests pass an httptest URL).
	BaseURL string
}

// TextBee sends SMS through the TextBee Android gateway API.
type TextBee struct {
	apiKey   string
	deviceID string
	baseURL  string
	client   *http.Client
}

// NewTextBee builds a TextBee client with a DefaultTimeout-bounded http.Client.
func NewTextBee(cfg TextBeeConfig) (*TextBee, error) {
	if cfg.APIKey == "" || cfg.DeviceID == "" {
		return nil, ErrTextBeeCredentials
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = textBeeDefaultBaseURL
	}

	return &TextBee{
		apiKey:   cfg.APIKey,
		deviceID: cfg.DeviceID,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: DefaultTimeout},
	}, nil
}

type textBeeRequest struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

type textBeeResponse struct {
	Data struct {
		ID      string `json:"_id"`
		Success bool   `json:"success"`
	} `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Send posts the message to the configured device.
func (p *TextBee) Send(ctx context.Context, to, body string) (*SendResult, error) {
	endpoint := fmt.Sprintf("%s/gateway/devices/%s/send-sms", p.baseURL, url.PathEscape(p.deviceID))

	payload, err := json.Marshal(textBeeRequest{Recipients: []string{to}, Message: body})
	if err != nil {
		return nil, fmt.Errorf("textbee: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("textbee: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("textbee: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("textbee: read response: %w", err)
	}

	var parsed textBeeResponse
	parseErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode >= 300 {
		if parseErr == nil && (parsed.Message != "" || parsed.Error != "") {
			return nil, fmt.Errorf("textbee: error %d: %s", resp.StatusCode, strings.TrimSpace(parsed.Message+" "+parsed.Error))
		}
		return nil, fmt.Errorf("textbee: error %d: %s", resp.StatusCode, string(respBody))
	}

	return &SendResult{MessageID: parsed.Data.ID, Status: "sent"}, nil
}
