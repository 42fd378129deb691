package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/config"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioDialer places outbound calls through the Twilio REST API
type TwilioDialer struct {
	accountSID string
	authToken  string
	fromNumber string
	voiceURL   string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewTwilioDialer creates a dialer from config. The voice webhook URL is
// derived from the server's public URL.
func NewTwilioDialer(cfg *config.Config, logger zerolog.Logger) *TwilioDialer {
	return &TwilioDialer{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		fromNumber: cfg.TwilioNumber,
		voiceURL:   strings.TrimSuffix(cfg.PublicURL, "/") + "/voice",
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("component", "twilio").Logger(),
	}
}

type callResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PlaceCall creates an outbound call and returns the call SID assigned by
// Twilio. Invalid numbers or credentials surface as an error.
func (d *TwilioDialer) PlaceCall(ctx context.Context, to string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", d.fromNumber)
	form.Set("Url", d.voiceURL)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", d.baseURL, d.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build call request: %w", err)
	}
	req.SetBasicAuth(d.accountSID, d.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call request failed: %w", err)
	}
	defer resp.Body.Close()

	var body callResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode call response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("call rejected by provider (status %d): %s", resp.StatusCode, body.Message)
	}

	d.logger.Info().Str("sid", body.SID).Str("status", body.Status).Msg("outbound call created")
	return body.SID, nil
}
