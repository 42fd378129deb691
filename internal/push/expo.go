package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/metrics"
	"github.com/totalfitness/kiosk-dispatch/internal/types"
)

// ExpoNotifier delivers incoming-call notifications through the Expo push
// service. Delivery is best-effort; errors are reported to the caller who
// decides whether to log or swallow them.
type ExpoNotifier struct {
	pushURL    string
	kiosk      string
	registry   *TokenRegistry
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewExpoNotifier creates a notifier sending to pushURL for the tokens in registry
func NewExpoNotifier(pushURL, kiosk string, registry *TokenRegistry, logger zerolog.Logger) *ExpoNotifier {
	return &ExpoNotifier{
		pushURL:    pushURL,
		kiosk:      kiosk,
		registry:   registry,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With().Str("component", "expo_push").Logger(),
	}
}

type expoMessage struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// NotifyIncomingCall sends one push message per registered token. Having no
// registered tokens is not an error.
func (n *ExpoNotifier) NotifyIncomingCall(ctx context.Context) error {
	tokens := n.registry.List()
	if len(tokens) == 0 {
		n.logger.Warn().Msg("no push tokens registered")
		return nil
	}

	messages := make([]expoMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, expoMessage{
			To:    token,
			Sound: "default",
			Title: "Incoming Call",
			Body:  n.kiosk + " is calling for support.",
			Data:  map[string]string{"type": types.EventIncomingCall},
		})
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.pushURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push rejected (status %d): %s", resp.StatusCode, body)
	}

	metrics.Get().RecordPushSend()
	n.logger.Info().Int("tokens", len(tokens)).Msg("push notifications sent")
	return nil
}
