package push

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// TokenRegistry keeps the set of registered Expo push tokens, persisted as
// a JSON array of strings. An unreadable or corrupt file reads as empty.
type TokenRegistry struct {
	path   string
	tokens []string
	logger zerolog.Logger
	mu     sync.RWMutex
}

// NewTokenRegistry creates a registry backed by the file at path
func NewTokenRegistry(path string, logger zerolog.Logger) *TokenRegistry {
	r := &TokenRegistry{
		path:   path,
		logger: logger.With().Str("component", "push_tokens").Logger(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Msg("push token file unreadable, starting empty")
		}
		return r
	}
	if err := json.Unmarshal(data, &r.tokens); err != nil {
		r.logger.Warn().Err(err).Msg("push token file corrupt, starting empty")
		r.tokens = nil
	}
	return r
}

// Register adds a token if not already present
func (r *TokenRegistry) Register(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t == token {
			return
		}
	}
	r.tokens = append(r.tokens, token)
	r.flushLocked()
	r.logger.Info().Str("token", token).Msg("registered push token")
}

// Unregister removes a token; no-op if absent
func (r *TokenRegistry) Unregister(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	r.flushLocked()
	r.logger.Info().Str("token", token).Msg("unregistered push token")
}

// List returns a copy of the registered tokens
func (r *TokenRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.tokens))
	copy(out, r.tokens)
	return out
}

func (r *TokenRegistry) flushLocked() {
	data, err := json.MarshalIndent(r.tokens, "", "  ")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to marshal push tokens")
		return
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		r.logger.Error().Err(err).Msg("failed to write push token file")
	}
}
