package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/calllog"
	"github.com/totalfitness/kiosk-dispatch/internal/dispatch"
	"github.com/totalfitness/kiosk-dispatch/internal/push"
	"github.com/totalfitness/kiosk-dispatch/internal/storage"
	"github.com/totalfitness/kiosk-dispatch/internal/types"
)

type stubDialer struct {
	err  error
	next int
}

func (d *stubDialer) PlaceCall(_ context.Context, _ string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.next++
	return fmt.Sprintf("CA%03d", d.next), nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyIncomingCall(_ context.Context) error { return nil }

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastEvent(_ any) {}

func newTestHandler(t *testing.T, dialer dispatch.Dialer) (*Handler, *calllog.CallLog, *push.TokenRegistry) {
	t.Helper()
	logger := zerolog.New(&bytes.Buffer{})

	log := calllog.New(storage.NewNoopStore(), logger)
	tokens := push.NewTokenRegistry(filepath.Join(t.TempDir(), "push_tokens.json"), logger)
	coordinator := dispatch.NewCoordinator(
		dialer, noopNotifier{}, noopBroadcaster{},
		dispatch.NewResolutionTracker(), log, "Sidney Kiosk", logger,
	)

	return NewHandler(coordinator, log, tokens, logger), log, tokens
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestStartCallMissingTo(t *testing.T) {
	h, log, _ := newTestHandler(t, &stubDialer{})

	for _, body := range []string{"", "{}", `{"to":""}`} {
		rec := postJSON(h.StartCall, "/start-call", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse error body: %v", err)
		}
		if resp["message"] != `Missing "to" field in body` {
			t.Errorf("unexpected message: %q", resp["message"])
		}
	}

	// No state change on validation failure
	if log.Len() != 0 {
		t.Errorf("expected empty log, got %d entries", log.Len())
	}
}

func TestStartCallSuccess(t *testing.T) {
	h, log, _ := newTestHandler(t, &stubDialer{})

	rec := postJSON(h.StartCall, "/start-call", `{"to":"+15551234567"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["message"] != "Call initiated" {
		t.Errorf("unexpected message: %q", resp["message"])
	}
	if resp["sid"] != "CA001" {
		t.Errorf("expected sid CA001, got %q", resp["sid"])
	}

	if log.Len() != 1 {
		t.Errorf("expected 1 log entry, got %d", log.Len())
	}
}

func TestStartCallProviderFailure(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubDialer{err: errors.New("authentication failed")})

	rec := postJSON(h.StartCall, "/start-call", `{"to":"+15551234567"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Call failed" {
		t.Errorf("unexpected message: %q", resp["message"])
	}
	if resp["error"] == "" {
		t.Error("expected error detail in body")
	}
}

func TestCallResponseValidation(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubDialer{})

	for _, body := range []string{"", "{}", `{"sid":"CA001"}`, `{"accepted":true}`} {
		rec := postJSON(h.CallResponse, "/call-response", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}

		var resp map[string]string
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["message"] != "Missing sid or accepted flag." {
			t.Errorf("unexpected message: %q", resp["message"])
		}
	}
}

func TestCallResponseDuplicateConflict(t *testing.T) {
	h, log, _ := newTestHandler(t, &stubDialer{})

	if rec := postJSON(h.StartCall, "/start-call", `{"to":"+15551234567"}`); rec.Code != http.StatusOK {
		t.Fatalf("placement failed: %d", rec.Code)
	}

	first := postJSON(h.CallResponse, "/call-response", `{"sid":"CA001","accepted":true}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first response expected 200, got %d", first.Code)
	}
	var ok map[string]string
	json.Unmarshal(first.Body.Bytes(), &ok)
	if ok["message"] != "Response logged" {
		t.Errorf("unexpected message: %q", ok["message"])
	}

	second := postJSON(h.CallResponse, "/call-response", `{"sid":"CA001","accepted":true}`)
	if second.Code != http.StatusConflict {
		t.Fatalf("second response expected 409, got %d", second.Code)
	}
	var conflict map[string]string
	json.Unmarshal(second.Body.Bytes(), &conflict)
	if conflict["message"] != "Call already handled by another staff." {
		t.Errorf("unexpected message: %q", conflict["message"])
	}

	// Log shows exactly one entry for the sid, accepted
	entries := log.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Resolution != types.ResolutionAccepted {
		t.Errorf("expected accepted, got %s", entries[0].Resolution)
	}
}

func TestCallResponseAcceptedFalseIsValid(t *testing.T) {
	h, log, _ := newTestHandler(t, &stubDialer{})

	// accepted:false must not be treated as a missing field
	rec := postJSON(h.CallResponse, "/call-response", `{"sid":"CA777","accepted":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	entries := log.List()
	if len(entries) != 1 || entries[0].Resolution != types.ResolutionDeclined {
		t.Errorf("expected one declined entry, got %+v", entries)
	}
}

func TestLogsCappedNewestFirst(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubDialer{})

	for i := 0; i < calllog.MaxEntries+1; i++ {
		if rec := postJSON(h.StartCall, "/start-call", `{"to":"+15551234567"}`); rec.Code != http.StatusOK {
			t.Fatalf("placement %d failed: %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	rec := httptest.NewRecorder()
	h.Logs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entries []types.CallLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != calllog.MaxEntries {
		t.Fatalf("expected %d entries, got %d", calllog.MaxEntries, len(entries))
	}
	if entries[0].SID != "CA101" {
		t.Errorf("expected newest entry CA101 first, got %s", entries[0].SID)
	}
	for _, e := range entries {
		if e.SID == "CA001" {
			t.Error("oldest entry CA001 should be absent")
		}
	}
}

func TestLogsEmpty(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubDialer{})

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	rec := httptest.NewRecorder()
	h.Logs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestVoiceTwiML(t *testing.T) {
	h, _, _ := newTestHandler(t, &stubDialer{})

	rec := postJSON(h.Voice, "/voice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("expected text/xml, got %s", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<Response>") || !strings.Contains(body, "<Say>") {
		t.Errorf("expected TwiML document, got %s", body)
	}
	if !strings.Contains(body, "Total Fitness Kiosk") {
		t.Errorf("expected spoken prompt in document, got %s", body)
	}
}

func TestTokenRegistration(t *testing.T) {
	h, _, tokens := newTestHandler(t, &stubDialer{})

	rec := postJSON(h.RegisterToken, "/register-token", `{"token":"ExponentPushToken[abc]"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Duplicate registration is deduped
	postJSON(h.RegisterToken, "/register-token", `{"token":"ExponentPushToken[abc]"}`)
	if got := tokens.List(); len(got) != 1 {
		t.Fatalf("expected 1 token, got %d", len(got))
	}

	rec = postJSON(h.UnregisterToken, "/unregister-token", `{"token":"ExponentPushToken[abc]"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := tokens.List(); len(got) != 0 {
		t.Fatalf("expected 0 tokens after unregister, got %d", len(got))
	}
}
