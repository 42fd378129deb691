package voice

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/config"
)

func testDialer(baseURL string) *TwilioDialer {
	cfg := &config.Config{
		TwilioAccountSID: "AC_test",
		TwilioAuthToken:  "secret",
		TwilioNumber:     "+15550009999",
		PublicURL:        "https://dispatch.example.com",
	}
	d := NewTwilioDialer(cfg, zerolog.New(&bytes.Buffer{}))
	d.baseURL = baseURL
	return d
}

func TestPlaceCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Accounts/AC_test/Calls.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC_test" || pass != "secret" {
			t.Error("expected basic auth with account credentials")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("To") != "+15551234567" {
			t.Errorf("unexpected To: %s", r.PostForm.Get("To"))
		}
		if r.PostForm.Get("From") != "+15550009999" {
			t.Errorf("unexpected From: %s", r.PostForm.Get("From"))
		}
		if r.PostForm.Get("Url") != "https://dispatch.example.com/voice" {
			t.Errorf("unexpected Url: %s", r.PostForm.Get("Url"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"sid":"CA123","status":"queued"}`)
	}))
	defer srv.Close()

	d := testDialer(srv.URL)
	sid, err := d.PlaceCall(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sid != "CA123" {
		t.Errorf("expected sid CA123, got %s", sid)
	}
}

func TestPlaceCallProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"The 'To' number is not a valid phone number.","code":21211}`)
	}))
	defer srv.Close()

	d := testDialer(srv.URL)
	_, err := d.PlaceCall(context.Background(), "garbage")
	if err == nil {
		t.Fatal("expected error for invalid number")
	}
	if !strings.Contains(err.Error(), "not a valid phone number") {
		t.Errorf("expected provider message in error, got: %v", err)
	}
}

func TestTwiML(t *testing.T) {
	doc := string(TwiML())

	if !strings.HasPrefix(doc, "<?xml") {
		t.Error("expected XML header")
	}
	if !strings.Contains(doc, "<Response><Say>") {
		t.Errorf("expected Response/Say structure, got %s", doc)
	}
	if !strings.Contains(doc, SpokenPrompt) {
		t.Error("expected spoken prompt in document")
	}
}
