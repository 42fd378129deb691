package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/totalfitness/kiosk-dispatch/internal/types"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	store := NewFileStore(path)

	accepted := true
	entries := []types.CallLogEntry{
		{
			SID:        "CA123",
			Resolution: types.ResolutionAccepted,
			Accepted:   &accepted,
			Time:       time.Now().UTC().Format(time.RFC3339),
			Source:     "Sidney Kiosk",
		},
		{
			SID:        "CA122",
			Resolution: types.ResolutionPending,
			Time:       time.Now().UTC().Format(time.RFC3339),
			Source:     "Sidney Kiosk",
		},
	}

	if err := store.Write(entries); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].SID != "CA123" || got[1].SID != "CA122" {
		t.Errorf("order not preserved: %s, %s", got[0].SID, got[1].SID)
	}
	if got[0].Accepted == nil || !*got[0].Accepted {
		t.Error("accepted flag not preserved")
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist.json"))

	entries, err := store.Read()
	if err != nil {
		t.Fatalf("missing file should read as empty, got error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	if _, err := store.Read(); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	store := NewFileStore(path)

	first := []types.CallLogEntry{{SID: "CA1", Resolution: types.ResolutionPending}}
	second := []types.CallLogEntry{{SID: "CA2", Resolution: types.ResolutionPending}}

	if err := store.Write(first); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].SID != "CA2" {
		t.Errorf("expected last write to win, got %+v", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Clearenv()

	cfg := LoadConfig()
	if cfg.Mode != ModeFile {
		t.Errorf("expected default mode file, got %s", cfg.Mode)
	}
	if cfg.FilePath != "call_logs.json" {
		t.Errorf("expected default path call_logs.json, got %s", cfg.FilePath)
	}
}

func TestLoadConfigUnknownMode(t *testing.T) {
	os.Clearenv()
	os.Setenv("LOG_STORE", "cassandra")

	cfg := LoadConfig()
	if cfg.Mode != ModeNone {
		t.Errorf("unknown mode should fall back to none, got %s", cfg.Mode)
	}
}
