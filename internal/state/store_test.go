package state_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	"github.com/fakeyudi/asklog/internal/state"
)

func generatePaths(t *rapid.T, label string) []string {
	return rapid.SliceOfN(rapid.StringMatching(`/[a-z]{1,10}/\.[a-z]{1,8}`), 0, 4).Draw(t, label)
}

// Feature: asklog, Property 11: Receipt persistence round-trip
func TestReceiptPersistenceRoundTrip(t *testing.T) {
	store, err := state.NewReceiptStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewReceiptStore: %v", err)
	}

	rapid.Check(t, func(t *rapid.T) {
		sec := rapid.Int64Range(0, 1_700_000_000).Draw(t, "unix_sec")
		original := state.NewReceipt(time.Unix(sec, 0).UTC(), rapid.IntRange(0, 5).Draw(t, "version"))
		original.RCFiles = generatePaths(t, "rc_files")
		original.Links = generatePaths(t, "links")
		original.BinaryPath = rapid.StringMatching(`(/[a-z]{1,8}){0,3}`).Draw(t, "binary")
		original.LogFile = rapid.StringMatching(`/[a-z]{1,8}/[a-z_]{1,12}\.log`).Draw(t, "log_file")

		if err := store.Save(original); err != nil {
			t.Fatalf("Save: %v", err)
		}
		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if loaded.ID != original.ID {
			t.Errorf("ID mismatch: got %q, want %q", loaded.ID, original.ID)
		}
		if !loaded.InstalledAt.Equal(original.InstalledAt) {
			t.Errorf("InstalledAt mismatch: got %v, want %v", loaded.InstalledAt, original.InstalledAt)
		}
		if loaded.HookVersion != original.HookVersion {
			t.Errorf("HookVersion mismatch: got %d, want %d", loaded.HookVersion, original.HookVersion)
		}
		if loaded.BinaryPath != original.BinaryPath || loaded.LogFile != original.LogFile {
			t.Errorf("paths mismatch: got %+v, want %+v", loaded, original)
		}
		if len(loaded.RCFiles) != len(original.RCFiles) {
			t.Fatalf("RCFiles length mismatch: got %d, want %d", len(loaded.RCFiles), len(original.RCFiles))
		}
		for i := range original.RCFiles {
			if loaded.RCFiles[i] != original.RCFiles[i] {
				t.Errorf("RCFiles[%d] mismatch: got %q, want %q", i, loaded.RCFiles[i], original.RCFiles[i])
			}
		}
		if len(loaded.Links) != len(original.Links) {
			t.Fatalf("Links length mismatch: got %d, want %d", len(loaded.Links), len(original.Links))
		}
	})
}

func TestNewReceiptHasUUID(t *testing.T) {
	r := state.NewReceipt(time.Now(), 1)
	if _, err := uuid.Parse(r.ID); err != nil {
		t.Errorf("receipt ID %q is not a UUID: %v", r.ID, err)
	}
}

func TestReceiptMergeKeepsHistory(t *testing.T) {
	prev := state.NewReceipt(time.Unix(100, 0), 1)
	prev.RCFiles = []string{"/h/.bashrc"}
	prev.Links = []string{"/usr/local/bin/ask"}
	prev.BinaryPath = "/opt/ask"

	next := state.NewReceipt(time.Unix(200, 0), 1)
	next.RCFiles = []string{"/h/.zshrc", "/h/.bashrc"}
	next.Merge(prev)

	if next.ID != prev.ID || !next.InstalledAt.Equal(prev.InstalledAt) {
		t.Errorf("merge should keep the original identity, got %+v", next)
	}
	if len(next.RCFiles) != 2 || next.RCFiles[0] != "/h/.bashrc" || next.RCFiles[1] != "/h/.zshrc" {
		t.Errorf("RCFiles: got %v", next.RCFiles)
	}
	if len(next.Links) != 1 || next.BinaryPath != "/opt/ask" {
		t.Errorf("links/binary not carried over: %+v", next)
	}
}

// TestLoadReturnsErrNotInstalled verifies that Load reports ErrNotInstalled
// when no receipt exists on disk.
func TestLoadReturnsErrNotInstalled(t *testing.T) {
	store, err := state.NewReceiptStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewReceiptStore: %v", err)
	}
	_, err = store.Load()
	if !errors.Is(err, state.ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got: %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := state.NewReceiptStore(dir)
	if err != nil {
		t.Fatalf("NewReceiptStore: %v", err)
	}
	if err := store.Save(state.NewReceipt(time.Now(), 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "receipt.json")); !os.IsNotExist(err) {
		t.Error("receipt should be gone")
	}
}

func TestNewReceiptStoreUnwritable(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission checks are ineffective")
	}
	tmp := t.TempDir()
	if err := os.Chmod(tmp, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(tmp, 0o755) })

	if _, err := state.NewReceiptStore(filepath.Join(tmp, "asklog")); err == nil {
		t.Fatal("expected error creating store in unwritable directory, got nil")
	}
}
