package ops

import (
	"context"
	"testing"

	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/history"
)

func TestDelete_HappyPath(t *testing.T) {
	database := newTestDB(t)
	seedEntry(t, database, "01DEL001", history.OpEncrypt, 1000)

	output, err := Delete(context.Background(), database, DeleteInput{ID: "01DEL001"})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !output.Deleted {
		t.Error("Deleted = false, want true")
	}
	if output.ID != "01DEL001" {
		t.Errorf("ID = %q, want 01DEL001", output.ID)
	}

	// Entry is hidden from normal fetch
	_, err = Fetch(context.Background(), database, FetchInput{ID: "01DEL001"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestDelete_EmptyID(t *testing.T) {
	database := newTestDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{ID: ""})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{ID: "01MISSING"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestDelete_AlreadyDeleted(t *testing.T) {
	database := newTestDB(t)
	seedEntry(t, database, "01DEL010", history.OpEncrypt, 1000)

	if _, err := Delete(context.Background(), database, DeleteInput{ID: "01DEL010"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Second delete targets an already-deleted entry
	_, err := Delete(context.Background(), database, DeleteInput{ID: "01DEL010"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got: %v", err)
	}
}

func TestPurge_Empty(t *testing.T) {
	database := newTestDB(t)

	output, err := Purge(context.Background(), database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if output.Purged != 0 {
		t.Errorf("Purged = %d, want 0", output.Purged)
	}
	if output.Message != "No deleted entries to purge" {
		t.Errorf("Message = %q, want no-op message", output.Message)
	}
}

func TestPurge_RemovesDeletedOnly(t *testing.T) {
	database := newTestDB(t)
	seedEntry(t, database, "01PUR001", history.OpEncrypt, 1000)
	seedEntry(t, database, "01PUR002", history.OpEncrypt, 2000)
	if _, err := Delete(context.Background(), database, DeleteInput{ID: "01PUR001"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	output, err := Purge(context.Background(), database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if output.Purged != 1 {
		t.Errorf("Purged = %d, want 1", output.Purged)
	}
	if output.Message != "Permanently deleted 1 entry" {
		t.Errorf("Message = %q", output.Message)
	}

	// Active entry survives; purged entry is gone even with include_deleted
	if _, err := Fetch(context.Background(), database, FetchInput{ID: "01PUR002"}); err != nil {
		t.Errorf("active entry should survive purge: %v", err)
	}
	_, err = Fetch(context.Background(), database, FetchInput{ID: "01PUR001", IncludeDeleted: true})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("purged entry should be gone, got: %v", err)
	}
}

func TestPurge_OlderThanDays(t *testing.T) {
	database := newTestDB(t)
	seedEntry(t, database, "01PUR010", history.OpEncrypt, 1000)
	if _, err := Delete(context.Background(), database, DeleteInput{ID: "01PUR010"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Deleted just now, so a 7-day cutoff purges nothing
	output, err := Purge(context.Background(), database, PurgeInput{OlderThanDays: intPtr(7)})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if output.Purged != 0 {
		t.Errorf("Purged = %d, want 0 (recently deleted)", output.Purged)
	}
}

func TestPurge_MessagePlural(t *testing.T) {
	if msg := formatPurgeMessage(2, nil); msg != "Permanently deleted 2 entries" {
		t.Errorf("formatPurgeMessage(2) = %q", msg)
	}
	if msg := formatPurgeMessage(3, intPtr(30)); msg != "Permanently deleted 3 entries (deleted more than 30 days ago)" {
		t.Errorf("formatPurgeMessage(3, 30) = %q", msg)
	}
}
