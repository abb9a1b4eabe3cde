package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qcoder/qcoder/internal/core"
)

func testCheckpoint(id string, updatedAt time.Time) Checkpoint {
	return Checkpoint{
		ConversationID: core.ConversationID(id),
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: "sys", Timestamp: updatedAt},
			{Role: core.RoleUser, Content: "hi", Timestamp: updatedAt},
		},
		Metadata: Metadata{
			CreatedAt: updatedAt.Add(-time.Hour),
			UpdatedAt: updatedAt,
		},
		MaxContextLength: 8000,
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}
	now := time.Now().UTC()

	saved := testCheckpoint("conv_a", now)
	path, err := store.Save(saved, "alpha")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "alpha.json" {
		t.Errorf("path: got %s, want alpha.json", path)
	}

	loaded, err := store.Load("alpha")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ConversationID != saved.ConversationID {
		t.Errorf("ConversationID: got %s, want %s", loaded.ConversationID, saved.ConversationID)
	}
	if loaded.MaxContextLength != saved.MaxContextLength {
		t.Errorf("MaxContextLength: got %d, want %d", loaded.MaxContextLength, saved.MaxContextLength)
	}
	if len(loaded.Messages) != len(saved.Messages) {
		t.Fatalf("got %d messages, want %d", len(loaded.Messages), len(saved.Messages))
	}
	for i := range saved.Messages {
		if loaded.Messages[i].Role != saved.Messages[i].Role ||
			loaded.Messages[i].Content != saved.Messages[i].Content {
			t.Errorf("message %d mismatch: %+v", i, loaded.Messages[i])
		}
		if !loaded.Messages[i].Timestamp.Equal(saved.Messages[i].Timestamp) {
			t.Errorf("message %d timestamp mismatch", i)
		}
	}
	if !loaded.Metadata.UpdatedAt.Equal(saved.Metadata.UpdatedAt) {
		t.Errorf("UpdatedAt: got %v, want %v", loaded.Metadata.UpdatedAt, saved.Metadata.UpdatedAt)
	}
}

func TestFileStore_SaveDefaultsNameToConversationID(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}

	path, err := store.Save(testCheckpoint("conv_b", time.Now().UTC()), "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "conv_b.json" {
		t.Errorf("path: got %s, want conv_b.json", path)
	}
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}
	now := time.Now().UTC()

	if _, err := store.Save(testCheckpoint("conv_old", now), "same"); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if _, err := store.Save(testCheckpoint("conv_new", now), "same"); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := store.Load("same")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ConversationID != "conv_new" {
		t.Errorf("got %s, want the overwriting checkpoint conv_new", loaded.ConversationID)
	}
}

func TestFileStore_SaveLeavesNoTempFile(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}

	if _, err := store.Save(testCheckpoint("conv_c", time.Now().UTC()), "clean"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(store.BaseDir, "conversations"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}

	_, err := store.Load("missing_checkpoint")
	if !errors.Is(err, core.ErrCheckpointNotFound) {
		t.Fatalf("got %v, want ErrCheckpointNotFound", err)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}
	dir := filepath.Join(store.BaseDir, "conversations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := store.Load("broken")
	if !errors.Is(err, core.ErrCheckpointCorrupt) {
		t.Fatalf("got %v, want ErrCheckpointCorrupt", err)
	}
	if errors.Is(err, core.ErrCheckpointNotFound) {
		t.Fatal("corrupt must not look like not-found")
	}
}

func TestFileStore_ListSortsByUpdatedAtDescending(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}
	base := time.Now().UTC()

	times := map[string]time.Time{
		"t1": base.Add(-3 * time.Hour),
		"t2": base.Add(-2 * time.Hour),
		"t3": base.Add(-1 * time.Hour),
	}
	for name, ts := range times {
		if _, err := store.Save(testCheckpoint("conv_"+name, ts), name); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}

	list, skipped, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped: got %d, want 0", skipped)
	}
	if len(list) != 3 {
		t.Fatalf("got %d entries, want 3", len(list))
	}
	for i, want := range []string{"t3", "t2", "t1"} {
		if list[i].Name != want {
			t.Errorf("list[%d]: got %s, want %s", i, list[i].Name, want)
		}
	}
	if list[0].MessageCount != 2 {
		t.Errorf("MessageCount: got %d, want 2", list[0].MessageCount)
	}
}

func TestFileStore_ListSkipsCorruptFiles(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}

	if _, err := store.Save(testCheckpoint("conv_ok", time.Now().UTC()), "healthy"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dir := filepath.Join(store.BaseDir, "conversations")
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("not json at all"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	list, skipped, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped: got %d, want 1", skipped)
	}
	if len(list) != 1 || list[0].Name != "healthy" {
		t.Errorf("got %+v, want only the healthy entry", list)
	}
}

func TestFileStore_ListEmptyDir(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}

	list, skipped, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 || skipped != 0 {
		t.Errorf("got %d entries, %d skipped; want none", len(list), skipped)
	}
}

func TestFileStore_Delete(t *testing.T) {
	store := &FileStore{BaseDir: t.TempDir()}

	if _, err := store.Save(testCheckpoint("conv_d", time.Now().UTC()), "doomed"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete("doomed"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Load("doomed"); !errors.Is(err, core.ErrCheckpointNotFound) {
		t.Errorf("got %v, want ErrCheckpointNotFound after delete", err)
	}

	if err := store.Delete("doomed"); !errors.Is(err, core.ErrCheckpointNotFound) {
		t.Errorf("deleting a missing checkpoint: got %v, want ErrCheckpointNotFound", err)
	}
}
