package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qcoder/qcoder/internal/core"
)

// FileStore persists checkpoints as one JSON file per name under BaseDir.
// Saves to different names may run concurrently; concurrent saves to the same
// name race and the last rename wins.
type FileStore struct {
	BaseDir string
}

func (store *FileStore) checkpointDir() string {
	return filepath.Join(store.BaseDir, "conversations")
}

func (store *FileStore) checkpointPath(name string) string {
	return filepath.Join(store.checkpointDir(), name+".json")
}

// Save writes the checkpoint under the given name, overwriting any previous
// checkpoint of that name, and returns the file path. The write goes to a
// temp file first and is renamed into place, so a concurrent reader never
// sees a half-written checkpoint.
func (store *FileStore) Save(cp Checkpoint, name string) (string, error) {
	if name == "" {
		name = string(cp.ConversationID)
	}

	if err := os.MkdirAll(store.checkpointDir(), 0o755); err != nil {
		return "", fmt.Errorf("create checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal checkpoint: %w", err)
	}

	path := store.checkpointPath(name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write checkpoint: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("publish checkpoint: %w", err)
	}

	return path, nil
}

// Load reads the named checkpoint. A missing name fails with
// core.ErrCheckpointNotFound; a file that exists but does not parse fails
// with core.ErrCheckpointCorrupt.
func (store *FileStore) Load(name string) (Checkpoint, error) {
	data, err := os.ReadFile(store.checkpointPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, fmt.Errorf("%w: %s", core.ErrCheckpointNotFound, name)
		}
		return Checkpoint{}, fmt.Errorf("read checkpoint %s: %w", name, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("%w: %s: %v", core.ErrCheckpointCorrupt, name, err)
	}

	return cp, nil
}

// List enumerates stored checkpoints sorted by most recently updated first.
// Files that fail to parse are skipped rather than aborting the listing; the
// second return value reports how many were skipped.
func (store *FileStore) List() ([]Entry, int, error) {
	entries, err := os.ReadDir(store.checkpointDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("list checkpoints: %w", err)
	}

	var result []Entry
	skipped := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		cp, err := store.Load(name)
		if err != nil {
			slog.Warn("skipping unreadable checkpoint", "name", name, "error", err)
			skipped++
			continue
		}

		result = append(result, Entry{
			Name:           name,
			ConversationID: cp.ConversationID,
			CreatedAt:      cp.Metadata.CreatedAt,
			UpdatedAt:      cp.Metadata.UpdatedAt,
			MessageCount:   len(cp.Messages),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, skipped, nil
}

// Delete removes the named checkpoint from disk.
func (store *FileStore) Delete(name string) error {
	path := store.checkpointPath(name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", core.ErrCheckpointNotFound, name)
		}
		return fmt.Errorf("stat checkpoint: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}

	return nil
}
