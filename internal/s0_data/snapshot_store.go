package s0_data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/pkg/logger"
	"github.com/bistsignal/backend/pkg/redis"
)

// LastUpdateLayout is the timestamp format of last_update
const LastUpdateLayout = "2006-01-02 15:04:05"

// SnapshotFileStore implements contracts.SnapshotStore on a JSON file
// ⭐ SSOT: macro_data.json is read and written here only
type SnapshotFileStore struct {
	path   string
	cache  Cache
	logger *logger.Logger
	now    func() time.Time

	mu sync.Mutex // serializes read-modify-write of the file
}

// NewSnapshotFileStore creates a store for the file at path. cache may be nil.
func NewSnapshotFileStore(path string, cache Cache, log *logger.Logger) *SnapshotFileStore {
	return &SnapshotFileStore{
		path:   path,
		cache:  cache,
		logger: log.Module("snapshot_store"),
		now:    time.Now,
	}
}

// Path returns the snapshot file location
func (s *SnapshotFileStore) Path() string {
	return s.path
}

// Load returns the current snapshot; a missing or unreadable file is a config error
func (s *SnapshotFileStore) Load(ctx context.Context) (*contracts.MacroSnapshot, error) {
	if s.cache != nil {
		var cached contracts.MacroSnapshot
		found, err := s.cache.Get(ctx, redis.MacroSnapshotKey(), &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Snapshot cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	snapshot, err := s.readFile()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, redis.MacroSnapshotKey(), snapshot, redis.TTLLong); err != nil {
			s.logger.WithError(err).Warn("Snapshot cache write failed")
		}
	}
	return snapshot, nil
}

func (s *SnapshotFileStore) readFile() (*contracts.MacroSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, contracts.NewConfigError("macro.snapshot", "macro data file %s not found (run 'quant macro update')", s.path)
	}
	if err != nil {
		return nil, contracts.NewConfigError("macro.snapshot", "read %s: %v", s.path, err)
	}

	var snapshot contracts.MacroSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, contracts.NewConfigError("macro.snapshot", "parse %s: %v", s.path, err)
	}

	s.logger.WithField("path", s.path).Debug("Macro snapshot loaded")
	return &snapshot, nil
}

// Save writes snapshot atomically and refreshes the cache
func (s *SnapshotFileStore) Save(ctx context.Context, snapshot *contracts.MacroSnapshot) error {
	if snapshot == nil {
		return contracts.NewInputError("macro.snapshot", "nil snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, snapshot)
}

func (s *SnapshotFileStore) save(ctx context.Context, snapshot *contracts.MacroSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".macro_data-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, redis.MacroSnapshotKey(), snapshot, redis.TTLLong); err != nil {
			s.logger.WithError(err).Warn("Snapshot cache write failed")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"path":        s.path,
		"last_update": snapshot.LastUpdate,
	}).Info("Macro snapshot saved")
	return nil
}

// UpdateTCMBRate records a new policy rate. A changed rate moves the old one
// into previous_tcmb_rate; a missing file starts an empty snapshot.
func (s *SnapshotFileStore) UpdateTCMBRate(ctx context.Context, rate float64) (*contracts.MacroSnapshot, error) {
	if rate < 0 || rate > 1000 {
		return nil, contracts.NewInputError("macro.tcmb_rate", "rate out of range: %v", rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.readFile()
	if err != nil {
		if !contracts.IsConfigError(err) {
			return nil, err
		}
		if _, statErr := os.Stat(s.path); statErr == nil {
			// the file exists but is corrupt; do not overwrite it
			return nil, err
		}
		snapshot = &contracts.MacroSnapshot{}
	}

	if snapshot.TCMBRate != nil && *snapshot.TCMBRate != rate {
		snapshot.PreviousTCMBRate = contracts.Float(*snapshot.TCMBRate)
	}
	snapshot.TCMBRate = contracts.Float(rate)
	snapshot.LastUpdate = s.now().Format(LastUpdateLayout)

	if err := s.save(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
