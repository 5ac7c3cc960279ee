package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/okian/golazo/internal/domain/model"
)

const archiveVersion = 1

// ErrNoArchivePath is returned by Archive and Unarchive when no path was configured.
var ErrNoArchivePath = errors.New("archive path not configured")

type archive struct {
	Version int            `msgpack:"version"`
	Players []model.Player `msgpack:"players"`
	Matches []model.Match  `msgpack:"matches"`
}

// Archive writes the roster and history to the archive path.
// The file is replaced atomically.
func (s *MemoryStore) Archive(ctx context.Context) error {
	if s.archivePath == "" {
		return ErrNoArchivePath
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	data, err := msgpack.Marshal(archive{
		Version: archiveVersion,
		Players: s.players,
		Matches: s.matches,
	})
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	dir := filepath.Dir(s.archivePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.archivePath)+".*")
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.archivePath); err != nil {
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}

// Unarchive replaces the in-memory state with the archive contents.
// A missing archive file leaves the store unchanged.
func (s *MemoryStore) Unarchive(ctx context.Context) error {
	if s.archivePath == "" {
		return ErrNoArchivePath
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.archivePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	var a archive
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode archive: %w", err)
	}
	if a.Version != archiveVersion {
		return fmt.Errorf("decode archive: unsupported version %d", a.Version)
	}
	if a.Players == nil {
		a.Players = make([]model.Player, 0)
	}
	if a.Matches == nil {
		a.Matches = make([]model.Match, 0)
	}

	s.mu.Lock()
	s.players = a.Players
	s.matches = a.Matches
	s.mu.Unlock()
	return nil
}
