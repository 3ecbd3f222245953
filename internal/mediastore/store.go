// Package mediastore persists binary image blobs on a filesystem, keyed by
// the image's canonical identifier. The identifier is the filename; there is
// no lookup table. Blobs are write-once: an id is never overwritten by the
// supported access pattern, so no file-level locking is needed.
package mediastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/helixir/book-catalog-service/internal/domain"
)

// Store reads and writes blobs under a single root directory. The backing
// filesystem is abstracted so tests run against an in-memory one.
type Store struct {
	fs     afero.Fs
	root   string
	logger zerolog.Logger
}

// New creates a Store over the operating system filesystem.
func New(root string, logger zerolog.Logger) *Store {
	return NewWithFs(afero.NewOsFs(), root, logger)
}

// NewWithFs creates a Store over the given filesystem.
func NewWithFs(fsys afero.Fs, root string, logger zerolog.Logger) *Store {
	return &Store{
		fs:     fsys,
		root:   root,
		logger: logger.With().Str("component", "mediastore").Logger(),
	}
}

// Save writes data under id as a whole file. The root directory is created
// if absent. The write goes to a temporary file first and is renamed into
// place, so a cancelled or failed write never leaves a partial blob visible.
//
// The id must be a canonical hyphenated UUID. The store validates it even
// though callers already have: the id becomes a filename, and the store
// does not trust callers with path construction.
func (s *Store) Save(ctx context.Context, id string, data []byte) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save cancelled: %w", err)
	}

	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create media root: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.discard(tmpName)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.discard(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.fs.Rename(tmpName, filepath.Join(s.root, id)); err != nil {
		s.discard(tmpName)
		return fmt.Errorf("failed to finalize blob: %w", err)
	}

	s.logger.Debug().Str("image_id", id).Int("bytes", len(data)).Msg("blob stored")
	return nil
}

// Load returns the exact bytes previously saved under id. An absent blob is
// a normal outcome and surfaces as a typed not-found error, never as a bare
// I/O failure.
func (s *Store) Load(ctx context.Context, id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	data, err := afero.ReadFile(s.fs, filepath.Join(s.root, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewNotFoundError("image blob", id)
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return data, nil
}

// discard removes a temp file after a failed write, best effort.
func (s *Store) discard(name string) {
	if err := s.fs.Remove(name); err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("failed to remove temp file")
	}
}

// validateID rejects anything that is not a canonical hyphenated UUID
// before it can reach path construction.
func validateID(id string) error {
	if len(id) != 36 {
		return domain.NewValidationError("image_id", "must be a valid UUID")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.NewValidationError("image_id", "must be a valid UUID")
	}
	return nil
}
