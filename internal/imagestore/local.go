package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// localStore implements Store on the local filesystem.
type localStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore creates a filesystem-backed image store rooted at dir,
// creating the directory if needed.
func NewLocalStore(dir string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	logger = logger.With().Str("component", "image-store").Logger()
	logger.Info().Str("dir", dir).Msg("local image store initialised")

	return &localStore{dir: dir, logger: logger}, nil
}

// Save writes the image under the given filename.
func (s *localStore) Save(ctx context.Context, filename string, r io.Reader) error {
	name, err := sanitize(filename)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to create image file")
		return fmt.Errorf("failed to create image file %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		s.logger.Error().Err(err).Str("file", path).Msg("failed to write image file")
		return fmt.Errorf("failed to write image file %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close image file %s: %w", name, err)
	}

	s.logger.Debug().Str("file", name).Msg("image saved")

	return nil
}

// Open returns a reader for a stored image.
func (s *localStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	name, err := sanitize(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		s.logger.Error().Err(err).Str("file", name).Msg("failed to open image file")
		return nil, fmt.Errorf("failed to open image file %s: %w", name, err)
	}

	return f, nil
}

// Remove deletes a stored image.
func (s *localStore) Remove(ctx context.Context, filename string) error {
	name, err := sanitize(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		s.logger.Error().Err(err).Str("file", name).Msg("failed to remove image file")
		return fmt.Errorf("failed to remove image file %s: %w", name, err)
	}

	s.logger.Debug().Str("file", name).Msg("image removed")

	return nil
}
