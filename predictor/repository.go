package predictor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrModelNotFound is returned by Repository.Load when nothing has been
// saved yet.
var ErrModelNotFound = errors.New("model not found")

// Repository persists model bundles.
type Repository interface {
	Load() (*Model, error)
	Save(m *Model) error
}

// BundleFile is the bundle's name inside the model directory.
const BundleFile = "crop_model.msgpack"

// FileRepository stores a single msgpack bundle in Dir.
type FileRepository struct {
	Dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{Dir: dir}
}

func (r *FileRepository) path() string {
	return filepath.Join(r.Dir, BundleFile)
}

// Load decodes and sanity-checks the bundle.
func (r *FileRepository) Load() (*Model, error) {
	raw, err := os.ReadFile(r.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read model bundle: %w", err)
	}
	var m Model
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model bundle: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("invalid model bundle: %w", err)
	}
	return &m, nil
}

// Save writes the bundle to a temp file in Dir and renames it over the old
// one, so readers see either the previous bundle or the new one.
func (r *FileRepository) Save(m *Model) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	raw, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model bundle: %w", err)
	}

	tmp, err := os.CreateTemp(r.Dir, BundleFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp bundle: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp bundle: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp bundle: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path()); err != nil {
		return fmt.Errorf("install model bundle: %w", err)
	}
	return nil
}
