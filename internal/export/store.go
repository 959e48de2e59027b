// Package export writes orchestration records to disk for the export command.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"pkt.systems/agentnexus/schema"
	"pkt.systems/pslog"
)

// FormatVersion is written into every exported document.
const FormatVersion = 1

// Document is the on-disk form of an exported orchestration.
type Document struct {
	Version       int                  `yaml:"version"`
	ExportedAt    time.Time            `yaml:"exported_at"`
	Orchestration schema.Orchestration `yaml:"orchestration"`
}

// Store writes exports into a single directory.
type Store struct {
	dir string
	log pslog.Logger
	now func() time.Time
}

// NewStore constructs an export store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs an export store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("export directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("export_dir", dir)
	}
	return &Store{dir: dir, log: logger, now: time.Now}, nil
}

// Dir returns the export directory.
func (s *Store) Dir() string {
	return s.dir
}

// Export writes record as YAML under a file name derived from filename and
// returns the path written.
func (s *Store) Export(ctx context.Context, filename string, record schema.Orchestration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := schema.ValidateOrchestration(record); err != nil {
		return "", err
	}
	path, err := s.pathFor(filename)
	if err != nil {
		s.warn("export save failed", filename, err)
		return "", err
	}
	data, err := yaml.Marshal(Document{
		Version:       FormatVersion,
		ExportedAt:    s.now().UTC(),
		Orchestration: record,
	})
	if err != nil {
		s.warn("export save failed", filename, err)
		return "", err
	}
	if err := writeFileAtomic(path, data); err != nil {
		s.warn("export save failed", filename, err)
		return "", err
	}
	if s.log != nil {
		s.log.Debug("export save ok", "path", path, "orchestration", record.ID)
	}
	return path, nil
}

// Load reads an exported document back.
func (s *Store) Load(filename string) (Document, error) {
	path, err := s.pathFor(filename)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

func (s *Store) warn(msg, filename string, err error) {
	if s.log != nil {
		s.log.Warn(msg, "file", filename, "err", err)
	}
}

func (s *Store) pathFor(filename string) (string, error) {
	name := sanitize(strings.Trim(strings.TrimSpace(filename), `"'`))
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "", fmt.Errorf("%w: %q", schema.ErrExportPath, filename)
	}
	return filepath.Join(s.dir, name), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "export-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
