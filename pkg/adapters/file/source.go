package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/aretw0/vine/pkg/domain"
)

// Source implements ports.ScriptSource for a script on disk.
// The stamp is the file's modification time and size.
type Source struct {
	Path string
}

// NewSource creates a source for the script at path.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// Name returns the script path.
func (s *Source) Name() string { return s.Path }

// Stat queries the file's modification stamp.
func (s *Source) Stat() (domain.Stamp, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return domain.Stamp{}, s.wrap(err)
	}
	if info.IsDir() {
		return domain.Stamp{}, fmt.Errorf("%s is a directory", s.Path)
	}
	return domain.FileStamp(info.ModTime(), info.Size()), nil
}

// Read returns the file content together with the stamp of the opened file.
func (s *Source) Read() ([]byte, domain.Stamp, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, domain.Stamp{}, s.wrap(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, domain.Stamp{}, fmt.Errorf("failed to stat script: %w", err)
	}
	if info.IsDir() {
		return nil, domain.Stamp{}, fmt.Errorf("%s is a directory", s.Path)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.Stamp{}, fmt.Errorf("failed to read script: %w", err)
	}
	return data, domain.FileStamp(info.ModTime(), info.Size()), nil
}

func (s *Source) wrap(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", s.Path, domain.ErrScriptNotFound)
	}
	return err
}
