// Package storage keeps medical record attachments under
// medical_records/YYYY/MM/DD/ on an afero filesystem.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	recordDir   = "medical_records"
	maxNameLen  = 100
	defaultName = "attachment"
)

var unsafeChars = regexp.MustCompile(`[^\w.-]+`)

type Storage struct {
	fs  afero.Fs
	now func() time.Time
}

func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs, now: time.Now}
}

// NewOS stores files below root on the local disk.
func NewOS(root string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// Save writes r under today's directory and returns the relative path.
func (s *Storage) Save(name string, r io.Reader) (string, error) {
	dir := path.Join(recordDir, s.now().Format("2006/01/02"))
	if err := s.fs.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	rel := path.Join(dir, uuid.NewString()+"-"+sanitize(name))
	f, err := s.fs.OpenFile(rel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(rel)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload: %w", err)
	}
	return rel, nil
}

// SaveUpload stores a multipart file.
func (s *Storage) SaveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()
	return s.Save(fh.Filename, src)
}

func (s *Storage) Open(rel string) (afero.File, error) {
	clean := path.Clean("/" + rel)[1:]
	if !strings.HasPrefix(clean, recordDir+"/") {
		return nil, fmt.Errorf("path %q is outside the attachment area", rel)
	}
	return s.fs.Open(clean)
}

// Remove deletes a stored file; used to undo a save when the record insert fails.
func (s *Storage) Remove(rel string) error {
	return s.fs.Remove(rel)
}

func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return defaultName
	}
	if len(name) > maxNameLen {
		name = name[len(name)-maxNameLen:]
	}
	return name
}
