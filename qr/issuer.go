// Package qr renders QR codes to PNG files and hands out their filenames.
package qr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	CategoryTable        = "table"
	CategoryMenu         = "menu"
	CategoryTableActions = "table-actions"

	defaultSize = 256
)

var (
	ErrInvalidFilename = errors.New("invalid QR filename")
	ErrNotFound        = errors.New("QR code not found")

	categoryPattern = regexp.MustCompile(`^[a-z][a-z-]*$`)
)

// Issuer produces a QR artifact for content and returns its handle.
type Issuer interface {
	Issue(content, category string) (string, error)
	Path(filename string) (string, error)
}

// FileIssuer writes `<category>_<uuid>.png` files into a directory.
type FileIssuer struct {
	dir   string
	size  int
	level qrcode.RecoveryLevel
}

func NewFileIssuer(dir string) (*FileIssuer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create qr dir: %w", err)
	}
	return &FileIssuer{dir: dir, size: defaultSize, level: qrcode.Medium}, nil
}

func (i *FileIssuer) Dir() string {
	return i.dir
}

func (i *FileIssuer) Issue(content, category string) (string, error) {
	if !categoryPattern.MatchString(category) {
		return "", fmt.Errorf("invalid QR category %q", category)
	}

	filename := fmt.Sprintf("%s_%s.png", category, uuid.NewString())
	if err := qrcode.WriteFile(content, i.level, i.size, filepath.Join(i.dir, filename)); err != nil {
		return "", fmt.Errorf("write qr %s: %w", filename, err)
	}
	return filename, nil
}

// Path resolves a handle to a file on disk. Handles are bare filenames; anything
// that would escape the directory is rejected.
func (i *FileIssuer) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return "", ErrInvalidFilename
	}

	p := filepath.Join(i.dir, filename)
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return p, nil
}
