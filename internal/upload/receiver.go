// Package upload resolves an incoming multipart file attachment to a stored
// filename under a fixed directory.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Receiver writes uploaded files into a single flat directory, keeping the
// original filename. Uploading a second file with the same name overwrites
// the first one on disk.
type Receiver struct {
	dir string
}

func NewReceiver(dir string) *Receiver {
	return &Receiver{dir: dir}
}

// Dir returns the destination directory files are stored in.
func (r *Receiver) Dir() string {
	return r.dir
}

// Store writes the uploaded file into the receiver's directory and returns
// the stored filename. A nil header means no file was submitted and yields
// an empty filename without error.
func (r *Receiver) Store(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}

	// Base strips any path components a client might smuggle into the name.
	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid upload filename %q", fh.Filename)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return name, nil
}
