package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploads stores cover images on disk and returns the public URL they will be
// served under.
type Uploads struct {
	dir     string
	baseURL string
}

// NewUploads constructs an upload store rooted at dir.
func NewUploads(dir, baseURL string) *Uploads {
	return &Uploads{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save writes the uploaded file under a generated name and returns its URL.
func (u *Uploads) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(header.Filename)
	path := filepath.Join(u.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return u.baseURL + "/uploads/" + name, nil
}
