package mapclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Downloader delivers a named file to the user.
type Downloader interface {
	Download(name string, content []byte) error
}

// FileDownloader saves downloads into a directory of an afero filesystem.
type FileDownloader struct {
	fs  afero.Fs
	dir string
}

// NewFileDownloader creates a downloader writing into dir on fs.
func NewFileDownloader(fs afero.Fs, dir string) *FileDownloader {
	return &FileDownloader{fs: fs, dir: dir}
}

func (d *FileDownloader) Download(name string, content []byte) error {
	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(d.dir, name)
	if err := afero.WriteFile(d.fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// ExportFileName names the export download after the UTC date of t.
func ExportFileName(t time.Time) string {
	return "roads_export_" + t.UTC().Format(time.DateOnly) + ".json"
}

// prettyJSON indents a payload by two spaces without reordering its keys.
func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format export payload: %w", err)
	}

	return buf.Bytes(), nil
}
