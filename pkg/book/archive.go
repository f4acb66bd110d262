package book

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// documentNames are looked up, in order, at the root of a book archive.
var documentNames = []string{"book.yaml", "book.yml", "book.json"}

// Extract unpacks a zip archive into a temporary directory and loads the book
// document found at its root. The returned book owns the directory; Close removes it.
func Extract(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open book archive: %w", err)
	}

	dir, err := os.MkdirTemp("", "fernspiel-book-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create book directory: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(dir) }

	bk, err := extractInto(zr, dir)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	bk.cleanup = cleanup
	return bk, nil
}

func extractInto(zr *zip.Reader, dir string) (*Book, error) {
	for _, f := range zr.File {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return nil, fmt.Errorf("illegal path in book archive: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("failed to extract %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, err
		}
	}

	for _, name := range documentNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return Parse(data, dir)
	}
	return nil, fmt.Errorf("book archive has no %s", strings.Join(documentNames, ", "))
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return dst.Close()
}
