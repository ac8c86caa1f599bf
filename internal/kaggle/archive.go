package kaggle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// IsZip reports whether the file at path is a zip archive, judged by its
// leading bytes rather than its name.
func IsZip(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	// we only have to pass the file header = first 261 bytes
	head := make([]byte, 261)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false, err
	}
	return kind.MIME.Value == "application/zip", nil
}

// Unzip extracts archive into dir. Non-zip files are left alone and report
// extracted == false.
func Unzip(archive, dir string) (files []string, extracted bool, err error) {
	ok, err := IsZip(archive)
	if err != nil {
		return nil, false, fmt.Errorf("inspect %s: %w", archive, err)
	}
	if !ok {
		return nil, false, nil
	}

	r, err := zip.OpenReader(archive)
	if err != nil {
		return nil, false, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, err
	}

	for _, f := range r.File {
		dest := filepath.Join(root, filepath.FromSlash(f.Name))
		if dest != root && !strings.HasPrefix(dest, root+string(filepath.Separator)) {
			return files, true, fmt.Errorf("archive entry escapes destination: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return files, true, err
			}
			continue
		}

		if err := extractFile(f, dest); err != nil {
			return files, true, err
		}
		files = append(files, dest)
	}

	return files, true, nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	_, err = io.Copy(out, src)
	closeErr := out.Close()
	if err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return closeErr
}
