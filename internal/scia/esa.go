// SPDX-License-Identifier: MIT

package scia

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// The .esa project template is an opaque vendor file: the engine opens it
// and injects the XML input. It is shipped alongside the service in the
// data directory and never synthesized.
const esaTemplateName = "model.esa"

// TemplatePath resolves the .esa project template inside dataDir. Returns
// ErrNoTemplate when the file is absent.
func TemplatePath(dataDir string) (string, error) {
	path := filepath.Join(dataDir, esaTemplateName)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoTemplate, path)
		}
		return "", fmt.Errorf("stat esa template: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrNoTemplate, path)
	}
	return path, nil
}

// CopyTemplate copies the .esa template from dataDir to dst, creating
// parent directories as needed.
func CopyTemplate(dataDir, dst string) error {
	src, err := TemplatePath(dataDir)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open esa template: %w", err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create esa destination dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create esa copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy esa template: %w", err)
	}
	return out.Close()
}
