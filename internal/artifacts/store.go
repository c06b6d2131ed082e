// SPDX-License-Identifier: MIT

// Package artifacts is the disk-backed store for analysis inputs and
// results: one directory per job under the data dir, atomic writes, and
// content-type mapping for downloads.
package artifacts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/viktor-platform/scia-bridge/internal/metrics"
)

// ErrNotFound is returned when the artifact (or its job directory) does
// not exist.
var ErrNotFound = errors.New("artifact not found")

// Info describes one stored artifact.
type Info struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ModTime     time.Time `json:"mod_time"`
}

// Store writes artifacts under root/artifacts/<job-id>/<name>.
type Store struct {
	root string
}

// NewStore creates the artifacts directory under dataDir.
func NewStore(dataDir string) (*Store, error) {
	root := filepath.Join(dataDir, "artifacts")
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Slug normalizes an artifact name to a safe file name: NFKD
// normalization, combining marks stripped, path separators and control
// characters replaced.
func Slug(name string) string {
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// drop combining marks left by the decomposition
		case r == '/' || r == '\\' || r == ':' || unicode.IsControl(r):
			b.WriteByte('_')
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r > unicode.MaxASCII:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), "._")
	if slug == "" {
		return "artifact"
	}
	return slug
}

// ContentType maps an artifact extension to its media type.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml":
		return "application/xml"
	case ".def":
		return "application/xml"
	case ".esa":
		return "application/octet-stream"
	case ".pdf":
		return "application/pdf"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

func (s *Store) jobDir(jobID uuid.UUID) string {
	return filepath.Join(s.root, jobID.String())
}

// Write stores data atomically under the job directory and returns the
// artifact info. The name is slugged first.
func (s *Store) Write(jobID uuid.UUID, name string, data []byte) (Info, error) {
	slug := Slug(name)
	dir := s.jobDir(jobID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Info{}, fmt.Errorf("create job artifact dir: %w", err)
	}
	path := filepath.Join(dir, slug)
	if err := renameio.WriteFile(path, data, 0o640); err != nil {
		return Info{}, fmt.Errorf("write artifact %s: %w", slug, err)
	}
	metrics.RecordArtifactWrite(strings.ToLower(filepath.Ext(slug)), int64(len(data)))

	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat artifact %s: %w", slug, err)
	}
	return Info{
		Name:        slug,
		Size:        st.Size(),
		ContentType: ContentType(slug),
		ModTime:     st.ModTime().UTC(),
	}, nil
}

// Open returns a reader for the artifact along with its info.
func (s *Store) Open(jobID uuid.UUID, name string) (io.ReadCloser, Info, error) {
	slug := Slug(name)
	path := filepath.Join(s.jobDir(jobID), slug)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Info{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return nil, Info{}, fmt.Errorf("open artifact %s: %w", slug, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Info{}, fmt.Errorf("stat artifact %s: %w", slug, err)
	}
	return f, Info{
		Name:        slug,
		Size:        st.Size(),
		ContentType: ContentType(slug),
		ModTime:     st.ModTime().UTC(),
	}, nil
}

// List returns the job's artifacts sorted by name.
func (s *Store) List(jobID uuid.UUID) ([]Info, error) {
	entries, err := os.ReadDir(s.jobDir(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		st, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:        e.Name(),
			Size:        st.Size(),
			ContentType: ContentType(e.Name()),
			ModTime:     st.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, nil
}

// Remove deletes the job's artifact directory.
func (s *Store) Remove(jobID uuid.UUID) error {
	return os.RemoveAll(s.jobDir(jobID))
}

// TotalSize walks the store and sums artifact sizes, for metrics and
// diagnostics.
func (s *Store) TotalSize() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.root, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		total += st.Size()
		return nil
	})
	return total, err
}
