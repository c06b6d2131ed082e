// SPDX-License-Identifier: MIT

package artifacts

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"viktor.xml", "viktor.xml"},
		{"viktor.xml.def", "viktor.xml.def"},
		{"Report 1.pdf", "Report_1.pdf"},
		{"../../etc/passwd", "etc_passwd"},
		{"résultats.json", "resultats.json"},
		{"", "artifact"},
		{"///", "artifact"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "slug of %q", tt.in)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/xml", ContentType("viktor.xml"))
	assert.Equal(t, "application/xml", ContentType("viktor.xml.def"))
	assert.Equal(t, "application/pdf", ContentType("Report_1.pdf"))
	assert.Equal(t, "application/octet-stream", ContentType("model.esa"))
	assert.Equal(t, "image/png", ContentType("span.PNG"))
	assert.Equal(t, "application/octet-stream", ContentType("mystery"))
}

func TestWriteOpenList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	jobID := uuid.New()

	info, err := store.Write(jobID, "viktor.xml", []byte("<project/>"))
	require.NoError(t, err)
	assert.Equal(t, "viktor.xml", info.Name)
	assert.EqualValues(t, 10, info.Size)
	assert.Equal(t, "application/xml", info.ContentType)

	_, err = store.Write(jobID, "results.json", []byte(`{}`))
	require.NoError(t, err)

	rc, got, err := store.Open(jobID, "viktor.xml")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<project/>", string(body))
	assert.Equal(t, info.Name, got.Name)

	list, err := store.List(jobID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "results.json", list[0].Name)
	assert.Equal(t, "viktor.xml", list[1].Name)

	total, err := store.TotalSize()
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
}

func TestOpenMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(uuid.New(), "nope.xml")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWriteOverwritesAtomically(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	jobID := uuid.New()

	_, err = store.Write(jobID, "viktor.xml", []byte("v1"))
	require.NoError(t, err)
	_, err = store.Write(jobID, "viktor.xml", []byte("v2 longer"))
	require.NoError(t, err)

	rc, info, err := store.Open(jobID, "viktor.xml")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "v2 longer", string(body))
	assert.EqualValues(t, 9, info.Size)

	list, err := store.List(jobID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	jobID := uuid.New()

	_, err = store.Write(jobID, "a.json", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(jobID))

	list, err := store.List(jobID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
