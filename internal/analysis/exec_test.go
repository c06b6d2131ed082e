// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktor-platform/scia-bridge/internal/params"
)

func TestExecRunnerNoCommand(t *testing.T) {
	r := &ExecRunner{}
	_, err := r.Run(context.Background(), Input{Definition: params.Defaults()})
	require.ErrorIs(t, err, ErrEngineFailed)
}

func TestExecRunnerMaterializesInputs(t *testing.T) {
	dir := t.TempDir()
	esa := filepath.Join(t.TempDir(), "template.esa")
	require.NoError(t, os.WriteFile(esa, []byte("template"), 0o640))

	r := &ExecRunner{Command: "true"}
	res, err := r.Run(context.Background(), Input{
		ModelXML:       []byte("<project/>"),
		DefXML:         []byte("<def_project/>"),
		EsaPath:        esa,
		OutputDocument: "Report_1",
		WorkDir:        dir,
		Definition:     params.Defaults(),
	})
	require.NoError(t, err)

	for _, name := range []string{"viktor.xml", "viktor.xml.def", "model.esa"} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, statErr, name)
	}

	// No results.json from the command means static fallback.
	assert.Contains(t, res.Method, "static estimate")
	assert.Equal(t, "Report_1", res.OutputDocument)
}

func TestExecRunnerUsesEngineResults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.json"),
		[]byte(`{"total_load_n": 42, "max_deflection_m": 0.01}`), 0o640))

	r := &ExecRunner{Command: "true"}
	res, err := r.Run(context.Background(), Input{
		ModelXML:       []byte("<project/>"),
		DefXML:         []byte("<def_project/>"),
		OutputDocument: "Report_1",
		WorkDir:        dir,
		Definition:     params.Defaults(),
	})
	require.NoError(t, err)
	assert.Equal(t, "scia engineer", res.Method)
	assert.Equal(t, 42.0, res.TotalLoad)
	assert.Equal(t, "Report_1", res.OutputDocument)
}

func TestExecRunnerFailureCarriesStderr(t *testing.T) {
	r := &ExecRunner{Command: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}
	_, err := r.Run(context.Background(), Input{
		ModelXML:   []byte("<project/>"),
		DefXML:     []byte("<def_project/>"),
		WorkDir:    t.TempDir(),
		Definition: params.Defaults(),
	})
	require.ErrorIs(t, err, ErrEngineFailed)
	assert.Contains(t, err.Error(), "boom")
}

func TestTail(t *testing.T) {
	long := make([]byte, logTailBytes*2)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, tail(long), logTailBytes)
	assert.Equal(t, "short", tail([]byte("short\n")))
}
