// SPDX-License-Identifier: MIT

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/viktor-platform/scia-bridge/internal/log"
)

// ErrEngineFailed is returned when the external engine exits non-zero.
var ErrEngineFailed = errors.New("engine execution failed")

const logTailBytes = 4096

// ExecRunner drives an external SCIA console command. The input files
// are materialized into the job's scratch dir and the command line may
// reference them through placeholders:
//
//	{input}  path to viktor.xml
//	{def}    path to viktor.xml.def
//	{esa}    path to the copied model.esa
//	{output} the output document name
//	{dir}    the scratch dir
//
// If the engine leaves a results.json in the scratch dir it is used
// verbatim; otherwise the run falls back to the static estimate with
// the engine log attached.
type ExecRunner struct {
	Command string
	Args    []string
}

func (r *ExecRunner) Run(ctx context.Context, in Input) (*Results, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("%w: no engine command configured", ErrEngineFailed)
	}
	dir := in.WorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "scia-run-*")
		if err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	inputPath := filepath.Join(dir, "viktor.xml")
	defPath := filepath.Join(dir, "viktor.xml.def")
	esaPath := filepath.Join(dir, "model.esa")
	if err := os.WriteFile(inputPath, in.ModelXML, 0o640); err != nil {
		return nil, fmt.Errorf("write model xml: %w", err)
	}
	if err := os.WriteFile(defPath, in.DefXML, 0o640); err != nil {
		return nil, fmt.Errorf("write def xml: %w", err)
	}
	if in.EsaPath != "" {
		data, err := os.ReadFile(in.EsaPath)
		if err != nil {
			return nil, fmt.Errorf("read esa template: %w", err)
		}
		if err := os.WriteFile(esaPath, data, 0o640); err != nil {
			return nil, fmt.Errorf("write esa copy: %w", err)
		}
	}

	expand := strings.NewReplacer(
		"{input}", inputPath,
		"{def}", defPath,
		"{esa}", esaPath,
		"{output}", in.OutputDocument,
		"{dir}", dir,
	)
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = expand.Replace(a)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := log.WithComponent("analysis")
	logger.Info().
		Str("event", "engine.start").
		Str("command", r.Command).
		Strs("args", args).
		Msg("running external engine")

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineFailed, ctx.Err())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v; stderr: %s", ErrEngineFailed, err, tail(stderr.Bytes()))
	}

	if data, err := os.ReadFile(filepath.Join(dir, "results.json")); err == nil {
		var res Results
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("decode engine results: %w", err)
		}
		if res.OutputDocument == "" {
			res.OutputDocument = in.OutputDocument
		}
		res.Method = "scia engineer"
		return &res, nil
	}

	logger.Warn().
		Str("event", "engine.no_results").
		Msg("engine produced no results.json, falling back to static estimate")
	res, err := StaticRunner{}.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	res.EngineLog = tail(stdout.Bytes())
	return res, nil
}

// tail returns at most the last logTailBytes of the engine output.
func tail(b []byte) string {
	if len(b) > logTailBytes {
		b = b[len(b)-logTailBytes:]
	}
	return strings.TrimSpace(string(b))
}
