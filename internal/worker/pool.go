// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/viktor-platform/scia-bridge/internal/analysis"
	"github.com/viktor-platform/scia-bridge/internal/bridge"
	"github.com/viktor-platform/scia-bridge/internal/jobs"
	"github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/report"
)

// OutputDocument is the engineering document name requested from the
// engine.
const OutputDocument = "Report_1"

const maxBackoff = 30 * time.Second

// Options configures the pool.
type Options struct {
	Client       *Client
	Runner       analysis.Runner
	WorkerID     string
	Concurrency  int
	PollInterval time.Duration
	ScratchDir   string
}

// Pool polls for jobs and executes them with bounded concurrency. Jobs
// already running drain to completion on shutdown, bounded by their own
// timeout.
type Pool struct {
	client  *Client
	runner  analysis.Runner
	id      string
	workers int
	limiter *rate.Limiter
	scratch string
}

// NewPool validates the options and builds the pool.
func NewPool(opts Options) (*Pool, error) {
	if opts.Client == nil {
		return nil, errors.New("worker pool requires a client")
	}
	if opts.Runner == nil {
		return nil, errors.New("worker pool requires a runner")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return &Pool{
		client:  opts.Client,
		runner:  opts.Runner,
		id:      opts.WorkerID,
		workers: opts.Concurrency,
		limiter: rate.NewLimiter(rate.Every(opts.PollInterval), opts.Concurrency),
		scratch: opts.ScratchDir,
	}, nil
}

// Run polls until ctx is cancelled. It returns once all in-flight jobs
// have drained.
func (p *Pool) Run(ctx context.Context) error {
	logger := log.WithComponent("worker").With().Str("worker_id", p.id).Logger()
	logger.Info().
		Str("event", "worker.started").
		Int("concurrency", p.workers).
		Msg("worker pool started")

	g := new(errgroup.Group)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			p.loop(ctx, logger)
			return nil
		})
	}
	err := g.Wait()
	logger.Info().Str("event", "worker.stopped").Msg("worker pool drained")
	return err
}

func (p *Pool) loop(ctx context.Context, logger zerolog.Logger) {
	backoff := time.Second
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		job, err := p.client.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().
				Err(err).
				Str("event", "worker.poll_failed").
				Dur("backoff", backoff).
				Msg("poll failed, backing off")
			sleepJittered(ctx, backoff)
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second
		if job == nil {
			continue
		}
		p.execute(ctx, logger, job)
	}
}

// execute runs one leased job. The work context is detached from the
// poll context so shutdown drains in-flight jobs; the job timeout still
// bounds it.
func (p *Pool) execute(ctx context.Context, logger zerolog.Logger, job *jobs.Job) {
	jobLogger := logger.With().Str("job_id", job.ID.String()).Logger()
	jobLogger.Info().Str("event", "worker.job_started").Msg("executing analysis")

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = jobs.DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := p.runJob(runCtx, jobLogger, job); err != nil {
		jobLogger.Error().
			Err(err).
			Str("event", "worker.job_failed").
			Msg("analysis failed")
		reportCtx, reportCancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer reportCancel()
		if failErr := p.client.Fail(reportCtx, job.ID, err.Error()); failErr != nil {
			jobLogger.Error().
				Err(failErr).
				Str("event", "worker.fail_report_failed").
				Msg("could not report failure")
		}
		return
	}
	jobLogger.Info().Str("event", "worker.job_completed").Msg("analysis completed")
}

func (p *Pool) runJob(ctx context.Context, logger zerolog.Logger, job *jobs.Job) error {
	dir, cleanup, err := p.jobScratch(job)
	if err != nil {
		return err
	}
	defer cleanup()

	model, err := bridge.Build(job.Definition)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	input, def, err := model.GenerateXMLInput()
	if err != nil {
		return fmt.Errorf("generate model xml: %w", err)
	}

	esaPath := filepath.Join(dir, "model.esa")
	haveTemplate, err := p.client.FetchTemplate(ctx, esaPath)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("event", "worker.template_fetch_failed").
			Msg("continuing without esa template")
		haveTemplate = false
	}
	if !haveTemplate {
		esaPath = ""
	}

	results, err := p.runner.Run(ctx, analysis.Input{
		ModelXML:       input,
		DefXML:         def,
		EsaPath:        esaPath,
		OutputDocument: OutputDocument,
		WorkDir:        dir,
		Definition:     job.Definition,
	})
	if err != nil {
		return fmt.Errorf("run analysis: %w", err)
	}

	bundle, err := report.Generate(ctx, job.Definition, model, results)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	uploads := []report.Artifact{
		{Name: "viktor.xml", Data: input},
		{Name: "viktor.xml.def", Data: def},
	}
	uploads = append(uploads, bundle.All()...)
	for _, a := range uploads {
		if err := p.client.Upload(ctx, job.ID, a.Name, a.Data); err != nil {
			return err
		}
	}
	if err := p.client.Complete(ctx, job.ID); err != nil {
		return err
	}
	return nil
}

// jobScratch creates the per-job scratch dir.
func (p *Pool) jobScratch(job *jobs.Job) (string, func(), error) {
	if p.scratch != "" {
		dir := filepath.Join(p.scratch, job.ID.String())
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", nil, fmt.Errorf("create scratch dir: %w", err)
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil
	}
	dir, err := os.MkdirTemp("", "scia-job-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// sleepJittered sleeps for d scaled by a random factor in [0.5, 1.5),
// or until ctx is done.
func sleepJittered(ctx context.Context, d time.Duration) {
	jittered := time.Duration(float64(d) * (0.5 + rand.Float64()))
	t := time.NewTimer(jittered)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}
