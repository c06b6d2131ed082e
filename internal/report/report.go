// SPDX-License-Identifier: MIT

// Package report renders the engineering report bundle for a completed
// analysis: the PDF, the span diagram, the markdown and JSON summaries
// and the model workbook.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/viktor-platform/scia-bridge/internal/analysis"
	"github.com/viktor-platform/scia-bridge/internal/metrics"
	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/scia"
)

// Artifact is one rendered report file.
type Artifact struct {
	Name string
	Data []byte
}

// Bundle is the full set of report artifacts for one analysis.
type Bundle struct {
	PDF      Artifact
	Diagram  Artifact
	Summary  Artifact
	Results  Artifact
	Workbook Artifact
}

// All returns the artifacts in a stable order.
func (b *Bundle) All() []Artifact {
	return []Artifact{b.PDF, b.Diagram, b.Summary, b.Results, b.Workbook}
}

// Generate renders the complete bundle. The span diagram is rendered
// first because the PDF embeds it; the remaining formats render in
// parallel.
func Generate(ctx context.Context, p params.BridgeParams, model *scia.Model, res *analysis.Results) (*Bundle, error) {
	summary := model.Summarize()

	diagramStart := time.Now()
	png, err := SpanDiagram(p, res)
	if err != nil {
		return nil, fmt.Errorf("render span diagram: %w", err)
	}
	metrics.ObserveReportRender("png", time.Since(diagramStart).Seconds())

	bundle := &Bundle{
		Diagram: Artifact{Name: "span.png", Data: png},
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		data, err := renderPDF(p, summary, res, png)
		if err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		metrics.ObserveReportRender("pdf", time.Since(start).Seconds())
		bundle.PDF = Artifact{Name: res.OutputDocument + ".pdf", Data: data}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		data, err := renderMarkdown(p, summary, res)
		if err != nil {
			return fmt.Errorf("render markdown summary: %w", err)
		}
		metrics.ObserveReportRender("md", time.Since(start).Seconds())
		bundle.Summary = Artifact{Name: "summary.md", Data: data}
		return nil
	})
	g.Go(func() error {
		data, err := res.JSON()
		if err != nil {
			return fmt.Errorf("render results json: %w", err)
		}
		bundle.Results = Artifact{Name: "results.json", Data: data}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		data, err := renderWorkbook(model)
		if err != nil {
			return fmt.Errorf("render workbook: %w", err)
		}
		metrics.ObserveReportRender("xlsx", time.Since(start).Seconds())
		bundle.Workbook = Artifact{Name: "model.xlsx", Data: data}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}
