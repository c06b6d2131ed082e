// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/viktor-platform/scia-bridge/internal/analysis"
	"github.com/viktor-platform/scia-bridge/internal/bridge"
	"github.com/viktor-platform/scia-bridge/internal/params"
)

func testInputs(t *testing.T) (params.BridgeParams, *analysis.Results) {
	t.Helper()
	p := params.Defaults()
	res, err := analysis.StaticRunner{}.Run(context.Background(), analysis.Input{
		OutputDocument: "Report_1",
		Definition:     p,
	})
	require.NoError(t, err)
	return p, res
}

func TestGenerateBundle(t *testing.T) {
	p, res := testInputs(t)
	model, err := bridge.Build(p)
	require.NoError(t, err)

	bundle, err := Generate(context.Background(), p, model, res)
	require.NoError(t, err)

	assert.Equal(t, "Report_1.pdf", bundle.PDF.Name)
	assert.Equal(t, "span.png", bundle.Diagram.Name)
	assert.Equal(t, "summary.md", bundle.Summary.Name)
	assert.Equal(t, "results.json", bundle.Results.Name)
	assert.Equal(t, "model.xlsx", bundle.Workbook.Name)

	for _, a := range bundle.All() {
		assert.NotEmpty(t, a.Data, a.Name)
	}

	assert.True(t, bytes.HasPrefix(bundle.PDF.Data, []byte("%PDF")), "pdf magic")
	assert.True(t, bytes.HasPrefix(bundle.Diagram.Data, []byte("\x89PNG")), "png magic")
}

func TestResultsArtifactIsValidJSON(t *testing.T) {
	p, res := testInputs(t)
	model, err := bridge.Build(p)
	require.NoError(t, err)

	bundle, err := Generate(context.Background(), p, model, res)
	require.NoError(t, err)

	var decoded analysis.Results
	require.NoError(t, json.Unmarshal(bundle.Results.Data, &decoded))
	assert.Equal(t, res.TotalLoad, decoded.TotalLoad)
}

func TestMarkdownSummaryContent(t *testing.T) {
	p, res := testInputs(t)
	model, err := bridge.Build(p)
	require.NoError(t, err)

	data, err := renderMarkdown(p, model.Summarize(), res)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# Bridge analysis summary")
	assert.Contains(t, text, "## Parameters")
	assert.Contains(t, text, "Deck load")
	assert.Contains(t, text, "## Results")
	assert.Contains(t, text, "equilibrium: PASS - ")
	// separators stay ASCII so the same strings render in the cp1252 PDF
	assert.NotContains(t, text, "—")
}

func TestWorkbookSheets(t *testing.T) {
	p, _ := testInputs(t)
	model, err := bridge.Build(p)
	require.NoError(t, err)

	data, err := renderWorkbook(model)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Nodes", "Members", "Loads"}, f.GetSheetList())

	rows, err := f.GetRows("Nodes")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Name", "X (m)", "Y (m)", "Z (m)"}, rows[0])
	assert.Len(t, rows, len(model.Nodes)+1)
}

func TestSpanDiagramSupportsOnCurve(t *testing.T) {
	p, res := testInputs(t)
	png, err := SpanDiagram(p, res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestFormatParamIntegers(t *testing.T) {
	p := params.Defaults()
	step := params.Schema()[0]
	for _, f := range step.Fields {
		if f.Name == "support_amount" {
			assert.Equal(t, "1", formatParam(p, step.Name, f))
		}
		if f.Name == "width" {
			assert.Equal(t, "20", formatParam(p, step.Name, f))
		}
	}
}
