// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/viktor-platform/scia-bridge/internal/analysis"
	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/scia"
	"github.com/viktor-platform/scia-bridge/internal/version"
)

func renderPDF(p params.BridgeParams, summary scia.Summary, res *analysis.Results, diagram []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; translate UTF-8 label text (degree signs)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6,
			fmt.Sprintf("scia-bridge %s - generated %s", version.Version, time.Now().UTC().Format("2006-01-02 15:04 UTC")),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Parametric Bridge Analysis")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Output document: %s", res.OutputDocument))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Method: %s", res.Method))
	pdf.Ln(10)

	for _, step := range params.Schema() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, step.Title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, f := range step.Fields {
			label := f.Label
			if f.Suffix != "" {
				label = fmt.Sprintf("%s (%s)", f.Label, f.Suffix)
			}
			pdf.CellFormat(90, 6, tr(label), "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, formatParam(p, step.Name, f), "1", 0, "R", false, 0, "")
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Model inventory")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	inventory := [][2]string{
		{"Nodes", fmt.Sprintf("%d", summary.Nodes)},
		{"Members", fmt.Sprintf("%d", summary.Beams)},
		{"Slabs", fmt.Sprintf("%d", summary.Planes)},
		{"Surface supports", fmt.Sprintf("%d", summary.SurfaceSupports)},
		{"Line supports", fmt.Sprintf("%d", summary.LineSupports)},
		{"Point supports", fmt.Sprintf("%d", summary.PointSupports)},
		{"Load cases", fmt.Sprintf("%d", len(summary.LoadCases))},
		{"Combinations", fmt.Sprintf("%d", len(summary.Combinations))},
	}
	for _, row := range inventory {
		pdf.CellFormat(90, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, row[1], "1", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Results")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total applied load: %.1f kN", res.TotalLoad/1e3))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Maximum deflection estimate: %.1f mm", res.MaxDeflection*1e3))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(20, 6, "Row", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Position (m)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, "Reaction (kN)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, "Pile axial (kN)", "1", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for i, r := range res.Reactions {
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", r.Row), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", r.Position), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", r.Force/1e3), "1", 0, "R", false, 0, "")
		pileForce := 0.0
		if i < len(res.PileForces) {
			pileForce = res.PileForces[i].Force
		}
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", pileForce/1e3), "1", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.Ln(6)

	for _, c := range res.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s - %s", c.Name, status, c.Detail))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	if len(diagram) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("span.png", opts, bytes.NewReader(diagram))
		pdf.ImageOptions("span.png", 15, pdf.GetY(), 180, 0, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatParam resolves a schema field to its value in the definition.
func formatParam(p params.BridgeParams, step string, f params.NumberField) string {
	var v float64
	switch step {
	case "bridge_layout":
		switch f.Name {
		case "width":
			v = p.Layout.Width
		case "length":
			v = p.Layout.Length
		case "height":
			v = p.Layout.Height
		case "deck_thickness":
			v = p.Layout.DeckThickness
		case "support_amount":
			v = float64(p.Layout.SupportAmount)
		case "support_piles_amount":
			v = float64(p.Layout.SupportPilesAmount)
		}
	case "bridge_foundations":
		switch f.Name {
		case "pile_length":
			v = p.Foundations.PileLength
		case "pile_angle":
			v = p.Foundations.PileAngle
		case "pile_thickness":
			v = p.Foundations.PileThickness
		case "deck_load":
			v = p.Foundations.DeckLoad
		case "soil_stiffness":
			v = p.Foundations.SoilStiffness
		}
	}
	if f.Integer {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%g", v)
}
