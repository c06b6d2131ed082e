// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/viktor-platform/scia-bridge/internal/analysis"
	"github.com/viktor-platform/scia-bridge/internal/params"
)

const diagramSamplesPerBay = 16

// SpanDiagram renders the deflection envelope along the span with the
// support reactions marked, as a PNG.
func SpanDiagram(p params.BridgeParams, res *analysis.Results) ([]byte, error) {
	pl := plot.New()
	pl.Title.Text = "Span envelope"
	pl.X.Label.Text = "Position along span (m)"
	pl.Y.Label.Text = "Deflection (mm)"

	curve, err := plotter.NewLine(deflectionCurve(res))
	if err != nil {
		return nil, err
	}
	curve.LineStyle.Width = vg.Points(1.5)
	curve.LineStyle.Color = color.RGBA{B: 180, A: 255}
	pl.Add(curve)

	supports := make(plotter.XYs, len(res.Reactions))
	for i, r := range res.Reactions {
		supports[i] = plotter.XY{X: r.Position, Y: 0}
	}
	marks, err := plotter.NewScatter(supports)
	if err != nil {
		return nil, err
	}
	marks.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
	marks.GlyphStyle.Radius = vg.Points(4)
	marks.GlyphStyle.Shape = draw.TriangleGlyph{}
	pl.Add(marks)

	pl.X.Min = 0
	pl.X.Max = p.Layout.Length

	wt, err := pl.WriterTo(6*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deflectionCurve approximates each bay between adjacent support rows
// as a half sine scaled to the estimated maximum deflection. Values are
// plotted downward in millimetres.
func deflectionCurve(res *analysis.Results) plotter.XYs {
	var pts plotter.XYs
	rows := res.Reactions
	for i := 1; i < len(rows); i++ {
		lo, hi := rows[i-1].Position, rows[i].Position
		bay := hi - lo
		if bay <= 0 {
			continue
		}
		for s := 0; s <= diagramSamplesPerBay; s++ {
			x := lo + bay*float64(s)/diagramSamplesPerBay
			w := res.MaxDeflection * math.Sin(math.Pi*float64(s)/diagramSamplesPerBay)
			pts = append(pts, plotter.XY{X: x, Y: -w * 1e3})
		}
	}
	return pts
}
