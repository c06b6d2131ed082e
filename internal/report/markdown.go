// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/viktor-platform/scia-bridge/internal/analysis"
	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/scia"
)

func renderMarkdown(p params.BridgeParams, summary scia.Summary, res *analysis.Results) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Bridge analysis summary")
	md.PlainText("")
	md.PlainTextf("Method: %s", res.Method)
	md.PlainText("")

	var paramRows [][]string
	for _, step := range params.Schema() {
		for _, f := range step.Fields {
			value := formatParam(p, step.Name, f)
			if f.Suffix != "" {
				value += " " + f.Suffix
			}
			paramRows = append(paramRows, []string{f.Label, value})
		}
	}
	md.H2("Parameters")
	md.Table(markdown.TableSet{
		Header: []string{"Parameter", "Value"},
		Rows:   paramRows,
	})
	md.PlainText("")

	md.H2("Model")
	md.Table(markdown.TableSet{
		Header: []string{"Object", "Count"},
		Rows: [][]string{
			{"Nodes", strconv.Itoa(summary.Nodes)},
			{"Members", strconv.Itoa(summary.Beams)},
			{"Slabs", strconv.Itoa(summary.Planes)},
			{"Surface supports", strconv.Itoa(summary.SurfaceSupports)},
			{"Line supports", strconv.Itoa(summary.LineSupports)},
			{"Point supports", strconv.Itoa(summary.PointSupports)},
			{"Load cases", strconv.Itoa(len(summary.LoadCases))},
		},
	})
	md.PlainText("")

	md.H2("Results")
	md.BulletList(
		fmt.Sprintf("Total applied load: %.1f kN", res.TotalLoad/1e3),
		fmt.Sprintf("Maximum deflection estimate: %.1f mm", res.MaxDeflection*1e3),
	)
	md.PlainText("")

	reactionRows := make([][]string, len(res.Reactions))
	for i, r := range res.Reactions {
		pile := "-"
		if i < len(res.PileForces) {
			pile = fmt.Sprintf("%.1f", res.PileForces[i].Force/1e3)
		}
		reactionRows[i] = []string{
			strconv.Itoa(r.Row),
			fmt.Sprintf("%.2f", r.Position),
			fmt.Sprintf("%.1f", r.Force/1e3),
			pile,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Row", "Position (m)", "Reaction (kN)", "Pile axial (kN)"},
		Rows:   reactionRows,
	})
	md.PlainText("")

	md.H2("Checks")
	for _, c := range res.Checks {
		if c.Passed {
			md.BulletList(fmt.Sprintf("%s: PASS - %s", c.Name, c.Detail))
		} else {
			md.BulletList(fmt.Sprintf("%s: FAIL - %s", c.Name, c.Detail))
		}
	}

	if err := md.Build(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
