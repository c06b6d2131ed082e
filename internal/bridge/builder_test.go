// SPDX-License-Identifier: MIT

package bridge

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/scia"
)

func TestLinspace(t *testing.T) {
	assert.Nil(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{2}, Linspace(2, 9, 1))
	assert.Equal(t, []float64{0, 5, 10}, Linspace(0, 10, 3))

	got := Linspace(1, 19, 4)
	require.Len(t, got, 4)
	assert.InDelta(t, 1, got[0], 1e-12)
	assert.InDelta(t, 7, got[1], 1e-12)
	assert.InDelta(t, 13, got[2], 1e-12)
	assert.Equal(t, 19.0, got[3])
}

func TestSupportRowPositions(t *testing.T) {
	p := params.Defaults()
	rows := SupportRowPositions(p)
	require.Len(t, rows, p.Layout.SupportAmount+2)

	talud := p.Layout.Height * math.Tan(TaludAngle)
	assert.InDelta(t, talud, rows[0], 1e-9)
	assert.InDelta(t, p.Layout.Length-talud, rows[len(rows)-1], 1e-9)
	assert.InDelta(t, p.Layout.Length/2, rows[1], 1e-9)
}

func TestBuildDefaultModelCounts(t *testing.T) {
	p := params.Defaults() // 3 support rows, 4 piles per row
	m, err := Build(p)
	require.NoError(t, err)

	rows := p.Layout.SupportAmount + 2
	piles := p.Layout.SupportPilesAmount

	// columns: one per row/pile intersection
	// straight piles: two per column plus two per abutment pile row
	// angled piles: two per pile row
	columns := rows * piles
	straight := columns*2 + piles*2
	angled := piles * 2

	assert.Len(t, m.Beams, columns+straight+angled)
	// deck + one slab per row + two abutment slabs
	assert.Len(t, m.Planes, 1+rows+2)
	// subsoil carries the row slabs and both abutments
	assert.Len(t, m.SurfaceSupports, rows+2)
	// every straight and angled pile has a line support
	assert.Len(t, m.LineSupports, straight+angled)
	// tip springs only on straight piles
	assert.Len(t, m.PointSupports, straight)

	// deck 4, slabs rows*4, columns rows*piles*2, straight support piles
	// rows*piles*2*2, abutments 2*4, angled 2*piles*2, middle 2*piles*2
	wantNodes := 4 + rows*4 + columns*2 + columns*2*2 + 8 + angled*2 + piles*2*2
	assert.Len(t, m.Nodes, wantNodes)

	sum := m.Summarize()
	assert.Equal(t, []string{"LG1"}, sum.LoadGroups)
	assert.Equal(t, []string{"LC1"}, sum.LoadCases)
	assert.Equal(t, []string{"C1"}, sum.Combinations)
	assert.Equal(t, []string{"SF:1"}, sum.SurfaceLoads)
}

func TestBuildUnitConversions(t *testing.T) {
	p := params.Defaults()
	m, err := Build(p)
	require.NoError(t, err)

	// pile thickness 500 mm → 0.5 m square section
	var pileSection *scia.CrossSection
	for _, cs := range m.CrossSections {
		if cs.Shape == scia.ShapeRectangular {
			pileSection = cs
		}
	}
	require.NotNil(t, pileSection)
	assert.InDelta(t, 0.5, pileSection.Width, 1e-12)
	assert.InDelta(t, 0.5, pileSection.Height, 1e-12)

	// soil stiffness 400 MN/m → 4e8 N/m
	require.Len(t, m.Subsoils, 1)
	assert.InDelta(t, 400e6, m.Subsoils[0].Stiffness, 1e-3)

	// deck load 100 kN/m2 → -1e5 N/m2 (downward)
	require.Len(t, m.SurfaceLoads, 1)
	assert.InDelta(t, -100e3, m.SurfaceLoads[0].Value, 1e-6)
	assert.Equal(t, scia.DirectionZ, m.SurfaceLoads[0].Direction)
}

func TestBuildAngledPilesFollowPileAngle(t *testing.T) {
	p := params.Defaults()
	m, err := Build(p)
	require.NoError(t, err)

	angle := p.Foundations.PileAngle * math.Pi / 180
	wantDX := math.Sin(angle) * p.Foundations.PileLength

	// find the first left abutment pile by node naming
	var found bool
	for _, b := range m.Beams {
		if b.Begin.Name == "node_abutment_foundation_bottom_0_0" {
			found = true
			assert.InDelta(t, wantDX, b.End.X-b.Begin.X, 1e-9)
			dz := b.End.Z - b.Begin.Z
			assert.InDelta(t, math.Cos(angle)*p.Foundations.PileLength, dz, 1e-9)
		}
	}
	assert.True(t, found, "left abutment pile not found")
}

func TestBuildRejectsInvalidDefinition(t *testing.T) {
	p := params.Defaults()
	p.Layout.Width = -1
	_, err := Build(p)
	require.ErrorIs(t, err, params.ErrInvalidDefinition)
}

func TestBuildSharedNodesAreReused(t *testing.T) {
	p := params.Defaults()
	m, err := Build(p)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, n := range m.Nodes {
		require.False(t, seen[n.Name], "duplicate node %s", n.Name)
		seen[n.Name] = true
	}
}

func modelBuildCount(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "bridge_model_builds_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func modelObjectGauge(t *testing.T, kind string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "bridge_model_objects" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "kind" && l.GetValue() == kind {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func TestBuildRecordsModelMetrics(t *testing.T) {
	success := modelBuildCount(t, "success")
	invalid := modelBuildCount(t, "invalid")

	m, err := Build(params.Defaults())
	require.NoError(t, err)
	assert.Equal(t, success+1, modelBuildCount(t, "success"))
	assert.Equal(t, float64(len(m.Nodes)), modelObjectGauge(t, "nodes"))
	assert.Equal(t, float64(len(m.Beams)), modelObjectGauge(t, "beams"))

	bad := params.Defaults()
	bad.Layout.Width = -1
	_, err = Build(bad)
	require.Error(t, err)
	assert.Equal(t, invalid+1, modelBuildCount(t, "invalid"))
	// a failed build keeps the last successful sizes
	assert.Equal(t, float64(len(m.Nodes)), modelObjectGauge(t, "nodes"))
}
