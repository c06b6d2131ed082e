// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktor-platform/scia-bridge/internal/params"
)

func TestStaticRunnerDefaults(t *testing.T) {
	p := params.Defaults()
	res, err := StaticRunner{}.Run(context.Background(), Input{
		OutputDocument: "Report_1",
		Definition:     p,
	})
	require.NoError(t, err)

	assert.Equal(t, "Report_1", res.OutputDocument)
	assert.Contains(t, res.Method, "static estimate")
	assert.Contains(t, res.Method, "not FEA")

	// 100 kN/m2 over 20 m x 100 m.
	assert.InDelta(t, 100e3*20*100, res.TotalLoad, 1e-6)

	// One row per support plus both abutments.
	require.Len(t, res.Reactions, p.Layout.SupportAmount+2)
	require.Len(t, res.PileForces, len(res.Reactions))

	var sum float64
	for i, r := range res.Reactions {
		assert.Equal(t, i+1, r.Row)
		assert.Positive(t, r.Force)
		sum += r.Force
	}
	assert.InDelta(t, res.TotalLoad, sum, 1e-6*res.TotalLoad)

	for i, pf := range res.PileForces {
		assert.Equal(t, p.Layout.SupportPilesAmount, pf.Piles)
		assert.InDelta(t, res.Reactions[i].Force/float64(pf.Piles), pf.Force, 1e-9)
	}

	assert.Positive(t, res.MaxDeflection)

	require.Len(t, res.Checks, 2)
	assert.Equal(t, "equilibrium", res.Checks[0].Name)
	assert.True(t, res.Checks[0].Passed)
	assert.Equal(t, "deflection", res.Checks[1].Name)
}

func TestStaticRunnerRejectsInvalidDefinition(t *testing.T) {
	p := params.Defaults()
	p.Layout.Width = -1
	_, err := StaticRunner{}.Run(context.Background(), Input{Definition: p})
	require.ErrorIs(t, err, params.ErrInvalidDefinition)
}

func TestStaticRunnerHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := StaticRunner{}.Run(ctx, Input{Definition: params.Defaults()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResultsJSONRoundtrip(t *testing.T) {
	res, err := StaticRunner{}.Run(context.Background(), Input{
		OutputDocument: "Report_1",
		Definition:     params.Defaults(),
	})
	require.NoError(t, err)

	data, err := res.JSON()
	require.NoError(t, err)

	var got Results
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, res.TotalLoad, got.TotalLoad)
	assert.Len(t, got.Reactions, len(res.Reactions))
}
