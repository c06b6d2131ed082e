// SPDX-License-Identifier: MIT

package params

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BridgeParams)
		field  string
	}{
		{
			name:   "zero width",
			mutate: func(p *BridgeParams) { p.Layout.Width = 0 },
			field:  "bridge_layout.width",
		},
		{
			name:   "negative supports",
			mutate: func(p *BridgeParams) { p.Layout.SupportAmount = -1 },
			field:  "bridge_layout.support_amount",
		},
		{
			name:   "single pile row",
			mutate: func(p *BridgeParams) { p.Layout.SupportPilesAmount = 1 },
			field:  "bridge_layout.support_piles_amount",
		},
		{
			name:   "NaN height",
			mutate: func(p *BridgeParams) { p.Layout.Height = math.NaN() },
			field:  "bridge_layout.height",
		},
		{
			name:   "infinite deck load",
			mutate: func(p *BridgeParams) { p.Foundations.DeckLoad = math.Inf(1) },
			field:  "bridge_foundations.deck_load",
		},
		{
			name:   "zero soil stiffness",
			mutate: func(p *BridgeParams) { p.Foundations.SoilStiffness = 0 },
			field:  "bridge_foundations.soil_stiffness",
		},
		{
			name:   "pile angle beyond 45",
			mutate: func(p *BridgeParams) { p.Foundations.PileAngle = 60 },
			field:  "bridge_foundations.pile_angle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidDefinition)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a field error for %s, got %v", tt.field, verr.Fields)
		})
	}
}

func TestValidateRejectsOverlappingEmbankments(t *testing.T) {
	p := Defaults()
	// height 50 m puts each talud footprint at ~28.9 m, more than half of a
	// 50 m span.
	p.Layout.Height = 50
	p.Layout.Length = 50

	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embankments overlap")
}

func TestValidateAggregatesAllFieldErrors(t *testing.T) {
	p := Defaults()
	p.Layout.Width = -5
	p.Foundations.PileLength = 0
	p.Foundations.DeckLoad = -1

	var verr *ValidationError
	require.ErrorAs(t, p.Validate(), &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestSchemaMatchesDefaults(t *testing.T) {
	steps := Schema()
	require.Len(t, steps, 2)
	assert.Equal(t, "bridge_layout", steps[0].Name)
	assert.Equal(t, "bridge_foundations", steps[1].Name)

	byName := map[string]NumberField{}
	for _, s := range steps {
		for _, f := range s.Fields {
			byName[s.Name+"."+f.Name] = f
		}
	}

	d := Defaults()
	assert.Equal(t, d.Layout.Width, byName["bridge_layout.width"].Default)
	assert.Equal(t, d.Layout.Length, byName["bridge_layout.length"].Default)
	assert.Equal(t, float64(d.Layout.SupportAmount), byName["bridge_layout.support_amount"].Default)
	assert.Equal(t, d.Foundations.PileThickness, byName["bridge_foundations.pile_thickness"].Default)
	assert.Equal(t, d.Foundations.SoilStiffness, byName["bridge_foundations.soil_stiffness"].Default)
	assert.True(t, byName["bridge_layout.support_amount"].Integer)
}
