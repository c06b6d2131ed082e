// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/viktor-platform/scia-bridge/internal/bridge"
)

// Concrete properties used for the deflection estimate (C30/37).
const elasticModulus = 33e9 // Pa

// Deflection acceptance limit as a fraction of the span.
const deflectionLimit = 250.0

// StaticRunner computes a deterministic equilibrium summary from the
// bridge definition alone. It is a static estimate, not a finite
// element analysis, and labels its output accordingly.
type StaticRunner struct{}

// Run derives total load, tributary support reactions, pile axial
// forces and a midspan deflection estimate for a simply supported span.
func (StaticRunner) Run(ctx context.Context, in Input) (*Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := in.Definition
	if err := p.Validate(); err != nil {
		return nil, err
	}

	width := p.Layout.Width
	length := p.Layout.Length
	q := p.Foundations.DeckLoad * 1e3 // kN/m2 as applied, magnitude in N/m2
	totalLoad := q * width * length

	rows := bridge.SupportRowPositions(p)
	reactions := make([]Reaction, len(rows))
	pileForces := make([]PileForce, len(rows))
	var sum float64
	for i, x := range rows {
		// Tributary length: halfway to each neighbour, deck edges for
		// the outermost rows.
		lo, hi := 0.0, length
		if i > 0 {
			lo = (rows[i-1] + x) / 2
		}
		if i < len(rows)-1 {
			hi = (x + rows[i+1]) / 2
		}
		trib := hi - lo
		force := q * width * trib
		sum += force
		reactions[i] = Reaction{Row: i + 1, Position: x, Tributary: trib, Force: force}

		piles := p.Layout.SupportPilesAmount
		pileForces[i] = PileForce{Row: i + 1, Piles: piles, Force: force / float64(piles)}
	}

	// Midspan deflection of the widest bay, uniform load on a simply
	// supported strip: 5 q L^4 / (384 E I).
	span := 0.0
	for i := 1; i < len(rows); i++ {
		if gap := rows[i] - rows[i-1]; gap > span {
			span = gap
		}
	}
	thickness := p.Layout.DeckThickness
	inertia := width * math.Pow(thickness, 3) / 12
	lineLoad := q * width
	deflection := 5 * lineLoad * math.Pow(span, 4) / (384 * elasticModulus * inertia)

	checks := []Check{
		{
			Name:   "equilibrium",
			Passed: math.Abs(sum-totalLoad) < 1e-6*totalLoad,
			Detail: fmt.Sprintf("sum of reactions %.3e N vs applied %.3e N", sum, totalLoad),
		},
		{
			Name:   "deflection",
			Passed: deflection <= span/deflectionLimit,
			Detail: fmt.Sprintf("midspan %.4g m, limit span/%g = %.4g m", deflection, deflectionLimit, span/deflectionLimit),
		},
	}

	return &Results{
		OutputDocument: in.OutputDocument,
		Method:         "static estimate (equilibrium summary, not FEA)",
		TotalLoad:      totalLoad,
		Reactions:      reactions,
		MaxDeflection:  deflection,
		PileForces:     pileForces,
		Checks:         checks,
	}, nil
}
