// SPDX-License-Identifier: MIT

// Package analysis abstracts the structural engine the worker drives.
// ExecRunner shells out to a SCIA console installation; StaticRunner is
// the built-in fallback that produces a deterministic static estimate.
package analysis

import (
	"context"
	"encoding/json"

	"github.com/viktor-platform/scia-bridge/internal/params"
)

// Input is everything a runner needs to execute one analysis.
type Input struct {
	ModelXML       []byte
	DefXML         []byte
	EsaPath        string
	OutputDocument string
	WorkDir        string
	Definition     params.BridgeParams
}

// Reaction is the vertical reaction carried by one support row.
type Reaction struct {
	Row       int     `json:"row"`
	Position  float64 `json:"position_m"`
	Tributary float64 `json:"tributary_m"`
	Force     float64 `json:"force_n"`
}

// PileForce is the axial force estimate for the piles of one row.
type PileForce struct {
	Row   int     `json:"row"`
	Piles int     `json:"piles"`
	Force float64 `json:"force_n"`
}

// Check is a pass/fail verification included in the results.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Results is the engine output in serializable form.
type Results struct {
	OutputDocument string      `json:"output_document"`
	Method         string      `json:"method"`
	TotalLoad      float64     `json:"total_load_n"`
	Reactions      []Reaction  `json:"reactions"`
	MaxDeflection  float64     `json:"max_deflection_m"`
	PileForces     []PileForce `json:"pile_forces"`
	Checks         []Check     `json:"checks"`
	EngineLog      string      `json:"engine_log,omitempty"`
}

// JSON renders the results as an indented document for the results.json
// artifact.
func (r *Results) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Runner executes one analysis. Implementations must honor ctx.
type Runner interface {
	Run(ctx context.Context, in Input) (*Results, error)
}
