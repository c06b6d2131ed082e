// SPDX-License-Identifier: MIT

// Package params defines the parametric inputs of the bridge editor: two
// steps of number fields (layout and foundations) plus validation. The
// schema is served to UI clients so they can render the editor without
// knowing the fields in advance.
package params

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Layout holds the "Defining bridge layout" step values. Units follow the
// field suffixes in Schema.
type Layout struct {
	Width              float64 `json:"width" yaml:"width"`
	Length             float64 `json:"length" yaml:"length"`
	Height             float64 `json:"height" yaml:"height"`
	DeckThickness      float64 `json:"deck_thickness" yaml:"deck_thickness"`
	SupportAmount      int     `json:"support_amount" yaml:"support_amount"`
	SupportPilesAmount int     `json:"support_piles_amount" yaml:"support_piles_amount"`
}

// Foundations holds the "Defining bridge foundations" step values.
type Foundations struct {
	PileLength    float64 `json:"pile_length" yaml:"pile_length"`       // m
	PileAngle     float64 `json:"pile_angle" yaml:"pile_angle"`         // degrees
	PileThickness float64 `json:"pile_thickness" yaml:"pile_thickness"` // mm
	DeckLoad      float64 `json:"deck_load" yaml:"deck_load"`           // kN/m2
	SoilStiffness float64 `json:"soil_stiffness" yaml:"soil_stiffness"` // MN/m
}

// BridgeParams is a complete bridge definition.
type BridgeParams struct {
	Layout      Layout      `json:"bridge_layout" yaml:"bridge_layout"`
	Foundations Foundations `json:"bridge_foundations" yaml:"bridge_foundations"`
}

// Defaults returns the editor defaults: a 100 m long, 20 m wide bridge with
// a single mid support row.
func Defaults() BridgeParams {
	return BridgeParams{
		Layout: Layout{
			Width:              20,
			Length:             100,
			Height:             10,
			DeckThickness:      2,
			SupportAmount:      1,
			SupportPilesAmount: 4,
		},
		Foundations: Foundations{
			PileLength:    20,
			PileAngle:     10,
			PileThickness: 500,
			DeckLoad:      100,
			SoilStiffness: 400,
		},
	}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates all field errors of a definition.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid bridge definition: " + strings.Join(msgs, "; ")
}

// ErrInvalidDefinition is the sentinel all validation failures wrap.
var ErrInvalidDefinition = errors.New("invalid bridge definition")

func (e *ValidationError) Unwrap() error { return ErrInvalidDefinition }

type checker struct {
	fields []FieldError
}

func (c *checker) addf(field, format string, args ...any) {
	c.fields = append(c.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) rangeCheck(field string, v, min, max float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.addf(field, "must be a finite number")
		return false
	}
	if v < min || v > max {
		c.addf(field, "must be between %g and %g", min, max)
		return false
	}
	return true
}

// Validate checks every field against its editor range and rejects
// geometrically impossible combinations. All failures are reported at once.
func (p BridgeParams) Validate() error {
	c := &checker{}

	widthOK := c.rangeCheck("bridge_layout.width", p.Layout.Width, 1, 100)
	lengthOK := c.rangeCheck("bridge_layout.length", p.Layout.Length, 10, 1000)
	heightOK := c.rangeCheck("bridge_layout.height", p.Layout.Height, 2, 100)
	c.rangeCheck("bridge_layout.deck_thickness", p.Layout.DeckThickness, 0.1, 5)
	if p.Layout.SupportAmount < 0 || p.Layout.SupportAmount > 20 {
		c.addf("bridge_layout.support_amount", "must be between 0 and 20")
	}
	if p.Layout.SupportPilesAmount < 2 || p.Layout.SupportPilesAmount > 20 {
		c.addf("bridge_layout.support_piles_amount", "must be between 2 and 20")
	}

	c.rangeCheck("bridge_foundations.pile_length", p.Foundations.PileLength, 1, 100)
	c.rangeCheck("bridge_foundations.pile_angle", p.Foundations.PileAngle, 0, 45)
	c.rangeCheck("bridge_foundations.pile_thickness", p.Foundations.PileThickness, 100, 2000)
	if math.IsNaN(p.Foundations.DeckLoad) || math.IsInf(p.Foundations.DeckLoad, 0) || p.Foundations.DeckLoad <= 0 {
		c.addf("bridge_foundations.deck_load", "must be a positive number")
	}
	if math.IsNaN(p.Foundations.SoilStiffness) || math.IsInf(p.Foundations.SoilStiffness, 0) || p.Foundations.SoilStiffness <= 0 {
		c.addf("bridge_foundations.soil_stiffness", "must be a positive number")
	}

	// The embankments at both ends each occupy height*tan(talud) of the span.
	// They must not overlap or there is no bridge left between them.
	if widthOK && lengthOK && heightOK {
		talud := p.Layout.Height * math.Tan(TaludAngle)
		if 2*talud >= p.Layout.Length {
			c.addf("bridge_layout.length", "embankments overlap: length must exceed %.1f m for height %.1f m", 2*talud, p.Layout.Height)
		}
	}

	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

// TaludAngle is the slope of the embankments at each abutment, in radians.
const TaludAngle = 30 * math.Pi / 180
