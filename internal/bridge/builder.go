// SPDX-License-Identifier: MIT

// Package bridge turns a validated bridge definition into a SCIA
// structural model: deck slab, support columns, foundation slabs, straight
// and angled piles, subsoil supports and the load administration.
package bridge

import (
	"errors"
	"fmt"
	"math"

	"github.com/viktor-platform/scia-bridge/internal/metrics"
	"github.com/viktor-platform/scia-bridge/internal/params"
	"github.com/viktor-platform/scia-bridge/internal/scia"
)

// Geometry constants shared by the model builder and the visualizations.
const (
	// TaludAngle is the embankment slope at both abutments, in radians.
	TaludAngle = params.TaludAngle

	// SupportBeamDiameter is the diameter of the circular support columns, m.
	SupportBeamDiameter = 1.0

	// SupportSlabWidth is the width of the foundation slabs under each
	// support row, m.
	SupportSlabWidth = 4.0
)

// Linspace returns n evenly spaced values from start to stop inclusive.
// n < 1 yields nil; n == 1 yields just start.
func Linspace(start, stop float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// SupportRowPositions returns the x positions of the support rows: evenly
// spaced between the two embankment footprints, including one row at each
// abutment.
func SupportRowPositions(p params.BridgeParams) []float64 {
	talud := p.Layout.Height * math.Tan(TaludAngle)
	return Linspace(talud, p.Layout.Length-talud, p.Layout.SupportAmount+2)
}

// PileRowPositions returns the y positions of the piles across the width.
func PileRowPositions(p params.BridgeParams) []float64 {
	return Linspace(SupportBeamDiameter, p.Layout.Width-SupportBeamDiameter, p.Layout.SupportPilesAmount)
}

// Build creates the SCIA model for the definition. The definition is
// validated first; unit conversions follow the editor suffixes
// (pile thickness mm→m, soil stiffness MN/m→N/m, deck load kN/m2→N/m2,
// negated to act downward).
func Build(p params.BridgeParams) (*scia.Model, error) {
	m, err := build(p)
	switch {
	case err == nil:
		s := m.Summarize()
		metrics.RecordModelBuild("success", s.Nodes, s.Beams, s.Planes)
	case errors.Is(err, params.ErrInvalidDefinition):
		metrics.RecordModelBuild("invalid", 0, 0, 0)
	default:
		metrics.RecordModelBuild("error", 0, 0, 0)
	}
	return m, err
}

func build(p params.BridgeParams) (*scia.Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := scia.NewModel()

	width := p.Layout.Width
	length := p.Layout.Length
	height := p.Layout.Height
	deckThickness := p.Layout.DeckThickness
	pileLength := p.Foundations.PileLength
	pileAngle := p.Foundations.PileAngle * math.Pi / 180
	pileThickness := p.Foundations.PileThickness * 1e-3
	soilStiffness := p.Foundations.SoilStiffness * 1e6
	deckLoad := p.Foundations.DeckLoad * -1e3

	slabThickness := deckThickness

	material := scia.Material{ID: 0, Name: "concrete_slab"}
	sectionMaterial := scia.Material{ID: 0, Name: "C30/37"}

	deckNodes := []*scia.Node{
		m.CreateNode("node_deck_0", 0, 0, height),
		m.CreateNode("node_deck_1", 0, width, height),
		m.CreateNode("node_deck_2", length, width, height),
		m.CreateNode("node_deck_3", length, 0, height),
	}
	deck, err := m.CreatePlane(deckNodes, deckThickness, "deck_plane", material)
	if err != nil {
		return nil, fmt.Errorf("build deck: %w", err)
	}

	xRows := SupportRowPositions(p)
	yRows := PileRowPositions(p)
	pileOffsets := [2]float64{-SupportSlabWidth / 3, SupportSlabWidth / 3}

	// foundation slabs under every support row
	var foundationSlabs []*scia.Plane
	for xi, x := range xRows {
		slab, err := m.CreatePlane([]*scia.Node{
			m.CreateNode(fmt.Sprintf("node_slab_%d_0", xi), x-SupportSlabWidth/2, 0, 0),
			m.CreateNode(fmt.Sprintf("node_slab_%d_1", xi), x-SupportSlabWidth/2, width, 0),
			m.CreateNode(fmt.Sprintf("node_slab_%d_2", xi), x+SupportSlabWidth/2, width, 0),
			m.CreateNode(fmt.Sprintf("node_slab_%d_3", xi), x+SupportSlabWidth/2, 0, 0),
		}, slabThickness, fmt.Sprintf("support_plane_%d", xi), material)
		if err != nil {
			return nil, fmt.Errorf("build support slab %d: %w", xi, err)
		}
		foundationSlabs = append(foundationSlabs, slab)
	}

	// circular support columns between slab and deck
	supportSection := m.CreateCircularCrossSection("circular_cross_section_support", sectionMaterial, SupportBeamDiameter)
	for xi, x := range xRows {
		for yi, y := range yRows {
			_, err := m.CreateBeam(
				m.CreateNode(fmt.Sprintf("node_support_bottom_%d_%d", xi, yi), x, y, 0),
				m.CreateNode(fmt.Sprintf("node_support_top_%d_%d", xi, yi), x, y, height),
				supportSection,
			)
			if err != nil {
				return nil, fmt.Errorf("build support column %d/%d: %w", xi, yi, err)
			}
		}
	}

	// straight foundation piles under the support slabs, two per column
	pileSection := m.CreateRectangularCrossSection("rectangular_cross_section_foundation", sectionMaterial, pileThickness, pileThickness)
	var straightPiles []*scia.Beam
	for xi, x := range xRows {
		for yi, y := range yRows {
			for zi, dx := range pileOffsets {
				pile, err := m.CreateBeam(
					m.CreateNode(fmt.Sprintf("node_support_foundation_bottom_%d_%d_%d", xi, yi, zi), x+dx, y, -pileLength),
					m.CreateNode(fmt.Sprintf("node_support_foundation_top_%d_%d_%d", xi, yi, zi), x+dx, y, 0),
					pileSection,
				)
				if err != nil {
					return nil, fmt.Errorf("build foundation pile %d/%d/%d: %w", xi, yi, zi, err)
				}
				straightPiles = append(straightPiles, pile)
			}
		}
	}

	// abutment slabs at deck level on both ends
	abutmentZ := height - slabThickness/2
	abutmentLeft, err := m.CreatePlane([]*scia.Node{
		m.CreateNode("node_abutment_0_0", -SupportSlabWidth/2, 0, abutmentZ),
		m.CreateNode("node_abutment_0_1", -SupportSlabWidth/2, width, abutmentZ),
		m.CreateNode("node_abutment_0_2", SupportSlabWidth/2, width, abutmentZ),
		m.CreateNode("node_abutment_0_3", SupportSlabWidth/2, 0, abutmentZ),
	}, slabThickness, "abutment_plane_left", material)
	if err != nil {
		return nil, fmt.Errorf("build left abutment: %w", err)
	}
	abutmentRight, err := m.CreatePlane([]*scia.Node{
		m.CreateNode("node_abutment_1_0", length-SupportSlabWidth/2, 0, abutmentZ),
		m.CreateNode("node_abutment_1_1", length-SupportSlabWidth/2, width, abutmentZ),
		m.CreateNode("node_abutment_1_2", length+SupportSlabWidth/2, width, abutmentZ),
		m.CreateNode("node_abutment_1_3", length+SupportSlabWidth/2, 0, abutmentZ),
	}, slabThickness, "abutment_plane_right", material)
	if err != nil {
		return nil, fmt.Errorf("build right abutment: %w", err)
	}
	foundationSlabs = append(foundationSlabs, abutmentLeft, abutmentRight)

	// abutment piles: outer piles raked by the pile angle, inner piles
	// straight down
	sinA, cosA := math.Sin(pileAngle), math.Cos(pileAngle)
	var angledPiles []*scia.Beam
	for yi, y := range yRows {
		left, err := m.CreateBeam(
			m.CreateNode(fmt.Sprintf("node_abutment_foundation_bottom_0_%d", yi),
				-sinA*pileLength+pileOffsets[0], y, height-cosA*pileLength-slabThickness),
			m.CreateNode(fmt.Sprintf("node_abutment_foundation_top_0_%d", yi),
				pileOffsets[0], y, height-slabThickness),
			pileSection,
		)
		if err != nil {
			return nil, fmt.Errorf("build left abutment pile %d: %w", yi, err)
		}
		right, err := m.CreateBeam(
			m.CreateNode(fmt.Sprintf("node_abutment_foundation_bottom_3_%d", yi),
				length+sinA*pileLength+pileOffsets[1], y, height-cosA*pileLength-slabThickness),
			m.CreateNode(fmt.Sprintf("node_abutment_foundation_top_3_%d", yi),
				length+pileOffsets[1], y, height-slabThickness),
			pileSection,
		)
		if err != nil {
			return nil, fmt.Errorf("build right abutment pile %d: %w", yi, err)
		}
		angledPiles = append(angledPiles, left, right)

		for xi, x := range [2]float64{pileOffsets[1], length + pileOffsets[0]} {
			pile, err := m.CreateBeam(
				m.CreateNode(fmt.Sprintf("node_abutment_foundation_bottom_%d_%d", xi+1, yi),
					x, y, height-pileLength-slabThickness),
				m.CreateNode(fmt.Sprintf("node_abutment_foundation_top_%d_%d", xi+1, yi),
					x, y, height-slabThickness),
				pileSection,
			)
			if err != nil {
				return nil, fmt.Errorf("build middle abutment pile %d/%d: %w", xi, yi, err)
			}
			straightPiles = append(straightPiles, pile)
		}
	}

	// every foundation slab rests on the subsoil
	subsoil := m.CreateSubsoil("subsoil", soilStiffness)
	for _, slab := range foundationSlabs {
		if _, err := m.CreateSurfaceSupport(slab, subsoil); err != nil {
			return nil, fmt.Errorf("build surface support: %w", err)
		}
	}

	// straight piles: lateral soil springs along the shaft plus a vertical
	// spring at the tip
	for i, pile := range straightPiles {
		_, err := m.CreateLineSupportOnBeam(scia.LineSupport{
			Name: fmt.Sprintf("support_beam_straight_%d", i),
			Beam: pile,
			X:    scia.FreedomFlexible, StiffnessX: soilStiffness,
			Y: scia.FreedomFlexible, StiffnessY: soilStiffness,
			Z:  scia.FreedomFree,
			RX: scia.FreedomFree, RY: scia.FreedomFree, RZ: scia.FreedomFree,
			CSys: scia.CSysGlobal,
		})
		if err != nil {
			return nil, fmt.Errorf("build pile line support %d: %w", i, err)
		}
		_, err = m.CreatePointSupport(scia.PointSupport{
			Name: fmt.Sprintf("point_support_beam_straight_%d", i),
			Node: pile.End,
			Type: scia.SpringStandard,
			Freedom: [6]scia.Freedom{
				scia.FreedomFree, scia.FreedomFree, scia.FreedomFlexible,
				scia.FreedomFree, scia.FreedomFree, scia.FreedomFree,
			},
			Stiffness: [6]float64{0, 0, soilStiffness, 0, 0, 0},
			CSys:      scia.CSysGlobal,
		})
		if err != nil {
			return nil, fmt.Errorf("build pile point support %d: %w", i, err)
		}
	}

	// angled piles additionally pick up torsion from the rake
	for i, pile := range angledPiles {
		_, err := m.CreateLineSupportOnBeam(scia.LineSupport{
			Beam: pile,
			X:    scia.FreedomFlexible, StiffnessX: soilStiffness,
			Y: scia.FreedomFlexible, StiffnessY: soilStiffness,
			Z:  scia.FreedomFree,
			RX: scia.FreedomFree, RY: scia.FreedomFree,
			RZ: scia.FreedomFlexible, StiffnessRZ: soilStiffness,
			CSys: scia.CSysGlobal,
		})
		if err != nil {
			return nil, fmt.Errorf("build angled pile support %d: %w", i, err)
		}
	}

	lg, err := m.CreateLoadGroup("LG1", scia.LoadOptionVariable, scia.RelationStandard, scia.LoadTypeCatG)
	if err != nil {
		return nil, fmt.Errorf("build load group: %w", err)
	}
	lc, err := m.CreateVariableLoadCase("LC1", "first load case", lg, scia.VariableLoadStatic, scia.SpecificationStandard, scia.DurationShort)
	if err != nil {
		return nil, fmt.Errorf("build load case: %w", err)
	}
	if _, err := m.CreateLoadCombination("C1", scia.CombinationEnvelopeServiceability, []scia.CaseFactor{{Case: lc, Factor: 1}}); err != nil {
		return nil, fmt.Errorf("build load combination: %w", err)
	}
	if _, err := m.CreateSurfaceLoad("SF:1", lc, deck, scia.DirectionZ, scia.LoadTypeForce, deckLoad, scia.CSysGlobal, scia.LocationLength); err != nil {
		return nil, fmt.Errorf("build surface load: %w", err)
	}

	return m, nil
}
